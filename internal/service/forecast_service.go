package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/calendar"
)

type forecastPlanReader interface {
	Project(id string) (models.Project, bool)
	Projects() []models.Project
	Assignments() []models.Assignment
	Quarters() []models.QuarterData
	Quarter(id string) (models.QuarterData, error)
	ActiveVersionID() string
	Revision() uint64
}

// ForecastServiceConfig tunes quarter projections and financials.
type ForecastServiceConfig struct {
	DefaultRunningVolume float64
	HorizonQuarters      int
	HoursPerDay          float64
	DefaultHourlyRate    float64
	CacheTTL             time.Duration
}

// ForecastService turns stored quarter data into projections: live capacity,
// booked volumes and the remaining room for opportunities.
type ForecastService struct {
	plan     forecastPlanReader
	capacity *CapacityService
	cache    *CacheService
	logger   *zap.Logger
	cfg      ForecastServiceConfig
}

// NewForecastService constructs a ForecastService with sane defaults.
func NewForecastService(plan forecastPlanReader, capacity *CapacityService, cache *CacheService, logger *zap.Logger, cfg ForecastServiceConfig) *ForecastService {
	if cfg.DefaultRunningVolume <= 0 {
		cfg.DefaultRunningVolume = 60
	}
	if cfg.HorizonQuarters <= 0 {
		cfg.HorizonQuarters = 4
	}
	if cfg.HoursPerDay <= 0 {
		cfg.HoursPerDay = 8
	}
	if cfg.DefaultHourlyRate <= 0 {
		cfg.DefaultHourlyRate = 100
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastService{plan: plan, capacity: capacity, cache: cache, logger: logger, cfg: cfg}
}

// Projections computes the projection for every stored quarter and reports
// whether the payload came from cache.
func (s *ForecastService) Projections(ctx context.Context) ([]models.QuarterProjection, bool, error) {
	cacheKey := fmt.Sprintf("plan:forecast:%s:%d", s.plan.ActiveVersionID(), s.plan.Revision())
	if s.cache != nil {
		var cached []models.QuarterProjection
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}
	quarters := s.plan.Quarters()
	out := make([]models.QuarterProjection, 0, len(quarters))
	for _, q := range quarters {
		out = append(out, s.ProjectQuarter(q))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, out, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("forecast cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return out, false, nil
}

// ProjectionByID computes the projection of one stored quarter.
func (s *ForecastService) ProjectionByID(quarterID string) (models.QuarterProjection, error) {
	q, err := s.plan.Quarter(quarterID)
	if err != nil {
		return models.QuarterProjection{}, err
	}
	return s.ProjectQuarter(q), nil
}

// ProjectQuarter computes one quarter's projection. Capacity comes from the
// live roster and booked volumes from actual assignments; the stored figures
// only back a quarter whose name cannot be resolved to calendar bounds.
func (s *ForecastService) ProjectQuarter(q models.QuarterData) models.QuarterProjection {
	proj := models.QuarterProjection{Quarter: q}

	year, quarter, err := calendar.ParseQuarterName(q.Name)
	if err != nil {
		s.logger.Warn("quarter name not parseable, using captured figures",
			zap.String("quarter_id", q.ID), zap.String("name", q.Name))
		total := q.TotalCapacityDays
		if len(q.MonthlyCapacityDays) > 0 {
			total = 0
			for _, c := range q.MonthlyCapacityDays {
				total += c
			}
		}
		proj.TotalCapacityDays = round1(total)
		proj.RunningDays = s.sumVolumes(q.RunningProjects, s.cfg.DefaultRunningVolume)
		proj.MustWinDays = s.sumVolumes(q.MustWin, 0)
		proj.AlternativeDays = s.sumVolumes(q.Alternative, 0)
		if len(q.MonthlyCapacityDays) > 0 {
			proj.Months = s.monthlySplit(q.MonthlyCapacityDays, monthLabels(q, len(q.MonthlyCapacityDays)), proj)
		}
	} else {
		months := calendar.QuarterMonths(year, quarter)
		monthCaps := make([]float64, 0, 3)
		labels := make([]string, 0, 3)
		total := 0.0
		for _, month := range months {
			_, last := calendar.MonthBounds(month)
			c := s.capacity.TotalCapacity(month, last)
			monthCaps = append(monthCaps, c)
			labels = append(labels, calendar.FormatMonth(month))
			total += c
		}
		proj.TotalCapacityDays = round1(total)
		proj.RunningDays = s.runningVolume(q, year, quarter)
		proj.MustWinDays = s.sumVolumes(q.MustWin, 0)
		proj.AlternativeDays = s.sumVolumes(q.Alternative, 0)
		proj.Months = s.monthlySplit(monthCaps, labels, proj)
	}

	raw := proj.TotalCapacityDays - proj.RunningDays
	proj.RawAvailableDays = round1(raw)
	proj.AvailableDays = round1(math.Max(0, raw))
	proj.NetAvailableDays = round1(raw - proj.MustWinDays)
	proj.Overcapacity = proj.NetAvailableDays < 0
	proj.Warnings = s.doubleCountWarnings(q)
	return proj
}

// runningVolume prefers actual bookings inside the quarter window over the
// nominal entry volumes.
func (s *ForecastService) runningVolume(q models.QuarterData, year, quarter int) float64 {
	start, end := calendar.QuarterBounds(year, quarter)
	startKey, endKey := calendar.FormatDay(start), calendar.FormatDay(end)

	booked := map[string]float64{}
	for _, a := range s.plan.Assignments() {
		if a.Date >= startKey && a.Date <= endKey {
			booked[a.ProjectID] += a.Allocation
		}
	}
	total := 0.0
	for _, entry := range q.RunningProjects {
		if days, ok := booked[entry.ProjectID]; ok && days > 0 {
			total += days
			continue
		}
		total += entryVolume(entry, s.cfg.DefaultRunningVolume)
	}
	return round1(total)
}

// monthlySplit distributes the quarter totals across its months by capacity
// weight. Rounding is display-only; the quarter totals stay authoritative.
func (s *ForecastService) monthlySplit(monthCaps []float64, labels []string, proj models.QuarterProjection) []models.MonthProjection {
	total := 0.0
	for _, c := range monthCaps {
		total += c
	}
	out := make([]models.MonthProjection, 0, len(monthCaps))
	for i, c := range monthCaps {
		ratio := 0.0
		if total > 0 {
			ratio = c / total
		}
		assigned := round1(proj.RunningDays * ratio)
		available := round1(c - assigned)
		out = append(out, models.MonthProjection{
			Month:         labels[i],
			CapacityDays:  round1(c),
			AssignedDays:  assigned,
			AvailableDays: available,
			Optimistic:    round1(available - proj.MustWinDays*ratio),
		})
	}
	return out
}

// monthLabels resolves display labels for a quarter's months, falling back to
// a positional label when the stored list is short.
func monthLabels(q models.QuarterData, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		if i < len(q.Months) {
			labels[i] = q.Months[i]
		} else {
			labels[i] = fmt.Sprintf("month %d", i+1)
		}
	}
	return labels
}

// sumVolumes totals a bucket's entry volumes. The fallback fills in for a
// missing volume: the configured default for running work, zero for
// opportunity buckets.
func (s *ForecastService) sumVolumes(entries []models.ForecastEntry, fallback float64) float64 {
	total := 0.0
	for _, e := range entries {
		total += entryVolume(e, fallback)
	}
	return round1(total)
}

func entryVolume(e models.ForecastEntry, fallback float64) float64 {
	if e.Volume != nil && *e.Volume > 0 {
		return *e.Volume
	}
	return fallback
}

// doubleCountWarnings flags a project that appears in more than one of the
// quarter's three lists; its volume would otherwise be counted twice.
func (s *ForecastService) doubleCountWarnings(q models.QuarterData) []string {
	lists := []struct {
		label   string
		entries []models.ForecastEntry
	}{
		{"running", q.RunningProjects},
		{"must-win", q.MustWin},
		{"alternative", q.Alternative},
	}
	seen := map[string][]string{}
	for _, l := range lists {
		inList := map[string]struct{}{}
		for _, e := range l.entries {
			key := e.ProjectID
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(e.Name))
			}
			if _, dup := inList[key]; dup {
				continue
			}
			inList[key] = struct{}{}
			seen[key] = append(seen[key], l.label)
		}
	}
	var warnings []string
	for key, labels := range seen {
		if len(labels) > 1 {
			warnings = append(warnings, fmt.Sprintf("project %q is listed in %s; its volume is counted in each list", key, strings.Join(labels, " and ")))
		}
	}
	sort.Strings(warnings)
	return warnings
}

// RevenueForecast amortises project budgets over the next horizon quarters,
// proportional to each project's date overlap with the quarter. Projects
// without both dates, or with a non-positive duration, contribute nothing.
func (s *ForecastService) RevenueForecast(anchor time.Time) []models.QuarterRevenue {
	year, quarter := anchor.Year(), calendar.QuarterOf(anchor)

	out := make([]models.QuarterRevenue, 0, s.cfg.HorizonQuarters)
	for i := 0; i < s.cfg.HorizonQuarters; i++ {
		qYear, qNum := calendar.AddQuarters(year, quarter, i)
		rev := models.QuarterRevenue{
			Quarter:  fmt.Sprintf("Q%d %d", qNum, qYear),
			ByClient: map[string]float64{},
		}
		for _, p := range s.plan.Projects() {
			amount := s.quarterRevenue(p, qYear, qNum)
			if amount <= 0 {
				continue
			}
			client := p.Client
			if client == "" {
				client = "Unassigned"
			}
			rev.ByClient[client] += amount
			rev.Total += amount
		}
		rev.Total = math.Round(rev.Total)
		for client, v := range rev.ByClient {
			rev.ByClient[client] = math.Round(v)
		}
		out = append(out, rev)
	}
	return out
}

func (s *ForecastService) quarterRevenue(p models.Project, year, quarter int) float64 {
	if p.StartDate == nil || p.EndDate == nil {
		return 0
	}
	start, err := calendar.ParseDay(*p.StartDate)
	if err != nil {
		return 0
	}
	end, err := calendar.ParseDay(*p.EndDate)
	if err != nil {
		return 0
	}
	// the project end day counts in full
	end = end.AddDate(0, 0, 1)
	total := end.Sub(start)
	if total <= 0 {
		return 0
	}
	budget := p.BudgetAmount()
	if budget <= 0 {
		return 0
	}
	overlap := calendar.QuarterOverlap(start, end, year, quarter)
	return budget * float64(overlap) / float64(total)
}

// Financials relates every project's budget to its planned cost across the
// whole plan. Cost is allocation-weighted days at the project's hourly rate.
func (s *ForecastService) Financials() []models.ProjectFinancials {
	plannedDays := map[string]float64{}
	for _, a := range s.plan.Assignments() {
		plannedDays[a.ProjectID] += a.Allocation
	}

	projects := s.plan.Projects()
	out := make([]models.ProjectFinancials, 0, len(projects))
	for _, p := range projects {
		rate := s.cfg.DefaultHourlyRate
		if p.HourlyRate != nil && *p.HourlyRate > 0 {
			rate = *p.HourlyRate
		}
		days := plannedDays[p.ID]
		cost := days * s.cfg.HoursPerDay * rate
		budget := p.BudgetAmount()
		margin := budget - cost
		marginPct := 0.0
		if budget > 0 {
			marginPct = math.Round(margin / budget * 1000) / 10
		}
		out = append(out, models.ProjectFinancials{
			ProjectID:     p.ID,
			Name:          p.Name,
			Client:        p.Client,
			Budget:        budget,
			PlannedDays:   round1(days),
			PlannedCost:   math.Round(cost),
			Margin:        math.Round(margin),
			MarginPercent: marginPct,
			MarginBand:    marginBand(budget, marginPct),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func marginBand(budget, marginPct float64) string {
	switch {
	case budget <= 0 || marginPct < 10:
		return models.MarginBandHighRisk
	case marginPct < 25:
		return models.MarginBandLow
	default:
		return models.MarginBandHealthy
	}
}
