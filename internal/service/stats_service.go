package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/calendar"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type statsPlanReader interface {
	Employees() []models.Employee
	Projects() []models.Project
	Project(id string) (models.Project, bool)
	Assignments() []models.Assignment
	Absences() []models.Absence
	ActiveVersionID() string
	Revision() uint64
}

// StatsServiceConfig tunes aggregation behaviour.
type StatsServiceConfig struct {
	CacheTTL         time.Duration
	TopProjectsLimit int
}

// StatsService aggregates the plan into month and day level figures. Results
// are cached per (version, revision, month); any plan mutation changes the
// revision and thereby the cache key.
type StatsService struct {
	plan     statsPlanReader
	capacity *CapacityService
	cache    *CacheService
	logger   *zap.Logger
	cfg      StatsServiceConfig
}

// NewStatsService constructs a StatsService with sane defaults.
func NewStatsService(plan statsPlanReader, capacity *CapacityService, cache *CacheService, logger *zap.Logger, cfg StatsServiceConfig) *StatsService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopProjectsLimit <= 0 {
		cfg.TopProjectsLimit = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{plan: plan, capacity: capacity, cache: cache, logger: logger, cfg: cfg}
}

// DailyLoad sums an employee's allocations on one day.
func (s *StatsService) DailyLoad(employeeID, date string) float64 {
	load := 0.0
	for _, a := range s.plan.Assignments() {
		if a.EmployeeID == employeeID && a.Date == date {
			load += a.Allocation
		}
	}
	return load
}

// MonthStats aggregates one month across the roster and reports whether the
// result came from cache.
func (s *StatsService) MonthStats(ctx context.Context, month string) (*models.MonthStats, bool, error) {
	first, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	cacheKey := fmt.Sprintf("plan:stats:%s:%d:%s", s.plan.ActiveVersionID(), s.plan.Revision(), month)
	if s.cache != nil {
		var cached models.MonthStats
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	stats := s.computeMonthStats(month, first)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return stats, false, nil
}

func (s *StatsService) computeMonthStats(month string, first time.Time) *models.MonthStats {
	_, last := calendar.MonthBounds(first)
	startKey, endKey := calendar.FormatDay(first), calendar.FormatDay(last)

	totalCapacity := s.capacity.TotalCapacity(first, last)

	totalPlanned := 0.0
	perEmployeeDay := map[string]float64{}
	perProject := map[string]float64{}
	for _, a := range s.plan.Assignments() {
		if a.Date < startKey || a.Date > endKey {
			continue
		}
		totalPlanned += a.Allocation
		perEmployeeDay[a.EmployeeID+"|"+a.Date] += a.Allocation
		perProject[a.ProjectID] += a.Allocation
	}

	overloaded := 0
	for _, load := range perEmployeeDay {
		if load > 1.0+loadEpsilon {
			overloaded++
		}
	}

	// bookings referencing a removed project stay in the totals but are
	// dropped from the per-project breakdown; walking the catalog keeps
	// ties in catalog order under the stable sort
	top := make([]models.ProjectLoad, 0, len(perProject))
	for _, p := range s.plan.Projects() {
		days, ok := perProject[p.ID]
		if !ok {
			continue
		}
		top = append(top, models.ProjectLoad{ProjectID: p.ID, Name: p.Name, Days: round1(days)})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Days > top[j].Days
	})
	if len(top) > s.cfg.TopProjectsLimit {
		top = top[:s.cfg.TopProjectsLimit]
	}

	utilization := 0.0
	if totalCapacity > 0 {
		utilization = math.Round(totalPlanned / totalCapacity * 100)
	}
	return &models.MonthStats{
		Month:              month,
		TotalCapacity:      totalCapacity,
		TotalPlanned:       round1(totalPlanned),
		FreeCapacity:       round1(totalCapacity - totalPlanned),
		OverloadedDayCount: overloaded,
		UtilizationPercent: utilization,
		TopProjects:        top,
	}
}

// EmployeeMonthStats computes the per-employee sidebar figures for a month.
func (s *StatsService) EmployeeMonthStats(month string) ([]models.EmployeeUtilization, error) {
	first, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	_, last := calendar.MonthBounds(first)
	return s.capacity.UtilizationOverview(first, last), nil
}

// HasCriticalConflict reports whether more than one booking in the list
// references a critical project. Load plays no role here; two half-day
// bookings on critical work already collide.
func (s *StatsService) HasCriticalConflict(assignments []models.Assignment) bool {
	critical := 0
	for _, a := range assignments {
		if p, ok := s.plan.Project(a.ProjectID); ok && p.Critical {
			critical++
		}
	}
	return critical > 1
}

// Conflicts lists the days of a month where an employee's bookings collide:
// the day is overloaded, or it stacks more than one critical booking.
func (s *StatsService) Conflicts(month string) ([]models.DayConflict, error) {
	first, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	_, last := calendar.MonthBounds(first)
	startKey, endKey := calendar.FormatDay(first), calendar.FormatDay(last)

	days := map[[2]string][]models.Assignment{}
	for _, a := range s.plan.Assignments() {
		if a.Date < startKey || a.Date > endKey {
			continue
		}
		key := [2]string{a.EmployeeID, a.Date}
		days[key] = append(days[key], a)
	}

	var conflicts []models.DayConflict
	for key, dayAssignments := range days {
		load := 0.0
		for _, a := range dayAssignments {
			load += a.Allocation
		}
		critical := s.HasCriticalConflict(dayAssignments)
		if load <= 1.0+loadEpsilon && !critical {
			continue
		}
		conflicts = append(conflicts, models.DayConflict{
			EmployeeID: key[0],
			Date:       key[1],
			Load:       round1(load),
			Critical:   critical,
		})
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Date != conflicts[j].Date {
			return conflicts[i].Date < conflicts[j].Date
		}
		return conflicts[i].EmployeeID < conflicts[j].EmployeeID
	})
	return conflicts, nil
}
