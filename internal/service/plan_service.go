package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/dto"
	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/calendar"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type boardPlanReader interface {
	Employees() []models.Employee
	Projects() []models.Project
	Project(id string) (models.Project, bool)
	Holidays() []models.PublicHoliday
	Assignments() []models.Assignment
	Absences() []models.Absence
	ActiveVersion() models.PlanVersion
	ActiveVersionID() string
	IsWorkingActive() bool
	Revision() uint64
}

// PlanService assembles the board view of the active plan version.
type PlanService struct {
	plan   boardPlanReader
	cache  *CacheService
	logger *zap.Logger
	ttl    time.Duration
}

// NewPlanService constructs the service.
func NewPlanService(plan boardPlanReader, cache *CacheService, logger *zap.Logger, ttl time.Duration) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlanService{plan: plan, cache: cache, logger: logger, ttl: ttl}
}

// Employees returns the roster.
func (s *PlanService) Employees() []models.Employee {
	return s.plan.Employees()
}

// Projects returns the project catalog.
func (s *PlanService) Projects() []models.Project {
	return s.plan.Projects()
}

// Board renders one month of the active version and reports whether the
// payload came from cache.
func (s *PlanService) Board(ctx context.Context, month string) (*dto.PlanBoardResponse, bool, error) {
	first, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	cacheKey := fmt.Sprintf("plan:board:%s:%d:%s", s.plan.ActiveVersionID(), s.plan.Revision(), month)
	if s.cache != nil {
		var cached dto.PlanBoardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	board := s.buildBoard(month, first)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, board, s.ttl); err != nil {
			s.logger.Warn("board cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return board, false, nil
}

func (s *PlanService) buildBoard(month string, first time.Time) *dto.PlanBoardResponse {
	_, last := calendar.MonthBounds(first)
	active := s.plan.ActiveVersion()

	board := &dto.PlanBoardResponse{
		Month:       month,
		VersionID:   active.ID,
		VersionName: active.Name,
		ReadOnly:    !s.plan.IsWorkingActive(),
		Revision:    s.plan.Revision(),
	}

	var dayKeys []string
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := calendar.FormatDay(d)
		dayKeys = append(dayKeys, key)
		board.Days = append(board.Days, dto.PlanBoardDay{
			Date:    key,
			Weekday: d.Weekday().String(),
			Weekend: calendar.IsWeekend(d),
		})
	}

	assignmentsByCell := map[[2]string][]models.Assignment{}
	for _, a := range s.plan.Assignments() {
		if a.Date < dayKeys[0] || a.Date > dayKeys[len(dayKeys)-1] {
			continue
		}
		key := [2]string{a.EmployeeID, a.Date}
		assignmentsByCell[key] = append(assignmentsByCell[key], a)
	}
	absenceByCell := map[[2]string]models.Absence{}
	for _, ab := range s.plan.Absences() {
		if ab.Date >= dayKeys[0] && ab.Date <= dayKeys[len(dayKeys)-1] {
			absenceByCell[[2]string{ab.EmployeeID, ab.Date}] = ab
		}
	}

	holidaySets := map[string]calendar.HolidaySet{}
	holidayFor := func(location, date string) bool {
		set, ok := holidaySets[location]
		if !ok {
			set = calendar.HolidaySet{}
			for _, h := range s.plan.Holidays() {
				if h.AppliesTo(location) {
					set.Add(h.Date)
				}
			}
			holidaySets[location] = set
		}
		return set.ContainsKey(date)
	}

	employees := s.plan.Employees()
	sort.SliceStable(employees, func(i, j int) bool { return employees[i].Name < employees[j].Name })
	for _, emp := range employees {
		row := dto.PlanBoardRow{
			EmployeeID:   emp.ID,
			Name:         emp.Name,
			Role:         emp.Role,
			Location:     emp.Location,
			Availability: emp.Availability,
		}
		for i, key := range dayKeys {
			cell := dto.PlanBoardCell{
				Date:    key,
				Weekend: board.Days[i].Weekend,
				Holiday: holidayFor(emp.Location, key),
			}
			if ab, ok := absenceByCell[[2]string{emp.ID, key}]; ok {
				cell.Absence = &dto.PlanBoardAbsence{ID: ab.ID, Type: ab.Type}
			}
			for _, a := range assignmentsByCell[[2]string{emp.ID, key}] {
				entry := dto.PlanBoardAssignment{
					ID:         a.ID,
					ProjectID:  a.ProjectID,
					Allocation: a.Allocation,
				}
				if p, ok := s.plan.Project(a.ProjectID); ok {
					entry.ProjectName = p.Name
					entry.Critical = p.Critical
				}
				cell.Assignments = append(cell.Assignments, entry)
				cell.Load += a.Allocation
			}
			cell.Overloaded = cell.Load > 1.0+loadEpsilon
			cell.Load = round1(cell.Load)
			row.Cells = append(row.Cells, cell)
		}
		board.Rows = append(board.Rows, row)
	}
	return board
}
