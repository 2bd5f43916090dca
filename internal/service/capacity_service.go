package service

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/calendar"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type capacityPlanReader interface {
	Employees() []models.Employee
	Employee(id string) (models.Employee, bool)
	Holidays() []models.PublicHoliday
	Assignments() []models.Assignment
	Absences() []models.Absence
}

// CapacityService computes available person-days over arbitrary date ranges.
// It is a pure read-side consumer of the plan; every call recomputes from the
// current state.
type CapacityService struct {
	plan   capacityPlanReader
	logger *zap.Logger
}

// NewCapacityService constructs a CapacityService.
func NewCapacityService(plan capacityPlanReader, logger *zap.Logger) *CapacityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityService{plan: plan, logger: logger}
}

// HolidaysFor builds the holiday lookup for one location. Holidays marked for
// all locations always apply; an unknown location simply matches nothing.
func (s *CapacityService) HolidaysFor(location string) calendar.HolidaySet {
	set := calendar.HolidaySet{}
	for _, h := range s.plan.Holidays() {
		if h.AppliesTo(location) {
			set.Add(h.Date)
		}
	}
	return set
}

// EmployeeCapacity returns one employee's capacity in person-days between
// start and end inclusive: working days at the employee's location, less
// absent days, scaled by availability. Rounded to a tenth of a day.
func (s *CapacityService) EmployeeCapacity(emp models.Employee, start, end time.Time) float64 {
	holidays := s.HolidaysFor(emp.Location)
	absent := absentDays(s.plan.Absences(), emp.ID)

	days := 0
	for _, d := range calendar.WorkingDays(start, end, holidays) {
		if _, ok := absent[calendar.FormatDay(d)]; ok {
			continue
		}
		days++
	}
	return round1(float64(days) * emp.Availability / 100)
}

// TotalCapacity sums capacity over the whole roster.
func (s *CapacityService) TotalCapacity(start, end time.Time) float64 {
	total := 0.0
	for _, emp := range s.plan.Employees() {
		total += s.EmployeeCapacity(emp, start, end)
	}
	return round1(total)
}

// EmployeeUtilization relates one employee's capacity to their planned load
// in the range. Planned days are allocation-weighted: two half-day bookings
// count as one day, regardless of how many calendar days they touch.
func (s *CapacityService) EmployeeUtilization(employeeID string, start, end time.Time) (models.EmployeeUtilization, error) {
	emp, ok := s.plan.Employee(employeeID)
	if !ok {
		return models.EmployeeUtilization{}, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	return s.utilization(emp, start, end), nil
}

// UtilizationOverview computes utilization for every roster member.
func (s *CapacityService) UtilizationOverview(start, end time.Time) []models.EmployeeUtilization {
	employees := s.plan.Employees()
	out := make([]models.EmployeeUtilization, 0, len(employees))
	for _, emp := range employees {
		out = append(out, s.utilization(emp, start, end))
	}
	return out
}

func (s *CapacityService) utilization(emp models.Employee, start, end time.Time) models.EmployeeUtilization {
	capacity := s.EmployeeCapacity(emp, start, end)

	startKey := calendar.FormatDay(start)
	endKey := calendar.FormatDay(end)
	planned := 0.0
	perDay := map[string]float64{}
	for _, a := range s.plan.Assignments() {
		if a.EmployeeID != emp.ID || a.Date < startKey || a.Date > endKey {
			continue
		}
		planned += a.Allocation
		perDay[a.Date] += a.Allocation
	}
	overloaded := 0
	for _, load := range perDay {
		if load > 1.0+loadEpsilon {
			overloaded++
		}
	}
	absences := 0
	for _, ab := range s.plan.Absences() {
		if ab.EmployeeID == emp.ID && ab.Date >= startKey && ab.Date <= endKey {
			absences++
		}
	}

	utilization := 0.0
	if capacity > 0 {
		utilization = math.Round(planned / capacity * 100)
	}
	return models.EmployeeUtilization{
		EmployeeID:         emp.ID,
		Name:               emp.Name,
		Capacity:           capacity,
		PlannedDays:        round1(planned),
		FreeDays:           round1(capacity - planned),
		AbsenceDays:        absences,
		OverloadedDayCount: overloaded,
		UtilizationPercent: utilization,
	}
}

// loadEpsilon guards the overload comparison against float accumulation
// noise (0.6+0.6 must overload, 0.5+0.5 must not).
const loadEpsilon = 1e-9

func absentDays(absences []models.Absence, employeeID string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, ab := range absences {
		if ab.EmployeeID == employeeID {
			out[ab.Date] = struct{}{}
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
