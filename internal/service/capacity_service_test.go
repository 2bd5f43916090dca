package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/planstore"
)

func volumePtr(v float64) *float64 { return &v }

// newSeededPlan builds a store with two employees, two projects and one
// stored quarter. 2025-07-07 is a Monday; the seeded week 07-07..07-11 has no
// holidays.
func newSeededPlan(t *testing.T) *planstore.Store {
	t.Helper()
	hourly := 120.0
	startDate := "2025-07-01"
	endDate := "2025-09-30"
	state := models.PlanState{
		Employees: []models.Employee{
			{ID: "emp-1", Name: "Ada", Role: "Engineer", Location: "DE", Availability: 100},
			{ID: "emp-2", Name: "Grace", Role: "Consultant", Location: "DE", Availability: 80},
		},
		Projects: []models.Project{
			{ID: "proj-1", Name: "Atlas", Client: "Acme", Budget: "100k", StartDate: &startDate, EndDate: &endDate, HourlyRate: &hourly},
			{ID: "proj-2", Name: "Borealis", Client: "Globex", Budget: "1.2m", Critical: true},
		},
		Holidays: []models.PublicHoliday{
			{Date: "2025-10-03", Name: "Unity Day", Location: "DE"},
			{Date: "2025-12-25", Name: "Christmas Day", Location: models.HolidayAllLocations},
		},
		Versions: []models.PlanVersion{{
			ID:        "ver-0",
			Name:      "Initial Plan",
			CreatedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Quarters: []models.QuarterData{{
				ID:   "q3-2025",
				Name: "Q3 2025",
				RunningProjects: []models.ForecastEntry{
					{ID: "run-1", ProjectID: "proj-1", Name: "Atlas", Volume: volumePtr(40)},
				},
				MustWin: []models.ForecastEntry{
					{ID: "opp-1", Name: "Churn Shield", Volume: volumePtr(15)},
				},
			}},
		}},
		ActiveVersionID: "ver-0",
	}
	return planstore.New(state)
}

func TestCapacityFullWeek(t *testing.T) {
	plan := newSeededPlan(t)
	svc := NewCapacityService(plan, nil)

	emp, ok := plan.Employee("emp-1")
	require.True(t, ok)

	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 5.0, svc.EmployeeCapacity(emp, start, end))
}

func TestCapacityScalesWithAvailability(t *testing.T) {
	plan := newSeededPlan(t)
	svc := NewCapacityService(plan, nil)

	emp, ok := plan.Employee("emp-2")
	require.True(t, ok)

	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 4.0, svc.EmployeeCapacity(emp, start, end))
	assert.Equal(t, 9.0, svc.TotalCapacity(start, end))
}

func TestCapacityExcludesHolidayAndAbsence(t *testing.T) {
	plan := newSeededPlan(t)
	svc := NewCapacityService(plan, nil)

	emp, ok := plan.Employee("emp-1")
	require.True(t, ok)

	// 2025-10-03 is a Friday holiday in DE
	start := time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 4.0, svc.EmployeeCapacity(emp, start, end))

	_, err := plan.AddAbsence("emp-1", "2025-09-30", models.AbsenceVacation, true)
	require.NoError(t, err)
	assert.Equal(t, 3.0, svc.EmployeeCapacity(emp, start, end))
}

func TestUtilizationAllocationWeighted(t *testing.T) {
	plan := newSeededPlan(t)
	svc := NewCapacityService(plan, nil)

	// two half-day bookings on the same day count as one planned day
	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-07", 0.5)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-1", "proj-2", "2025-07-07", 0.5)
	require.NoError(t, err)

	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	util, err := svc.EmployeeUtilization("emp-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, 1.0, util.PlannedDays)
	assert.Equal(t, 0, util.OverloadedDayCount)
	assert.Equal(t, float64(20), util.UtilizationPercent)
}

func TestUtilizationFlagsOverloadedDay(t *testing.T) {
	plan := newSeededPlan(t)
	svc := NewCapacityService(plan, nil)

	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-08", 0.6)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-1", "proj-2", "2025-07-08", 0.6)
	require.NoError(t, err)

	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	util, err := svc.EmployeeUtilization("emp-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, 1.2, util.PlannedDays)
	assert.Equal(t, 1, util.OverloadedDayCount)
}

func TestUtilizationUnknownEmployee(t *testing.T) {
	plan := newSeededPlan(t)
	svc := NewCapacityService(plan, nil)

	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	_, err := svc.EmployeeUtilization("ghost", start, start)
	require.Error(t, err)
}

func TestHolidaysForLocation(t *testing.T) {
	plan := newSeededPlan(t)
	svc := NewCapacityService(plan, nil)

	de := svc.HolidaysFor("DE")
	assert.True(t, de.ContainsKey("2025-10-03"))
	assert.True(t, de.ContainsKey("2025-12-25"))

	us := svc.HolidaysFor("US")
	assert.False(t, us.ContainsKey("2025-10-03"))
	assert.True(t, us.ContainsKey("2025-12-25"))
}

func TestTotalCapacityMonotonic(t *testing.T) {
	small := models.PlanState{
		Employees: []models.Employee{
			{ID: "emp-1", Name: "Ada", Location: "DE", Availability: 100},
		},
	}
	large := models.PlanState{
		Employees: append([]models.Employee{
			{ID: "emp-2", Name: "Grace", Location: "DE", Availability: 80},
		}, small.Employees...),
	}
	smallSvc := NewCapacityService(planstore.New(small), nil)
	largeSvc := NewCapacityService(planstore.New(large), nil)

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	// a bigger roster never has less capacity
	assert.GreaterOrEqual(t, largeSvc.TotalCapacity(start, end), smallSvc.TotalCapacity(start, end))

	// a longer range never has less capacity
	assert.GreaterOrEqual(t, smallSvc.TotalCapacity(start, end), smallSvc.TotalCapacity(start, mid))
}
