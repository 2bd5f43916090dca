package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/planstore"
)

func newStatsServiceForTest(t *testing.T) (*StatsService, *planstore.Store) {
	t.Helper()
	plan := newSeededPlan(t)
	capacity := NewCapacityService(plan, nil)
	return NewStatsService(plan, capacity, nil, nil, StatsServiceConfig{TopProjectsLimit: 3}), plan
}

func TestMonthStatsRejectsBadMonth(t *testing.T) {
	svc, _ := newStatsServiceForTest(t)
	_, _, err := svc.MonthStats(context.Background(), "July 2025")
	require.Error(t, err)
}

func TestMonthStatsAggregates(t *testing.T) {
	svc, plan := newStatsServiceForTest(t)

	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-07", 1)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-1", "proj-2", "2025-07-08", 0.5)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-2", "proj-1", "2025-07-08", 0.5)
	require.NoError(t, err)

	stats, cached, err := svc.MonthStats(context.Background(), "2025-07")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2.0, stats.TotalPlanned)
	assert.Equal(t, 0, stats.OverloadedDayCount)
	require.Len(t, stats.TopProjects, 2)
	assert.Equal(t, "Atlas", stats.TopProjects[0].Name)
	assert.Equal(t, 1.5, stats.TopProjects[0].Days)
}

func TestMonthStatsCountsOverloadedDays(t *testing.T) {
	svc, plan := newStatsServiceForTest(t)

	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-09", 0.6)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-1", "proj-2", "2025-07-09", 0.6)
	require.NoError(t, err)

	stats, _, err := svc.MonthStats(context.Background(), "2025-07")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OverloadedDayCount)
}

func TestDailyLoadSumsAllocations(t *testing.T) {
	svc, plan := newStatsServiceForTest(t)

	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-07", 0.5)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-1", "proj-2", "2025-07-07", 0.25)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, svc.DailyLoad("emp-1", "2025-07-07"), 1e-9)
	assert.Zero(t, svc.DailyLoad("emp-1", "2025-07-08"))
}

func TestConflictsOverloadWithSingleCriticalBooking(t *testing.T) {
	svc, plan := newStatsServiceForTest(t)

	// one critical booking alone never makes the collision critical
	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-10", 0.7)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-1", "proj-2", "2025-07-10", 0.7)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-2", "proj-1", "2025-07-10", 1)
	require.NoError(t, err)

	conflicts, err := svc.Conflicts("2025-07")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "emp-1", conflicts[0].EmployeeID)
	assert.Equal(t, "2025-07-10", conflicts[0].Date)
	assert.Equal(t, 1.4, conflicts[0].Load)
	assert.False(t, conflicts[0].Critical)
}

func TestConflictsTwoCriticalBookingsWithoutOverload(t *testing.T) {
	state := models.PlanState{
		Employees: []models.Employee{{ID: "emp-1", Name: "Ada", Location: "DE", Availability: 100}},
		Projects: []models.Project{
			{ID: "proj-1", Name: "Atlas", Critical: true},
			{ID: "proj-2", Name: "Borealis", Critical: true},
		},
	}
	plan := planstore.New(state)
	svc := NewStatsService(plan, NewCapacityService(plan, nil), nil, nil, StatsServiceConfig{})

	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-10", 0.5)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-1", "proj-2", "2025-07-10", 0.5)
	require.NoError(t, err)

	conflicts, err := svc.Conflicts("2025-07")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 1.0, conflicts[0].Load)
	assert.True(t, conflicts[0].Critical)
}

func TestTopProjectTiesKeepCatalogOrder(t *testing.T) {
	state := models.PlanState{
		Employees: []models.Employee{{ID: "emp-1", Name: "Ada", Location: "DE", Availability: 100}},
		Projects: []models.Project{
			{ID: "proj-z", Name: "Zephyr"},
			{ID: "proj-a", Name: "Aurora"},
		},
	}
	plan := planstore.New(state)
	svc := NewStatsService(plan, NewCapacityService(plan, nil), nil, nil, StatsServiceConfig{})

	_, err := plan.AddAssignment("emp-1", "proj-z", "2025-07-07", 0.5)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-1", "proj-a", "2025-07-08", 0.5)
	require.NoError(t, err)

	stats, _, err := svc.MonthStats(context.Background(), "2025-07")
	require.NoError(t, err)
	require.Len(t, stats.TopProjects, 2)
	assert.Equal(t, "Zephyr", stats.TopProjects[0].Name)
	assert.Equal(t, "Aurora", stats.TopProjects[1].Name)
}

func TestEmployeeMonthStats(t *testing.T) {
	svc, plan := newStatsServiceForTest(t)

	_, err := plan.AddAssignment("emp-2", "proj-1", "2025-07-07", 1)
	require.NoError(t, err)

	rows, err := svc.EmployeeMonthStats("2025-07")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "emp-1", rows[0].EmployeeID)
	assert.Equal(t, 1.0, rows[1].PlannedDays)
}
