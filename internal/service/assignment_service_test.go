package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/planstore"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type cacheRepoStub struct {
	entries  map[string][]byte
	patterns []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{entries: map[string][]byte{}}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	if _, ok := c.entries[key]; !ok {
		return appErrors.ErrCacheMiss
	}
	return nil
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.entries[key] = nil
	return nil
}

func (c *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.patterns = append(c.patterns, pattern)
	return nil
}

func newAssignmentServiceForTest(t *testing.T) (*AssignmentService, *planstore.Store, *cacheRepoStub) {
	t.Helper()
	plan := newSeededPlan(t)
	repo := newCacheRepoStub()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	return NewAssignmentService(plan, nil, cache, nil, nil), plan, repo
}

func TestAssignmentServiceAdd(t *testing.T) {
	svc, plan, cacheRepo := newAssignmentServiceForTest(t)

	a, err := svc.Add(context.Background(), AddAssignmentRequest{
		EmployeeID: "emp-1",
		ProjectID:  "proj-1",
		Date:       "2025-07-07",
		Allocation: 0.5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	require.Len(t, plan.Assignments(), 1)
	require.Contains(t, cacheRepo.patterns, "plan:*")
}

func TestAssignmentServiceAddValidation(t *testing.T) {
	svc, _, _ := newAssignmentServiceForTest(t)

	cases := []AddAssignmentRequest{
		{EmployeeID: "", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 0.5},
		{EmployeeID: "emp-1", ProjectID: "proj-1", Date: "07.07.2025", Allocation: 0.5},
		{EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 1.5},
		{EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 0},
	}
	for _, req := range cases {
		_, err := svc.Add(context.Background(), req)
		require.Error(t, err)
	}
}

func TestAssignmentServiceAddDuplicateDay(t *testing.T) {
	svc, _, _ := newAssignmentServiceForTest(t)

	req := AddAssignmentRequest{EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 0.5}
	_, err := svc.Add(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateAssignment.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceRemoveIdempotent(t *testing.T) {
	svc, plan, _ := newAssignmentServiceForTest(t)

	a, err := svc.Add(context.Background(), AddAssignmentRequest{
		EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), a.ID))
	require.Empty(t, plan.Assignments())
	require.NoError(t, svc.Remove(context.Background(), a.ID))
}

func TestAssignmentServiceMove(t *testing.T) {
	svc, plan, _ := newAssignmentServiceForTest(t)

	a, err := svc.Add(context.Background(), AddAssignmentRequest{
		EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 0.8,
	})
	require.NoError(t, err)

	moved, err := svc.Move(context.Background(), a.ID, MoveAssignmentRequest{EmployeeID: "emp-2", Date: "2025-07-09"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, moved.ID)
	assert.Equal(t, "emp-2", moved.EmployeeID)
	assert.Equal(t, 0.8, moved.Allocation)
	require.Len(t, plan.Assignments(), 1)
}

func TestAssignmentServiceReplaceDay(t *testing.T) {
	svc, plan, _ := newAssignmentServiceForTest(t)

	_, err := svc.Add(context.Background(), AddAssignmentRequest{
		EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 1,
	})
	require.NoError(t, err)

	inserted, err := svc.ReplaceDay(context.Background(), ReplaceDayRequest{
		EmployeeID: "emp-1",
		Date:       "2025-07-07",
		Entries: []models.AssignmentDraft{
			{ProjectID: "proj-2", Allocation: 0.5},
		},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	require.Len(t, plan.Assignments(), 1)
	assert.Equal(t, "proj-2", plan.Assignments()[0].ProjectID)
}

func TestAssignmentServiceApplyPattern(t *testing.T) {
	svc, plan, _ := newAssignmentServiceForTest(t)

	// every Monday and Wednesday of July 2025
	inserted, err := svc.ApplyPattern(context.Background(), WeekdayPatternRequest{
		EmployeeID: "emp-1",
		AnchorDate: "2025-07-07",
		Weekdays:   []int{1, 3},
		Entries: []models.AssignmentDraft{
			{ProjectID: "proj-1", Allocation: 1},
		},
	})
	require.NoError(t, err)
	// July 2025 has four Mondays and five Wednesdays
	require.Len(t, inserted, 9)
	require.Len(t, plan.Assignments(), 9)
}

func TestAbsenceClearsBookedDay(t *testing.T) {
	svc, plan, _ := newAssignmentServiceForTest(t)

	_, err := svc.Add(context.Background(), AddAssignmentRequest{
		EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 1,
	})
	require.NoError(t, err)

	ab, err := svc.AddAbsence(context.Background(), AddAbsenceRequest{
		EmployeeID: "emp-1", Date: "2025-07-07", Type: "vacation", Approved: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AbsenceVacation, ab.Type)
	require.Empty(t, plan.Assignments())
	require.Len(t, plan.Absences(), 1)
}

func TestAddAssignmentOnAbsentDayRejected(t *testing.T) {
	svc, _, _ := newAssignmentServiceForTest(t)

	_, err := svc.AddAbsence(context.Background(), AddAbsenceRequest{
		EmployeeID: "emp-1", Date: "2025-07-07", Type: "sick",
	})
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), AddAssignmentRequest{
		EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 0.5,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAbsenceConflict.Code, appErrors.FromError(err).Code)
}

func TestAbsenceSpanSkipsWeekend(t *testing.T) {
	svc, plan, _ := newAssignmentServiceForTest(t)

	// Thursday start, three weekdays: Thu, Fri, Mon
	added, err := svc.AddAbsenceSpan(context.Background(), AbsenceSpanRequest{
		EmployeeID: "emp-1", StartDate: "2025-07-10", Days: 3, Type: "vacation",
	})
	require.NoError(t, err)
	require.Len(t, added, 3)
	assert.Equal(t, "2025-07-14", added[2].Date)
	require.Len(t, plan.Absences(), 3)
}

func TestRemoveAbsenceIdempotent(t *testing.T) {
	svc, plan, _ := newAssignmentServiceForTest(t)

	ab, err := svc.AddAbsence(context.Background(), AddAbsenceRequest{
		EmployeeID: "emp-1", Date: "2025-07-07", Type: "other",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAbsence(context.Background(), ab.ID))
	require.Empty(t, plan.Absences())
	require.NoError(t, svc.RemoveAbsence(context.Background(), ab.ID))
}
