package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/planstore"
)

func newPlanServiceForTest(t *testing.T) (*PlanService, *cacheRepoStub, *planstore.Store) {
	t.Helper()
	plan := newSeededPlan(t)
	repo := newCacheRepoStub()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := NewPlanService(plan, cache, nil, time.Minute)
	return svc, repo, plan
}

func TestPlanBoardRejectsBadMonth(t *testing.T) {
	svc, _, _ := newPlanServiceForTest(t)

	_, _, err := svc.Board(context.Background(), "07-2025")
	require.Error(t, err)
}

func TestPlanBoardShape(t *testing.T) {
	svc, _, plan := newPlanServiceForTest(t)
	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-07", 0.5)
	require.NoError(t, err)
	_, err = plan.AddAbsence("emp-2", "2025-07-08", models.AbsenceVacation, true)
	require.NoError(t, err)

	board, cached, err := svc.Board(context.Background(), "2025-07")
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, "2025-07", board.Month)
	assert.Equal(t, "ver-0", board.VersionID)
	assert.False(t, board.ReadOnly)
	require.Len(t, board.Days, 31)
	assert.Equal(t, "2025-07-01", board.Days[0].Date)
	require.Len(t, board.Rows, 2)

	// rows sorted by name: Ada before Grace
	assert.Equal(t, "emp-1", board.Rows[0].EmployeeID)
	cell := board.Rows[0].Cells[6] // 2025-07-07
	require.Len(t, cell.Assignments, 1)
	assert.Equal(t, "Atlas", cell.Assignments[0].ProjectName)
	assert.Equal(t, 0.5, cell.Load)

	absent := board.Rows[1].Cells[7] // 2025-07-08
	require.NotNil(t, absent.Absence)
}

func TestPlanBoardMarksWeekendsAndHolidays(t *testing.T) {
	svc, _, _ := newPlanServiceForTest(t)

	board, _, err := svc.Board(context.Background(), "2025-10")
	require.NoError(t, err)

	// 2025-10-04 is a Saturday
	assert.True(t, board.Days[3].Weekend)
	// 2025-10-03 is a DE holiday; both seeded employees sit in DE
	assert.True(t, board.Rows[0].Cells[2].Holiday)
}

func TestPlanBoardCacheRoundTrip(t *testing.T) {
	svc, repo, _ := newPlanServiceForTest(t)

	_, cached, err := svc.Board(context.Background(), "2025-07")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotEmpty(t, repo.entries)

	_, cached, err = svc.Board(context.Background(), "2025-07")
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestPlanBoardCacheKeyTracksRevision(t *testing.T) {
	svc, _, plan := newPlanServiceForTest(t)

	first, _, err := svc.Board(context.Background(), "2025-07")
	require.NoError(t, err)
	assert.Empty(t, first.Rows[0].Cells[6].Assignments)

	_, err = plan.AddAssignment("emp-1", "proj-1", "2025-07-07", 0.5)
	require.NoError(t, err)

	second, cached, err := svc.Board(context.Background(), "2025-07")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, second.Rows[0].Cells[6].Assignments, 1)
}
