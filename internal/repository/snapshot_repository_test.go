package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/planforge/resplan-api/internal/models"
)

func newSnapshotRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func samplePlanState() models.PlanState {
	return models.PlanState{
		Employees: []models.Employee{{ID: "emp-1", Name: "Ada", Location: "DE", Availability: 100}},
		Projects:  []models.Project{{ID: "proj-1", Name: "Atlas", Budget: "100k"}},
		Holidays:  []models.PublicHoliday{{Date: "2025-10-03", Name: "Unity Day", Location: "DE"}},
		Versions: []models.PlanVersion{{
			ID:          "ver-0",
			Name:        "Initial Plan",
			CreatedAt:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Assignments: []models.Assignment{{ID: "a-1", EmployeeID: "emp-1", ProjectID: "proj-1", Date: "2025-07-07", Allocation: 1}},
		}},
		ActiveVersionID: "ver-0",
		Revision:        3,
	}
}

func TestSnapshotRepositorySave(t *testing.T) {
	db, mock, cleanup := newSnapshotRepoMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plan_snapshots (id, revision, payload, created_at) VALUES ($1, $2, $3, $4)")).
		WithArgs(sqlmock.AnyArg(), int64(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Save(context.Background(), samplePlanState()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryLoadRoundTrip(t *testing.T) {
	db, mock, cleanup := newSnapshotRepoMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	state := samplePlanState()
	payload, err := json.Marshal(state)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "revision", "payload", "created_at"}).
		AddRow("snap-1", int64(3), payload, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, revision, payload, created_at FROM plan_snapshots ORDER BY created_at DESC LIMIT 1")).
		WillReturnRows(rows)

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, state, *loaded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryLoadEmpty(t *testing.T) {
	db, mock, cleanup := newSnapshotRepoMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, revision, payload, created_at FROM plan_snapshots")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "revision", "payload", "created_at"}))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, loaded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryList(t *testing.T) {
	db, mock, cleanup := newSnapshotRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	rows := sqlmock.NewRows([]string{"date", "name", "location"}).
		AddRow("2025-10-03", "Unity Day", "DE").
		AddRow("2025-12-25", "Christmas Day", "ALL")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT date, name, location FROM public_holidays ORDER BY date ASC, location ASC")).
		WillReturnRows(rows)

	holidays, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	require.Equal(t, models.HolidayAllLocations, holidays[1].Location)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryUpsertAndDelete(t *testing.T) {
	db, mock, cleanup := newSnapshotRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO public_holidays (date, name, location) VALUES ($1, $2, $3)")).
		WithArgs("2025-10-03", "Unity Day", "DE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Upsert(context.Background(), models.PublicHoliday{Date: "2025-10-03", Name: "Unity Day", Location: "DE"}))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM public_holidays WHERE date = $1 AND location = $2")).
		WithArgs("2025-10-03", "DE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "2025-10-03", "DE"))
	require.NoError(t, mock.ExpectationsWereMet())
}
