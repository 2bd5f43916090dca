package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/planstore"
	"github.com/planforge/resplan-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage, *planstore.Store) {
	t.Helper()
	plan := newSeededPlan(t)
	capacity := NewCapacityService(plan, nil)
	stats := NewStatsService(plan, capacity, nil, nil, StatsServiceConfig{})
	forecast := NewForecastService(plan, capacity, nil, nil, ForecastServiceConfig{})

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := NewExportService(ExportServiceParams{
		Plan:     plan,
		Stats:    stats,
		Capacity: capacity,
		Forecast: forecast,
		Storage:  store,
		Signer:   storage.NewSignedURLSigner("secret", time.Hour),
		Config:   ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour},
	})
	return svc, store, plan
}

func TestExportServiceUtilizationCSV(t *testing.T) {
	svc, store, plan := newExportServiceForTest(t)
	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-07", 1)
	require.NoError(t, err)

	job := &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeUtilization,
		Params:    models.ReportJobParams{Month: "2025-07", Format: models.ReportFormatCSV},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	assert.Contains(t, result.URL, "/export/")
	assert.True(t, strings.HasPrefix(result.RelativePath, "utilization_2025-07"))

	payload, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Ada")
	assert.Contains(t, string(payload), "Utilization (%)")
}

func TestExportServiceMonthPlanCSV(t *testing.T) {
	svc, store, plan := newExportServiceForTest(t)
	_, err := plan.AddAssignment("emp-1", "proj-1", "2025-07-07", 0.5)
	require.NoError(t, err)
	_, err = plan.AddAssignment("emp-2", "proj-2", "2025-08-04", 1)
	require.NoError(t, err)

	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeMonthPlan,
		Params: models.ReportJobParams{Month: "2025-07", Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	payload, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	// the August booking stays out of the July export
	assert.Contains(t, string(payload), "2025-07-07")
	assert.Contains(t, string(payload), "Atlas")
	assert.NotContains(t, string(payload), "2025-08-04")
}

func TestExportServiceFinancialsPDF(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t)

	job := &models.ReportJob{
		ID:     "job-3",
		Type:   models.ReportTypeFinancials,
		Params: models.ReportJobParams{Format: models.ReportFormatPDF},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	info, err := os.Stat(store.Path(result.RelativePath))
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceForecastCSV(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t)

	job := &models.ReportJob{
		ID:     "job-4",
		Type:   models.ReportTypeForecast,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	payload, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Q3 2025")
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	job := &models.ReportJob{
		ID:     "job-5",
		Type:   models.ReportTypeForecast,
		Params: models.ReportJobParams{Format: models.ReportFormat("xlsx")},
	}
	_, err := svc.Generate(context.Background(), job)
	require.Error(t, err)
}

func TestExportServiceTokenRoundTrip(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	job := &models.ReportJob{
		ID:     "job-6",
		Type:   models.ReportTypeFinancials,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-6", jobID)
	assert.Equal(t, result.RelativePath, relPath)

	file, err := svc.Open(relPath)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	require.NoError(t, svc.Delete(relPath))
}
