package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/export"
	"github.com/planforge/resplan-api/pkg/storage"
)

type exportPlanReader interface {
	Employee(id string) (models.Employee, bool)
	Project(id string) (models.Project, bool)
	Assignments() []models.Assignment
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets from the plan and persists rendered
// files.
type ExportService struct {
	plan     exportPlanReader
	stats    *StatsService
	capacity *CapacityService
	forecast *ForecastService
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Plan     exportPlanReader
	Stats    *StatsService
	Capacity *CapacityService
	Forecast *ForecastService
	Storage  fileStorage
	Signer   *storage.SignedURLSigner
	CSV      csvRenderer
	PDF      pdfRenderer
	Logger   *zap.Logger
	Config   ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		plan:     params.Plan,
		stats:    params.Stats,
		capacity: params.Capacity,
		forecast: params.Forecast,
		storage:  params.Storage,
		csv:      csv,
		pdf:      pdf,
		signer:   params.Signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Generate builds the dataset for the job type and stores the rendered
// export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	monthPart := sanitizeFilename(job.Params.Month)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), monthPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeUtilization:
		return s.buildUtilizationDataset(job.Params)
	case models.ReportTypeMonthPlan:
		return s.buildMonthPlanDataset(job.Params)
	case models.ReportTypeFinancials:
		return s.buildFinancialsDataset()
	case models.ReportTypeForecast:
		return s.buildForecastDataset(ctx)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildUtilizationDataset(params models.ReportJobParams) (export.Dataset, string, error) {
	rows, err := s.stats.EmployeeMonthStats(params.Month)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Employee":        row.Name,
			"Capacity":        fmt.Sprintf("%.1f", row.Capacity),
			"Planned":         fmt.Sprintf("%.1f", row.PlannedDays),
			"Free":            fmt.Sprintf("%.1f", row.FreeDays),
			"Absences":        fmt.Sprintf("%d", row.AbsenceDays),
			"Overloaded Days": fmt.Sprintf("%d", row.OverloadedDayCount),
			"Utilization (%)": fmt.Sprintf("%.0f", row.UtilizationPercent),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Employee", "Capacity", "Planned", "Free", "Absences", "Overloaded Days", "Utilization (%)"},
		Rows:    dataRows,
	}
	return dataset, fmt.Sprintf("Utilization %s", params.Month), nil
}

func (s *ExportService) buildMonthPlanDataset(params models.ReportJobParams) (export.Dataset, string, error) {
	startKey := params.Month + "-01"
	endKey := params.Month + "-31"
	assignments := s.plan.Assignments()
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].Date != assignments[j].Date {
			return assignments[i].Date < assignments[j].Date
		}
		return assignments[i].EmployeeID < assignments[j].EmployeeID
	})
	var dataRows []map[string]string
	for _, a := range assignments {
		if a.Date < startKey || a.Date > endKey {
			continue
		}
		employeeName := a.EmployeeID
		if emp, ok := s.plan.Employee(a.EmployeeID); ok {
			employeeName = emp.Name
		}
		projectName := a.ProjectID
		if p, ok := s.plan.Project(a.ProjectID); ok {
			projectName = p.Name
		}
		dataRows = append(dataRows, map[string]string{
			"Date":       a.Date,
			"Employee":   employeeName,
			"Project":    projectName,
			"Allocation": fmt.Sprintf("%.2f", a.Allocation),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Employee", "Project", "Allocation"},
		Rows:    dataRows,
	}
	return dataset, fmt.Sprintf("Plan %s", params.Month), nil
}

func (s *ExportService) buildFinancialsDataset() (export.Dataset, string, error) {
	rows := s.forecast.Financials()
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Project":      row.Name,
			"Client":       row.Client,
			"Budget":       fmt.Sprintf("%.0f", row.Budget),
			"Planned Days": fmt.Sprintf("%.1f", row.PlannedDays),
			"Planned Cost": fmt.Sprintf("%.0f", row.PlannedCost),
			"Margin":       fmt.Sprintf("%.0f", row.Margin),
			"Margin (%)":   fmt.Sprintf("%.1f", row.MarginPercent),
			"Band":         row.MarginBand,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Project", "Client", "Budget", "Planned Days", "Planned Cost", "Margin", "Margin (%)", "Band"},
		Rows:    dataRows,
	}
	return dataset, "Project Financials", nil
}

func (s *ExportService) buildForecastDataset(ctx context.Context) (export.Dataset, string, error) {
	projections, _, err := s.forecast.Projections(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(projections))
	for _, p := range projections {
		dataRows = append(dataRows, map[string]string{
			"Quarter":       p.Quarter.Name,
			"Capacity":      fmt.Sprintf("%.1f", p.TotalCapacityDays),
			"Running":       fmt.Sprintf("%.1f", p.RunningDays),
			"Must-Win":      fmt.Sprintf("%.1f", p.MustWinDays),
			"Alternative":   fmt.Sprintf("%.1f", p.AlternativeDays),
			"Available":     fmt.Sprintf("%.1f", p.AvailableDays),
			"Net Available": fmt.Sprintf("%.1f", p.NetAvailableDays),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Quarter", "Capacity", "Running", "Must-Win", "Alternative", "Available", "Net Available"},
		Rows:    dataRows,
	}
	return dataset, "Quarter Forecast", nil
}
