package dto

import "github.com/planforge/resplan-api/internal/models"

// ReportRequest captures POST /reports/generate payload. Month is required
// for the utilization and month-plan reports and ignored otherwise.
type ReportRequest struct {
	Type   models.ReportType   `json:"type"`
	Month  string              `json:"month,omitempty"`
	Format models.ReportFormat `json:"format"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
