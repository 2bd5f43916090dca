package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/calendar"
	"github.com/planforge/resplan-api/pkg/config"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type analysisPlanReader interface {
	Employees() []models.Employee
	Projects() []models.Project
	Assignments() []models.Assignment
	Absences() []models.Absence
}

// AnalysisService sends a read-only plan snapshot to the configured
// analysis endpoint and relays the generated text. The planner never blocks
// on it; failures surface as typed errors to the caller only.
type AnalysisService struct {
	plan   analysisPlanReader
	client *http.Client
	cfg    config.AnalysisConfig
	logger *zap.Logger
}

// NewAnalysisService constructs the service.
func NewAnalysisService(plan analysisPlanReader, cfg config.AnalysisConfig, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		plan:   plan,
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger,
	}
}

// ChatMessage is one turn of an analysis conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks a free-form question about the plan.
type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	Month   string        `json:"month"`
	History []ChatMessage `json:"history"`
}

type planContext struct {
	Month       string              `json:"month,omitempty"`
	Employees   []models.Employee   `json:"employees"`
	Projects    []models.Project    `json:"projects"`
	Assignments []models.Assignment `json:"assignments"`
	Absences    []models.Absence    `json:"absences"`
}

type analysisRequest struct {
	Model   string        `json:"model,omitempty"`
	Prompt  string        `json:"prompt"`
	History []ChatMessage `json:"history,omitempty"`
	Plan    planContext   `json:"plan"`
}

type analysisResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// AnalyzeMonth asks the endpoint for a summary of one month's plan.
func (s *AnalysisService) AnalyzeMonth(ctx context.Context, month string) (string, error) {
	if _, err := calendar.ParseMonth(month); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	prompt := fmt.Sprintf("Summarise utilisation, overloads and absence hotspots for %s.", month)
	return s.call(ctx, prompt, nil, month)
}

// Chat relays a conversational question together with the plan snapshot.
func (s *AnalysisService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.Message == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "message is required")
	}
	return s.call(ctx, req.Message, req.History, req.Month)
}

func (s *AnalysisService) call(ctx context.Context, prompt string, history []ChatMessage, month string) (string, error) {
	if !s.cfg.Enabled || s.cfg.BaseURL == "" {
		return "", appErrors.Clone(appErrors.ErrPreconditionFailed, "plan analysis is disabled")
	}
	payload := analysisRequest{
		Model:   s.cfg.Model,
		Prompt:  prompt,
		History: history,
		Plan:    s.snapshot(month),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode analysis request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build analysis request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Warn("analysis request failed", zap.Error(err))
		return "", appErrors.Wrap(err, "ANALYSIS_UNAVAILABLE", http.StatusBadGateway, "analysis endpoint unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", appErrors.Wrap(err, "ANALYSIS_UNAVAILABLE", http.StatusBadGateway, "failed to read analysis response")
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("analysis endpoint returned error",
			zap.Int("status", resp.StatusCode))
		return "", appErrors.New("ANALYSIS_UNAVAILABLE", http.StatusBadGateway, fmt.Sprintf("analysis endpoint returned %d", resp.StatusCode))
	}
	var parsed analysisResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", appErrors.Wrap(err, "ANALYSIS_UNAVAILABLE", http.StatusBadGateway, "malformed analysis response")
	}
	if parsed.Error != "" {
		return "", appErrors.New("ANALYSIS_UNAVAILABLE", http.StatusBadGateway, parsed.Error)
	}
	return parsed.Text, nil
}

// snapshot trims the plan to the requested month when one is given.
func (s *AnalysisService) snapshot(month string) planContext {
	pc := planContext{
		Month:     month,
		Employees: s.plan.Employees(),
		Projects:  s.plan.Projects(),
	}
	assignments := s.plan.Assignments()
	absences := s.plan.Absences()
	if first, err := calendar.ParseMonth(month); err == nil {
		_, last := calendar.MonthBounds(first)
		startKey, endKey := calendar.FormatDay(first), calendar.FormatDay(last)
		for _, a := range assignments {
			if a.Date >= startKey && a.Date <= endKey {
				pc.Assignments = append(pc.Assignments, a)
			}
		}
		for _, ab := range absences {
			if ab.Date >= startKey && ab.Date <= endKey {
				pc.Absences = append(pc.Absences, ab)
			}
		}
		return pc
	}
	pc.Assignments = assignments
	pc.Absences = absences
	return pc
}
