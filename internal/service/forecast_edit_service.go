package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type forecastPlanEditor interface {
	AddOpportunity(quarterID string, list models.OpportunityList, entry models.ForecastEntry) (models.ForecastEntry, error)
	UpdateOpportunity(quarterID string, list models.OpportunityList, entryID string, name string, volume *float64) (models.ForecastEntry, error)
	RemoveOpportunity(quarterID string, list models.OpportunityList, entryID string) error
	PromoteOpportunity(quarterID string, from, to models.OpportunityList, entryID string) (models.ForecastEntry, error)
	UpdateRunningVolume(quarterID, entryID string, volume float64) (models.ForecastEntry, error)
}

// ForecastEditService fronts forecast mutations on the working copy.
type ForecastEditService struct {
	plan      forecastPlanEditor
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewForecastEditService constructs the service.
func NewForecastEditService(plan forecastPlanEditor, validate *validator.Validate, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ForecastEditService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastEditService{plan: plan, validator: validate, cache: cache, metrics: metrics, logger: logger}
}

// AddOpportunityRequest appends an opportunity to a quarter bucket.
type AddOpportunityRequest struct {
	List      models.OpportunityList `json:"list" validate:"required"`
	Name      string                 `json:"name" validate:"required"`
	ProjectID string                 `json:"project_id"`
	Volume    *float64               `json:"volume" validate:"omitempty,gt=0"`
}

// UpdateOpportunityRequest patches an opportunity's name or volume.
type UpdateOpportunityRequest struct {
	List   models.OpportunityList `json:"list" validate:"required"`
	Name   string                 `json:"name"`
	Volume *float64               `json:"volume" validate:"omitempty,gt=0"`
}

// PromoteOpportunityRequest moves an opportunity between buckets.
type PromoteOpportunityRequest struct {
	From models.OpportunityList `json:"from" validate:"required"`
	To   models.OpportunityList `json:"to" validate:"required"`
}

// RunningVolumeRequest overrides a running project's expected volume.
type RunningVolumeRequest struct {
	Volume float64 `json:"volume" validate:"gte=0"`
}

// AddOpportunity appends an entry to one of the quarter's buckets.
func (s *ForecastEditService) AddOpportunity(ctx context.Context, quarterID string, req AddOpportunityRequest) (*models.ForecastEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	entry, err := s.plan.AddOpportunity(quarterID, req.List, models.ForecastEntry{
		Name:      req.Name,
		ProjectID: req.ProjectID,
		Volume:    req.Volume,
	})
	if err != nil {
		return nil, err
	}
	s.afterEdit(ctx, "opportunity added", quarterID, entry.ID)
	return &entry, nil
}

// UpdateOpportunity patches an entry in place.
func (s *ForecastEditService) UpdateOpportunity(ctx context.Context, quarterID, entryID string, req UpdateOpportunityRequest) (*models.ForecastEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	entry, err := s.plan.UpdateOpportunity(quarterID, req.List, entryID, req.Name, req.Volume)
	if err != nil {
		return nil, err
	}
	s.afterEdit(ctx, "opportunity updated", quarterID, entryID)
	return &entry, nil
}

// RemoveOpportunity drops an entry; unknown ids succeed silently.
func (s *ForecastEditService) RemoveOpportunity(ctx context.Context, quarterID string, list models.OpportunityList, entryID string) error {
	if err := s.plan.RemoveOpportunity(quarterID, list, entryID); err != nil {
		return err
	}
	s.afterEdit(ctx, "opportunity removed", quarterID, entryID)
	return nil
}

// Promote moves an entry between the two opportunity buckets.
func (s *ForecastEditService) Promote(ctx context.Context, quarterID, entryID string, req PromoteOpportunityRequest) (*models.ForecastEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	entry, err := s.plan.PromoteOpportunity(quarterID, req.From, req.To, entryID)
	if err != nil {
		return nil, err
	}
	s.afterEdit(ctx, "opportunity promoted", quarterID, entryID)
	return &entry, nil
}

// SetRunningVolume overrides a confirmed project's expected quarter volume.
func (s *ForecastEditService) SetRunningVolume(ctx context.Context, quarterID, entryID string, req RunningVolumeRequest) (*models.ForecastEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	entry, err := s.plan.UpdateRunningVolume(quarterID, entryID, req.Volume)
	if err != nil {
		return nil, err
	}
	s.afterEdit(ctx, "running volume updated", quarterID, entryID)
	return &entry, nil
}

func (s *ForecastEditService) afterEdit(ctx context.Context, msg, quarterID, entryID string) {
	s.metrics.RecordPlanMutation()
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "plan:*"); err != nil {
			s.logger.Warn("plan cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info(msg, zap.String("quarter_id", quarterID), zap.String("entry_id", entryID))
}
