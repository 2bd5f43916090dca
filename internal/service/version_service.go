package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type versionStore interface {
	Versions() []models.PlanVersion
	Version(id string) (models.PlanVersion, error)
	ActiveVersionID() string
	IsWorkingActive() bool
	CreateVersion(name, description string) (models.PlanVersion, error)
	SetActiveVersion(id string) error
	Snapshot() models.PlanState
	Restore(state models.PlanState)
}

type snapshotRepository interface {
	Save(ctx context.Context, state models.PlanState) error
	Load(ctx context.Context) (*models.PlanState, error)
}

// VersionService manages the plan version lifecycle and state persistence.
type VersionService struct {
	store     versionStore
	snapshots snapshotRepository
	validator *validator.Validate
	cache     *CacheService
	logger    *zap.Logger
}

// NewVersionService constructs the service. The snapshot repository may be
// nil when persistence is disabled.
func NewVersionService(store versionStore, snapshots snapshotRepository, validate *validator.Validate, cache *CacheService, logger *zap.Logger) *VersionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VersionService{store: store, snapshots: snapshots, validator: validate, cache: cache, logger: logger}
}

// CreateVersionRequest names a new frozen snapshot of the working copy.
type CreateVersionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// VersionSummary is the list view of a version.
type VersionSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"created_at"`
	AssignmentCount int    `json:"assignment_count"`
	AbsenceCount    int    `json:"absence_count"`
	Active          bool   `json:"active"`
	Working         bool   `json:"working"`
}

// List returns summaries of every version, oldest first.
func (s *VersionService) List() []VersionSummary {
	versions := s.store.Versions()
	activeID := s.store.ActiveVersionID()
	out := make([]VersionSummary, 0, len(versions))
	for i, v := range versions {
		out = append(out, VersionSummary{
			ID:              v.ID,
			Name:            v.Name,
			Description:     v.Description,
			CreatedAt:       v.CreatedAt.Format(time.RFC3339),
			AssignmentCount: len(v.Assignments),
			AbsenceCount:    len(v.Absences),
			Active:          v.ID == activeID,
			Working:         i == len(versions)-1,
		})
	}
	return out
}

// Get returns one full version.
func (s *VersionService) Get(id string) (*models.PlanVersion, error) {
	v, err := s.store.Version(id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create freezes the working copy under a new name and makes the new copy
// the active view.
func (s *VersionService) Create(ctx context.Context, req CreateVersionRequest) (*models.PlanVersion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	v, err := s.store.CreateVersion(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("version created", zap.String("version_id", v.ID), zap.String("name", v.Name))
	return &v, nil
}

// Activate switches the viewed version. Historical versions become a
// read-only view.
func (s *VersionService) Activate(ctx context.Context, id string) error {
	if err := s.store.SetActiveVersion(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("active version switched",
		zap.String("version_id", id),
		zap.Bool("read_only", !s.store.IsWorkingActive()))
	return nil
}

// SaveSnapshot persists the full plan state.
func (s *VersionService) SaveSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "snapshot persistence is disabled")
	}
	state := s.store.Snapshot()
	if err := s.snapshots.Save(ctx, state); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist plan state")
	}
	s.logger.Info("plan snapshot saved",
		zap.Int("versions", len(state.Versions)),
		zap.Uint64("revision", state.Revision))
	return nil
}

// LoadSnapshot restores the most recent persisted plan state, replacing the
// in-memory plan.
func (s *VersionService) LoadSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "snapshot persistence is disabled")
	}
	state, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if state == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "no plan snapshot available")
	}
	s.store.Restore(*state)
	s.invalidate(ctx)
	return nil
}

func (s *VersionService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "plan:*"); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.Error(err))
	}
}
