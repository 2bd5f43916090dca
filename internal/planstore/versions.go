package planstore

import (
	"strings"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

// Versions returns deep copies of the full version history, oldest first.
func (s *Store) Versions() []models.PlanVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PlanVersion, len(s.state.Versions))
	for i, v := range s.state.Versions {
		out[i] = cloneVersion(v)
	}
	return out
}

// Version returns a deep copy of one version.
func (s *Store) Version(id string) (models.PlanVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.state.Versions {
		if v.ID == id {
			return cloneVersion(v), nil
		}
	}
	return models.PlanVersion{}, appErrors.Clone(appErrors.ErrNotFound, "plan version not found")
}

// ActiveVersion returns a deep copy of the currently viewed version.
func (s *Store) ActiveVersion() models.PlanVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneVersion(*s.activeVersion())
}

// ActiveVersionID returns the id of the currently viewed version.
func (s *Store) ActiveVersionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveVersionID
}

// IsWorkingActive reports whether the active view is the mutable working
// copy.
func (s *Store) IsWorkingActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveVersionID == s.workingVersion().ID
}

// CreateVersion freezes the current working copy under the given name by
// appending a deep copy of it as the new working copy. The new version
// becomes the active view.
func (s *Store) CreateVersion(name, description string) (models.PlanVersion, error) {
	if strings.TrimSpace(name) == "" {
		return models.PlanVersion{}, appErrors.Clone(appErrors.ErrValidation, "version name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneVersion(*s.workingVersion())
	next.ID = s.newID()
	next.Name = name
	next.Description = description
	next.CreatedAt = s.now().UTC()

	s.state.Versions = append(s.state.Versions, next)
	s.state.ActiveVersionID = next.ID
	s.bump()
	s.logger.Info("plan version created",
		zap.String("version_id", next.ID),
		zap.String("name", name),
		zap.Int("versions", len(s.state.Versions)))
	return cloneVersion(next), nil
}

// SetActiveVersion switches the viewed version. Selecting a historical
// version puts the store into a read-only view until the working copy is
// selected again.
func (s *Store) SetActiveVersion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.state.Versions {
		if v.ID == id {
			s.state.ActiveVersionID = id
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "plan version not found")
}

// activeVersion resolves the viewed version, falling back to the working
// copy when the recorded id is stale. Callers hold s.mu.
func (s *Store) activeVersion() *models.PlanVersion {
	for i := range s.state.Versions {
		if s.state.Versions[i].ID == s.state.ActiveVersionID {
			return &s.state.Versions[i]
		}
	}
	return s.workingVersion()
}

// Assignments returns a copy of the active view's assignments.
func (s *Store) Assignments() []models.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Assignment(nil), s.activeVersion().Assignments...)
}

// Absences returns a copy of the active view's absences.
func (s *Store) Absences() []models.Absence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Absence(nil), s.activeVersion().Absences...)
}

// Quarters returns deep copies of the active view's quarter forecasts.
func (s *Store) Quarters() []models.QuarterData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneQuarters(s.activeVersion().Quarters)
}

// Quarter returns one quarter forecast from the active view.
func (s *Store) Quarter(id string) (models.QuarterData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.activeVersion().Quarters {
		if q.ID == id {
			return cloneQuarter(q), nil
		}
	}
	return models.QuarterData{}, appErrors.Clone(appErrors.ErrNotFound, "quarter not found")
}
