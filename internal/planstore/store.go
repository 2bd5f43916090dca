package planstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

// Store holds the complete plan state: the catalog (employees, projects,
// holidays) and the append-only version history. The newest version is the
// working copy; it is the only version mutations may target. All access goes
// through a single RWMutex, and every read hands out copies so callers never
// share backing arrays with the store.
type Store struct {
	mu     sync.RWMutex
	state  models.PlanState
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a Store from an initial state. When the state carries no
// versions an empty working copy is created so mutations have a target.
func New(state models.PlanState, opts ...Option) *Store {
	s := &Store{
		state:  cloneState(state),
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.state.Versions) == 0 {
		s.state.Versions = []models.PlanVersion{{
			ID:        s.newID(),
			Name:      "Initial Plan",
			CreatedAt: s.now().UTC(),
		}}
	}
	if s.state.ActiveVersionID == "" {
		s.state.ActiveVersionID = s.state.Versions[len(s.state.Versions)-1].ID
	}
	return s
}

// Snapshot returns a deep copy of the full plan state.
func (s *Store) Snapshot() models.PlanState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state)
}

// Restore replaces the full plan state, e.g. after loading a persisted
// snapshot.
func (s *Store) Restore(state models.PlanState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(state)
	if len(s.state.Versions) == 0 {
		s.state.Versions = []models.PlanVersion{{
			ID:        s.newID(),
			Name:      "Initial Plan",
			CreatedAt: s.now().UTC(),
		}}
		s.state.ActiveVersionID = s.state.Versions[0].ID
	}
	s.logger.Info("plan state restored",
		zap.Int("versions", len(s.state.Versions)),
		zap.Uint64("revision", s.state.Revision))
}

// Revision returns the current mutation counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Revision
}

// Employees returns a copy of the roster.
func (s *Store) Employees() []models.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEmployees(s.state.Employees)
}

// Employee looks up one roster member.
func (s *Store) Employee(id string) (models.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.state.Employees {
		if e.ID == id {
			return cloneEmployee(e), true
		}
	}
	return models.Employee{}, false
}

// Projects returns a copy of the project catalog.
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProjects(s.state.Projects)
}

// Project looks up one catalog project.
func (s *Store) Project(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.state.Projects {
		if p.ID == id {
			return cloneProject(p), true
		}
	}
	return models.Project{}, false
}

// Holidays returns a copy of the public holiday table.
func (s *Store) Holidays() []models.PublicHoliday {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PublicHoliday(nil), s.state.Holidays...)
}

// workingVersion returns the mutable working copy. Callers hold s.mu.
func (s *Store) workingVersion() *models.PlanVersion {
	return &s.state.Versions[len(s.state.Versions)-1]
}

// requireWorking rejects mutations while a historical version is the active
// view. Callers hold s.mu.
func (s *Store) requireWorking() error {
	if s.state.ActiveVersionID != s.workingVersion().ID {
		return appErrors.ErrReadOnlyVersion
	}
	return nil
}

// bump advances the revision counter after a successful mutation. Callers
// hold s.mu.
func (s *Store) bump() {
	s.state.Revision++
}
