package planstore

import (
	"strings"

	"github.com/planforge/resplan-api/internal/models"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

// AddOpportunity appends an entry to one of a quarter's opportunity buckets.
func (s *Store) AddOpportunity(quarterID string, list models.OpportunityList, entry models.ForecastEntry) (models.ForecastEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return models.ForecastEntry{}, err
	}
	if !list.Valid() {
		return models.ForecastEntry{}, appErrors.Clone(appErrors.ErrValidation, "unknown opportunity list")
	}
	if strings.TrimSpace(entry.Name) == "" {
		return models.ForecastEntry{}, appErrors.Clone(appErrors.ErrValidation, "opportunity name is required")
	}
	q, err := s.findQuarter(quarterID)
	if err != nil {
		return models.ForecastEntry{}, err
	}
	entry.ID = s.newID()
	q.SetEntries(list, append(q.Entries(list), entry))
	s.bump()
	return entry, nil
}

// UpdateOpportunity patches an entry's name and volume inside a bucket.
func (s *Store) UpdateOpportunity(quarterID string, list models.OpportunityList, entryID string, name string, volume *float64) (models.ForecastEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return models.ForecastEntry{}, err
	}
	if !list.Valid() {
		return models.ForecastEntry{}, appErrors.Clone(appErrors.ErrValidation, "unknown opportunity list")
	}
	q, err := s.findQuarter(quarterID)
	if err != nil {
		return models.ForecastEntry{}, err
	}
	entries := q.Entries(list)
	for i := range entries {
		if entries[i].ID != entryID {
			continue
		}
		if name != "" {
			entries[i].Name = name
		}
		if volume != nil {
			v := *volume
			entries[i].Volume = &v
		}
		s.bump()
		return entries[i], nil
	}
	return models.ForecastEntry{}, appErrors.Clone(appErrors.ErrNotFound, "opportunity not found")
}

// RemoveOpportunity drops an entry from a bucket. Unknown ids are a no-op.
func (s *Store) RemoveOpportunity(quarterID string, list models.OpportunityList, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return err
	}
	if !list.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown opportunity list")
	}
	q, err := s.findQuarter(quarterID)
	if err != nil {
		return err
	}
	entries := q.Entries(list)
	for i, e := range entries {
		if e.ID == entryID {
			q.SetEntries(list, append(entries[:i], entries[i+1:]...))
			s.bump()
			return nil
		}
	}
	return nil
}

// PromoteOpportunity moves an entry between the two buckets, keeping its id
// and volume.
func (s *Store) PromoteOpportunity(quarterID string, from, to models.OpportunityList, entryID string) (models.ForecastEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return models.ForecastEntry{}, err
	}
	if !from.Valid() || !to.Valid() || from == to {
		return models.ForecastEntry{}, appErrors.Clone(appErrors.ErrValidation, "invalid opportunity list pair")
	}
	q, err := s.findQuarter(quarterID)
	if err != nil {
		return models.ForecastEntry{}, err
	}
	src := q.Entries(from)
	for i, e := range src {
		if e.ID == entryID {
			q.SetEntries(from, append(src[:i], src[i+1:]...))
			q.SetEntries(to, append(q.Entries(to), e))
			s.bump()
			return e, nil
		}
	}
	return models.ForecastEntry{}, appErrors.Clone(appErrors.ErrNotFound, "opportunity not found")
}

// UpdateRunningVolume overrides the expected volume of a confirmed running
// project inside a quarter.
func (s *Store) UpdateRunningVolume(quarterID, entryID string, volume float64) (models.ForecastEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return models.ForecastEntry{}, err
	}
	if volume < 0 {
		return models.ForecastEntry{}, appErrors.Clone(appErrors.ErrValidation, "volume must not be negative")
	}
	q, err := s.findQuarter(quarterID)
	if err != nil {
		return models.ForecastEntry{}, err
	}
	for i := range q.RunningProjects {
		if q.RunningProjects[i].ID == entryID {
			q.RunningProjects[i].Volume = &volume
			s.bump()
			return q.RunningProjects[i], nil
		}
	}
	return models.ForecastEntry{}, appErrors.Clone(appErrors.ErrNotFound, "running project not found")
}

// findQuarter resolves a quarter on the working copy. Callers hold s.mu.
func (s *Store) findQuarter(id string) (*models.QuarterData, error) {
	v := s.workingVersion()
	for i := range v.Quarters {
		if v.Quarters[i].ID == id {
			return &v.Quarters[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "quarter not found")
}
