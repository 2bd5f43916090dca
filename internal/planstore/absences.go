package planstore

import (
	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/calendar"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

// AddAbsence blocks one day for an employee. Any assignments booked on that
// day are removed in the same step; a day is either planned or absent, never
// both. A second absence on the same day is rejected.
func (s *Store) AddAbsence(employeeID, date string, kind models.AbsenceType, approved bool) (models.Absence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return models.Absence{}, err
	}
	if err := s.validateAbsence(employeeID, date, kind); err != nil {
		return models.Absence{}, err
	}
	v := s.workingVersion()
	if hasAbsence(v.Absences, employeeID, date) {
		return models.Absence{}, appErrors.Clone(appErrors.ErrConflict, "absence already recorded for that day")
	}
	ab := s.insertAbsenceLocked(employeeID, date, kind, approved)
	s.bump()
	return ab, nil
}

// AddAbsenceSpan blocks a stretch of consecutive weekdays starting at
// startDate, rolling over weekends. Days already marked absent keep their
// existing record.
func (s *Store) AddAbsenceSpan(employeeID, startDate string, days int, kind models.AbsenceType) ([]models.Absence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "span must cover at least one day")
	}
	if err := s.validateAbsence(employeeID, startDate, kind); err != nil {
		return nil, err
	}
	start, _ := calendar.ParseDay(startDate)
	v := s.workingVersion()
	var added []models.Absence
	for _, day := range calendar.WeekdaySpan(start, days) {
		key := calendar.FormatDay(day)
		if hasAbsence(v.Absences, employeeID, key) {
			continue
		}
		added = append(added, s.insertAbsenceLocked(employeeID, key, kind, false))
	}
	if len(added) > 0 {
		s.bump()
	}
	return added, nil
}

// RemoveAbsence deletes an absence record. Unknown ids are a no-op.
func (s *Store) RemoveAbsence(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return err
	}
	v := s.workingVersion()
	for i, ab := range v.Absences {
		if ab.ID == id {
			v.Absences = append(v.Absences[:i], v.Absences[i+1:]...)
			s.bump()
			return nil
		}
	}
	return nil
}

// insertAbsenceLocked clears the day's assignments and records the absence.
// Callers hold s.mu and have validated input.
func (s *Store) insertAbsenceLocked(employeeID, date string, kind models.AbsenceType, approved bool) models.Absence {
	v := s.workingVersion()
	kept := v.Assignments[:0]
	for _, a := range v.Assignments {
		if a.EmployeeID != employeeID || a.Date != date {
			kept = append(kept, a)
		}
	}
	v.Assignments = kept
	ab := models.Absence{
		ID:         s.newID(),
		EmployeeID: employeeID,
		Date:       date,
		Type:       kind,
		Approved:   approved,
	}
	v.Absences = append(v.Absences, ab)
	return ab
}

func (s *Store) validateAbsence(employeeID, date string, kind models.AbsenceType) error {
	if _, ok := s.findEmployee(employeeID); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	if _, err := calendar.ParseDay(date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}
	if !kind.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown absence type")
	}
	return nil
}
