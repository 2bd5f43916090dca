package planstore

import (
	"time"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/calendar"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

// AddAssignment books an allocation for an employee on a day. The booking is
// rejected when the employee is absent that day or already carries the same
// project on it.
func (s *Store) AddAssignment(employeeID, projectID, date string, allocation float64) (models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return models.Assignment{}, err
	}
	if err := s.validateBooking(employeeID, projectID, date, allocation); err != nil {
		return models.Assignment{}, err
	}
	v := s.workingVersion()
	if hasAbsence(v.Absences, employeeID, date) {
		return models.Assignment{}, appErrors.ErrAbsenceConflict
	}
	if hasAssignment(v.Assignments, employeeID, projectID, date, "") {
		return models.Assignment{}, appErrors.ErrDuplicateAssignment
	}
	a := models.Assignment{
		ID:         s.newID(),
		EmployeeID: employeeID,
		ProjectID:  projectID,
		Date:       date,
		Allocation: allocation,
	}
	v.Assignments = append(v.Assignments, a)
	s.bump()
	return a, nil
}

// RemoveAssignment deletes a booking. Removing an unknown id is a no-op.
func (s *Store) RemoveAssignment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return err
	}
	v := s.workingVersion()
	for i, a := range v.Assignments {
		if a.ID == id {
			v.Assignments = append(v.Assignments[:i], v.Assignments[i+1:]...)
			s.bump()
			return nil
		}
	}
	return nil
}

// MoveAssignment shifts an existing booking to another employee and/or day,
// keeping its id and allocation. The destination is validated like a fresh
// booking; on conflict nothing changes.
func (s *Store) MoveAssignment(id, newEmployeeID, newDate string) (models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return models.Assignment{}, err
	}
	v := s.workingVersion()
	idx := -1
	for i, a := range v.Assignments {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Assignment{}, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	if _, ok := s.findEmployee(newEmployeeID); !ok {
		return models.Assignment{}, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	if _, err := calendar.ParseDay(newDate); err != nil {
		return models.Assignment{}, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}
	if hasAbsence(v.Absences, newEmployeeID, newDate) {
		return models.Assignment{}, appErrors.ErrAbsenceConflict
	}
	if hasAssignment(v.Assignments, newEmployeeID, v.Assignments[idx].ProjectID, newDate, id) {
		return models.Assignment{}, appErrors.ErrDuplicateAssignment
	}
	v.Assignments[idx].EmployeeID = newEmployeeID
	v.Assignments[idx].Date = newDate
	s.bump()
	return v.Assignments[idx], nil
}

// ReplaceDay swaps out everything booked for an employee on one day: existing
// assignments and any absence are dropped, then the drafts are inserted.
func (s *Store) ReplaceDay(employeeID, date string, drafts []models.AssignmentDraft) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return nil, err
	}
	if _, ok := s.findEmployee(employeeID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	if _, err := calendar.ParseDay(date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}
	if err := s.validateDrafts(drafts); err != nil {
		return nil, err
	}
	inserted := s.replaceDayLocked(employeeID, date, drafts)
	s.bump()
	return inserted, nil
}

// ApplyWeekdayPattern repeats a day template across the anchor's month: every
// day whose weekday is in the given set gets ReplaceDay semantics applied.
func (s *Store) ApplyWeekdayPattern(employeeID, anchorDate string, weekdays []time.Weekday, drafts []models.AssignmentDraft) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireWorking(); err != nil {
		return nil, err
	}
	if _, ok := s.findEmployee(employeeID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	anchor, err := calendar.ParseDay(anchorDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}
	if len(weekdays) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no weekdays selected")
	}
	if err := s.validateDrafts(drafts); err != nil {
		return nil, err
	}
	var inserted []models.Assignment
	for _, day := range calendar.MatchingWeekdays(anchor, weekdays) {
		inserted = append(inserted, s.replaceDayLocked(employeeID, calendar.FormatDay(day), drafts)...)
	}
	s.bump()
	s.logger.Debug("weekday pattern applied",
		zap.String("employee_id", employeeID),
		zap.Int("bookings", len(inserted)))
	return inserted, nil
}

// replaceDayLocked deletes the employee's assignments and absences on the
// day and inserts the drafts. Callers hold s.mu and have validated input.
func (s *Store) replaceDayLocked(employeeID, date string, drafts []models.AssignmentDraft) []models.Assignment {
	v := s.workingVersion()
	kept := v.Assignments[:0]
	for _, a := range v.Assignments {
		if a.EmployeeID != employeeID || a.Date != date {
			kept = append(kept, a)
		}
	}
	v.Assignments = kept
	keptAbs := v.Absences[:0]
	for _, ab := range v.Absences {
		if ab.EmployeeID != employeeID || ab.Date != date {
			keptAbs = append(keptAbs, ab)
		}
	}
	v.Absences = keptAbs

	inserted := make([]models.Assignment, 0, len(drafts))
	for _, d := range drafts {
		a := models.Assignment{
			ID:         s.newID(),
			EmployeeID: employeeID,
			ProjectID:  d.ProjectID,
			Date:       date,
			Allocation: d.Allocation,
		}
		v.Assignments = append(v.Assignments, a)
		inserted = append(inserted, a)
	}
	return inserted
}

func (s *Store) validateBooking(employeeID, projectID, date string, allocation float64) error {
	if _, ok := s.findEmployee(employeeID); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	if err := s.validateDraft(models.AssignmentDraft{ProjectID: projectID, Allocation: allocation}); err != nil {
		return err
	}
	if _, err := calendar.ParseDay(date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}
	return nil
}

// validateDrafts checks every draft and rejects a project listed twice;
// inserting the batch must never produce a duplicate booking triple.
func (s *Store) validateDrafts(drafts []models.AssignmentDraft) error {
	seen := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		if err := s.validateDraft(d); err != nil {
			return err
		}
		if _, dup := seen[d.ProjectID]; dup {
			return appErrors.ErrDuplicateAssignment
		}
		seen[d.ProjectID] = struct{}{}
	}
	return nil
}

func (s *Store) validateDraft(d models.AssignmentDraft) error {
	if d.Allocation <= 0 || d.Allocation > 1 {
		return appErrors.Clone(appErrors.ErrValidation, "allocation must be within (0, 1]")
	}
	for _, p := range s.state.Projects {
		if p.ID == d.ProjectID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "project not found")
}

func (s *Store) findEmployee(id string) (models.Employee, bool) {
	for _, e := range s.state.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return models.Employee{}, false
}

func hasAssignment(assignments []models.Assignment, employeeID, projectID, date, excludeID string) bool {
	for _, a := range assignments {
		if a.ID == excludeID {
			continue
		}
		if a.EmployeeID == employeeID && a.ProjectID == projectID && a.Date == date {
			return true
		}
	}
	return false
}

func hasAbsence(absences []models.Absence, employeeID, date string) bool {
	for _, ab := range absences {
		if ab.EmployeeID == employeeID && ab.Date == date {
			return true
		}
	}
	return false
}
