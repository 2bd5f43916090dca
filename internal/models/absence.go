package models

// AbsenceType classifies why an employee is unavailable.
type AbsenceType string

// Known absence types.
const (
	AbsenceVacation AbsenceType = "vacation"
	AbsenceSick     AbsenceType = "sick"
	AbsenceTraining AbsenceType = "training"
	AbsenceOther    AbsenceType = "other"
)

// Valid reports whether t is one of the known absence types.
func (t AbsenceType) Valid() bool {
	switch t {
	case AbsenceVacation, AbsenceSick, AbsenceTraining, AbsenceOther:
		return true
	}
	return false
}

// Absence blocks an employee's whole day. An absent day carries no
// assignments and contributes nothing to capacity.
type Absence struct {
	ID         string      `db:"id" json:"id"`
	EmployeeID string      `db:"employee_id" json:"employee_id"`
	Date       string      `db:"date" json:"date"`
	Type       AbsenceType `db:"type" json:"type"`
	Approved   bool        `db:"approved" json:"approved"`
}
