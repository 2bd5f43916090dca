package models

// Assignment books a share of an employee's day onto a project. Date is an
// ISO calendar day (yyyy-MM-dd) and Allocation a fraction of the day
// (0.5 = half a day).
type Assignment struct {
	ID         string  `db:"id" json:"id"`
	EmployeeID string  `db:"employee_id" json:"employee_id"`
	ProjectID  string  `db:"project_id" json:"project_id"`
	Date       string  `db:"date" json:"date"`
	Allocation float64 `db:"allocation" json:"allocation"`
}

// AssignmentDraft is an assignment before it has been accepted into a plan.
type AssignmentDraft struct {
	ProjectID  string  `json:"project_id" validate:"required"`
	Allocation float64 `json:"allocation" validate:"required,gt=0,lte=1"`
}
