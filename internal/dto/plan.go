package dto

import "github.com/planforge/resplan-api/internal/models"

// PlanBoardResponse is the month view of the active plan version: one row
// per employee, one cell per calendar day.
type PlanBoardResponse struct {
	Month       string         `json:"month"`
	VersionID   string         `json:"versionId"`
	VersionName string         `json:"versionName"`
	ReadOnly    bool           `json:"readOnly"`
	Revision    uint64         `json:"revision"`
	Days        []PlanBoardDay `json:"days"`
	Rows        []PlanBoardRow `json:"rows"`
}

// PlanBoardDay describes one calendar column.
type PlanBoardDay struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Weekend bool   `json:"weekend"`
}

// PlanBoardRow is one employee's month.
type PlanBoardRow struct {
	EmployeeID   string          `json:"employeeId"`
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	Location     string          `json:"location"`
	Availability float64         `json:"availability"`
	Cells        []PlanBoardCell `json:"cells"`
}

// PlanBoardCell is one employee-day.
type PlanBoardCell struct {
	Date        string                `json:"date"`
	Weekend     bool                  `json:"weekend"`
	Holiday     bool                  `json:"holiday"`
	Absence     *PlanBoardAbsence     `json:"absence,omitempty"`
	Assignments []PlanBoardAssignment `json:"assignments,omitempty"`
	Load        float64               `json:"load"`
	Overloaded  bool                  `json:"overloaded"`
}

// PlanBoardAssignment is a booking inside a cell.
type PlanBoardAssignment struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	ProjectName string  `json:"projectName"`
	Critical    bool    `json:"critical"`
	Allocation  float64 `json:"allocation"`
}

// PlanBoardAbsence marks a blocked cell.
type PlanBoardAbsence struct {
	ID   string             `json:"id"`
	Type models.AbsenceType `json:"type"`
}
