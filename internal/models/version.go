package models

import "time"

// PlanVersion is one snapshot in the plan history. The newest version is the
// mutable working copy; every older version is frozen.
type PlanVersion struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Assignments []Assignment  `json:"assignments"`
	Absences    []Absence     `json:"absences"`
	Quarters    []QuarterData `json:"quarters"`
}

// PlanState is the full serialisable state of a plan: the catalog data plus
// the complete version history and the currently viewed version.
type PlanState struct {
	Employees       []Employee      `json:"employees"`
	Projects        []Project       `json:"projects"`
	Holidays        []PublicHoliday `json:"holidays"`
	Versions        []PlanVersion   `json:"versions"`
	ActiveVersionID string          `json:"active_version_id"`
	Revision        uint64          `json:"revision"`
}
