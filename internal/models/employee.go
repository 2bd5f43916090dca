package models

// Employee represents a plannable member of the roster. Availability is the
// contracted share of a full-time day in percent (100 = full time).
type Employee struct {
	ID           string   `db:"id" json:"id"`
	Name         string   `db:"name" json:"name"`
	Role         string   `db:"role" json:"role"`
	Team         *string  `db:"team" json:"team,omitempty"`
	Location     string   `db:"location" json:"location"`
	Availability float64  `db:"availability" json:"availability"`
	Skills       []string `json:"skills,omitempty"`
	AvatarURL    *string  `db:"avatar_url" json:"avatar_url,omitempty"`
}

// EmployeeFilter captures filtering options for listing the roster.
type EmployeeFilter struct {
	Search   string
	Team     string
	Location string
}
