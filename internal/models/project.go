package models

import (
	"strconv"
	"strings"
)

// ProjectStatus is a project's lifecycle stage.
type ProjectStatus string

// Project lifecycle stages.
const (
	ProjectActive      ProjectStatus = "active"
	ProjectOpportunity ProjectStatus = "opportunity"
	ProjectCompleted   ProjectStatus = "completed"
	ProjectOnHold      ProjectStatus = "on_hold"
)

// Milestone marks a dated phase boundary inside a project.
type Milestone struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Phase string `json:"phase"`
}

// Project represents a client engagement that assignments can reference.
// Budget is kept as the free-form string it was captured as ("100k", "1.2m",
// "250000"); ParseBudget normalises it on demand. Volume is the planned total
// effort in person-days.
type Project struct {
	ID         string        `db:"id" json:"id"`
	Name       string        `db:"name" json:"name"`
	Client     string        `db:"client" json:"client"`
	Color      string        `db:"color" json:"color"`
	Status     ProjectStatus `db:"status" json:"status,omitempty"`
	Volume     *float64      `db:"volume" json:"volume,omitempty"`
	Topic      string        `db:"topic" json:"topic,omitempty"`
	Notes      string        `db:"notes" json:"notes,omitempty"`
	Budget     string        `db:"budget" json:"budget,omitempty"`
	StartDate  *string       `db:"start_date" json:"start_date,omitempty"`
	EndDate    *string       `db:"end_date" json:"end_date,omitempty"`
	HourlyRate *float64      `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Critical   bool          `db:"critical" json:"critical"`
	Milestones []Milestone   `json:"milestones,omitempty"`
}

// ParseBudget converts a free-form budget string into a numeric amount.
// Suffixes k and m scale by a thousand and a million. Unparseable input
// yields zero rather than an error.
func ParseBudget(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	multiplier := 1.0
	switch {
	case strings.Contains(s, "m"):
		multiplier = 1_000_000
	case strings.Contains(s, "k"):
		multiplier = 1_000
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return value * multiplier
}

// BudgetAmount returns the project's budget as a number.
func (p Project) BudgetAmount() float64 {
	return ParseBudget(p.Budget)
}
