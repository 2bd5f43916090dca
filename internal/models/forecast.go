package models

// OpportunityList identifies one of the two opportunity buckets of a quarter.
type OpportunityList string

// Opportunity buckets.
const (
	ListMustWin     OpportunityList = "must_win"
	ListAlternative OpportunityList = "alternative"
)

// Valid reports whether l names a known opportunity bucket.
func (l OpportunityList) Valid() bool {
	return l == ListMustWin || l == ListAlternative
}

// ForecastEntry is a project reference inside a quarter forecast. Volume is
// the expected effort in person-days; nil means "use the configured default".
type ForecastEntry struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	Volume    *float64 `json:"volume,omitempty"`
}

// QuarterData is the stored forecast record for one quarter: the confirmed
// running work plus the two opportunity buckets. Months and
// MonthlyCapacityDays are the captured per-month figures; projections
// recompute capacity from the live roster whenever the quarter name resolves
// to calendar bounds, and fall back to the captured figures otherwise.
type QuarterData struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Months              []string        `json:"months,omitempty"`
	MonthlyCapacityDays []float64       `json:"monthly_capacity_days,omitempty"`
	TotalCapacityDays   float64         `json:"total_capacity_days"`
	Notes               string          `json:"notes,omitempty"`
	RunningProjects     []ForecastEntry `json:"running_projects"`
	MustWin             []ForecastEntry `json:"must_win"`
	Alternative         []ForecastEntry `json:"alternative"`
}

// Entries returns the bucket addressed by list. The returned slice aliases
// the quarter's storage.
func (q *QuarterData) Entries(list OpportunityList) []ForecastEntry {
	if list == ListMustWin {
		return q.MustWin
	}
	return q.Alternative
}

// SetEntries replaces the bucket addressed by list.
func (q *QuarterData) SetEntries(list OpportunityList, entries []ForecastEntry) {
	if list == ListMustWin {
		q.MustWin = entries
		return
	}
	q.Alternative = entries
}
