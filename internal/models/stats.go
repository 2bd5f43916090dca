package models

import "time"

// ProjectLoad is a project's share of planned effort inside a period.
type ProjectLoad struct {
	ProjectID string  `json:"project_id"`
	Name      string  `json:"name"`
	Days      float64 `json:"days"`
}

// MonthStats aggregates one calendar month across the whole roster.
// FreeCapacity may be negative when the month is overbooked.
type MonthStats struct {
	Month              string        `json:"month"`
	TotalCapacity      float64       `json:"total_capacity"`
	TotalPlanned       float64       `json:"total_planned"`
	FreeCapacity       float64       `json:"free_capacity"`
	OverloadedDayCount int           `json:"overloaded_day_count"`
	UtilizationPercent float64       `json:"utilization_percent"`
	TopProjects        []ProjectLoad `json:"top_projects"`
}

// EmployeeUtilization summarises one employee over a period. PlannedDays is
// allocation-weighted: two half-day bookings count as one planned day.
type EmployeeUtilization struct {
	EmployeeID         string  `json:"employee_id"`
	Name               string  `json:"name"`
	Capacity           float64 `json:"capacity"`
	PlannedDays        float64 `json:"planned_days"`
	FreeDays           float64 `json:"free_days"`
	AbsenceDays        int     `json:"absence_days"`
	OverloadedDayCount int     `json:"overloaded_day_count"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// DayConflict flags a day where an employee's bookings collide.
type DayConflict struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	Load       float64 `json:"load"`
	Critical   bool    `json:"critical"`
}

// QuarterProjection is the computed view of a quarter forecast.
// AvailableDays is clamped at zero for display; NetAvailableDays subtracts
// the must-win volume from the unclamped figure and may be negative.
type QuarterProjection struct {
	Quarter           QuarterData       `json:"quarter"`
	TotalCapacityDays float64           `json:"total_capacity_days"`
	RunningDays       float64           `json:"running_days"`
	MustWinDays       float64           `json:"must_win_days"`
	AlternativeDays   float64           `json:"alternative_days"`
	RawAvailableDays  float64           `json:"raw_available_days"`
	AvailableDays     float64           `json:"available_days"`
	NetAvailableDays  float64           `json:"net_available_days"`
	Overcapacity      bool              `json:"overcapacity"`
	Months            []MonthProjection `json:"months"`
	Warnings          []string          `json:"warnings,omitempty"`
}

// MonthProjection splits a quarter projection by capacity weight.
type MonthProjection struct {
	Month         string  `json:"month"`
	CapacityDays  float64 `json:"capacity_days"`
	AssignedDays  float64 `json:"assigned_days"`
	AvailableDays float64 `json:"available_days"`
	Optimistic    float64 `json:"optimistic_days"`
}

// QuarterRevenue amortises project budgets over one forward quarter.
type QuarterRevenue struct {
	Quarter  string             `json:"quarter"`
	Total    float64            `json:"total"`
	ByClient map[string]float64 `json:"by_client"`
}

// Margin bands for project financials.
const (
	MarginBandHighRisk = "high_risk"
	MarginBandLow      = "low"
	MarginBandHealthy  = "healthy"
)

// ProjectFinancials relates a project's budget to its planned cost.
type ProjectFinancials struct {
	ProjectID     string  `json:"project_id"`
	Name          string  `json:"name"`
	Client        string  `json:"client"`
	Budget        float64 `json:"budget"`
	PlannedDays   float64 `json:"planned_days"`
	PlannedCost   float64 `json:"planned_cost"`
	Margin        float64 `json:"margin"`
	MarginPercent float64 `json:"margin_percent"`
	MarginBand    string  `json:"margin_band"`
}

// StatsGeneratedMeta stamps cached aggregation payloads.
type StatsGeneratedMeta struct {
	VersionID   string    `json:"version_id"`
	Revision    uint64    `json:"revision"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SystemMetrics represents service level figures captured from
// instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	PlanMutationsTotal       uint64    `json:"plan_mutations_total"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
