package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planforge/resplan-api/internal/middleware"
	"github.com/planforge/resplan-api/internal/service"
	"github.com/planforge/resplan-api/pkg/calendar"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
	"github.com/planforge/resplan-api/pkg/response"
)

// StatsHandler exposes capacity and utilization aggregations.
type StatsHandler struct {
	stats    *service.StatsService
	capacity *service.CapacityService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService, capacity *service.CapacityService) *StatsHandler {
	return &StatsHandler{stats: stats, capacity: capacity}
}

// MonthStats godoc
// @Summary Month aggregation
// @Tags Stats
// @Produce json
// @Param month path string true "Month (yyyy-MM)"
// @Success 200 {object} response.Envelope
// @Router /stats/months/{month} [get]
func (h *StatsHandler) MonthStats(c *gin.Context) {
	stats, cached, err := h.stats.MonthStats(c.Request.Context(), c.Param("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// EmployeeMonthStats godoc
// @Summary Per-employee month figures
// @Tags Stats
// @Produce json
// @Param month path string true "Month (yyyy-MM)"
// @Success 200 {object} response.Envelope
// @Router /stats/months/{month}/employees [get]
func (h *StatsHandler) EmployeeMonthStats(c *gin.Context) {
	rows, err := h.stats.EmployeeMonthStats(c.Param("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Conflicts godoc
// @Summary Overbooked days of a month
// @Tags Stats
// @Produce json
// @Param month path string true "Month (yyyy-MM)"
// @Success 200 {object} response.Envelope
// @Router /stats/months/{month}/conflicts [get]
func (h *StatsHandler) Conflicts(c *gin.Context) {
	conflicts, err := h.stats.Conflicts(c.Param("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}

// Utilization godoc
// @Summary Roster utilization over a date range
// @Tags Stats
// @Produce json
// @Param start query string true "Start day (yyyy-MM-dd)"
// @Param end query string true "End day (yyyy-MM-dd)"
// @Success 200 {object} response.Envelope
// @Router /stats/utilization [get]
func (h *StatsHandler) Utilization(c *gin.Context) {
	start, end, err := parseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.capacity.UtilizationOverview(start, end), nil)
}

// EmployeeUtilization godoc
// @Summary One employee's utilization over a date range
// @Tags Stats
// @Produce json
// @Param id path string true "Employee ID"
// @Param start query string true "Start day (yyyy-MM-dd)"
// @Param end query string true "End day (yyyy-MM-dd)"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/utilization [get]
func (h *StatsHandler) EmployeeUtilization(c *gin.Context) {
	start, end, err := parseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		response.Error(c, err)
		return
	}
	util, err := h.capacity.EmployeeUtilization(c.Param("id"), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, util, nil)
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := calendar.ParseDay(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "start must be yyyy-MM-dd")
	}
	end, err := calendar.ParseDay(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end must be yyyy-MM-dd")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end must not precede start")
	}
	return start, end, nil
}
