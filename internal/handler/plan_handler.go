package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planforge/resplan-api/internal/middleware"
	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/service"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
	"github.com/planforge/resplan-api/pkg/response"
)

// PlanHandler exposes the board view and the plan catalogs.
type PlanHandler struct {
	plans    *service.PlanService
	holidays *service.HolidayService
}

// NewPlanHandler constructs handler.
func NewPlanHandler(plans *service.PlanService, holidays *service.HolidayService) *PlanHandler {
	return &PlanHandler{plans: plans, holidays: holidays}
}

// Board godoc
// @Summary Month board of the active plan version
// @Tags Plan
// @Produce json
// @Param month query string true "Month (yyyy-MM)"
// @Success 200 {object} response.Envelope
// @Router /plan/board [get]
func (h *PlanHandler) Board(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month required"))
		return
	}
	board, cached, err := h.plans.Board(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, board, nil, middleware.ExtractMeta(c))
}

// Employees godoc
// @Summary List the roster
// @Tags Plan
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *PlanHandler) Employees(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.plans.Employees(), nil)
}

// Projects godoc
// @Summary List the project catalog
// @Tags Plan
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *PlanHandler) Projects(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.plans.Projects(), nil)
}

// Holidays godoc
// @Summary List public holidays
// @Tags Plan
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /holidays [get]
func (h *PlanHandler) Holidays(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.holidays.List(), nil)
}

// AddHoliday godoc
// @Summary Add or update a public holiday
// @Tags Plan
// @Accept json
// @Produce json
// @Param payload body models.PublicHoliday true "Holiday payload"
// @Success 201 {object} response.Envelope
// @Router /holidays [post]
func (h *PlanHandler) AddHoliday(c *gin.Context) {
	var req models.PublicHoliday
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	holiday, err := h.holidays.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, holiday)
}

// RemoveHoliday godoc
// @Summary Remove a public holiday
// @Tags Plan
// @Produce json
// @Param date path string true "Date (yyyy-MM-dd)"
// @Param location query string false "Location (defaults to ALL)"
// @Success 204
// @Router /holidays/{date} [delete]
func (h *PlanHandler) RemoveHoliday(c *gin.Context) {
	if err := h.holidays.Remove(c.Request.Context(), c.Param("date"), c.Query("location")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
