package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planforge/resplan-api/internal/middleware"
	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/service"
	"github.com/planforge/resplan-api/pkg/calendar"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
	"github.com/planforge/resplan-api/pkg/response"
)

// ForecastHandler exposes quarter projections, financials and forecast edits.
type ForecastHandler struct {
	forecast *service.ForecastService
	edits    *service.ForecastEditService
}

// NewForecastHandler constructs handler.
func NewForecastHandler(forecast *service.ForecastService, edits *service.ForecastEditService) *ForecastHandler {
	return &ForecastHandler{forecast: forecast, edits: edits}
}

// Projections godoc
// @Summary Projections for every stored quarter
// @Tags Forecast
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /forecast [get]
func (h *ForecastHandler) Projections(c *gin.Context) {
	projections, cached, err := h.forecast.Projections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, projections, nil, middleware.ExtractMeta(c))
}

// Projection godoc
// @Summary Projection of one quarter
// @Tags Forecast
// @Produce json
// @Param quarterId path string true "Quarter ID"
// @Success 200 {object} response.Envelope
// @Router /forecast/{quarterId} [get]
func (h *ForecastHandler) Projection(c *gin.Context) {
	projection, err := h.forecast.ProjectionByID(c.Param("quarterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projection, nil)
}

// Revenue godoc
// @Summary Amortised revenue over the coming quarters
// @Tags Forecast
// @Produce json
// @Param anchor query string false "Anchor day (yyyy-MM-dd, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /forecast/revenue [get]
func (h *ForecastHandler) Revenue(c *gin.Context) {
	anchor := time.Now().UTC()
	if raw := c.Query("anchor"); raw != "" {
		parsed, err := calendar.ParseDay(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "anchor must be yyyy-MM-dd"))
			return
		}
		anchor = parsed
	}
	response.JSON(c, http.StatusOK, h.forecast.RevenueForecast(anchor), nil)
}

// Financials godoc
// @Summary Budget versus planned cost per project
// @Tags Forecast
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /forecast/financials [get]
func (h *ForecastHandler) Financials(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.forecast.Financials(), nil)
}

// AddOpportunity godoc
// @Summary Add an opportunity to a quarter bucket
// @Tags Forecast
// @Accept json
// @Produce json
// @Param quarterId path string true "Quarter ID"
// @Param payload body service.AddOpportunityRequest true "Opportunity payload"
// @Success 201 {object} response.Envelope
// @Router /forecast/{quarterId}/opportunities [post]
func (h *ForecastHandler) AddOpportunity(c *gin.Context) {
	var req service.AddOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.edits.AddOpportunity(c.Request.Context(), c.Param("quarterId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// UpdateOpportunity godoc
// @Summary Patch an opportunity
// @Tags Forecast
// @Accept json
// @Produce json
// @Param quarterId path string true "Quarter ID"
// @Param entryId path string true "Entry ID"
// @Param payload body service.UpdateOpportunityRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /forecast/{quarterId}/opportunities/{entryId} [patch]
func (h *ForecastHandler) UpdateOpportunity(c *gin.Context) {
	var req service.UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.edits.UpdateOpportunity(c.Request.Context(), c.Param("quarterId"), c.Param("entryId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// RemoveOpportunity godoc
// @Summary Remove an opportunity
// @Tags Forecast
// @Produce json
// @Param quarterId path string true "Quarter ID"
// @Param entryId path string true "Entry ID"
// @Param list query string true "Bucket (must_win or alternative)"
// @Success 204
// @Router /forecast/{quarterId}/opportunities/{entryId} [delete]
func (h *ForecastHandler) RemoveOpportunity(c *gin.Context) {
	list := models.OpportunityList(c.Query("list"))
	if !list.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "list must be must_win or alternative"))
		return
	}
	if err := h.edits.RemoveOpportunity(c.Request.Context(), c.Param("quarterId"), list, c.Param("entryId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PromoteOpportunity godoc
// @Summary Move an opportunity between buckets
// @Tags Forecast
// @Accept json
// @Produce json
// @Param quarterId path string true "Quarter ID"
// @Param entryId path string true "Entry ID"
// @Param payload body service.PromoteOpportunityRequest true "Promotion payload"
// @Success 200 {object} response.Envelope
// @Router /forecast/{quarterId}/opportunities/{entryId}/promote [post]
func (h *ForecastHandler) PromoteOpportunity(c *gin.Context) {
	var req service.PromoteOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.edits.Promote(c.Request.Context(), c.Param("quarterId"), c.Param("entryId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// SetRunningVolume godoc
// @Summary Override a running project's quarter volume
// @Tags Forecast
// @Accept json
// @Produce json
// @Param quarterId path string true "Quarter ID"
// @Param entryId path string true "Entry ID"
// @Param payload body service.RunningVolumeRequest true "Volume payload"
// @Success 200 {object} response.Envelope
// @Router /forecast/{quarterId}/running/{entryId} [patch]
func (h *ForecastHandler) SetRunningVolume(c *gin.Context) {
	var req service.RunningVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.edits.SetRunningVolume(c.Request.Context(), c.Param("quarterId"), c.Param("entryId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}
