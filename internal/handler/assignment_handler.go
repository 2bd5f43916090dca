package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planforge/resplan-api/internal/service"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
	"github.com/planforge/resplan-api/pkg/response"
)

// AssignmentHandler exposes booking and absence mutations.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Add godoc
// @Summary Book an allocation
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.AddAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Add(c *gin.Context) {
	var req service.AddAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Remove godoc
// @Summary Delete a booking
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Remove(c *gin.Context) {
	if err := h.assignments.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Move godoc
// @Summary Move a booking to another employee or day
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.MoveAssignmentRequest true "Destination"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/move [patch]
func (h *AssignmentHandler) Move(c *gin.Context) {
	var req service.MoveAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// ReplaceDay godoc
// @Summary Replace everything booked on one day
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.ReplaceDayRequest true "Replacement payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/replace-day [post]
func (h *AssignmentHandler) ReplaceDay(c *gin.Context) {
	var req service.ReplaceDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inserted, err := h.assignments.ReplaceDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inserted, nil)
}

// ApplyPattern godoc
// @Summary Repeat a day template across matching weekdays of a month
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.WeekdayPatternRequest true "Pattern payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/pattern [post]
func (h *AssignmentHandler) ApplyPattern(c *gin.Context) {
	var req service.WeekdayPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inserted, err := h.assignments.ApplyPattern(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inserted, nil)
}

// AddAbsence godoc
// @Summary Block one day for an employee
// @Tags Absences
// @Accept json
// @Produce json
// @Param payload body service.AddAbsenceRequest true "Absence payload"
// @Success 201 {object} response.Envelope
// @Router /absences [post]
func (h *AssignmentHandler) AddAbsence(c *gin.Context) {
	var req service.AddAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	absence, err := h.assignments.AddAbsence(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, absence)
}

// AddAbsenceSpan godoc
// @Summary Block consecutive weekdays
// @Tags Absences
// @Accept json
// @Produce json
// @Param payload body service.AbsenceSpanRequest true "Span payload"
// @Success 201 {object} response.Envelope
// @Router /absences/span [post]
func (h *AssignmentHandler) AddAbsenceSpan(c *gin.Context) {
	var req service.AbsenceSpanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	added, err := h.assignments.AddAbsenceSpan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, added)
}

// RemoveAbsence godoc
// @Summary Delete an absence
// @Tags Absences
// @Produce json
// @Param id path string true "Absence ID"
// @Success 204
// @Router /absences/{id} [delete]
func (h *AssignmentHandler) RemoveAbsence(c *gin.Context) {
	if err := h.assignments.RemoveAbsence(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
