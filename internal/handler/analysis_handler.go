package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planforge/resplan-api/internal/service"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
	"github.com/planforge/resplan-api/pkg/response"
)

// AnalysisHandler relays plan analysis requests to the configured endpoint.
type AnalysisHandler struct {
	analysis *service.AnalysisService
}

// NewAnalysisHandler constructs handler.
func NewAnalysisHandler(analysis *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

type analyzeMonthRequest struct {
	Month string `json:"month"`
}

// AnalyzeMonth godoc
// @Summary Generate a narrative summary of one month
// @Tags Analysis
// @Accept json
// @Produce json
// @Param payload body analyzeMonthRequest true "Month payload"
// @Success 200 {object} response.Envelope
// @Router /analysis/month [post]
func (h *AnalysisHandler) AnalyzeMonth(c *gin.Context) {
	var req analyzeMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	text, err := h.analysis.AnalyzeMonth(c.Request.Context(), req.Month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"text": text}, nil)
}

// Chat godoc
// @Summary Ask a free-form question about the plan
// @Tags Analysis
// @Accept json
// @Produce json
// @Param payload body service.ChatRequest true "Chat payload"
// @Success 200 {object} response.Envelope
// @Router /analysis/chat [post]
func (h *AnalysisHandler) Chat(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	text, err := h.analysis.Chat(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"text": text}, nil)
}
