package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planforge/resplan-api/internal/service"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
	"github.com/planforge/resplan-api/pkg/response"
)

// VersionHandler exposes plan version lifecycle endpoints.
type VersionHandler struct {
	versions *service.VersionService
}

// NewVersionHandler constructs handler.
func NewVersionHandler(versions *service.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

// List godoc
// @Summary List plan versions
// @Tags Versions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /versions [get]
func (h *VersionHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.versions.List(), nil)
}

// Get godoc
// @Summary Fetch one version in full
// @Tags Versions
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} response.Envelope
// @Router /versions/{id} [get]
func (h *VersionHandler) Get(c *gin.Context) {
	version, err := h.versions.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}

// Create godoc
// @Summary Freeze the working copy under a new name
// @Tags Versions
// @Accept json
// @Produce json
// @Param payload body service.CreateVersionRequest true "Version payload"
// @Success 201 {object} response.Envelope
// @Router /versions [post]
func (h *VersionHandler) Create(c *gin.Context) {
	var req service.CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	version, err := h.versions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, version)
}

// Activate godoc
// @Summary Switch the viewed version
// @Tags Versions
// @Produce json
// @Param id path string true "Version ID"
// @Success 204
// @Router /versions/{id}/activate [post]
func (h *VersionHandler) Activate(c *gin.Context) {
	if err := h.versions.Activate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SaveSnapshot godoc
// @Summary Persist the full plan state
// @Tags Versions
// @Produce json
// @Success 204
// @Router /plan/snapshot [post]
func (h *VersionHandler) SaveSnapshot(c *gin.Context) {
	if err := h.versions.SaveSnapshot(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// LoadSnapshot godoc
// @Summary Restore the most recent persisted plan state
// @Tags Versions
// @Produce json
// @Success 204
// @Router /plan/snapshot/restore [post]
func (h *VersionHandler) LoadSnapshot(c *gin.Context) {
	if err := h.versions.LoadSnapshot(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
