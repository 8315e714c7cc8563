package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	appmanifest "github.com/wastetrack/backend/internal/application/manifest"
	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/interfaces/http/dto"
)

// ManifestHandler handles manifest lifecycle and temporal query endpoints
type ManifestHandler struct {
	BaseHandler
	service *appmanifest.ManifestService
	streams *appmanifest.StreamService
}

// NewManifestHandler creates a new ManifestHandler
func NewManifestHandler(service *appmanifest.ManifestService, streams *appmanifest.StreamService) *ManifestHandler {
	return &ManifestHandler{service: service, streams: streams}
}

// RegisterRoutes registers manifest routes
func (h *ManifestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	manifests := rg.Group("/manifests/:family")
	{
		manifests.POST("", h.Create)
		manifests.GET("", h.List)
		manifests.GET("/:id", h.Get)
		manifests.PATCH("/:id", h.Update)
		manifests.POST("/:id/sign", h.Sign)
		manifests.DELETE("/:id", h.Delete)
		manifests.GET("/:id/state", h.State)
		manifests.GET("/:id/events", h.Events)
	}
}

// family parses and validates the :family path parameter
func (h *ManifestHandler) family(c *gin.Context) (manifest.Family, bool) {
	family, err := manifest.ParseFamily(c.Param("family"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return "", false
	}
	return family, true
}

// Create handles POST /manifests/:family
func (h *ManifestHandler) Create(c *gin.Context) {
	family, ok := h.family(c)
	if !ok {
		return
	}

	var req appmanifest.CreateManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	response, err := h.service.Create(c.Request.Context(), family, getActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

// List handles GET /manifests/:family
func (h *ManifestHandler) List(c *gin.Context) {
	family, ok := h.family(c)
	if !ok {
		return
	}

	includeDeleted := c.Query("include_deleted") == "true"
	responses, err := h.service.List(c.Request.Context(), family, includeDeleted)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// Get handles GET /manifests/:family/:id. With an ?at=RFC3339 query
// parameter the manifest's state is replayed as it stood at that
// instant; without it the current-state row is returned.
func (h *ManifestHandler) Get(c *gin.Context) {
	family, ok := h.family(c)
	if !ok {
		return
	}

	if raw := c.Query("at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "at must be an RFC 3339 timestamp")
			return
		}
		response, err := h.streams.StateAt(c.Request.Context(), family, c.Param("id"), at)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, response)
		return
	}

	response, err := h.service.Get(c.Request.Context(), family, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Update handles PATCH /manifests/:family/:id
func (h *ManifestHandler) Update(c *gin.Context) {
	family, ok := h.family(c)
	if !ok {
		return
	}

	var req appmanifest.UpdateManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	response, err := h.service.Update(c.Request.Context(), family, c.Param("id"), getActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Sign handles POST /manifests/:family/:id/sign
func (h *ManifestHandler) Sign(c *gin.Context) {
	family, ok := h.family(c)
	if !ok {
		return
	}

	var req appmanifest.SignManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	response, err := h.service.Sign(c.Request.Context(), family, c.Param("id"), getActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Delete handles DELETE /manifests/:family/:id
func (h *ManifestHandler) Delete(c *gin.Context) {
	family, ok := h.family(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), family, c.Param("id"), getActor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// State handles GET /manifests/:family/:id/state. The state is folded
// from the stream on every call, rather than served from the row, so
// it also surfaces relational-only fields merged under the fold.
func (h *ManifestHandler) State(c *gin.Context) {
	family, ok := h.family(c)
	if !ok {
		return
	}

	response, err := h.streams.CurrentState(c.Request.Context(), family, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Events handles GET /manifests/:family/:id/events
func (h *ManifestHandler) Events(c *gin.Context) {
	family, ok := h.family(c)
	if !ok {
		return
	}

	responses, err := h.service.GetEvents(c.Request.Context(), family, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}
