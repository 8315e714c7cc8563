package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appmanifest "github.com/wastetrack/backend/internal/application/manifest"
	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/interfaces/http/dto"
)

// RevisionHandler handles the correction request workflow endpoints
type RevisionHandler struct {
	BaseHandler
	service *appmanifest.RevisionService
	// backfillLimit bounds one backfill run unless overridden per call.
	backfillLimit int
}

// NewRevisionHandler creates a new RevisionHandler
func NewRevisionHandler(service *appmanifest.RevisionService, backfillLimit int) *RevisionHandler {
	if backfillLimit <= 0 {
		backfillLimit = 100
	}
	return &RevisionHandler{service: service, backfillLimit: backfillLimit}
}

// RegisterRoutes registers revision routes
func (h *RevisionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/manifests/:family/:id/revisions", h.Create)
	rg.GET("/manifests/:family/:id/revisions", h.ListByManifest)

	revisions := rg.Group("/revisions")
	{
		revisions.GET("/:id", h.Get)
		revisions.POST("/:id/accept", h.Accept)
		revisions.POST("/:id/refuse", h.Refuse)
		revisions.POST("/backfill", h.Backfill)
	}
}

// revisionID parses and validates the :id path parameter
func (h *RevisionHandler) revisionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "invalid revision id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /manifests/:family/:id/revisions
func (h *RevisionHandler) Create(c *gin.Context) {
	family, err := manifest.ParseFamily(c.Param("family"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	var req appmanifest.CreateRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	response, err := h.service.Create(c.Request.Context(), family, c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

// ListByManifest handles GET /manifests/:family/:id/revisions
func (h *RevisionHandler) ListByManifest(c *gin.Context) {
	family, err := manifest.ParseFamily(c.Param("family"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	responses, err := h.service.ListByManifest(c.Request.Context(), family, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// Get handles GET /revisions/:id
func (h *RevisionHandler) Get(c *gin.Context) {
	id, ok := h.revisionID(c)
	if !ok {
		return
	}

	response, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Accept handles POST /revisions/:id/accept
func (h *RevisionHandler) Accept(c *gin.Context) {
	id, ok := h.revisionID(c)
	if !ok {
		return
	}

	response, err := h.service.Accept(c.Request.Context(), id, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Refuse handles POST /revisions/:id/refuse
func (h *RevisionHandler) Refuse(c *gin.Context) {
	id, ok := h.revisionID(c)
	if !ok {
		return
	}

	response, err := h.service.Refuse(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Backfill handles POST /revisions/backfill. It computes missing
// baseline snapshots for legacy revision requests, up to the configured
// batch size per call, overridable with ?limit.
func (h *RevisionHandler) Backfill(c *gin.Context) {
	limit := h.backfillLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	done, err := h.service.BackfillSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"backfilled": done})
}
