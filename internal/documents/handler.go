package documents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docsum-backend/internal/shared/metrics"
	"docsum-backend/internal/shared/server/middleware"
	"docsum-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group. Lookup by id
// is deliberately left without an identity requirement.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	requireUser := middleware.RequireUser()
	rg.GET("/documents", requireUser, h.list)
	rg.GET("/documents/findById", h.findByID)
	rg.POST("/documents/upload", requireUser, h.create)
	rg.POST("/documents/process", requireUser, h.process)
	rg.PUT("/documents/:id/audio", requireUser, h.updateAudio)
	rg.DELETE("/documents/:id", requireUser, h.delete)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docs, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Internal(c, "documents.list_failed", err)
		return
	}

	resp := make([]DocumentListItem, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toListItem(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) findByID(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "ID is required")
		return
	}
	c.Set("documentId", id)

	doc, err := h.Svc.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		respond.Internal(c, "documents.find_failed", err)
		return
	}
	respond.OK(c, toResponse(doc))
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.File == nil ||
		strings.TrimSpace(req.File.Name) == "" || strings.TrimSpace(req.File.URL) == "" ||
		strings.TrimSpace(req.Data) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "File and summary are required")
		return
	}

	doc, err := h.Svc.Create(c.Request.Context(), userID, req.File.Name, req.File.URL, req.Data)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "File and summary are required")
			return
		}
		respond.Internal(c, "documents.create_failed", err)
		return
	}
	c.Set("documentId", doc.ID)
	metrics.IncDocument("created")

	respond.Success(c, http.StatusCreated, "Document saved successfully", gin.H{"documentId": doc.ID})
}

func (h *Handler) process(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.File == nil ||
		strings.TrimSpace(req.File.Name) == "" || strings.TrimSpace(req.File.URL) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "File is required")
		return
	}

	doc, err := h.Svc.Enqueue(c.Request.Context(), userID, req.File.Name, req.File.URL, middleware.RequestIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrQueueMissing):
			respond.Error(c, http.StatusServiceUnavailable, "queue_unavailable", "processing queue not configured")
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "File is required")
		default:
			respond.Internal(c, "documents.enqueue_failed", err)
		}
		return
	}
	c.Set("documentId", doc.ID)
	c.Set("statusTransition", "->"+string(StatusPending))
	metrics.IncDocument("queued")

	respond.Success(c, http.StatusAccepted, "Document queued for processing", gin.H{
		"documentId": doc.ID,
		"status":     doc.Status,
	})
}

func (h *Handler) updateAudio(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("documentId", id)

	var req updateAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.AudioURL) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Audio URL is required")
		return
	}

	doc, err := h.Svc.UpdateAudio(c.Request.Context(), id, userID, req.AudioURL)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found")
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Audio URL is required")
		default:
			respond.Internal(c, "documents.update_audio_failed", err)
		}
		return
	}

	respond.Success(c, http.StatusOK, "Audio URL updated successfully", gin.H{"document": toResponse(doc)})
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("documentId", id)

	doc, err := h.Svc.Delete(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found or access denied")
			return
		}
		respond.Internal(c, "documents.delete_failed", err)
		return
	}

	metrics.IncDocument("deleted")
	respond.Success(c, http.StatusOK, "Document deleted successfully", gin.H{"deletedDocument": toResponse(doc)})
}
