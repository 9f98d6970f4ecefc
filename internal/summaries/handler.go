package summaries

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docsum-backend/internal/shared/server/middleware"
	"docsum-backend/internal/shared/server/respond"
	"docsum-backend/internal/shared/telemetry"
)

// Handler exposes synchronous summary generation.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches summary routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/summaries/generate", middleware.RequireUser(), h.generate)
}

type generateRequest struct {
	File *struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"file"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.File == nil || strings.TrimSpace(req.File.URL) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "File upload failed")
		return
	}

	start := time.Now()
	summary, err := h.Svc.Generate(c.Request.Context(), strings.TrimSpace(req.File.URL))
	if err != nil {
		telemetry.Error("summaries.generate_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
			"file_name":  req.File.Name,
			"error":      err.Error(),
		})
		if errors.Is(err, ErrExtract) {
			respond.Error(c, http.StatusInternalServerError, "extract_failed", "File upload failed")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "summarize_failed", "Failed to summarize document")
		return
	}

	telemetry.Info("summaries.generated", map[string]any{
		"request_id":  middleware.RequestIDFromContext(c),
		"file_name":   req.File.Name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	respond.Success(c, http.StatusOK, "Summary generated successfully", gin.H{"data": summary})
}
