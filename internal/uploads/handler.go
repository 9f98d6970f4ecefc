package uploads

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docsum-backend/internal/shared/server/middleware"
	"docsum-backend/internal/shared/server/respond"
	"docsum-backend/internal/shared/storage/object"
	"docsum-backend/internal/shared/storage/object/s3"
	"docsum-backend/internal/shared/telemetry"
)

const (
	// MaxUploadBytes is the largest PDF accepted, directly or via presign.
	MaxUploadBytes = 32 << 20
	presignExpires = 15 * time.Minute
	mimePDF        = "application/pdf"
	formField      = "file"
	multipartSlack = 1 << 20
)

// Presigner signs direct-to-bucket uploads.
type Presigner interface {
	PresignUpload(ctx context.Context, ownerID, fileName, contentType string, sizeBytes int64, ttl time.Duration) (s3.PresignedUpload, error)
}

// Handler accepts PDF uploads and serves stored files.
type Handler struct {
	store     object.ObjectStore
	presigner Presigner
}

// NewHandler constructs a Handler. presigner may be nil when no uploads bucket
// is configured.
func NewHandler(store object.ObjectStore, presigner Presigner) *Handler {
	return &Handler{store: store, presigner: presigner}
}

// RegisterRoutes attaches upload routes. File reads are public.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	requireUser := middleware.RequireUser()
	rg.POST("/uploads", requireUser, h.upload)
	rg.POST("/uploads/presign", requireUser, h.presign)
	rg.GET("/files/*key", h.serve)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+multipartSlack)

	header, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the 32MB limit")
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "File is required")
		return
	}
	if header.Size > MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the 32MB limit")
		return
	}

	f, err := header.Open()
	if err != nil {
		respond.Internal(c, "uploads.open_failed", err)
		return
	}
	defer f.Close()

	mimeType, body, err := object.SniffReader(f)
	if err != nil {
		respond.Internal(c, "uploads.sniff_failed", err)
		return
	}
	if mimeType != mimePDF {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "Only PDF files are allowed")
		return
	}

	obj, err := h.store.Save(c.Request.Context(), userID, header.Filename, body)
	if err != nil {
		respond.Internal(c, "uploads.save_failed", err)
		return
	}

	telemetry.Info("uploads.saved", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"user_id":    userID,
		"key":        obj.Key,
		"size":       obj.Size,
	})
	respond.Success(c, http.StatusCreated, "File uploaded successfully", gin.H{
		"name": header.Filename,
		"url":  h.store.URL(obj.Key),
		"key":  obj.Key,
		"size": obj.Size,
	})
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

func (h *Handler) presign(c *gin.Context) {
	if h.presigner == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "uploads not configured")
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.TrimSpace(req.ContentType)

	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required")
		return
	}
	if req.ContentType != mimePDF {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType is not allowed")
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit")
		return
	}

	out, err := h.presigner.PresignUpload(c.Request.Context(), middleware.UserIDFromContext(c), req.FileName, req.ContentType, req.SizeBytes, presignExpires)
	if err != nil {
		telemetry.Error("uploads.presign.failed", map[string]any{
			"err":         err.Error(),
			"contentType": req.ContentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"uploadUrl":        out.URL,
		"method":           out.Method,
		"headers":          out.Headers,
		"key":              out.Key,
		"fileUrl":          out.PublicURL,
		"expiresAt":        out.ExpiresAt,
		"expiresInSeconds": int64(presignExpires.Seconds()),
	})
}

func (h *Handler) serve(c *gin.Context) {
	key, err := object.CleanKey(strings.TrimPrefix(c.Param("key"), "/"))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "File not found")
		return
	}

	rc, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "File not found")
			return
		}
		respond.Internal(c, "files.open_failed", err)
		return
	}
	defer rc.Close()

	contentType, body, err := object.SniffReader(rc)
	if err != nil {
		respond.Internal(c, "files.read_failed", err)
		return
	}
	if strings.HasSuffix(key, ".mp3") {
		contentType = "audio/mpeg"
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}
