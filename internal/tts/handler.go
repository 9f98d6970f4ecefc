package tts

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"docsum-backend/internal/shared/config"
	"docsum-backend/internal/shared/server/middleware"
	"docsum-backend/internal/shared/server/respond"
	"docsum-backend/internal/shared/telemetry"
	"docsum-backend/internal/speech"
	"docsum-backend/internal/textclean"
)

const (
	msgTextRequired   = "Text is required"
	msgInvalidBody    = "Invalid request body"
	msgTextTooLong    = "Text must be 3000 characters or less"
	msgEmptyAfterTrim = "No valid text content found after cleaning"
	msgConfigError    = "TTS service configuration error"
	msgRateLimited    = "Rate limit exceeded. Please try again later."
	msgGenericFailure = "Failed to generate speech. Please try again."
)

// Synthesizer is the part of the speech gateway the handler needs.
type Synthesizer interface {
	SynthesizeRequest(ctx context.Context, req speech.Request) (speech.Result, error)
}

// Handler serves the text-to-speech endpoints.
type Handler struct {
	synth  Synthesizer
	voices []config.Voice
}

// NewHandler constructs a Handler.
func NewHandler(synth Synthesizer, voices []config.Voice) *Handler {
	if len(voices) == 0 {
		voices = config.DefaultVoices()
	}
	return &Handler{synth: synth, voices: voices}
}

// RegisterRoutes attaches TTS routes. Callers mount the group behind
// middleware.RequireUser and any rate limiting.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tts/generate", h.generate)
	rg.GET("/tts/voices", h.listVoices)
}

type generateRequest struct {
	Text    *string  `json:"text"`
	VoiceID string   `json:"voice_id"`
	Speed   *float64 `json:"speed"`
	Pitch   *int     `json:"pitch"`
}

// textField is decoded first so a bad optional field is not reported as
// missing text.
type textField struct {
	Text *string `json:"text"`
}

func (h *Handler) generate(c *gin.Context) {
	if middleware.UserIDFromContext(c) == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var head textField
	if err := c.ShouldBindBodyWith(&head, binding.JSON); err != nil || head.Text == nil || *head.Text == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", msgTextRequired)
		return
	}
	var req generateRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", msgInvalidBody)
		return
	}
	original := *head.Text
	if utf8.RuneCountInString(original) > textclean.MaxSpeechChars {
		respond.Error(c, http.StatusBadRequest, "validation_error", msgTextTooLong)
		return
	}

	clean := textclean.Speech(original)
	if clean == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", msgEmptyAfterTrim)
		return
	}

	speed := 1.0
	if req.Speed != nil {
		speed = *req.Speed
	}
	pitch := 0
	if req.Pitch != nil {
		pitch = *req.Pitch
	}

	telemetry.Info("tts.request", map[string]any{
		"request_id":      middleware.RequestIDFromContext(c),
		"voice_id":        req.VoiceID,
		"text_length":     utf8.RuneCountInString(clean),
		"original_length": utf8.RuneCountInString(original),
	})

	res, err := h.synth.SynthesizeRequest(c.Request.Context(), speech.Request{
		Text:    clean,
		VoiceID: req.VoiceID,
		Rate:    speech.RateFromSpeed(speed),
		Pitch:   pitch,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"audio_url":            res.AudioURL,
		"duration":             res.DurationSeconds,
		"word_timestamps":      res.WordTimings,
		"consumed_characters":  res.ConsumedChars,
		"remaining_characters": res.RemainingChars,
	})
}

// fail maps gateway errors to responses. Only vendor validation messages
// reach the client verbatim.
func (h *Handler) fail(c *gin.Context, err error) {
	telemetry.Error("tts.failed", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"error":      err.Error(),
	})

	var se *speech.Error
	if !errors.As(err, &se) {
		respond.Error(c, http.StatusInternalServerError, "tts_failed", msgGenericFailure)
		return
	}
	switch se.Kind {
	case speech.KindValidation:
		respond.Error(c, http.StatusBadRequest, "tts_rejected", se.Message)
	case speech.KindAuth:
		respond.Error(c, http.StatusInternalServerError, "tts_config", msgConfigError)
	case speech.KindRateLimit:
		respond.Error(c, http.StatusInternalServerError, "tts_rate_limited", msgRateLimited)
	default:
		respond.Error(c, http.StatusInternalServerError, "tts_failed", msgGenericFailure)
	}
}

func (h *Handler) listVoices(c *gin.Context) {
	respond.Success(c, http.StatusOK, "", gin.H{"voices": h.voices})
}
