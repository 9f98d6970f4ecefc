package speech

import (
	"context"
	"errors"
	"strings"
	"time"

	"docsum-backend/internal/shared/metrics"
	"docsum-backend/internal/shared/telemetry"
)

const (
	// DefaultFallbackVoice is the last voice tried before giving up.
	DefaultFallbackVoice = "en-US"
	// DefaultAttemptTimeout bounds each vendor call.
	DefaultAttemptTimeout = 30 * time.Second
)

// Strategy names one voice-selection attempt.
type Strategy string

const (
	StrategyExplicitVoice Strategy = "explicit_voice"
	StrategyDefaultVoice  Strategy = "default_voice"
	StrategyFallbackVoice Strategy = "fallback_voice"
)

// Options tune a Gateway.
type Options struct {
	FallbackVoice  string
	AttemptTimeout time.Duration
	Format         string
}

// Gateway synthesizes speech by walking the voice strategies in order until
// the vendor accepts one.
type Gateway struct {
	vendor   Vendor
	fallback string
	timeout  time.Duration
	format   string
}

// NewGateway wraps vendor with the strategy ladder.
func NewGateway(vendor Vendor, opts Options) *Gateway {
	g := &Gateway{
		vendor:   vendor,
		fallback: strings.TrimSpace(opts.FallbackVoice),
		timeout:  opts.AttemptTimeout,
		format:   opts.Format,
	}
	if g.fallback == "" {
		g.fallback = DefaultFallbackVoice
	}
	if g.timeout <= 0 {
		g.timeout = DefaultAttemptTimeout
	}
	if g.format == "" {
		g.format = DefaultFormat
	}
	return g
}

type attempt struct {
	strategy Strategy
	voiceID  string
}

// Synthesize converts already-cleaned text to audio. The returned error is the
// one produced by the last strategy tried.
func (g *Gateway) Synthesize(ctx context.Context, text, voiceID string) (Result, error) {
	return g.SynthesizeRequest(ctx, Request{Text: text, VoiceID: voiceID})
}

// SynthesizeRequest is Synthesize with rate and pitch control.
func (g *Gateway) SynthesizeRequest(ctx context.Context, base Request) (Result, error) {
	if strings.TrimSpace(base.Text) == "" {
		return Result{}, ErrNoText
	}
	if g.vendor == nil {
		return Result{}, ErrMissingCredential
	}
	start := time.Now()
	defer func() { metrics.ObserveTTSDuration(time.Since(start)) }()

	var lastErr error
	for i, a := range g.plan(base.VoiceID) {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		req := base
		req.VoiceID = a.voiceID
		if req.Format == "" {
			req.Format = g.format
		}

		res, err := g.try(ctx, req)
		if err == nil {
			metrics.ObserveTTSAttempt(string(a.strategy), "success")
			telemetry.Info("tts.attempt", map[string]any{
				"strategy": a.strategy,
				"attempt":  i + 1,
				"voice_id": a.voiceID,
				"outcome":  "success",
				"chars":    len([]rune(req.Text)),
			})
			return res, nil
		}

		metrics.ObserveTTSAttempt(string(a.strategy), KindOf(err).String())
		telemetry.Warn("tts.attempt", map[string]any{
			"strategy": a.strategy,
			"attempt":  i + 1,
			"voice_id": a.voiceID,
			"outcome":  KindOf(err).String(),
			"error":    err.Error(),
		})
		lastErr = err
		// A missing credential fails identically for every voice.
		if errors.Is(err, ErrMissingCredential) {
			break
		}
	}
	return Result{}, lastErr
}

func (g *Gateway) try(ctx context.Context, req Request) (Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.vendor.Generate(attemptCtx, req)
}

func (g *Gateway) plan(voiceID string) []attempt {
	steps := make([]attempt, 0, 3)
	if v := strings.TrimSpace(voiceID); v != "" {
		steps = append(steps, attempt{strategy: StrategyExplicitVoice, voiceID: v})
	}
	steps = append(steps,
		attempt{strategy: StrategyDefaultVoice},
		attempt{strategy: StrategyFallbackVoice, voiceID: g.fallback},
	)
	return steps
}
