package playback

import (
	"context"
	"strings"
	"sync"

	"docsum-backend/internal/shared/telemetry"
	"docsum-backend/internal/textclean"
)

// Options configure a Controller.
type Options struct {
	DocumentID string
	Text       string
	VoiceID    string
	// AudioURL, when set, starts the controller in Ready.
	AudioURL string
	// OnChange receives a snapshot after every transition.
	OnChange func(Snapshot)
}

// Controller is the playback state machine. Methods are safe for concurrent
// use; OnChange is called without the lock held.
type Controller struct {
	gen      Generator
	persist  Persister
	onChange func(Snapshot)

	mu         sync.Mutex
	documentID string
	text       string
	voiceID    string
	state      State
	audioURL   string
	position   float64
	duration   float64
	volume     float64
	muted      bool
	speed      float64
	errMsg     string
}

// NewController returns a controller in NoAudio, or Ready when opts.AudioURL is set.
// persist may be nil.
func NewController(gen Generator, persist Persister, opts Options) *Controller {
	c := &Controller{
		gen:        gen,
		persist:    persist,
		onChange:   opts.OnChange,
		documentID: opts.DocumentID,
		text:       opts.Text,
		voiceID:    opts.VoiceID,
		state:      StateNoAudio,
		volume:     1,
		speed:      1,
	}
	if strings.TrimSpace(opts.AudioURL) != "" {
		c.audioURL = opts.AudioURL
		c.state = StateReady
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:    c.state,
		AudioURL: c.audioURL,
		Position: c.position,
		Duration: c.duration,
		Volume:   c.volume,
		Muted:    c.muted,
		Speed:    c.speed,
		Error:    c.errMsg,
	}
}

func (c *Controller) emit(snaps ...Snapshot) {
	if c.onChange == nil {
		return
	}
	for _, s := range snaps {
		c.onChange(s)
	}
}

// commit captures a snapshot and unlocks. Callers hold c.mu.
func (c *Controller) commit() Snapshot {
	s := c.snapshotLocked()
	c.mu.Unlock()
	return s
}

// TogglePlay starts generation from NoAudio, toggles Playing and Paused, and
// resumes from Ready. It is ignored while Generating. Generation runs on the
// caller's goroutine and its error is returned.
func (c *Controller) TogglePlay(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateNoAudio:
		return c.startGenerationLocked(ctx)
	case StateReady, StatePaused:
		c.state = StatePlaying
	case StatePlaying:
		c.state = StatePaused
	default:
		c.mu.Unlock()
		return nil
	}
	c.emit(c.commit())
	return nil
}

// Regenerate drops the current audio and synthesizes again. A non-empty text
// replaces the source text first.
func (c *Controller) Regenerate(ctx context.Context, text string) error {
	c.mu.Lock()
	if c.state == StateGenerating {
		c.mu.Unlock()
		return nil
	}
	if strings.TrimSpace(text) != "" {
		c.text = text
	}
	c.audioURL = ""
	c.position = 0
	c.duration = 0
	c.state = StateNoAudio
	return c.startGenerationLocked(ctx)
}

// startGenerationLocked is entered with c.mu held and releases it.
func (c *Controller) startGenerationLocked(ctx context.Context) error {
	text := textclean.Truncate(textclean.Speech(c.text), textclean.MaxSpeechChars)
	if text == "" {
		c.errMsg = MsgNoText
		c.emit(c.commit())
		return ErrNoText
	}
	c.state = StateGenerating
	c.errMsg = ""
	req := GenerateRequest{Text: text, VoiceID: c.voiceID}
	c.emit(c.commit())

	url, err := c.gen.Generate(ctx, req)
	if err != nil {
		c.GenerationFailed(err)
		return err
	}
	c.GenerationSucceeded(ctx, url)
	return nil
}

// GenerationSucceeded moves Generating to Ready and immediately to Playing,
// then saves the URL on the document.
func (c *Controller) GenerationSucceeded(ctx context.Context, audioURL string) {
	c.mu.Lock()
	if c.state != StateGenerating {
		c.mu.Unlock()
		return
	}
	c.audioURL = audioURL
	c.position = 0
	c.duration = 0
	c.state = StateReady
	ready := c.snapshotLocked()
	c.state = StatePlaying
	documentID := c.documentID
	playing := c.commit()
	c.emit(ready, playing)

	if c.persist == nil || documentID == "" {
		return
	}
	if err := c.persist.PersistAudio(ctx, documentID, audioURL); err != nil {
		telemetry.Warn("playback.persist_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}
}

// GenerationFailed passes through GenerationFailed and settles in NoAudio
// with the user-facing message retained.
func (c *Controller) GenerationFailed(err error) {
	c.mu.Lock()
	if c.state != StateGenerating {
		c.mu.Unlock()
		return
	}
	c.state = StateGenerationFailed
	c.errMsg = UserMessage(err)
	failed := c.snapshotLocked()
	c.state = StateNoAudio
	c.emit(failed, c.commit())
}

// MetadataLoaded records the media duration.
func (c *Controller) MetadataLoaded(duration float64) {
	c.mu.Lock()
	c.duration = duration
	c.emit(c.commit())
}

// TimeUpdate records the playback position.
func (c *Controller) TimeUpdate(pos float64) {
	c.mu.Lock()
	if pos < 0 {
		pos = 0
	}
	c.position = pos
	c.emit(c.commit())
}

// Ended returns to Ready at position 0.
func (c *Controller) Ended() {
	c.mu.Lock()
	if c.state != StatePlaying && c.state != StatePaused {
		c.mu.Unlock()
		return
	}
	c.state = StateReady
	c.position = 0
	c.emit(c.commit())
}

// MediaError drops audio that failed to load so the next toggle regenerates it.
func (c *Controller) MediaError() {
	c.mu.Lock()
	if c.state == StateGenerating {
		c.mu.Unlock()
		return
	}
	c.state = StateNoAudio
	c.audioURL = ""
	c.position = 0
	c.duration = 0
	c.errMsg = MsgMediaFailed
	c.emit(c.commit())
}

// Seek moves to offset/width of the duration. It reports false while the
// duration is unknown.
func (c *Controller) Seek(offset, width float64) (float64, bool) {
	c.mu.Lock()
	if !knownDuration(c.duration) || width <= 0 {
		c.mu.Unlock()
		return 0, false
	}
	c.position = clamp01(offset/width) * c.duration
	pos := c.position
	c.emit(c.commit())
	return pos, true
}

// SetVolume clamps v into [0,1]. Mute is left unchanged.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	c.volume = clamp01(v)
	c.emit(c.commit())
}

// ToggleMute flips mute while remembering the volume.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	c.muted = !c.muted
	c.emit(c.commit())
}

// SetSpeed accepts only values from Speeds.
func (c *Controller) SetSpeed(s float64) error {
	if !validSpeed(s) {
		return ErrUnsupportedSpeed
	}
	c.mu.Lock()
	c.speed = s
	c.emit(c.commit())
	return nil
}

// Reset clears audio and errors. Volume, mute and speed are kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state = StateNoAudio
	c.audioURL = ""
	c.position = 0
	c.duration = 0
	c.errMsg = ""
	c.emit(c.commit())
}
