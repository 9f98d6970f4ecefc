package elevenlabs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/haguro/elevenlabs-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum-backend/internal/shared/storage/object/local"
	"docsum-backend/internal/speech"
)

func newTestClient(t *testing.T, fn synthesizeFunc) (*Client, *local.Store) {
	t.Helper()
	store := local.New(t.TempDir(), "http://localhost:8080")
	c := NewClient("key", store, 0)
	c.synthesize = fn
	return c, store
}

func TestGenerateStoresAudioAndReturnsURL(t *testing.T) {
	var gotVoice string
	var gotReq elevenlabs.TextToSpeechRequest
	c, store := newTestClient(t, func(ctx context.Context, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, error) {
		gotVoice = voiceID
		gotReq = req
		return []byte("ID3fake-mp3"), nil
	})

	res, err := c.Generate(context.Background(), speech.Request{Text: "héllo", VoiceID: "custom-voice"})
	require.NoError(t, err)

	assert.Equal(t, "custom-voice", gotVoice)
	assert.Equal(t, "héllo", gotReq.Text)
	assert.Equal(t, DefaultModelID, gotReq.ModelID)
	assert.Equal(t, 5, res.ConsumedChars)
	assert.True(t, strings.HasPrefix(res.AudioURL, "http://localhost:8080/api/v1/files/tts/"))

	key := strings.TrimPrefix(res.AudioURL, "http://localhost:8080/api/v1/files/")
	rc, err := store.Open(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "ID3fake-mp3", string(body))
}

func TestResolveVoiceMapsLocaleIDsToDefault(t *testing.T) {
	c := NewClient("key", nil, 0)
	assert.Equal(t, DefaultVoiceID, c.resolveVoice(""))
	assert.Equal(t, DefaultVoiceID, c.resolveVoice("en-US"))
	assert.Equal(t, DefaultVoiceID, c.resolveVoice("en-US-amy"))
	assert.Equal(t, "pNInz6obpgDQGcFmaJgB", c.resolveVoice("pNInz6obpgDQGcFmaJgB"))
}

func TestGenerateMissingKey(t *testing.T) {
	c := NewClient("", nil, 0)
	_, err := c.Generate(context.Background(), speech.Request{Text: "x"})
	assert.ErrorIs(t, err, speech.ErrMissingCredential)
}

func TestGenerateClassifiesErrors(t *testing.T) {
	cases := map[string]speech.Kind{
		"status 401: invalid_api_key":   speech.KindAuth,
		"status 429: too many requests": speech.KindRateLimit,
		"status 422: validation failed": speech.KindValidation,
		"dial tcp: connection refused":  speech.KindTransport,
	}
	for msg, kind := range cases {
		t.Run(msg, func(t *testing.T) {
			c, _ := newTestClient(t, func(context.Context, string, elevenlabs.TextToSpeechRequest) ([]byte, error) {
				return nil, errors.New(msg)
			})
			_, err := c.Generate(context.Background(), speech.Request{Text: "x"})
			assert.Equal(t, kind, speech.KindOf(err))
		})
	}
}
