package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"docsum-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Role            string // set by the binary; sizes the DB pool
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string
	PublicBaseURL   string
	// FetchHosts limits which hosts document URLs may point at.
	FetchHosts      []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	UploadsBucket   string
	UploadsPrefix   string

	LLMProvider   string
	LLMModel      string
	OpenAIAPIKey  string
	OpenAITimeout time.Duration

	TTSProvider      string
	MurfAPIKey       string
	MurfBaseURL      string
	ElevenLabsAPIKey string
	TTSFallbackVoice string
	TTSTimeout       time.Duration
	TTSRatePerMinute int
	VoicesFile       string

	NATSURL     string
	NATSSubject string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL"})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DatabaseURL:     dbURL,
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		FetchHosts:      splitAndTrim(getEnv("FETCH_ALLOWED_HOSTS", "")),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		UploadsBucket:   getEnv("UPLOADS_S3_BUCKET", ""),
		UploadsPrefix:   getEnv("UPLOADS_S3_PREFIX", "uploads/"),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAITimeout: getSeconds("OPENAI_TIMEOUT_SECONDS", 120),

		TTSProvider:      normalizeTTSProvider(getEnv("TTS_PROVIDER", "murf")),
		MurfAPIKey:       getEnv("MURF_API_KEY", ""),
		MurfBaseURL:      strings.TrimRight(getEnv("MURF_BASE_URL", "https://api.murf.ai"), "/"),
		ElevenLabsAPIKey: getEnv("ELEVENLABS_API_KEY", ""),
		TTSFallbackVoice: getEnv("TTS_FALLBACK_VOICE", "en-US"),
		TTSTimeout:       getSeconds("TTS_TIMEOUT_SECONDS", 30),
		TTSRatePerMinute: getInt("TTS_RATE_PER_MINUTE", 20),
		VoicesFile:       getEnv("VOICES_FILE", ""),

		NATSURL:     getEnv("NATS_URL", ""),
		NATSSubject: getEnv("NATS_SUBJECT", "docsum.documents.process"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getSeconds(key string, def int) time.Duration {
	n := getInt(key, def)
	if n == 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeTTSProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "elevenlabs", "eleven":
		return "elevenlabs"
	default:
		return "murf"
	}
}
