package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "docsum-backend/internal/auth"
	"docsum-backend/internal/documents"
	"docsum-backend/internal/services/health"
	"docsum-backend/internal/shared/config"
	"docsum-backend/internal/shared/metrics"
	"docsum-backend/internal/shared/server/middleware"
	"docsum-backend/internal/shared/server/respond"
	"docsum-backend/internal/summaries"
	"docsum-backend/internal/tts"
	"docsum-backend/internal/uploads"
	"docsum-backend/internal/users"
)

const (
	rateGroupTTS     = "TTS"
	rateGroupDefault = "DEFAULT"
)

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config     config.Config
	Health     *health.Service
	Documents  *documents.Handler
	Summaries  *summaries.Handler
	TTS        *tts.Handler
	Uploads    *uploads.Handler
	Users      *users.Handler
	GoogleAuth *googleauth.GoogleService
	// Now drives the rate limiter clock; tests inject a fixed clock.
	Now func() time.Time
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		payload, ok := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(api)
	}
	if deps.Summaries != nil {
		deps.Summaries.RegisterRoutes(api)
	}
	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(api)
	}
	if deps.TTS != nil {
		perMinute := deps.Config.TTSRatePerMinute
		if perMinute <= 0 {
			perMinute = 20
		}
		ttsGroup := api.Group("", middleware.RequireUser(), middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateGroupTTS: {Rate: float64(perMinute) / 60.0, Burst: perMinute},
			},
			DefaultGroup: rateGroupDefault,
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost {
					return rateGroupTTS
				}
				return rateGroupDefault
			},
			Limiter: middleware.NewRateLimiter(deps.Now),
		}))
		deps.TTS.RegisterRoutes(ttsGroup)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
