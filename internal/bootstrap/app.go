package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"

	googleauth "docsum-backend/internal/auth"
	"docsum-backend/internal/documents"
	"docsum-backend/internal/extract"
	"docsum-backend/internal/queue"
	"docsum-backend/internal/services/health"
	"docsum-backend/internal/shared/config"
	"docsum-backend/internal/shared/server"
	"docsum-backend/internal/shared/storage/db"
	"docsum-backend/internal/shared/storage/object"
	localstore "docsum-backend/internal/shared/storage/object/local"
	s3store "docsum-backend/internal/shared/storage/object/s3"
	"docsum-backend/internal/shared/telemetry"
	"docsum-backend/internal/speech"
	"docsum-backend/internal/speech/elevenlabs"
	"docsum-backend/internal/speech/murf"
	"docsum-backend/internal/summaries"
	"docsum-backend/internal/summarize"
	openai "docsum-backend/internal/summarize/openai"
	"docsum-backend/internal/tts"
	"docsum-backend/internal/uploads"
	"docsum-backend/internal/users"
	"docsum-backend/internal/workerproc"
)

// App holds shared dependencies for the api, worker and CLI binaries.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	NATS             *nats.Conn
	Queue            *queue.NATSClient
	Presigner        uploads.Presigner
	Voices           []config.Voice
	DocumentsRepo    documents.DocumentsRepo
	UsersRepo        users.Repo
	DocumentsService *documents.Service
	UsersService     *users.Service
	Summarizer       summarize.Summarizer
	SummaryService   *summaries.Service
	Gateway          *speech.Gateway
	Pipeline         *workerproc.Pipeline
	Health           *health.Service
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	presigner, err := buildPresigner(ctx, cfg)
	if err != nil {
		return nil, err
	}

	conn, err := buildNATS(cfg)
	if err != nil {
		return nil, err
	}

	voices, err := config.LoadVoices(cfg.VoicesFile)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		NATS:      conn,
		Presigner: presigner,
		Voices:    voices,
	}
	if conn != nil {
		app.Queue = queue.NewNATSClient(conn, cfg.NATSSubject)
	}

	if err := buildServices(app); err != nil {
		app.Close()
		return nil, err
	}
	app.Router = buildRouter(app)
	return app, nil
}

// Close releases the database pool and drains the NATS connection.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.NATS != nil {
		_ = a.NATS.Drain()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(cfg.Role))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

// NewStore returns the configured object store.
func NewStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildPresigner(ctx context.Context, cfg config.Config) (uploads.Presigner, error) {
	if strings.TrimSpace(cfg.UploadsBucket) == "" {
		return nil, nil
	}
	store, err := s3store.New(ctx, cfg.AWSRegion, cfg.UploadsBucket, cfg.UploadsPrefix, cfg.SSEKMSKeyID)
	if err != nil {
		return nil, fmt.Errorf("uploads presigner: %w", err)
	}
	return store, nil
}

func buildNATS(cfg config.Config) (*nats.Conn, error) {
	if strings.TrimSpace(cfg.NATSURL) == "" {
		telemetry.Warn("bootstrap.queue.disabled", map[string]any{"reason": "NATS_URL empty"})
		return nil, nil
	}
	conn, err := queue.Connect(cfg.NATSURL, "docsum")
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

// NewSummarizer returns the OpenAI summarizer, or the placeholder when no key is set.
func NewSummarizer(cfg config.Config) (summarize.Summarizer, error) {
	if cfg.LLMProvider != "openai" || strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"provider": cfg.LLMProvider})
		return summarize.PlaceholderClient{}, nil
	}
	return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, openai.Options{Timeout: cfg.OpenAITimeout})
}

// NewGateway wraps the configured TTS vendor in the fallback gateway.
func NewGateway(cfg config.Config, store object.ObjectStore) *speech.Gateway {
	return speech.NewGateway(buildVendor(cfg, store), speech.Options{
		FallbackVoice:  cfg.TTSFallbackVoice,
		AttemptTimeout: cfg.TTSTimeout,
	})
}

func buildVendor(cfg config.Config, store object.ObjectStore) speech.Vendor {
	switch cfg.TTSProvider {
	case "elevenlabs":
		return elevenlabs.NewClient(cfg.ElevenLabsAPIKey, store, cfg.TTSTimeout)
	default:
		return murf.NewClient(cfg.MurfAPIKey, cfg.MurfBaseURL, &http.Client{Timeout: cfg.TTSTimeout})
	}
}

func buildServices(app *App) error {
	cfg := app.Config

	var docRepo documents.DocumentsRepo
	var userRepo users.Repo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	docSvc := &documents.Service{Repo: docRepo}
	if app.Queue != nil {
		docSvc.Publisher = app.Queue
	}

	summarizer, err := NewSummarizer(cfg)
	if err != nil {
		return err
	}

	fetcher := &extract.Fetcher{
		Client:       &http.Client{Timeout: extract.FetchTimeout},
		Store:        app.Store,
		AllowedHosts: fetchHosts(cfg),
	}
	if cfg.ObjectStoreType != "s3" {
		fetcher.LocalPrefix = cfg.PublicBaseURL + localstore.FilesRoute
	}

	summarySvc := &summaries.Service{Source: fetcher, Summarizer: summarizer}
	userSvc := users.NewService(userRepo)

	app.DocumentsRepo = docRepo
	app.UsersRepo = userRepo
	app.DocumentsService = docSvc
	app.UsersService = userSvc
	app.Summarizer = summarizer
	app.SummaryService = summarySvc
	app.Gateway = NewGateway(cfg, app.Store)
	app.Pipeline = &workerproc.Pipeline{Docs: docSvc, Summaries: summarySvc}
	app.Health = health.NewService(app.DB)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		userSvc,
	)
	return nil
}

// fetchHosts lists the hosts document URLs may point at: the configured
// extras, this server's public host and S3 when a bucket is in use.
func fetchHosts(cfg config.Config) []string {
	hosts := append([]string(nil), cfg.FetchHosts...)
	if u, err := url.Parse(cfg.PublicBaseURL); err == nil && u.Hostname() != "" {
		hosts = append(hosts, u.Hostname())
	}
	if cfg.S3Bucket != "" || cfg.UploadsBucket != "" {
		hosts = append(hosts, "amazonaws.com")
	}
	return hosts
}

func buildRouter(app *App) *gin.Engine {
	var uploadsHandler *uploads.Handler
	if app.Store != nil {
		uploadsHandler = uploads.NewHandler(app.Store, app.Presigner)
	}
	return server.NewRouter(server.RouterDeps{
		Config:     app.Config,
		Health:     app.Health,
		Documents:  documents.NewHandler(app.DocumentsService),
		Summaries:  summaries.NewHandler(app.SummaryService),
		TTS:        tts.NewHandler(app.Gateway, app.Voices),
		Uploads:    uploadsHandler,
		Users:      users.NewHandler(app.UsersService),
		GoogleAuth: app.GoogleAuth,
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
