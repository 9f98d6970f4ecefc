package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"docsum-backend/internal/bootstrap"
	"docsum-backend/internal/shared/config"
	"docsum-backend/internal/shared/storage/db"
	"docsum-backend/internal/shared/telemetry"
	"docsum-backend/internal/workerproc"
)

const (
	defaultQueueGroup         = "docsum-workers"
	defaultWorkerConcurrency  = 4
	defaultJobTimeoutSec      = 300
	defaultShutdownTimeoutSec = 30
)

func main() {
	cfg := config.Load()
	cfg.Role = db.RoleWorker
	if strings.TrimSpace(cfg.NATSURL) == "" {
		telemetry.Error("worker.config_invalid", map[string]any{"error": "NATS_URL is required"})
		os.Exit(1)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("worker.bootstrap_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &workerproc.Worker{
		Conn:            app.NATS,
		Subject:         cfg.NATSSubject,
		QueueGroup:      envString("WORKER_QUEUE_GROUP", defaultQueueGroup),
		Proc:            app.Pipeline,
		Concurrency:     envInt("WORKER_CONCURRENCY", defaultWorkerConcurrency),
		JobTimeout:      time.Duration(envInt("WORKER_JOB_TIMEOUT_SECONDS", defaultJobTimeoutSec)) * time.Second,
		ShutdownTimeout: time.Duration(envInt("WORKER_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second,
	}
	if err := w.Run(ctx); err != nil {
		telemetry.Error("worker.stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
