package workerproc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"docsum-backend/internal/queue"
	"docsum-backend/internal/shared/telemetry"
)

const (
	defaultConcurrency     = 4
	defaultJobTimeout      = 5 * time.Minute
	defaultShutdownTimeout = 30 * time.Second
)

// Worker consumes processing messages from NATS.
type Worker struct {
	Conn            *nats.Conn
	Subject         string
	QueueGroup      string
	Proc            Processor
	Concurrency     int
	JobTimeout      time.Duration
	ShutdownTimeout time.Duration
}

// Run blocks until ctx is done. It then drains the subscription, so messages
// already delivered to this worker still run, and waits for in-flight jobs up
// to the shutdown timeout.
func (w *Worker) Run(ctx context.Context) error {
	concurrency := w.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	jobTimeout := w.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}
	shutdownTimeout := w.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	// stopped is set once the subscription has drained; wg.Add must not run
	// after that point because Wait may already be in progress.
	var mu sync.Mutex
	stopped := false

	handle := func(m *nats.Msg) {
		sem <- struct{}{}
		mu.Lock()
		if stopped {
			mu.Unlock()
			<-sem
			telemetry.Warn("worker.job.dropped", map[string]any{"subject": m.Subject, "body_len": len(m.Data)})
			return
		}
		wg.Add(1)
		mu.Unlock()
		body := string(m.Data)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			w.handle(jobCtx, body)
		}()
	}

	telemetry.Info("worker.started", map[string]any{
		"subject":     w.Subject,
		"queue_group": w.QueueGroup,
		"concurrency": concurrency,
	})
	err := queue.Subscribe(ctx, w.Conn, w.Subject, w.QueueGroup, handle)
	mu.Lock()
	stopped = true
	mu.Unlock()

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", map[string]any{"timeout_ms": shutdownTimeout.Milliseconds()})
	}
	return err
}

func (w *Worker) handle(ctx context.Context, body string) {
	start := time.Now()
	err := HandleMessage(ctx, w.Proc, body)
	if err == nil {
		telemetry.Info("worker.job.done", map[string]any{"duration_ms": time.Since(start).Milliseconds()})
		return
	}

	fields := map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
		"error":       err.Error(),
	}
	var procErr ErrProcess
	var decodeErr ErrDecode
	var missingErr ErrMissingDocumentID
	switch {
	case errors.As(err, &procErr):
		fields["document_id"] = procErr.DocumentID
		fields["request_id"] = procErr.RequestID
	case errors.As(err, &decodeErr):
		fields["body_len"] = decodeErr.Meta.BodyLen
		fields["body_sha"] = decodeErr.Meta.BodySHA
	case errors.As(err, &missingErr):
		fields["request_id"] = missingErr.RequestID
		fields["body_sha"] = missingErr.Meta.BodySHA
	}
	telemetry.Error("worker.job.failed", fields)
}
