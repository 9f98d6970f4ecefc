package workerproc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum-backend/internal/queue"
)

type syncProcessor struct {
	mu  sync.Mutex
	ids []string
}

func (p *syncProcessor) ProcessDocument(ctx context.Context, documentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, documentID)
	return nil
}

func (p *syncProcessor) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ids...)
}

func connectTestServer(t *testing.T) *nats.Conn {
	t.Helper()
	opts := test.DefaultTestOptions
	opts.Port = -1
	server := test.RunServer(&opts)
	t.Cleanup(server.Shutdown)

	conn, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn
}

// slowProcessor counts jobs that started and finished.
type slowProcessor struct {
	delay    time.Duration
	started  atomic.Int32
	finished atomic.Int32
}

func (p *slowProcessor) ProcessDocument(ctx context.Context, documentID string) error {
	p.started.Add(1)
	defer p.finished.Add(1)
	time.Sleep(p.delay)
	return nil
}

func TestWorkerProcessesPublishedDocuments(t *testing.T) {
	conn := connectTestServer(t)

	proc := &syncProcessor{}
	w := &Worker{Conn: conn, Subject: "docsum.documents.process", QueueGroup: "workers", Proc: proc, Concurrency: 2}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	pub := queue.NewNATSClient(conn, "docsum.documents.process")
	require.Eventually(t, func() bool {
		_ = pub.PublishProcess(context.Background(), "doc-a", "req-a")
		return len(proc.seen()) > 0
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Contains(t, proc.seen(), "doc-a")
}

func TestWorkerFinishesBufferedJobsBeforeReturning(t *testing.T) {
	conn := connectTestServer(t)
	const subject = "docsum.documents.drain"
	const total = 5

	proc := &slowProcessor{delay: 30 * time.Millisecond}
	w := &Worker{Conn: conn, Subject: subject, QueueGroup: "workers", Proc: proc, Concurrency: 1, ShutdownTimeout: 10 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	require.Eventually(t, func() bool { return conn.NumSubscriptions() == 1 }, 3*time.Second, 10*time.Millisecond)

	pub := queue.NewNATSClient(conn, subject)
	for i := 0; i < total; i++ {
		require.NoError(t, pub.PublishProcess(context.Background(), fmt.Sprintf("doc-%d", i), ""))
	}
	require.NoError(t, conn.Flush())
	require.Eventually(t, func() bool { return proc.started.Load() > 0 }, 3*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, int32(total), proc.started.Load())
	assert.Equal(t, int32(total), proc.finished.Load())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(total), proc.started.Load(), "no job may start after Run returns")
}
