package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"docsum-backend/internal/shared/telemetry"
)

// FlushWithContext rejects contexts without a deadline.
const flushTimeout = 5 * time.Second

const drainPoll = 10 * time.Millisecond

// DrainTimeout bounds how long Subscribe waits for buffered messages to be
// handed to the callback after ctx is done.
var DrainTimeout = 30 * time.Second

// Connect dials NATS with reconnect handling suited to long-lived processes.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			fields := map[string]any{"name": name}
			if err != nil {
				fields["error"] = err.Error()
			}
			telemetry.Warn("nats.disconnected", fields)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			telemetry.Info("nats.reconnected", map[string]any{"name": name, "url": c.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return conn, nil
}

// Client publishes processing requests to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
	PublishProcess(ctx context.Context, documentID, requestID string) error
}

// NATSClient publishes processing requests on a subject.
type NATSClient struct {
	conn    *nats.Conn
	subject string
	now     func() time.Time
}

// NewNATSClient constructs a NATS-backed queue client.
func NewNATSClient(conn *nats.Conn, subject string) *NATSClient {
	return &NATSClient{conn: conn, subject: subject, now: time.Now}
}

// Send publishes msg and waits for the server to acknowledge the flush.
func (c *NATSClient) Send(ctx context.Context, msg Message) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode nats message: %w", err)
	}
	if err := c.conn.Publish(c.subject, payload); err != nil {
		return fmt.Errorf("nats publish subject=%s: %w", c.subject, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := c.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush subject=%s: %w", c.subject, err)
	}
	return nil
}

// PublishProcess queues documentID for summarization.
func (c *NATSClient) PublishProcess(ctx context.Context, documentID, requestID string) error {
	return c.Send(ctx, NewMessage(documentID, requestID, c.now()))
}

// Subscribe delivers messages from the subject to handle, load-balanced across
// members of queueGroup, until ctx is done. On exit the subscription is
// drained and Subscribe returns only after every buffered message has been
// passed to handle and handle has returned.
func Subscribe(ctx context.Context, conn *nats.Conn, subject, queueGroup string, handle func(*nats.Msg)) error {
	sub, err := conn.QueueSubscribe(subject, queueGroup, handle)
	if err != nil {
		return fmt.Errorf("subscribe subject=%s: %w", subject, err)
	}
	if err := conn.Flush(); err != nil {
		return fmt.Errorf("flush subscription subject=%s: %w", subject, err)
	}

	<-ctx.Done()

	if err := sub.Drain(); err != nil {
		return fmt.Errorf("drain subscription: %w", err)
	}
	return waitDrained(sub, DrainTimeout)
}

// waitDrained polls until the drained subscription is removed. Drain itself
// returns before pending callbacks have run.
func waitDrained(sub *nats.Subscription, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(drainPoll)
	defer tick.Stop()
	for sub.IsValid() {
		select {
		case <-deadline.C:
			pending, _, _ := sub.Pending()
			telemetry.Warn("queue.drain_timeout", map[string]any{
				"subject": sub.Subject,
				"pending": pending,
			})
			return fmt.Errorf("drain subscription %s: timed out with %d pending", sub.Subject, pending)
		case <-tick.C:
		}
	}
	return nil
}

var _ Client = (*NATSClient)(nil)
