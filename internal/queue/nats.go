package queue

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes with core NATS and flushes to confirm delivery to
// the server
type NATSPublisher struct {
	conn *nats.Conn
}

func newNATSPublisher(url string) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url, nats.Name("epistats-publisher"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

// newNATSPublisherWithConn wraps an existing connection (used in tests)
func newNATSPublisherWithConn(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// Publish publishes a message and waits for the server to acknowledge the flush
func (q *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	if err := q.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush subject %s: %w", subject, err)
	}
	return nil
}

// PublishBatch queues every message and flushes once
func (q *NATSPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	queued := 0
	var lastErr error
	for _, msg := range messages {
		if err := q.conn.Publish(msg.Subject, msg.Data); err != nil {
			lastErr = err
			continue
		}
		queued++
	}

	if err := q.conn.FlushWithContext(ctx); err != nil {
		return 0, fmt.Errorf("failed waiting for batch publish: %w", err)
	}
	if queued == 0 && lastErr != nil {
		return 0, fmt.Errorf("failed to publish batch: %w", lastErr)
	}

	return queued, nil
}

// Close drains pending messages and closes the connection
func (q *NATSPublisher) Close() error {
	if q.conn.IsClosed() {
		return nil
	}
	if err := q.conn.Drain(); err != nil {
		q.conn.Close()
		return err
	}
	return nil
}

// GetNATSConn returns the underlying NATS connection
func (q *NATSPublisher) GetNATSConn() *nats.Conn {
	return q.conn
}
