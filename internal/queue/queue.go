// Package queue publishes computed summaries to a message broker.
package queue

import "context"

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes several messages and waits for them to be accepted.
	// Returns the number of successfully published messages and any error
	PublishBatch(ctx context.Context, messages []Message) (int, error)

	// Close closes the connection
	Close() error
}

// Message is one payload addressed to a subject
type Message struct {
	Subject string
	Data    []byte
}
