package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/epistats/epistats/internal/utils"
)

var ErrPublisherClosed = errors.New("publisher closed")

// MemoryPublisher keeps published messages in per-subject buffers. It backs
// dry runs and tests.
type MemoryPublisher struct {
	channels map[string]chan []byte
	capacity int
	closed   bool
	mu       sync.RWMutex
}

func newMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{
		channels: make(map[string]chan []byte),
		capacity: utils.MemoryQueueCapacity,
	}
}

// getOrCreateChannel returns existing channel or creates new one
func (q *MemoryPublisher) getOrCreateChannel(subject string) (chan []byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrPublisherClosed
	}
	if ch, exists := q.channels[subject]; exists {
		return ch, nil
	}

	ch := make(chan []byte, q.capacity)
	q.channels[subject] = ch
	return ch, nil
}

// Publish buffers a copy of data under subject
func (q *MemoryPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	ch, err := q.getOrCreateChannel(subject)
	if err != nil {
		return err
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case ch <- dataCopy:
		return nil
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// PublishBatch publishes each message in turn
func (q *MemoryPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	successCount := 0
	var lastErr error

	for _, msg := range messages {
		if err := q.Publish(ctx, msg.Subject, msg.Data); err != nil {
			lastErr = err
			continue
		}
		successCount++
	}

	if lastErr != nil && successCount == 0 {
		return 0, fmt.Errorf("failed to publish batch: %w", lastErr)
	}
	return successCount, nil
}

// Drain removes and returns everything buffered for subject
func (q *MemoryPublisher) Drain(subject string) [][]byte {
	q.mu.RLock()
	ch, exists := q.channels[subject]
	q.mu.RUnlock()
	if !exists {
		return nil
	}

	var out [][]byte
	for {
		select {
		case data, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, data)
		default:
			return out
		}
	}
}

// Subjects returns the subjects that have received messages
func (q *MemoryPublisher) Subjects() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	subjects := make([]string, 0, len(q.channels))
	for s := range q.channels {
		subjects = append(subjects, s)
	}
	return subjects
}

// GetPendingCount returns the number of buffered messages for a subject
func (q *MemoryPublisher) GetPendingCount(subject string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if ch, exists := q.channels[subject]; exists {
		return len(ch)
	}
	return 0
}

// Close rejects further publishes. Buffered messages stay drainable.
func (q *MemoryPublisher) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	return nil
}
