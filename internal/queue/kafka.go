package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/epistats/epistats/internal/utils"
	"github.com/segmentio/kafka-go"
)

// KafkaConfig represents Apache Kafka producer configuration
type KafkaConfig struct {
	Brokers      []string      // Kafka broker addresses
	BatchSize    int           // Batch size for producer (default: 100)
	BatchTimeout time.Duration // Batch timeout for producer (default: 10ms)
	RequiredAcks int           // Required acks: 0=none, 1=leader, -1=all (default: 1)
	MaxRetries   int           // Max attempts per write (default: 3)
}

// KafkaPublisher writes each subject to a topic of the same name. Subjects
// are used as topics, so dots are kept.
type KafkaPublisher struct {
	config  KafkaConfig
	writers map[string]*kafka.Writer
	mu      sync.Mutex
}

func newKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = utils.DefaultBatchSize
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = int(kafka.RequireOne)
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = utils.DefaultMaxRetries
	}

	return &KafkaPublisher{
		config:  cfg,
		writers: make(map[string]*kafka.Writer),
	}, nil
}

// getOrCreateWriter returns existing writer or creates a new one for the topic
func (q *KafkaPublisher) getOrCreateWriter(topic string) *kafka.Writer {
	q.mu.Lock()
	defer q.mu.Unlock()

	if writer, exists := q.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(q.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              q.config.BatchSize,
		BatchTimeout:           q.config.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(q.config.RequiredAcks),
		MaxAttempts:            q.config.MaxRetries,
		WriteBackoffMin:        utils.DefaultRetryBackoff,
		AllowAutoTopicCreation: true,
	}

	q.writers[topic] = writer
	return writer
}

// topicKey partitions by the last subject token, the ISO-3 code for summaries
func topicKey(subject string) []byte {
	if i := strings.LastIndexByte(subject, '.'); i >= 0 {
		return []byte(subject[i+1:])
	}
	return []byte(subject)
}

// Publish publishes a message to a Kafka topic
func (q *KafkaPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	writer := q.getOrCreateWriter(subject)

	err := writer.WriteMessages(ctx, kafka.Message{
		Key:   topicKey(subject),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", subject, err)
	}

	return nil
}

// PublishBatch groups messages by topic and writes each group at once
func (q *KafkaPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	topicMessages := make(map[string][]kafka.Message)
	now := time.Now()
	for _, msg := range messages {
		topicMessages[msg.Subject] = append(topicMessages[msg.Subject], kafka.Message{
			Key:   topicKey(msg.Subject),
			Value: msg.Data,
			Time:  now,
		})
	}

	successCount := 0
	var lastErr error

	for topic, msgs := range topicMessages {
		if err := q.getOrCreateWriter(topic).WriteMessages(ctx, msgs...); err != nil {
			lastErr = err
			continue
		}
		successCount += len(msgs)
	}

	if lastErr != nil && successCount == 0 {
		return 0, fmt.Errorf("failed to publish batch: %w", lastErr)
	}

	return successCount, nil
}

// Close closes all writers
func (q *KafkaPublisher) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var lastErr error
	for topic, writer := range q.writers {
		if err := writer.Close(); err != nil {
			lastErr = err
		}
		delete(q.writers, topic)
	}

	return lastErr
}

// Stats returns writer stats for a topic (for monitoring)
func (q *KafkaPublisher) Stats(topic string) kafka.WriterStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	if writer, exists := q.writers[topic]; exists {
		return writer.Stats()
	}
	return kafka.WriterStats{}
}
