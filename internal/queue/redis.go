package queue

import (
	"context"
	"fmt"

	"github.com/epistats/epistats/internal/utils"
	"github.com/redis/go-redis/v9"
)

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379)
	Password string // Optional password
	DB       int    // Database number (default: 0)
	Stream   string // Stream prefix (default: "epistats")
	MaxLen   int64  // Approximate cap on stream length, 0 for unbounded
}

// RedisPublisher appends messages to Redis Streams, one stream per subject
type RedisPublisher struct {
	client *redis.Client
	config RedisConfig
}

func newRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), utils.QueueConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.Stream == "" {
		cfg.Stream = "epistats"
	}

	return &RedisPublisher{client: client, config: cfg}, nil
}

// streamName converts a subject to a Redis stream name
func (q *RedisPublisher) streamName(subject string) string {
	return fmt.Sprintf("%s:%s", q.config.Stream, subject)
}

func (q *RedisPublisher) addArgs(subject string, data []byte) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: q.streamName(subject),
		ID:     "*",
		Values: map[string]interface{}{
			"data": data,
		},
	}
	if q.config.MaxLen > 0 {
		args.MaxLen = q.config.MaxLen
		args.Approx = true
	}
	return args
}

// Publish appends a message to the subject's stream
func (q *RedisPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.client.XAdd(ctx, q.addArgs(subject, data)).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", q.streamName(subject), err)
	}
	return nil
}

// PublishBatch publishes multiple messages using one pipeline
func (q *RedisPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pipe := q.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, q.addArgs(msg.Subject, msg.Data))
	}

	cmds, err := pipe.Exec(ctx)
	successCount := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			successCount++
		}
	}
	if err != nil && successCount == 0 {
		return 0, fmt.Errorf("failed to execute batch publish: %w", err)
	}

	return successCount, nil
}

// Close closes the Redis connection
func (q *RedisPublisher) Close() error {
	return q.client.Close()
}
