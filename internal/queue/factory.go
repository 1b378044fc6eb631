package queue

import (
	"fmt"
	"strings"

	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/utils"
)

// NewPublisher creates a Publisher from configuration. The in-memory
// publisher is used when no type is set.
func NewPublisher(cfg config.QueueConfig) (Publisher, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))

	if queueType == "" {
		queueType = utils.QueueTypeMemory
	}

	switch queueType {
	case utils.QueueTypeNATS:
		return newNATSPublisher(cfg.URL)

	case utils.QueueTypeRedis:
		return newRedisPublisher(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
		})

	case utils.QueueTypeKafka:
		return newKafkaPublisher(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
		})

	case utils.QueueTypeMemory:
		return newMemoryPublisher(), nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, kafka, memory)", queueType)
	}
}
