package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the API server
	ShutdownTimeout = 10 * time.Second
)

// Publisher Timeouts
const (
	// PublishTimeout is the timeout for publishing one run of summaries
	PublishTimeout = 30 * time.Second

	// QueueConnectTimeout is the timeout for reaching a broker at startup
	QueueConnectTimeout = 5 * time.Second
)

// =============================================================================
// Retry and Backoff Constants
// =============================================================================

const (
	// DefaultMaxRetries is the default number of retry attempts
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the default backoff duration between retries
	DefaultRetryBackoff = 100 * time.Millisecond
)

// =============================================================================
// Buffer and Batch Size Constants
// =============================================================================

const (
	// DefaultBatchSize is the default producer batch size
	DefaultBatchSize = 100

	// MemoryQueueCapacity is the per-subject buffer of the in-memory publisher
	MemoryQueueCapacity = 10000
)

// =============================================================================
// API Limits
// =============================================================================

const (
	// MaxWeightsLength caps n on the weights endpoint
	MaxWeightsLength = 1000

	// MaxSnapshotYears caps the number of years in one region snapshot request
	MaxSnapshotYears = 50
)

// =============================================================================
// Queue Type Constants
// =============================================================================
// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS core publishing
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents the in-memory publisher (default)
	QueueTypeMemory QueueType = "memory"
)
