package queue

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"
	"time"
)

func getKafkaBrokers() []string {
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		return strings.Split(brokers, ",")
	}
	return []string{"localhost:9092"}
}

// isKafkaAvailable checks if a broker accepts connections
func isKafkaAvailable() bool {
	conn, err := net.DialTimeout("tcp", getKafkaBrokers()[0], 500*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func TestNewKafkaPublisher_NoBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(KafkaConfig{}); err == nil {
		t.Error("Expected error when no brokers configured")
	}
}

func TestNewKafkaPublisher_Defaults(t *testing.T) {
	pub, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("Failed to create Kafka publisher: %v", err)
	}
	defer func() { _ = pub.Close() }()

	if pub.config.BatchSize != 100 {
		t.Errorf("Expected default batch size 100, got %d", pub.config.BatchSize)
	}
	if pub.config.MaxRetries != 3 {
		t.Errorf("Expected default retries 3, got %d", pub.config.MaxRetries)
	}
	if pub.config.BatchTimeout != 10*time.Millisecond {
		t.Errorf("Expected default batch timeout 10ms, got %v", pub.config.BatchTimeout)
	}
}

func TestKafkaPublisher_GetOrCreateWriter(t *testing.T) {
	pub, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("Failed to create Kafka publisher: %v", err)
	}
	defer func() { _ = pub.Close() }()

	w1 := pub.getOrCreateWriter("epistats.summary.NGA")
	w2 := pub.getOrCreateWriter("epistats.summary.NGA")
	if w1 != w2 {
		t.Error("Expected the same writer for the same topic")
	}
	if w1.Topic != "epistats.summary.NGA" {
		t.Errorf("Unexpected topic %s", w1.Topic)
	}
	if stats := pub.Stats("epistats.summary.NGA"); stats.Topic != "epistats.summary.NGA" {
		t.Errorf("Unexpected stats topic %q", stats.Topic)
	}
	if stats := pub.Stats("unknown"); stats.Writes != 0 {
		t.Error("Expected empty stats for unknown topic")
	}
}

func TestTopicKey(t *testing.T) {
	if got := string(topicKey("epistats.summary.NGA")); got != "NGA" {
		t.Errorf("Expected NGA, got %s", got)
	}
	if got := string(topicKey("plain")); got != "plain" {
		t.Errorf("Expected plain, got %s", got)
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	if !isKafkaAvailable() {
		t.Skip("Kafka not available")
	}

	pub, err := NewKafkaPublisher(KafkaConfig{Brokers: getKafkaBrokers()})
	if err != nil {
		t.Fatalf("Failed to create Kafka publisher: %v", err)
	}
	defer func() { _ = pub.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	n, err := pub.PublishBatch(ctx, []Message{
		{Subject: "epistats-test", Data: []byte("a")},
		{Subject: "epistats-test", Data: []byte("b")},
	})
	if err != nil {
		t.Fatalf("PublishBatch failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 published, got %d", n)
	}
}
