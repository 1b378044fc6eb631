package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/epistats/epistats/internal/services"
)

// DefaultSubject is the subject prefix for published summaries
const DefaultSubject = "epistats.summary"

// SummaryEnvelope is the payload of one published country summary
type SummaryEnvelope struct {
	RunID       string                   `json:"run_id"`
	PublishedAt time.Time                `json:"published_at"`
	Summary     *services.CountrySummary `json:"summary"`
}

// SummaryPublisher publishes country summaries on <prefix>.<ISO3>
type SummaryPublisher struct {
	publisher Publisher
	prefix    string
}

// NewSummaryPublisher wraps a Publisher. An empty prefix uses DefaultSubject.
func NewSummaryPublisher(publisher Publisher, prefix string) *SummaryPublisher {
	if prefix == "" {
		prefix = DefaultSubject
	}
	return &SummaryPublisher{publisher: publisher, prefix: prefix}
}

// Subject returns the subject for a country
func (p *SummaryPublisher) Subject(iso3 string) string {
	return p.prefix + "." + iso3
}

// Publish sends one message per summary as a single batch and returns the
// number accepted by the broker
func (p *SummaryPublisher) Publish(ctx context.Context, runID string, summaries []*services.CountrySummary) (int, error) {
	if len(summaries) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	messages := make([]Message, 0, len(summaries))
	for _, s := range summaries {
		data, err := json.Marshal(SummaryEnvelope{RunID: runID, PublishedAt: now, Summary: s})
		if err != nil {
			return 0, fmt.Errorf("failed to encode summary %s: %w", s.ISO3, err)
		}
		messages = append(messages, Message{Subject: p.Subject(s.ISO3), Data: data})
	}

	return p.publisher.PublishBatch(ctx, messages)
}

// Close closes the underlying publisher
func (p *SummaryPublisher) Close() error {
	return p.publisher.Close()
}
