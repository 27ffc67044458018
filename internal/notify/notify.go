// Package notify publishes ingest-completion events so downstream
// consumers (feed refreshers, cache warmers) can react to new articles.
package notify

import (
	"context"
	"fmt"
	"time"
)

// IngestEvent describes one completed loader run.
type IngestEvent struct {
	Category   string    `json:"category"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher delivers ingest events.
type Publisher interface {
	Publish(ctx context.Context, event IngestEvent) error
	Close() error
}

// Config selects and parameterizes a publisher.
type Config struct {
	// Provider is one of "noop" or "pubsub".
	Provider  string
	ProjectID string
	TopicID   string
}

// New builds the publisher named by the config.
func New(ctx context.Context, cfg Config) (Publisher, error) {
	switch cfg.Provider {
	case "", "noop":
		return &NoOpPublisher{}, nil
	case "pubsub":
		return NewPubSubPublisher(ctx, cfg.ProjectID, cfg.TopicID)
	default:
		return nil, fmt.Errorf("unknown notify provider %q", cfg.Provider)
	}
}

// NoOpPublisher drops events.
type NoOpPublisher struct{}

// Publish for NoOpPublisher does nothing and always returns nil.
func (n *NoOpPublisher) Publish(_ context.Context, _ IngestEvent) error { return nil }

// Close for NoOpPublisher does nothing.
func (n *NoOpPublisher) Close() error { return nil }
