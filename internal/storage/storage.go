// Package storage defines the blob store the scrape command writes
// envelopes to. The abstraction keeps the scraper independent of where
// artifacts land (Google Cloud Storage, the local filesystem, or nowhere).
package storage

import (
	"context"
	"fmt"
)

// Provider defines the common interface for a blob storage provider.
type Provider interface {
	// Save uploads data to a specified object path/key in the blob store.
	Save(ctx context.Context, objectName string, data []byte) error
}

// Config selects and parameterizes a provider.
type Config struct {
	// Provider is one of "noop", "local", or "gcs".
	Provider  string
	BaseDir   string
	GCSBucket string
	Prefix    string
}

// New builds the provider named by the config.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "noop":
		return &NoOpProvider{}, nil
	case "local":
		return NewLocalProvider(cfg.BaseDir)
	case "gcs":
		return NewGCSProvider(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// NoOpProvider discards everything. Useful for dry runs and tests.
type NoOpProvider struct{}

// Save for NoOpProvider does nothing and always returns nil.
func (n *NoOpProvider) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}
