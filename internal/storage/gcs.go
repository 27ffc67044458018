package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSProvider implements Provider on Google Cloud Storage.
type GCSProvider struct {
	client *storage.Client
	bucket string
}

// NewGCSProvider initializes a GCS client and verifies bucket access.
// Authentication comes from Application Default Credentials.
func NewGCSProvider(ctx context.Context, bucket string) (*GCSProvider, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	// Fail fast on startup if the bucket is missing or inaccessible.
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucket, err)
	}

	return &GCSProvider{client: client, bucket: bucket}, nil
}

// Save uploads the given data to an object in the GCS bucket.
func (p *GCSProvider) Save(ctx context.Context, objectName string, data []byte) error {
	wc := p.client.Bucket(p.bucket).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write GCS object %s: %w", objectName, err)
	}
	// Close finalizes the upload and flushes buffered data.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close GCS writer for object %s: %w", objectName, err)
	}
	return nil
}
