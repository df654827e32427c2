package archive

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
)

// GCS archives blobs to a Google Cloud Storage bucket. Authentication uses
// Application Default Credentials.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS creates the client and verifies the bucket is reachable, failing
// fast on startup if the configuration is wrong.
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check gcs bucket %q: %w", bucket, err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// Store uploads the blob under prefix/key and returns its gs:// URI.
func (g *GCS) Store(ctx context.Context, key string, data []byte) (string, error) {
	object := path.Join(g.prefix, key)
	wc := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("write gcs object %s: %w", object, err)
	}
	// Close finalizes the upload; the write is not durable until it returns.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer for %s: %w", object, err)
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, object), nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("close gcs client: %w", err)
	}
	return nil
}
