package proofs

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS writes proofs to a Google Cloud Storage bucket.
type GCS struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewGCS opens a storage client. Credentials come from the environment
// unless opts override them.
func NewGCS(ctx context.Context, bucket, publicBaseURL string, opts ...option.ClientOption) (*GCS, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("proofs bucket required")
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (g *GCS) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer: %w", err)
	}
	return g.PublicURL(key), nil
}

// PublicURL is the browser-facing URL of key.
func (g *GCS) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	if g.baseURL != "" {
		return g.baseURL + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key)
}

func (g *GCS) Close() error {
	return g.client.Close()
}
