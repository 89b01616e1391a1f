package proofs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local writes proofs under a directory. URLs are publicBaseURL + "/" + key;
// the HTTP server serves the directory at that base.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, publicBaseURL string) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("proofs dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create proofs dir: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "/uploads"
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Dir is the directory files are written to.
func (l *Local) Dir() string { return l.dir }

func (l *Local) Put(ctx context.Context, key, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(l.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(dst, filepath.Clean(l.dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return l.baseURL + "/" + key, nil
}
