package proofs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Smallest valid PNG header; enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newLocalUploader(t *testing.T) (*Uploader, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocal(dir, "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return NewUploader(store, nil), dir
}

func TestUploadStoresImage(t *testing.T) {
	u, dir := newLocalUploader(t)

	url, err := u.Upload(context.Background(), "user-1", "shot.PNG", "image/png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/proofs/user-1/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}

	key := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(got, pngHeader) {
		t.Errorf("stored bytes differ")
	}
}

func TestUploadRejects(t *testing.T) {
	u, _ := newLocalUploader(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		declared string
		data     []byte
		want     error
	}{
		{"declared non-image", "application/pdf", pngHeader, ErrNotImage},
		{"sniffed non-image", "image/png", []byte("hello world, not an image"), ErrNotImage},
		{"empty", "image/png", nil, ErrEmpty},
		{"too large", "image/png", append(append([]byte{}, pngHeader...), make([]byte, MaxImageBytes)...), ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Upload(ctx, "u", "x.png", tt.declared, bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestObjectKeySanitizes(t *testing.T) {
	key := objectKey("../evil/user", "a.png")
	if strings.Contains(key, "..") || !strings.HasPrefix(key, "proofs/___evil_user/") {
		t.Errorf("key = %q", key)
	}
	if k := objectKey("", "noext"); !strings.HasPrefix(k, "proofs/anonymous/") {
		t.Errorf("key = %q", k)
	}
}

func TestLocalDefaultBaseURL(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	url, err := l.Put(context.Background(), "proofs/u/x.png", "image/png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatal(err)
	}
	if url != "/uploads/proofs/u/x.png" {
		t.Errorf("url = %q", url)
	}
}

func TestGCSPublicURL(t *testing.T) {
	g := &GCS{bucket: "proofs-bucket"}
	if got := g.PublicURL("/proofs/u/x.png"); got != "https://storage.googleapis.com/proofs-bucket/proofs/u/x.png" {
		t.Errorf("PublicURL = %q", got)
	}
	g.baseURL = "https://cdn.example.com"
	if got := g.PublicURL("proofs/u/x.png"); got != "https://cdn.example.com/proofs/u/x.png" {
		t.Errorf("PublicURL = %q", got)
	}
}
