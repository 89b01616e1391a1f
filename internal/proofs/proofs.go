// Package proofs stores the screenshots learners attach to skill completions.
package proofs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/skilltrack/internal/logger"
)

// MaxImageBytes caps a proof upload.
const MaxImageBytes = 5 << 20

var (
	ErrNotImage = errors.New("proof must be an image")
	ErrTooLarge = errors.New("proof image exceeds 5 MiB")
	ErrEmpty    = errors.New("proof image is empty")
)

// Storage writes an object and returns its public URL.
type Storage interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Uploader validates proof images and hands them to a Storage.
type Uploader struct {
	store    Storage
	maxBytes int64
	log      *logger.Logger
}

func NewUploader(store Storage, log *logger.Logger) *Uploader {
	if log == nil {
		log = logger.Nop()
	}
	return &Uploader{store: store, maxBytes: MaxImageBytes, log: log.With("service", "ProofUploader")}
}

// Upload checks that r holds an image no larger than the cap and stores it
// under proofs/<userID>/. The content type is sniffed from the bytes; the
// declared type only has to agree that it is an image.
func (u *Uploader) Upload(ctx context.Context, userID, filename, declaredType string, r io.Reader) (string, error) {
	if declaredType != "" && !strings.HasPrefix(declaredType, "image/") {
		return "", ErrNotImage
	}
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read proof: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if int64(len(data)) > u.maxBytes {
		return "", ErrTooLarge
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	key := objectKey(userID, filename)
	url, err := u.store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("store proof: %w", err)
	}
	u.log.Info("proof stored", "user_id", userID, "key", key, "bytes", len(data))
	return url, nil
}

func objectKey(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	return path.Join("proofs", safeSegment(userID), uuid.NewString()+ext)
}

func safeSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}
