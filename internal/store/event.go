package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// llmRequestStream names the sequence stamped on LLM request rows.
const llmRequestStream = "llm_requests"

// sequences hands out per-stream monotonic numbers starting at 1. Rows are
// created on first use, and the upsert's RETURNING makes each increment
// atomic in the database.
type sequences struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequences(db *sql.DB) (*sequences, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS stream_sequences (
		stream TEXT PRIMARY KEY,
		last_val INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}
	return &sequences{db: db}, nil
}

// Next returns the next number of stream.
func (s *sequences) Next(ctx context.Context, stream string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO stream_sequences (stream, last_val) VALUES (?, 1)
		ON CONFLICT (stream) DO UPDATE SET last_val = last_val + 1
		RETURNING last_val`, stream).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", stream, err)
	}
	return n, nil
}
