package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the SQLite backend. It holds the trackers, badges,
// enrollments, course progress and LLM request events.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequences
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequences(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq}, nil
}

// OpenMemory opens a private in-memory database. Each call gets its own
// database, shared by all connections of the returned Store.
func OpenMemory() (*Store, error) {
	return Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables()...)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Trackers returns the tracker repository.
func (s *Store) Trackers() *TrackerRepo {
	return &TrackerRepo{db: s.db}
}

// Badges returns the badge repository.
func (s *Store) Badges() *BadgeRepo {
	return &BadgeRepo{db: s.db}
}

// Courses returns the course progress repository.
func (s *Store) Courses() *CourseRepo {
	return &CourseRepo{db: s.db}
}

// Enrollments returns the enrollment repository.
func (s *Store) Enrollments() *EnrollmentRepo {
	return &EnrollmentRepo{db: s.db}
}

// EventRepo returns the LLM request event log.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// applyPragmas configures SQLite for a small number of concurrent writers.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. SKILLTRACK_DB environment variable
// 2. $XDG_DATA_HOME/skilltrack/skilltrack.db
// 3. ~/.local/share/skilltrack/skilltrack.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SKILLTRACK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "skilltrack", "skilltrack.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
