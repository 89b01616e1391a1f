package roadmap

import (
	"context"
	"time"
)

// Repository persists trackers, one per learner.
type Repository interface {
	// Get loads the tracker for userID. Returns an error wrapping
	// ErrNotFound when the learner has none.
	Get(ctx context.Context, userID string) (*Tracker, error)

	// Create inserts a new tracker. Returns an error wrapping ErrExists
	// if the learner already has one. Sets t.Version on success.
	Create(ctx context.Context, t *Tracker) error

	// Update saves t if the stored version still equals t.Version, then
	// increments t.Version. Returns an error wrapping ErrStale otherwise.
	Update(ctx context.Context, t *Tracker) error

	// Delete removes the learner's tracker. Deleting a missing tracker
	// returns an error wrapping ErrNotFound.
	Delete(ctx context.Context, userID string) error
}

// Locker serializes operations per key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// BadgeRef is the view of an issued badge the roadmap needs.
type BadgeRef struct {
	ID         string
	Name       string
	CourseName string
	IssuedAt   time.Time
}

// BadgeLister lists the badges a learner has earned.
type BadgeLister interface {
	ListBadgeRefs(ctx context.Context, userID string) ([]BadgeRef, error)
}

// EnrollmentCounter counts a learner's paid enrollments.
type EnrollmentCounter interface {
	CountEnrollments(ctx context.Context, userID string) (int, error)
}

// CompletionEvent is emitted once when a roadmap is fully completed.
type CompletionEvent struct {
	UserID         string
	Goal           string
	GoalLabel      string
	VerificationID string
	CompletedAt    time.Time
	ContactEmail   string
}

// CompletionPublisher receives roadmap completion events.
type CompletionPublisher interface {
	PublishRoadmapCompleted(ctx context.Context, ev CompletionEvent) error
}
