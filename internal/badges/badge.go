// Package badges issues course-completion badges and feeds them to the
// roadmap matcher.
package badges

import (
	"context"
	"time"

	"github.com/abhisek/skilltrack/internal/roadmap"
)

// Badge is issued once per learner per finished course.
type Badge struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	CourseID       string    `json:"courseId"`
	CourseName     string    `json:"courseName"`
	Name           string    `json:"badgeName"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	Color          string    `json:"color"`
	VerificationID string    `json:"verificationId"`
	IssuedAt       time.Time `json:"issuedAt"`
}

// Ref converts the badge into the view the roadmap needs.
func (b Badge) Ref() roadmap.BadgeRef {
	return roadmap.BadgeRef{ID: b.ID, Name: b.Name, CourseName: b.CourseName, IssuedAt: b.IssuedAt}
}

// Course is a learner's progress record for one course.
type Course struct {
	UserID      string
	CourseID    string
	CourseName  string
	Progress    int
	CompletedAt *time.Time
}

// Repository persists badges. Errors wrap roadmap.ErrNotFound and
// roadmap.ErrExists.
type Repository interface {
	FindByCourse(ctx context.Context, userID, courseID string) (*Badge, error)
	// Create inserts b. A second badge for the same (user, course) pair
	// fails with ErrExists.
	Create(ctx context.Context, b *Badge) error
	ListByUser(ctx context.Context, userID string) ([]Badge, error)
	UpdateStyle(ctx context.Context, id, icon, color string) error
}

// CourseRepository records course progress.
type CourseRepository interface {
	// SaveProgress upserts the progress row for (user, course).
	SaveProgress(ctx context.Context, c Course) error
	ListCompleted(ctx context.Context, userID string) ([]Course, error)
}

// EnrollmentLookup resolves a learner's enrollment in one course.
type EnrollmentLookup interface {
	// EnrolledCourseName returns the course name recorded at enrollment and
	// fails with roadmap.ErrNotFound when the learner is not enrolled.
	EnrolledCourseName(ctx context.Context, userID, courseID string) (string, error)
}

// IssuedEvent announces a freshly minted badge.
type IssuedEvent struct {
	UserID    string `json:"userId"`
	BadgeID   string `json:"badgeId"`
	BadgeName string `json:"badgeName"`
	CourseID  string `json:"courseId"`
}

// Publisher receives badge.issued events.
type Publisher interface {
	PublishBadgeIssued(ctx context.Context, ev IssuedEvent) error
}
