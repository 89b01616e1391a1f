package badges

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/skilltrack/internal/catalog"
	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/metrics"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

// Service mints badges for completed courses.
type Service struct {
	repo      Repository
	courses   CourseRepository
	enrolled  EnrollmentLookup
	publisher Publisher
	log       *logger.Logger
	now       func() time.Time
	rnd       roadmap.IntSource
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// WithRand overrides the random source for verification IDs. The source is
// shared by concurrent issues and must be safe for that.
func WithRand(r roadmap.IntSource) Option { return func(s *Service) { s.rnd = r } }

// NewService creates a badge Service. publisher may be nil.
func NewService(repo Repository, courses CourseRepository, enrolled EnrollmentLookup, publisher Publisher, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		repo:      repo,
		courses:   courses,
		enrolled:  enrolled,
		publisher: publisher,
		log:       log.With("service", "BadgeService"),
		now:       time.Now,
		rnd:       globalRand{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BadgeName is the display name minted for a course.
func BadgeName(courseName string) string {
	return "Skillion " + strings.TrimSpace(courseName) + " Badge"
}

// IssueForCourse returns the learner's badge for the course, minting it
// on first call. issued reports whether a new badge was created.
func (s *Service) IssueForCourse(ctx context.Context, userID, courseID, courseName string) (b *Badge, issued bool, err error) {
	if strings.TrimSpace(courseID) == "" || strings.TrimSpace(courseName) == "" {
		return nil, false, &roadmap.Error{Kind: roadmap.ErrValidation, Op: "issue badge", Msg: "course id and name are required"}
	}

	existing, err := s.repo.FindByCourse(ctx, userID, courseID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, roadmap.ErrNotFound):
		return nil, false, fmt.Errorf("issue badge: %w", err)
	}

	now := s.now()
	style := catalog.StyleFor(courseName)
	b = &Badge{
		ID:             uuid.NewString(),
		UserID:         userID,
		CourseID:       courseID,
		CourseName:     courseName,
		Name:           BadgeName(courseName),
		Description:    fmt.Sprintf("Successfully completed %s with 100%% progress", courseName),
		Icon:           style.Icon,
		Color:          style.Color,
		VerificationID: fmt.Sprintf("SKL-BADGE-%d-%05d", now.Year(), s.rnd.IntN(100000)),
		IssuedAt:       now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		// Lost a race with a concurrent issue for the same course.
		if errors.Is(err, roadmap.ErrExists) {
			existing, ferr := s.repo.FindByCourse(ctx, userID, courseID)
			if ferr != nil {
				return nil, false, fmt.Errorf("issue badge: %w", ferr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("issue badge: %w", err)
	}

	metrics.BadgesIssued.Inc()
	s.log.Info("badge issued", "user_id", userID, "course_id", courseID, "badge", b.Name)

	if s.publisher != nil {
		ev := IssuedEvent{UserID: userID, BadgeID: b.ID, BadgeName: b.Name, CourseID: courseID}
		if err := s.publisher.PublishBadgeIssued(ctx, ev); err != nil {
			s.log.Error("publish badge issued", "user_id", userID, "badge_id", b.ID, "error", err)
		}
	}
	return b, true, nil
}

// CompleteCourse records a course the learner is enrolled in at 100% and
// issues its badge. The course name comes from the enrollment, never from
// the caller.
func (s *Service) CompleteCourse(ctx context.Context, userID, courseID string) (*Badge, bool, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, false, &roadmap.Error{Kind: roadmap.ErrValidation, Op: "complete course", Msg: "course id is required"}
	}
	courseName, err := s.enrolled.EnrolledCourseName(ctx, userID, courseID)
	if errors.Is(err, roadmap.ErrNotFound) {
		return nil, false, &roadmap.Error{Kind: roadmap.ErrNotEnrolled, Op: "complete course",
			Msg: fmt.Sprintf("not enrolled in course %s", courseID)}
	}
	if err != nil {
		return nil, false, fmt.Errorf("complete course: %w", err)
	}

	now := s.now()
	err = s.courses.SaveProgress(ctx, Course{
		UserID:      userID,
		CourseID:    courseID,
		CourseName:  courseName,
		Progress:    100,
		CompletedAt: &now,
	})
	if err != nil {
		return nil, false, fmt.Errorf("complete course: %w", err)
	}
	return s.IssueForCourse(ctx, userID, courseID, courseName)
}

// List returns the learner's badges, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]Badge, error) {
	bs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return bs, nil
}

// ListBadgeRefs implements roadmap.BadgeLister.
func (s *Service) ListBadgeRefs(ctx context.Context, userID string) ([]roadmap.BadgeRef, error) {
	bs, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	refs := make([]roadmap.BadgeRef, len(bs))
	for i, b := range bs {
		refs[i] = b.Ref()
	}
	return refs, nil
}

// GenerateMissing issues a badge for every completed course that lacks
// one and returns the badges created.
func (s *Service) GenerateMissing(ctx context.Context, userID string) ([]Badge, error) {
	courses, err := s.courses.ListCompleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("generate missing badges: %w", err)
	}
	created := []Badge{}
	for _, c := range courses {
		b, issued, err := s.IssueForCourse(ctx, userID, c.CourseID, c.CourseName)
		if err != nil {
			return created, err
		}
		if issued {
			created = append(created, *b)
		}
	}
	return created, nil
}

// RefreshStyles recomputes icon and color of the learner's badges from the
// current style table and reports how many changed.
func (s *Service) RefreshStyles(ctx context.Context, userID string) (int, error) {
	bs, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range bs {
		style := catalog.StyleFor(b.CourseName)
		if style.Icon == b.Icon && style.Color == b.Color {
			continue
		}
		if err := s.repo.UpdateStyle(ctx, b.ID, style.Icon, style.Color); err != nil {
			return n, fmt.Errorf("refresh badge styles: %w", err)
		}
		n++
	}
	return n, nil
}
