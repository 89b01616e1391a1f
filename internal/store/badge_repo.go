package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/abhisek/skilltrack/internal/badges"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

var badgeColumns = []string{
	"id", "user_id", "course_id", "course_name", "badge_name",
	"description", "icon", "color", "verification_id", "issued_at",
}

// BadgeRepo implements badges.Repository.
type BadgeRepo struct {
	db *sql.DB
}

var _ badges.Repository = (*BadgeRepo)(nil)

func (r *BadgeRepo) FindByCourse(ctx context.Context, userID, courseID string) (*badges.Badge, error) {
	q, args := sqlite.Select(badgeColumns...).
		From(sqlite.Table(BadgesTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID))).
		Query()
	b, err := scanBadge(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("badge for course %s: %w", courseID, roadmap.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query badge: %w", err)
	}
	return b, nil
}

func (r *BadgeRepo) Create(ctx context.Context, b *badges.Badge) error {
	q, args := sqlite.Insert(BadgesTable).
		Columns(badgeColumns...).
		Values(b.ID, b.UserID, b.CourseID, b.CourseName, b.Name,
			b.Description, b.Icon, b.Color, b.VerificationID, b.IssuedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return fmt.Errorf("badge for course %s: %w", b.CourseID, roadmap.ErrExists)
		}
		return fmt.Errorf("insert badge: %w", err)
	}
	return nil
}

func (r *BadgeRepo) ListByUser(ctx context.Context, userID string) ([]badges.Badge, error) {
	q, args := sqlite.Select(badgeColumns...).
		From(sqlite.Table(BadgesTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("issued_at", "id").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	out := []badges.Badge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BadgeRepo) UpdateStyle(ctx context.Context, id, icon, color string) error {
	q, args := sqlite.Update(BadgesTable).
		Set("icon", icon).
		Set("color", color).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update badge style: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("badge %s: %w", id, roadmap.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBadge(row rowScanner) (*badges.Badge, error) {
	var b badges.Badge
	err := row.Scan(&b.ID, &b.UserID, &b.CourseID, &b.CourseName, &b.Name,
		&b.Description, &b.Icon, &b.Color, &b.VerificationID, &b.IssuedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CourseRepo implements badges.CourseRepository.
type CourseRepo struct {
	db *sql.DB
}

var _ badges.CourseRepository = (*CourseRepo)(nil)

func (r *CourseRepo) SaveProgress(ctx context.Context, c badges.Course) error {
	var completedAt any
	if c.CompletedAt != nil {
		completedAt = *c.CompletedAt
	}
	q, args := sqlite.Insert(CourseProgressTable).
		Columns("user_id", "course_id", "course_name", "progress", "completed_at").
		Values(c.UserID, c.CourseID, c.CourseName, c.Progress, completedAt).
		OnConflict(
			entsql.ConflictColumns("user_id", "course_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save course progress: %w", err)
	}
	return nil
}

func (r *CourseRepo) ListCompleted(ctx context.Context, userID string) ([]badges.Course, error) {
	q, args := sqlite.Select("user_id", "course_id", "course_name", "progress", "completed_at").
		From(sqlite.Table(CourseProgressTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.GTE("progress", 100))).
		OrderBy("course_id").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query course progress: %w", err)
	}
	defer rows.Close()

	var out []badges.Course
	for rows.Next() {
		var (
			c  badges.Course
			at sql.NullTime
		)
		if err := rows.Scan(&c.UserID, &c.CourseID, &c.CourseName, &c.Progress, &at); err != nil {
			return nil, fmt.Errorf("scan course progress: %w", err)
		}
		if at.Valid {
			t := at.Time
			c.CompletedAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// EnrollmentRepo records paid enrollments. It implements
// roadmap.EnrollmentCounter.
type EnrollmentRepo struct {
	db *sql.DB
}

var (
	_ roadmap.EnrollmentCounter = (*EnrollmentRepo)(nil)
	_ badges.EnrollmentLookup   = (*EnrollmentRepo)(nil)
)

// Enroll records a paid enrollment. Enrolling twice is a no-op.
func (r *EnrollmentRepo) Enroll(ctx context.Context, userID, courseID, courseName string) error {
	q, args := sqlite.Insert(EnrollmentsTable).
		Columns("user_id", "course_id", "course_name", "enrolled_at").
		Values(userID, courseID, courseName, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "course_id"),
			entsql.DoNothing(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// EnrolledCourseName implements badges.EnrollmentLookup.
func (r *EnrollmentRepo) EnrolledCourseName(ctx context.Context, userID, courseID string) (string, error) {
	q, args := sqlite.Select("course_name").
		From(sqlite.Table(EnrollmentsTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID))).
		Query()
	var name string
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("enrollment in %s: %w", courseID, roadmap.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query enrollment: %w", err)
	}
	return name, nil
}

func (r *EnrollmentRepo) CountEnrollments(ctx context.Context, userID string) (int, error) {
	q, args := sqlite.Select().
		From(sqlite.Table(EnrollmentsTable)).
		Where(entsql.EQ("user_id", userID)).
		Count().
		Query()
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}
