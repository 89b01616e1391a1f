package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abhisek/skilltrack/internal/badges"
	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

type trackerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewTrackerRepo returns a roadmap.Repository backed by Postgres.
func NewTrackerRepo(db *gorm.DB, baseLog *logger.Logger) roadmap.Repository {
	return &trackerRepo{db: db, log: baseLog.With("repo", "TrackerRepo")}
}

func (r *trackerRepo) Get(ctx context.Context, userID string) (*roadmap.Tracker, error) {
	var row TrackerRow
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("tracker for %s: %w", userID, roadmap.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query tracker: %w", err)
	}
	t, err := roadmap.Decode([]byte(row.Document))
	if err != nil {
		return nil, err
	}
	t.Version = row.Version
	return t, nil
}

func (r *trackerRepo) Create(ctx context.Context, t *roadmap.Tracker) error {
	t.Version = 1
	doc, err := roadmap.Encode(t)
	if err != nil {
		return err
	}
	row := TrackerRow{
		UserID:          t.UserID,
		CareerGoal:      string(t.CareerGoal),
		OverallProgress: t.OverallProgress,
		IsCompleted:     t.IsCompleted,
		VerificationID:  t.VerificationID,
		Document:        string(doc),
		Version:         t.Version,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		t.Version = 0
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("tracker for %s: %w", t.UserID, roadmap.ErrExists)
		}
		return fmt.Errorf("insert tracker: %w", err)
	}
	return nil
}

func (r *trackerRepo) Update(ctx context.Context, t *roadmap.Tracker) error {
	doc, err := roadmap.Encode(t)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&TrackerRow{}).
		Where("user_id = ? AND version = ?", t.UserID, t.Version).
		Updates(map[string]any{
			"career_goal":      string(t.CareerGoal),
			"overall_progress": t.OverallProgress,
			"is_completed":     t.IsCompleted,
			"verification_id":  t.VerificationID,
			"document":         string(doc),
			"version":          t.Version + 1,
			"updated_at":       t.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update tracker: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, t.UserID); err != nil {
			return err
		}
		r.log.Debug("stale tracker update", "user_id", t.UserID, "version", t.Version)
		return fmt.Errorf("tracker for %s at version %d: %w", t.UserID, t.Version, roadmap.ErrStale)
	}
	t.Version++
	return nil
}

func (r *trackerRepo) Delete(ctx context.Context, userID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&TrackerRow{})
	if res.Error != nil {
		return fmt.Errorf("delete tracker: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tracker for %s: %w", userID, roadmap.ErrNotFound)
	}
	return nil
}

type badgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewBadgeRepo returns a badges.Repository backed by Postgres.
func NewBadgeRepo(db *gorm.DB, baseLog *logger.Logger) badges.Repository {
	return &badgeRepo{db: db, log: baseLog.With("repo", "BadgeRepo")}
}

func (r *badgeRepo) FindByCourse(ctx context.Context, userID, courseID string) (*badges.Badge, error) {
	var row BadgeRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("badge for course %s: %w", courseID, roadmap.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query badge: %w", err)
	}
	b := row.toBadge()
	return &b, nil
}

func (r *badgeRepo) Create(ctx context.Context, b *badges.Badge) error {
	row := BadgeRow{
		ID:             b.ID,
		UserID:         b.UserID,
		CourseID:       b.CourseID,
		CourseName:     b.CourseName,
		BadgeName:      b.Name,
		Description:    b.Description,
		Icon:           b.Icon,
		Color:          b.Color,
		VerificationID: b.VerificationID,
		IssuedAt:       b.IssuedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("badge for course %s: %w", b.CourseID, roadmap.ErrExists)
		}
		return fmt.Errorf("insert badge: %w", err)
	}
	return nil
}

func (r *badgeRepo) ListByUser(ctx context.Context, userID string) ([]badges.Badge, error) {
	var rows []BadgeRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	out := make([]badges.Badge, len(rows))
	for i, row := range rows {
		out[i] = row.toBadge()
	}
	return out, nil
}

func (r *badgeRepo) UpdateStyle(ctx context.Context, id, icon, color string) error {
	res := r.db.WithContext(ctx).
		Model(&BadgeRow{}).
		Where("id = ?", id).
		Updates(map[string]any{"icon": icon, "color": color})
	if res.Error != nil {
		return fmt.Errorf("update badge style: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("badge %s: %w", id, roadmap.ErrNotFound)
	}
	return nil
}

func (row BadgeRow) toBadge() badges.Badge {
	return badges.Badge{
		ID:             row.ID,
		UserID:         row.UserID,
		CourseID:       row.CourseID,
		CourseName:     row.CourseName,
		Name:           row.BadgeName,
		Description:    row.Description,
		Icon:           row.Icon,
		Color:          row.Color,
		VerificationID: row.VerificationID,
		IssuedAt:       row.IssuedAt,
	}
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo returns a badges.CourseRepository backed by Postgres.
func NewCourseRepo(db *gorm.DB) badges.CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) SaveProgress(ctx context.Context, c badges.Course) error {
	row := CourseProgressRow{
		UserID:      c.UserID,
		CourseID:    c.CourseID,
		CourseName:  c.CourseName,
		Progress:    c.Progress,
		CompletedAt: c.CompletedAt,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"course_name", "progress", "completed_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save course progress: %w", err)
	}
	return nil
}

func (r *courseRepo) ListCompleted(ctx context.Context, userID string) ([]badges.Course, error) {
	var rows []CourseProgressRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND progress >= 100", userID).
		Order("course_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query course progress: %w", err)
	}
	out := make([]badges.Course, len(rows))
	for i, row := range rows {
		out[i] = badges.Course{
			UserID:      row.UserID,
			CourseID:    row.CourseID,
			CourseName:  row.CourseName,
			Progress:    row.Progress,
			CompletedAt: row.CompletedAt,
		}
	}
	return out, nil
}

// EnrollmentRepo records paid enrollments in Postgres.
type EnrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo returns an EnrollmentRepo.
func NewEnrollmentRepo(db *gorm.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db}
}

// Enroll records a paid enrollment. Enrolling twice is a no-op.
func (r *EnrollmentRepo) Enroll(ctx context.Context, userID, courseID, courseName string) error {
	row := EnrollmentRow{UserID: userID, CourseID: courseID, CourseName: courseName, EnrolledAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// EnrolledCourseName implements badges.EnrollmentLookup.
func (r *EnrollmentRepo) EnrolledCourseName(ctx context.Context, userID, courseID string) (string, error) {
	var row EnrollmentRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("enrollment in %s: %w", courseID, roadmap.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query enrollment: %w", err)
	}
	return row.CourseName, nil
}

func (r *EnrollmentRepo) CountEnrollments(ctx context.Context, userID string) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&EnrollmentRow{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return int(n), nil
}
