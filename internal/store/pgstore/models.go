package pgstore

import "time"

// TrackerRow mirrors the sqlite trackers table.
type TrackerRow struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"uniqueIndex;not null"`
	CareerGoal      string `gorm:"index;not null"`
	OverallProgress int    `gorm:"not null;default:0"`
	IsCompleted     bool   `gorm:"index;not null;default:false"`
	VerificationID  string `gorm:"not null;default:''"`
	Document        string `gorm:"type:jsonb;not null"`
	Version         int64  `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (TrackerRow) TableName() string { return "trackers" }

type BadgeRow struct {
	ID             string    `gorm:"primaryKey"`
	UserID         string    `gorm:"uniqueIndex:idx_badge_user_course;index;not null"`
	CourseID       string    `gorm:"uniqueIndex:idx_badge_user_course;not null"`
	CourseName     string    `gorm:"not null"`
	BadgeName      string    `gorm:"not null"`
	Description    string    `gorm:"not null;default:''"`
	Icon           string    `gorm:"not null;default:''"`
	Color          string    `gorm:"not null;default:''"`
	VerificationID string    `gorm:"uniqueIndex;not null"`
	IssuedAt       time.Time `gorm:"not null"`
}

func (BadgeRow) TableName() string { return "badges" }

type EnrollmentRow struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     string    `gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID   string    `gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseName string    `gorm:"not null;default:''"`
	EnrolledAt time.Time `gorm:"not null"`
}

func (EnrollmentRow) TableName() string { return "enrollments" }

type CourseProgressRow struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"uniqueIndex:idx_course_progress_user_course;not null"`
	CourseID    string `gorm:"uniqueIndex:idx_course_progress_user_course;not null"`
	CourseName  string `gorm:"not null;default:''"`
	Progress    int    `gorm:"not null;default:0"`
	CompletedAt *time.Time
}

func (CourseProgressRow) TableName() string { return "course_progresses" }
