// Package pgstore is the Postgres backend, for deployments that run more
// than one API process against shared storage.
package pgstore

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/abhisek/skilltrack/internal/logger"
)

// Open connects to Postgres and migrates the schema.
func Open(dsn string, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	if log != nil {
		log.Info("postgres connected", "service", "PostgresStore")
	}
	return db, nil
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&TrackerRow{}, &BadgeRow{}, &EnrollmentRow{}, &CourseProgressRow{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
