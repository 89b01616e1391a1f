package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/badges"
	"github.com/abhisek/skilltrack/internal/coach"
	"github.com/abhisek/skilltrack/internal/config"
	"github.com/abhisek/skilltrack/internal/events"
	"github.com/abhisek/skilltrack/internal/llm"
	"github.com/abhisek/skilltrack/internal/lock"
	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/notify"
	"github.com/abhisek/skilltrack/internal/proofs"
	"github.com/abhisek/skilltrack/internal/roadmap"
	"github.com/abhisek/skilltrack/internal/store"
	"github.com/abhisek/skilltrack/internal/store/pgstore"
)

var errNoUser = errors.New("no learner selected (pass --user)")

const localProofsPrefix = "/uploads"

// enrollmentStore is satisfied by both the SQLite and Postgres enrollment repos.
type enrollmentStore interface {
	Enroll(ctx context.Context, userID, courseID, courseName string) error
	CountEnrollments(ctx context.Context, userID string) (int, error)
	EnrolledCourseName(ctx context.Context, userID, courseID string) (string, error)
}

// deps is everything a command may need, built once from configuration.
type deps struct {
	cfg *config.Config
	log *logger.Logger

	// sqlite is nil when running on Postgres.
	sqlite      *store.Store
	enrollments enrollmentStore
	roadmap     *roadmap.Service
	badges      *badges.Service
	bus         *events.Bus
	proofs      *proofs.Uploader
	// proofsDir is set for the local proofs backend only.
	proofsDir string

	closers []func() error
}

type wireOptions struct {
	// server selects the configured log level; CLI commands log warnings only.
	server bool
	// startBus runs the event router in the background so that issuing a
	// badge completes roadmap skills before the command returns.
	startBus bool
}

// openDeps wires stores, locks, events, notifications and services.
func openDeps(cmd *cobra.Command, opts wireOptions) (_ *deps, err error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); !opts.server && !verbose {
		level = "warn"
	}
	log, err := logger.New(logger.Options{
		Mode:     cfg.Log.Mode,
		Level:    level,
		Redact:   cfg.Log.Redact,
		HashSalt: cfg.Log.HashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	d := &deps{cfg: cfg, log: log}
	d.closers = append(d.closers, func() error { log.Sync(); return nil })
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	var (
		trackers  roadmap.Repository
		badgeRepo badges.Repository
		courses   badges.CourseRepository
	)
	switch cfg.DB.Driver {
	case "postgres":
		db, err := pgstore.Open(cfg.DB.DSN, log)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			d.closers = append(d.closers, sqlDB.Close)
		}
		trackers = pgstore.NewTrackerRepo(db, log)
		badgeRepo = pgstore.NewBadgeRepo(db, log)
		courses = pgstore.NewCourseRepo(db)
		d.enrollments = pgstore.NewEnrollmentRepo(db)
	default:
		var st *store.Store
		if cfg.DB.Driver == "memory" {
			st, err = store.OpenMemory()
		} else {
			if err = store.EnsureDir(cfg.DB.Path); err == nil {
				st, err = store.Open(cfg.DB.Path)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		d.closers = append(d.closers, st.Close)
		d.sqlite = st
		trackers = st.Trackers()
		badgeRepo = st.Badges()
		courses = st.Courses()
		d.enrollments = st.Enrollments()
	}

	var locker roadmap.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		rdb, err := lock.Dial(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, rdb.Close)
		locker = lock.NewRedis(rdb, lock.RedisOptions{TTL: cfg.Lock.TTL}, log)
	}

	d.bus, err = events.NewBus(log, events.Options{})
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, d.bus.Close)

	mailer, err := newMailer(cfg.Mail, log)
	if err != nil {
		return nil, err
	}
	notifier := notify.NewNotifier(mailer, log, notify.BreakerSettings{})

	d.badges = badges.NewService(badgeRepo, courses, d.enrollments, d.bus, log)
	d.roadmap = roadmap.NewService(roadmap.Deps{
		Repo:        trackers,
		Locker:      locker,
		Engine:      roadmap.NewEngine(roadmap.WithKeywords(cfg.Matching.Keywords)),
		Badges:      d.badges,
		Enrollments: d.enrollments,
		Publisher:   d.bus,
		Log:         log,
		MaxRetries:  cfg.Roadmap.MaxRetries,
	})
	d.bus.Handle(d.roadmap, notifier)

	if err := d.openProofs(ctx); err != nil {
		return nil, err
	}

	if opts.startBus {
		busCtx, cancel := context.WithCancel(context.Background())
		d.closers = append(d.closers, func() error { cancel(); return nil })
		if err := d.bus.Start(busCtx); err != nil {
			return nil, fmt.Errorf("start event bus: %w", err)
		}
	}
	return d, nil
}

func newMailer(cfg config.MailConfig, log *logger.Logger) (notify.Mailer, error) {
	if cfg.Backend == "sendgrid" {
		return notify.NewSendGrid(cfg.SendGridKey, cfg.FromName, cfg.FromEmail)
	}
	return notify.NewLogMailer(log), nil
}

func (d *deps) openProofs(ctx context.Context) error {
	var storage proofs.Storage
	switch d.cfg.Proofs.Backend {
	case "gcs":
		g, err := proofs.NewGCS(ctx, d.cfg.Proofs.Bucket, d.cfg.Proofs.PublicBaseURL)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, g.Close)
		storage = g
	default:
		base := d.cfg.Proofs.PublicBaseURL
		if base == "" {
			base = localProofsPrefix
		}
		l, err := proofs.NewLocal(d.cfg.Proofs.Dir, base)
		if err != nil {
			return err
		}
		d.proofsDir = l.Dir()
		storage = l
	}
	d.proofs = proofs.NewUploader(storage, d.log)
	return nil
}

// coach builds the LLM coach. Calls are recorded in the SQLite request log
// when one is open.
func (d *deps) coach(ctx context.Context) (*coach.Coach, error) {
	var recorder llm.RequestRecorder
	if d.sqlite != nil {
		recorder = d.sqlite.EventRepo()
	}
	provider, err := llm.NewProvider(ctx, d.cfg.LLM, recorder, d.log)
	if err != nil {
		return nil, err
	}
	return coach.New(provider, coach.DefaultConfig(), d.log), nil
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.log.Warn("close failed", "error", err)
		}
	}
	d.closers = nil
}
