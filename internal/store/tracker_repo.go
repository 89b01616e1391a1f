package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/abhisek/skilltrack/internal/roadmap"
)

var sqlite = entsql.Dialect(dialect.SQLite)

// TrackerRepo implements roadmap.Repository with an optimistic version
// column guarding every update.
type TrackerRepo struct {
	db *sql.DB
}

var _ roadmap.Repository = (*TrackerRepo)(nil)

func (r *TrackerRepo) Get(ctx context.Context, userID string) (*roadmap.Tracker, error) {
	q, args := sqlite.Select("document", "version").
		From(sqlite.Table(TrackersTable)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var (
		doc     string
		version int64
	)
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tracker for %s: %w", userID, roadmap.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query tracker: %w", err)
	}

	t, err := roadmap.Decode([]byte(doc))
	if err != nil {
		return nil, err
	}
	t.Version = version
	return t, nil
}

func (r *TrackerRepo) Create(ctx context.Context, t *roadmap.Tracker) error {
	t.Version = 1
	doc, err := roadmap.Encode(t)
	if err != nil {
		return err
	}
	q, args := sqlite.Insert(TrackersTable).
		Set("user_id", t.UserID).
		Set("career_goal", string(t.CareerGoal)).
		Set("overall_progress", t.OverallProgress).
		Set("is_completed", t.IsCompleted).
		Set("verification_id", t.VerificationID).
		Set("document", string(doc)).
		Set("version", t.Version).
		Set("created_at", t.CreatedAt).
		Set("updated_at", t.UpdatedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		t.Version = 0
		if sqlgraph.IsUniqueConstraintError(err) {
			return fmt.Errorf("tracker for %s: %w", t.UserID, roadmap.ErrExists)
		}
		return fmt.Errorf("insert tracker: %w", err)
	}
	return nil
}

func (r *TrackerRepo) Update(ctx context.Context, t *roadmap.Tracker) error {
	doc, err := roadmap.Encode(t)
	if err != nil {
		return err
	}
	q, args := sqlite.Update(TrackersTable).
		Set("career_goal", string(t.CareerGoal)).
		Set("overall_progress", t.OverallProgress).
		Set("is_completed", t.IsCompleted).
		Set("verification_id", t.VerificationID).
		Set("document", string(doc)).
		Set("version", t.Version+1).
		Set("updated_at", t.UpdatedAt).
		Where(entsql.And(
			entsql.EQ("user_id", t.UserID),
			entsql.EQ("version", t.Version),
		)).
		Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update tracker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tracker: %w", err)
	}
	if n == 0 {
		if _, err := r.Get(ctx, t.UserID); err != nil {
			return err
		}
		return fmt.Errorf("tracker for %s at version %d: %w", t.UserID, t.Version, roadmap.ErrStale)
	}
	t.Version++
	return nil
}

func (r *TrackerRepo) Delete(ctx context.Context, userID string) error {
	q, args := sqlite.Delete(TrackersTable).
		Where(entsql.EQ("user_id", userID)).
		Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete tracker: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tracker for %s: %w", userID, roadmap.ErrNotFound)
	}
	return nil
}

// GoalStats aggregates trackers sharing a career goal.
type GoalStats struct {
	Goal            string
	Trackers        int
	Completed       int
	AverageProgress float64
}

// Stats returns per-goal aggregates, ordered by goal.
func (r *TrackerRepo) Stats(ctx context.Context) ([]GoalStats, error) {
	q, args := sqlite.Select(
		"career_goal",
		entsql.Count("*"),
		entsql.Sum("is_completed"),
		entsql.Avg("overall_progress"),
	).
		From(sqlite.Table(TrackersTable)).
		GroupBy("career_goal").
		OrderBy("career_goal").
		Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracker stats: %w", err)
	}
	defer rows.Close()

	var out []GoalStats
	for rows.Next() {
		var s GoalStats
		if err := rows.Scan(&s.Goal, &s.Trackers, &s.Completed, &s.AverageProgress); err != nil {
			return nil, fmt.Errorf("scan tracker stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
