package roadmap

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/skilltrack/internal/catalog"
	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/metrics"
)

// DefaultMaxRetries bounds load-mutate-save attempts on version conflicts.
const DefaultMaxRetries = 5

// Deps wires a Service. Repo, Locker and Engine are required.
type Deps struct {
	Repo        Repository
	Locker      Locker
	Engine      *Engine
	Badges      BadgeLister
	Enrollments EnrollmentCounter
	Publisher   CompletionPublisher
	Log         *logger.Logger
	MaxRetries  int
}

// Service runs roadmap operations as atomic read-modify-write cycles
// against the learner's stored tracker.
type Service struct {
	repo        Repository
	locker      Locker
	engine      *Engine
	badges      BadgeLister
	enrollments EnrollmentCounter
	publisher   CompletionPublisher
	log         *logger.Logger
	maxRetries  int
}

// NewService creates a Service.
func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	retries := d.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	return &Service{
		repo:        d.Repo,
		locker:      d.Locker,
		engine:      d.Engine,
		badges:      d.Badges,
		enrollments: d.Enrollments,
		publisher:   d.Publisher,
		log:         log.With("service", "RoadmapService"),
		maxRetries:  retries,
	}
}

// Engine returns the engine the service mutates trackers with.
func (s *Service) Engine() *Engine { return s.engine }

// errNoChange aborts a mutation without saving.
var errNoChange = errors.New("no change")

// mutate locks the learner, loads the tracker, applies fn and saves with
// an optimistic version check, retrying from a fresh load on conflict.
// A roadmap completed by fn is announced after the lock is released.
func (s *Service) mutate(ctx context.Context, op, userID string, fn func(t *Tracker) error) (*Tracker, error) {
	t, completed, err := s.mutateLocked(ctx, op, userID, fn)
	if err != nil {
		return nil, err
	}
	if completed {
		s.onRoadmapCompleted(ctx, t)
	}
	return t, nil
}

func (s *Service) mutateLocked(ctx context.Context, op, userID string, fn func(t *Tracker) error) (*Tracker, bool, error) {
	unlock, err := s.locker.Lock(ctx, lockKey(userID))
	if err != nil {
		return nil, false, fmt.Errorf("%s: acquire lock: %w", op, err)
	}
	defer unlock()

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		t, err := s.load(ctx, op, userID)
		if err != nil {
			return nil, false, err
		}
		wasCompleted := t.IsCompleted

		if err := fn(t); err != nil {
			if errors.Is(err, errNoChange) {
				return t, false, nil
			}
			return nil, false, err
		}
		t.UpdatedAt = s.engine.Now()

		err = s.repo.Update(ctx, t)
		if errors.Is(err, ErrStale) {
			metrics.VersionConflicts.Inc()
			s.log.Warn("tracker version conflict, retrying", "user_id", userID, "op", op, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("%s: save tracker: %w", op, err)
		}
		return t, !wasCompleted && t.IsCompleted, nil
	}
	return nil, false, newError(ErrConflict, op, "", "tracker changed concurrently, try again")
}

func (s *Service) load(ctx context.Context, op, userID string) (*Tracker, error) {
	t, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(ErrNotFound, op, "", "skill tracker not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: load tracker: %w", op, err)
	}
	return t, nil
}

func (s *Service) onRoadmapCompleted(ctx context.Context, t *Tracker) {
	metrics.RoadmapsCompleted.Inc()
	s.log.Info("roadmap completed", "user_id", t.UserID, "goal", t.CareerGoal, "verification_id", t.VerificationID)
	if s.publisher == nil {
		return
	}
	ev := CompletionEvent{
		UserID:         t.UserID,
		Goal:           string(t.CareerGoal),
		GoalLabel:      t.CareerGoalLabel,
		VerificationID: t.VerificationID,
		ContactEmail:   t.ContactEmail,
	}
	if t.CompletedAt != nil {
		ev.CompletedAt = *t.CompletedAt
	}
	// The tracker is already saved; a lost notification must not fail the call.
	if err := s.publisher.PublishRoadmapCompleted(ctx, ev); err != nil {
		s.log.Error("publish roadmap completion", "user_id", t.UserID, "error", err)
	}
}

func lockKey(userID string) string { return "tracker:" + userID }

// CheckEnrollment reports whether the learner has a paid enrollment.
// Without an EnrollmentCounter every learner counts as enrolled.
func (s *Service) CheckEnrollment(ctx context.Context, userID string) (bool, error) {
	n, err := s.enrollmentCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Service) enrollmentCount(ctx context.Context, userID string) (int, error) {
	if s.enrollments == nil {
		return 1, nil
	}
	n, err := s.enrollments.CountEnrollments(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

// ValidateProfile checks the profile fields accepted on setup.
func ValidateProfile(p Profile) error {
	const op = "validate profile"
	if !p.CareerGoal.Valid() {
		return newError(ErrValidation, op, "", fmt.Sprintf("unknown career goal %q", p.CareerGoal))
	}
	if strings.TrimSpace(p.CareerGoalLabel) == "" {
		return newError(ErrValidation, op, "", "career goal label is required")
	}
	if !slices.Contains(catalog.SkillLevels, p.CurrentSkillLevel) {
		return newError(ErrValidation, op, "", fmt.Sprintf("unknown skill level %q", p.CurrentSkillLevel))
	}
	if p.LearningIntensity != "" && !slices.Contains(catalog.LearningIntensities, p.LearningIntensity) {
		return newError(ErrValidation, op, "", fmt.Sprintf("unknown learning intensity %q", p.LearningIntensity))
	}
	if p.GoalTimeline != "" && !slices.Contains(catalog.GoalTimelines, p.GoalTimeline) {
		return newError(ErrValidation, op, "", fmt.Sprintf("unknown goal timeline %q", p.GoalTimeline))
	}
	return nil
}

// ValidateCompleteRequest enforces the per-source provenance fields:
// platform completions need a proof image, external ones a description.
func ValidateCompleteRequest(req CompleteRequest) error {
	const op = "validate completion"
	switch {
	case strings.TrimSpace(req.SkillName) == "":
		return newError(ErrValidation, op, "", "skill name is required")
	case !req.Source.Valid():
		return newError(ErrValidation, op, req.SkillName, fmt.Sprintf("unknown source %q", req.Source))
	case req.Source == SourcePlatform && strings.TrimSpace(req.ProofImageURL) == "":
		return newError(ErrValidation, op, req.SkillName, "proof image is required for platform completions")
	case req.Source == SourceExternal && strings.TrimSpace(req.SourceDescription) == "":
		return newError(ErrValidation, op, req.SkillName, "describe where the skill was learned")
	}
	return nil
}

// Upsert creates the learner's tracker, or updates its profile. The
// roadmap is rebuilt when the goal changes or the roadmap is empty.
// A completed roadmap cannot switch goals.
func (s *Service) Upsert(ctx context.Context, userID string, p Profile) (*Tracker, bool, error) {
	const op = "upsert tracker"
	if err := ValidateProfile(p); err != nil {
		return nil, false, err
	}
	enrolled, err := s.CheckEnrollment(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !enrolled {
		return nil, false, newError(ErrNotEnrolled, op, "", "enroll in at least one course to use the skill tracker")
	}

	t := NewTracker(userID, p, s.engine.Now())
	err = s.repo.Create(ctx, t)
	if err == nil {
		metrics.RoadmapOperations.WithLabelValues("create", "ok").Inc()
		s.log.Info("tracker created", "user_id", userID, "goal", p.CareerGoal)
		return t, true, nil
	}
	if !errors.Is(err, ErrExists) {
		return nil, false, fmt.Errorf("%s: create tracker: %w", op, err)
	}

	t, err = s.mutate(ctx, op, userID, func(t *Tracker) error {
		goalChanged := t.CareerGoal != p.CareerGoal
		if goalChanged && t.IsCompleted {
			return newError(ErrInvalidState, op, "", "roadmap already completed, goal cannot change")
		}
		if p.ExistingKnowledge == nil {
			p.ExistingKnowledge = []string{}
		}
		if p.ContactEmail == "" {
			p.ContactEmail = t.ContactEmail
		}
		t.Profile = p
		if goalChanged || (len(t.Roadmap) == 0 && !t.IsCompleted) {
			s.engine.Reinitialize(t, p.CareerGoal)
		}
		return nil
	})
	s.record("update_profile", err)
	return t, false, err
}

// Get returns the learner's tracker. A stored tracker with an empty
// roadmap for a non-custom goal is reinitialized first.
func (s *Service) Get(ctx context.Context, userID string) (*Tracker, error) {
	const op = "get tracker"
	t, err := s.load(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	if len(t.Roadmap) > 0 || t.CareerGoal == catalog.GoalCustom || t.IsCompleted {
		return t, nil
	}
	return s.mutate(ctx, op, userID, func(t *Tracker) error {
		if len(t.Roadmap) > 0 {
			return errNoChange
		}
		s.engine.Reinitialize(t, t.CareerGoal)
		return nil
	})
}

// UpdateProgress sets a skill's progress percentage. Unknown skill names
// are ignored and the tracker is returned unchanged.
func (s *Service) UpdateProgress(ctx context.Context, userID, skillName string, progress int) (*Tracker, error) {
	t, err := s.mutate(ctx, "update progress", userID, func(t *Tracker) error {
		before := skillStatus(t, skillName)
		if !s.engine.UpdateProgress(t, skillName, progress) {
			return errNoChange
		}
		if before != StatusCompleted && skillStatus(t, skillName) == StatusCompleted {
			metrics.SkillCompletions.WithLabelValues("progress").Inc()
		}
		return nil
	})
	s.record("update_progress", err)
	return t, err
}

// MarkSkillComplete completes a skill with learner-supplied provenance.
// A platform-verified completion without a badge id reuses a badge whose
// course or badge name mentions the skill.
func (s *Service) MarkSkillComplete(ctx context.Context, userID string, req CompleteRequest) (*Tracker, error) {
	if err := ValidateCompleteRequest(req); err != nil {
		return nil, err
	}
	if req.Source == SourcePlatform && req.BadgeID == "" {
		req.BadgeID = s.findBadgeFor(ctx, userID, req.SkillName)
	}
	t, err := s.mutate(ctx, "mark skill complete", userID, func(t *Tracker) error {
		return s.engine.MarkSkillComplete(t, req)
	})
	s.record("mark_complete", err)
	if err == nil {
		metrics.SkillCompletions.WithLabelValues(string(req.Source)).Inc()
		s.log.Info("skill completed", "user_id", userID, "skill", req.SkillName, "source", req.Source)
	}
	return t, err
}

func (s *Service) findBadgeFor(ctx context.Context, userID, skillName string) string {
	if s.badges == nil {
		return ""
	}
	refs, err := s.badges.ListBadgeRefs(ctx, userID)
	if err != nil {
		s.log.Warn("list badges for completion", "user_id", userID, "error", err)
		return ""
	}
	needle := strings.ToLower(skillName)
	for _, b := range refs {
		if strings.Contains(strings.ToLower(b.CourseName), needle) || strings.Contains(strings.ToLower(b.Name), needle) {
			return b.ID
		}
	}
	return ""
}

// AutoCompleteSkill completes the roadmap skill matching an issued badge.
// It reports false when nothing matched or the skill was already done.
func (s *Service) AutoCompleteSkill(ctx context.Context, userID, badgeName, badgeID string) (bool, error) {
	completed := false
	_, err := s.mutate(ctx, "auto-complete skill", userID, func(t *Tracker) error {
		completed = s.engine.AutoCompleteSkill(t, badgeName, badgeID)
		if !completed {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		s.record("auto_complete", err)
		return false, err
	}
	outcome := "no_match"
	if completed {
		outcome = "ok"
		metrics.SkillCompletions.WithLabelValues(string(SourcePlatform)).Inc()
		s.log.Info("skill auto-completed", "user_id", userID, "badge", badgeName)
	}
	metrics.RoadmapOperations.WithLabelValues("auto_complete", outcome).Inc()
	return completed, nil
}

// SyncResult reports what one badge did during SyncBadges.
type SyncResult struct {
	BadgeName      string `json:"badgeName"`
	SkillCompleted bool   `json:"skillCompleted"`
	Reason         string `json:"reason,omitempty"`
}

// SyncBadges runs AutoCompleteSkill for every badge the learner holds.
// One badge failing to match never aborts the batch.
func (s *Service) SyncBadges(ctx context.Context, userID string) ([]SyncResult, error) {
	if _, err := s.load(ctx, "sync badges", userID); err != nil {
		return nil, err
	}
	if s.badges == nil {
		return []SyncResult{}, nil
	}
	refs, err := s.badges.ListBadgeRefs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sync badges: list badges: %w", err)
	}
	results := make([]SyncResult, 0, len(refs))
	for _, b := range refs {
		ok, err := s.AutoCompleteSkill(ctx, userID, b.Name, b.ID)
		if err != nil {
			return results, err
		}
		r := SyncResult{BadgeName: b.Name, SkillCompleted: ok}
		if !ok {
			r.Reason = "No matching skill or already completed"
		}
		results = append(results, r)
	}
	return results, nil
}

// Refresh unlocks every locked skill, then re-syncs badges.
func (s *Service) Refresh(ctx context.Context, userID string) (*Tracker, []SyncResult, error) {
	_, err := s.mutate(ctx, "refresh tracker", userID, func(t *Tracker) error {
		if s.engine.UnlockAll(t) == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	results, err := s.SyncBadges(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.load(ctx, "refresh tracker", userID)
	return t, results, err
}

// Reset deletes the learner's tracker.
func (s *Service) Reset(ctx context.Context, userID string) error {
	unlock, err := s.locker.Lock(ctx, lockKey(userID))
	if err != nil {
		return fmt.Errorf("reset tracker: acquire lock: %w", err)
	}
	defer unlock()

	err = s.repo.Delete(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return newError(ErrNotFound, "reset tracker", "", "skill tracker not found")
	}
	if err != nil {
		return fmt.Errorf("reset tracker: %w", err)
	}
	s.log.Info("tracker reset", "user_id", userID)
	return nil
}

func (s *Service) record(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrInvalidState):
		outcome = "invalid_state"
	case errors.Is(err, ErrConflict):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	metrics.RoadmapOperations.WithLabelValues(op, outcome).Inc()
}

func skillStatus(t *Tracker, name string) Status {
	if i := t.FindSkill(name); i >= 0 {
		return t.Roadmap[i].Status
	}
	return ""
}
