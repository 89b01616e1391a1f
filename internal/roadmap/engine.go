package roadmap

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/skilltrack/internal/catalog"
)

// IntSource supplies the random digits of verification IDs.
// *rand.Rand from math/rand/v2 satisfies it.
type IntSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Engine applies roadmap transitions to an in-memory Tracker. It never
// touches storage; Service wraps it with load and save.
type Engine struct {
	matcher *Matcher
	now     func() time.Time
	rnd     IntSource
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithRand overrides the random source used for verification IDs.
func WithRand(r IntSource) EngineOption {
	return func(e *Engine) { e.rnd = r }
}

// WithKeywords overrides the badge matching keyword list.
func WithKeywords(keywords []string) EngineOption {
	return func(e *Engine) { e.matcher = NewMatcher(keywords) }
}

// NewEngine creates an Engine with the default keyword list, wall clock
// and global random source.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		matcher: NewMatcher(catalog.DefaultMatchKeywords),
		now:     time.Now,
		rnd:     globalRand{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time { return e.now() }

// InitializeRoadmap builds the fresh roadmap for goal. Unknown goals and
// GoalCustom produce an empty roadmap.
func InitializeRoadmap(goal catalog.Goal) []Skill {
	tmpl := catalog.Template(goal)
	skills := make([]Skill, len(tmpl))
	for i, t := range tmpl {
		status := StatusUnlocked
		if t.StartLocked {
			status = StatusLocked
		}
		skills[i] = Skill{Name: t.Name, Description: t.Description, Status: status}
	}
	return skills
}

// Reinitialize replaces the tracker's roadmap with the template for goal,
// discarding skill progress. The completion log is append-only and keeps
// entries from earlier goals.
func (e *Engine) Reinitialize(t *Tracker, goal catalog.Goal) {
	t.CareerGoal = goal
	t.Roadmap = InitializeRoadmap(goal)
	t.OverallProgress = 0
}

// UpdateProgress sets the progress of the named skill. It reports false,
// leaving t untouched, when no skill has that name.
//
// Progress is clamped to 0..100. Reaching 100 completes the skill and
// unlocks the next one. A completed skill keeps progress 100. No
// completion log entry is written.
func (e *Engine) UpdateProgress(t *Tracker, name string, progress int) bool {
	i := t.FindSkill(name)
	if i < 0 {
		return false
	}
	progress = min(max(progress, 0), 100)

	s := &t.Roadmap[i]
	if s.Status != StatusCompleted {
		s.Progress = progress
		if progress == 100 {
			s.Status = StatusCompleted
			unlockNext(t, i)
		}
	}
	e.recompute(t)
	return true
}

// CompleteRequest carries the provenance of an explicit completion.
type CompleteRequest struct {
	SkillName         string
	Source            Source
	SourceDescription string
	ProofImageURL     string
	BadgeID           string
}

// MarkSkillComplete completes a skill on the learner's own claim.
// Provenance fields are stored as given; callers validate them.
func (e *Engine) MarkSkillComplete(t *Tracker, req CompleteRequest) error {
	const op = "mark skill complete"

	i := t.FindSkill(req.SkillName)
	if i < 0 {
		return newError(ErrNotFound, op, req.SkillName, "skill not found in roadmap")
	}
	switch t.Roadmap[i].Status {
	case StatusLocked:
		return newError(ErrInvalidState, op, req.SkillName, "complete prerequisite skills first")
	case StatusCompleted:
		return newError(ErrConflict, op, req.SkillName, "skill already completed")
	}

	t.Roadmap[i].Status = StatusCompleted
	t.Roadmap[i].Progress = 100
	e.appendCompletion(t, Completion{
		SkillName:         req.SkillName,
		Source:            req.Source,
		SourceDescription: req.SourceDescription,
		ProofImageURL:     req.ProofImageURL,
		VerifiedBadgeID:   req.BadgeID,
	})
	unlockNext(t, i)
	e.recompute(t)
	return nil
}

// AutoCompleteSkill completes the first roadmap skill matching badgeName.
// It reports false when nothing matches or the match is already completed.
func (e *Engine) AutoCompleteSkill(t *Tracker, badgeName, badgeID string) bool {
	i := e.matcher.Match(t.Roadmap, badgeName)
	if i < 0 || t.Roadmap[i].Status == StatusCompleted {
		return false
	}

	s := &t.Roadmap[i]
	s.Status = StatusCompleted
	s.Progress = 100
	e.appendCompletion(t, Completion{
		SkillName:         s.Name,
		Source:            SourcePlatform,
		SourceDescription: "Completed via Skillion course: " + badgeName,
		VerifiedBadgeID:   badgeID,
	})
	e.recompute(t)
	return true
}

// MatchBadge exposes the matcher so callers can preview a match.
func (e *Engine) MatchBadge(t *Tracker, badgeName string) (Skill, bool) {
	i := e.matcher.Match(t.Roadmap, badgeName)
	if i < 0 {
		return Skill{}, false
	}
	return t.Roadmap[i], true
}

// UnlockAll moves every locked skill to unlocked and reports how many moved.
func (e *Engine) UnlockAll(t *Tracker) int {
	n := 0
	for i := range t.Roadmap {
		if t.Roadmap[i].Status == StatusLocked {
			t.Roadmap[i].Status = StatusUnlocked
			n++
		}
	}
	return n
}

func (e *Engine) appendCompletion(t *Tracker, c Completion) {
	if t.HasCompletion(c.SkillName) {
		return
	}
	c.CompletedAt = e.now()
	t.CompletedSkills = append(t.CompletedSkills, c)
}

// unlockNext unlocks the entry after i. Completed entries are left alone.
func unlockNext(t *Tracker, i int) {
	if i+1 < len(t.Roadmap) && t.Roadmap[i+1].Status == StatusLocked {
		t.Roadmap[i+1].Status = StatusUnlocked
	}
}

// OverallProgress is round(100 * completed / total), 0 for an empty roadmap.
func OverallProgress(skills []Skill) int {
	if len(skills) == 0 {
		return 0
	}
	done := 0
	for _, s := range skills {
		if s.Status == StatusCompleted {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(skills))))
}

// recompute refreshes OverallProgress and stamps completion the first time
// it reaches 100. Stamping never repeats for the same tracker.
func (e *Engine) recompute(t *Tracker) {
	t.OverallProgress = OverallProgress(t.Roadmap)
	if t.OverallProgress < 100 || t.IsCompleted {
		return
	}
	now := e.now()
	t.IsCompleted = true
	t.CompletedAt = &now
	t.CardGenerated = false
	t.VerificationID = e.verificationID(t.CareerGoal, now)
}

func (e *Engine) verificationID(goal catalog.Goal, now time.Time) string {
	return fmt.Sprintf("SKL-%s-%d-%04d", goal.Code(), now.Year(), e.rnd.IntN(10000))
}
