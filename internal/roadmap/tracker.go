package roadmap

import (
	"time"

	"github.com/abhisek/skilltrack/internal/catalog"
)

// Completion is one entry of the append-only completion log.
type Completion struct {
	SkillName         string    `json:"skillName"`
	CompletedAt       time.Time `json:"completedAt"`
	Source            Source    `json:"source"`
	SourceDescription string    `json:"sourceDescription"`
	ProofImageURL     string    `json:"proofImageUrl,omitempty"`
	VerifiedBadgeID   string    `json:"verifiedBadgeId,omitempty"`
}

// Profile holds the learner-supplied answers from tracker setup.
type Profile struct {
	CareerGoal        catalog.Goal `json:"careerGoal"`
	CareerGoalLabel   string       `json:"careerGoalLabel"`
	CurrentSkillLevel string       `json:"currentSkillLevel"`
	LearningIntensity string       `json:"learningIntensity,omitempty"`
	GoalTimeline      string       `json:"goalTimeline,omitempty"`
	ExistingKnowledge []string     `json:"existingKnowledge"`
	ContactEmail      string       `json:"contactEmail,omitempty"`
}

// Tracker is one learner's skill roadmap and completion record.
type Tracker struct {
	UserID string `json:"userId"`
	Profile

	Roadmap         []Skill      `json:"roadmap"`
	OverallProgress int          `json:"overallProgress"`
	CompletedSkills []Completion `json:"completedSkills"`

	IsCompleted    bool       `json:"isCompleted"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	VerificationID string     `json:"verificationId,omitempty"`
	CardGenerated  bool       `json:"cardGenerated"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version is bumped by the store on every successful save.
	Version int64 `json:"version"`
}

// NewTracker creates a tracker with the roadmap for the profile's goal.
func NewTracker(userID string, p Profile, now time.Time) *Tracker {
	if p.ExistingKnowledge == nil {
		p.ExistingKnowledge = []string{}
	}
	return &Tracker{
		UserID:          userID,
		Profile:         p,
		Roadmap:         InitializeRoadmap(p.CareerGoal),
		CompletedSkills: []Completion{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// FindSkill returns the index of the skill with exactly this name, or -1.
func (t *Tracker) FindSkill(name string) int {
	for i := range t.Roadmap {
		if t.Roadmap[i].Name == name {
			return i
		}
	}
	return -1
}

// CompletedCount counts roadmap entries whose status is completed.
func (t *Tracker) CompletedCount() int {
	n := 0
	for _, s := range t.Roadmap {
		if s.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// HasCompletion reports whether the completion log has an entry for name.
func (t *Tracker) HasCompletion(name string) bool {
	for _, c := range t.CompletedSkills {
		if c.SkillName == name {
			return true
		}
	}
	return false
}

// Remaining returns the roadmap entries not yet completed, in order.
func (t *Tracker) Remaining() []Skill {
	var out []Skill
	for _, s := range t.Roadmap {
		if s.Status != StatusCompleted {
			out = append(out, s)
		}
	}
	return out
}
