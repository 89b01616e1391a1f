package roadmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/skilltrack/internal/catalog"
)

// Dashboard is the summary shown on the learner's home page.
type Dashboard struct {
	OverallProgress int    `json:"overallProgress"`
	CompletedSkills int    `json:"completedSkills"`
	TotalSkills     int    `json:"totalSkills"`
	BadgesEarned    int    `json:"badgesEarned"`
	EnrolledCourses int    `json:"enrolledCourses"`
	CareerGoal      string `json:"careerGoal"`
	IsCompleted     bool   `json:"isCompleted"`
	VerificationID  string `json:"verificationId,omitempty"`
}

// Dashboard summarizes the learner's tracker, badges and enrollments.
// A learner without a tracker gets zeros and "Not set".
func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	d := Dashboard{CareerGoal: "Not set"}

	t, err := s.repo.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return d, fmt.Errorf("dashboard: load tracker: %w", err)
	default:
		d.OverallProgress = t.OverallProgress
		d.CompletedSkills = t.CompletedCount()
		d.TotalSkills = len(t.Roadmap)
		d.IsCompleted = t.IsCompleted
		d.VerificationID = t.VerificationID
		if t.CareerGoalLabel != "" {
			d.CareerGoal = t.CareerGoalLabel
		}
	}

	if s.badges != nil {
		refs, err := s.badges.ListBadgeRefs(ctx, userID)
		if err != nil {
			return d, fmt.Errorf("dashboard: list badges: %w", err)
		}
		d.BadgesEarned = len(refs)
	}
	if s.enrollments != nil {
		n, err := s.enrollments.CountEnrollments(ctx, userID)
		if err != nil {
			return d, fmt.Errorf("dashboard: count enrollments: %w", err)
		}
		d.EnrolledCourses = n
	}
	return d, nil
}

// KnowledgeOptions lists the prior-knowledge choices for a goal key.
// Custom and unrecognized goals have none.
func (s *Service) KnowledgeOptions(goal string) []string {
	g, ok := catalog.ParseGoal(goal)
	if !ok {
		return []string{}
	}
	return catalog.KnowledgeOptions(g)
}
