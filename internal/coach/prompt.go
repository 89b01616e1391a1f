package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/skilltrack/internal/roadmap"
)

const systemPrompt = `You are a practical career coach for self-taught developers. The learner follows a fixed skill roadmap towards a job role. Recommend what to do next using only the skills on their roadmap. Be concrete and brief.`

func buildUserMessage(t *roadmap.Tracker) string {
	var b strings.Builder

	goal := t.CareerGoalLabel
	if goal == "" {
		goal = t.CareerGoal.DisplayName()
	}
	fmt.Fprintf(&b, "Career goal: %s\n", goal)
	if t.CurrentSkillLevel != "" {
		fmt.Fprintf(&b, "Current level: %s\n", t.CurrentSkillLevel)
	}
	if t.LearningIntensity != "" {
		fmt.Fprintf(&b, "Hours per week: %s\n", t.LearningIntensity)
	}
	if t.GoalTimeline != "" {
		fmt.Fprintf(&b, "Timeline: %s months\n", t.GoalTimeline)
	}
	if len(t.ExistingKnowledge) > 0 {
		fmt.Fprintf(&b, "Already knows: %s\n", strings.Join(t.ExistingKnowledge, ", "))
	}
	fmt.Fprintf(&b, "Overall progress: %d%%\n", t.OverallProgress)

	b.WriteString("\nRoadmap:\n")
	for i, s := range t.Roadmap {
		fmt.Fprintf(&b, "%d. %s [%s, %d%%]", i+1, s.Name, s.Status, s.Progress)
		if s.Description != "" {
			fmt.Fprintf(&b, " - %s", s.Description)
		}
		b.WriteByte('\n')
	}

	if t.IsCompleted {
		b.WriteString("\nThe roadmap is complete. Suggest how to show the work to employers and leave nextSkill empty.\n")
	} else {
		b.WriteString("\nPick nextSkill from the skills that are not completed.\n")
	}
	return b.String()
}
