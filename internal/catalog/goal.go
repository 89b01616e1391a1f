package catalog

import "strings"

// Goal identifies a career track. Each track owns one roadmap template.
type Goal string

const (
	GoalFrontend      Goal = "frontend"
	GoalBackend       Goal = "backend"
	GoalFullstack     Goal = "fullstack"
	GoalDataAnalyst   Goal = "dataanalyst"
	GoalDataScientist Goal = "datascientist"
	GoalCybersecurity Goal = "cybersecurity"
	GoalCustom        Goal = "custom"
)

// AllGoals returns every career goal in display order.
func AllGoals() []Goal {
	return []Goal{
		GoalFrontend,
		GoalBackend,
		GoalFullstack,
		GoalDataAnalyst,
		GoalDataScientist,
		GoalCybersecurity,
		GoalCustom,
	}
}

// ParseGoal resolves a user-supplied goal key. Matching ignores case,
// surrounding whitespace and hyphens, so "data-analyst" resolves to
// GoalDataAnalyst.
func ParseGoal(s string) (Goal, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, "_", "")
	for _, g := range AllGoals() {
		if string(g) == key {
			return g, true
		}
	}
	return "", false
}

// Valid reports whether g is one of the enumerated goals.
func (g Goal) Valid() bool {
	for _, known := range AllGoals() {
		if g == known {
			return true
		}
	}
	return false
}

// DisplayName returns the default human-readable label for the goal.
func (g Goal) DisplayName() string {
	switch g {
	case GoalFrontend:
		return "Frontend Developer"
	case GoalBackend:
		return "Backend Developer"
	case GoalFullstack:
		return "Full Stack Developer"
	case GoalDataAnalyst:
		return "Data Analyst"
	case GoalDataScientist:
		return "Data Scientist"
	case GoalCybersecurity:
		return "Cybersecurity Specialist"
	case GoalCustom:
		return "Custom Path"
	default:
		return string(g)
	}
}

// Code is the upper-case form used inside verification IDs.
func (g Goal) Code() string {
	return strings.ToUpper(string(g))
}
