package roadmap

// Status is the lifecycle state of a roadmap skill.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusUnlocked  Status = "unlocked"
	StatusCompleted Status = "completed"
)

// DisplayName returns a human-readable label for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusUnlocked:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Icon returns the display icon for the status.
func (s Status) Icon() string {
	switch s {
	case StatusLocked:
		return "🔒"
	case StatusUnlocked:
		return "○"
	case StatusCompleted:
		return "✓"
	default:
		return "?"
	}
}

// Skill is one roadmap entry. Name is the lookup key for every operation.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Progress    int    `json:"progress"`
}

// Source records where a completion came from.
type Source string

const (
	// SourcePlatform is a completion verified by the platform itself:
	// a finished course, backed by a badge or a proof image.
	SourcePlatform Source = "skillion"
	// SourceExternal is a completion the learner claims from elsewhere.
	SourceExternal Source = "other"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourcePlatform || s == SourceExternal
}
