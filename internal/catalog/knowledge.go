package catalog

var knowledgeOptions = map[Goal][]string{
	GoalFrontend:      {"HTML", "CSS", "JavaScript", "React", "Git & GitHub", "UI/UX", "Next.js"},
	GoalBackend:       {"HTML & CSS", "JavaScript", "Node.js", "Express.js", "MongoDB", "PostgreSQL", "Git"},
	GoalFullstack:     {"HTML", "CSS", "JavaScript", "React", "Node.js", "Express.js", "MongoDB", "Git"},
	GoalDataAnalyst:   {"Python", "Excel", "SQL", "Statistics", "Data Visualization"},
	GoalDataScientist: {"Python", "Statistics", "Machine Learning", "Data Analysis", "Mathematics"},
	GoalCybersecurity: {"Networking", "Linux", "Windows", "Web Security", "Security Tools"},
}

// KnowledgeOptions lists the prior-knowledge choices offered for a goal.
func KnowledgeOptions(goal Goal) []string {
	return append([]string{}, knowledgeOptions[goal]...)
}

// Skill levels, weekly intensities and timelines accepted on a tracker profile.
var (
	SkillLevels         = []string{"beginner", "intermediate", "advanced"}
	LearningIntensities = []string{"3-5", "6-10", "10+"}
	GoalTimelines       = []string{"1-2", "3-4", "no-deadline"}
)
