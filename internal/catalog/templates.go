package catalog

// SkillTemplate is one entry of a static roadmap template.
type SkillTemplate struct {
	Name        string
	Description string

	// StartLocked marks entries that begin locked and are unlocked when the
	// previous roadmap entry completes. No shipped template uses it yet.
	StartLocked bool
}

var templates = map[Goal][]SkillTemplate{
	GoalFrontend: {
		{Name: "HTML", Description: "HyperText Markup Language"},
		{Name: "CSS", Description: "Cascading Style Sheets"},
		{Name: "JavaScript", Description: "Programming Language"},
		{Name: "React", Description: "JavaScript Library"},
		{Name: "TypeScript", Description: "Typed JavaScript"},
		{Name: "Tailwind CSS", Description: "Utility-First CSS Framework"},
	},
	GoalBackend: {
		{Name: "JavaScript", Description: "Programming Language"},
		{Name: "Node.js", Description: "JavaScript Runtime"},
		{Name: "Express.js", Description: "Backend Framework"},
		{Name: "MongoDB", Description: "NoSQL Database"},
		{Name: "PostgreSQL", Description: "SQL Database"},
		{Name: "Redis", Description: "In-Memory Database"},
	},
	GoalFullstack: {
		{Name: "HTML", Description: "Markup Language"},
		{Name: "CSS", Description: "Styling Language"},
		{Name: "JavaScript", Description: "Programming Language"},
		{Name: "React", Description: "Frontend Library"},
		{Name: "Node.js", Description: "Backend Runtime"},
		{Name: "MongoDB", Description: "Database"},
	},
	GoalDataAnalyst: {
		{Name: "Python", Description: "Programming Language"},
		{Name: "SQL", Description: "Query Language"},
		{Name: "Pandas", Description: "Data Analysis Library"},
		{Name: "NumPy", Description: "Numerical Computing"},
		{Name: "Matplotlib", Description: "Visualization Library"},
		{Name: "Power BI", Description: "Business Intelligence"},
	},
	GoalDataScientist: {
		{Name: "Python", Description: "Programming Language"},
		{Name: "TensorFlow", Description: "ML Framework"},
		{Name: "PyTorch", Description: "Deep Learning Framework"},
		{Name: "Scikit-learn", Description: "Machine Learning Library"},
		{Name: "Keras", Description: "Neural Network API"},
		{Name: "Jupyter", Description: "Interactive Computing"},
	},
	GoalCybersecurity: {
		{Name: "Linux", Description: "Operating System"},
		{Name: "Python", Description: "Scripting Language"},
		{Name: "Wireshark", Description: "Network Analyzer"},
		{Name: "Kali Linux", Description: "Security Platform"},
		{Name: "Metasploit", Description: "Penetration Testing"},
		{Name: "Burp Suite", Description: "Web Security Testing"},
	},
	GoalCustom: {},
}

// Template returns a copy of the roadmap template for goal. Unknown goals
// and GoalCustom yield an empty slice.
func Template(goal Goal) []SkillTemplate {
	src := templates[goal]
	out := make([]SkillTemplate, len(src))
	copy(out, src)
	return out
}
