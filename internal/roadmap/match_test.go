package roadmap

import (
	"testing"

	"github.com/abhisek/skilltrack/internal/catalog"
)

func skills(names ...string) []Skill {
	out := make([]Skill, len(names))
	for i, n := range names {
		out[i] = Skill{Name: n, Status: StatusUnlocked}
	}
	return out
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher(catalog.DefaultMatchKeywords)
	tests := []struct {
		name   string
		skills []Skill
		badge  string
		want   int
	}{
		{"keyword", skills("HTML", "React"), "React Badge", 1},
		{"substring skill in badge", skills("Pandas", "NumPy"), "NumPy for Analysts", 1},
		{"substring badge in skill", skills("ReactJS Fundamentals"), "React", 0},
		{"case and spacing", skills("Tailwind CSS"), "TAILWIND  css", 0},
		{"hyphens in badge", skills("Scikit-learn"), "scikit learn", -1},
		{"hyphen dropped from badge", skills("Power BI"), "Power-BI Dashboards", 0},
		{"first match wins", skills("Java", "JavaScript"), "JavaScript Basics", 0},
		{"skips earlier non-matches", skills("JavaScript", "TypeScript"), "TypeScript Essentials", 1},
		{"java keyword hits javascript", skills("JavaScript"), "Java Basics", 0},
		{"no match", skills("Node.js"), "React Badge", -1},
		{"empty badge", skills("HTML"), "   ", -1},
		{"empty roadmap", nil, "HTML", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.skills, tt.badge); got != tt.want {
				t.Errorf("Match(%q) = %d, want %d", tt.badge, got, tt.want)
			}
		})
	}
}

func TestNormalizeBadgeName(t *testing.T) {
	if got := normalizeBadgeName(" Express-JS \tBasics "); got != "expressjsbasics" {
		t.Errorf("normalizeBadgeName = %q", got)
	}
	if got := normalizeSkillName("Express-JS Basics"); got != "express-jsbasics" {
		t.Errorf("normalizeSkillName = %q", got)
	}
}
