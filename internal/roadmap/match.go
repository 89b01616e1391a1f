package roadmap

import (
	"strings"
	"unicode"
)

// Matcher pairs badge names with roadmap skills.
//
// Skills are tried in roadmap order and the first one that matches wins.
// A skill matches when some keyword occurs in both normalized names, or,
// failing that, when either normalized name contains the other.
type Matcher struct {
	keywords []string
}

// NewMatcher returns a Matcher using the given keyword list.
func NewMatcher(keywords []string) *Matcher {
	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = normalizeSkillName(k)
		if k != "" {
			kws = append(kws, k)
		}
	}
	return &Matcher{keywords: kws}
}

// Match returns the index of the first skill matching badgeName, or -1.
func (m *Matcher) Match(skills []Skill, badgeName string) int {
	badge := normalizeBadgeName(badgeName)
	if badge == "" {
		return -1
	}
	for i := range skills {
		if m.matches(normalizeSkillName(skills[i].Name), badge) {
			return i
		}
	}
	return -1
}

func (m *Matcher) matches(skill, badge string) bool {
	if skill == "" {
		return false
	}
	for _, kw := range m.keywords {
		if strings.Contains(badge, kw) && strings.Contains(skill, kw) {
			return true
		}
	}
	return strings.Contains(badge, skill) || strings.Contains(skill, badge)
}

// normalizeSkillName lower-cases s and removes all whitespace.
func normalizeSkillName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// normalizeBadgeName is normalizeSkillName that also drops hyphens.
func normalizeBadgeName(s string) string {
	return strings.ReplaceAll(normalizeSkillName(s), "-", "")
}
