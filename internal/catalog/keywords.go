package catalog

import "strings"

// DefaultMatchKeywords is the technology keyword list consulted before the
// substring rule when matching badge names against roadmap skills.
var DefaultMatchKeywords = []string{
	"html", "css", "javascript", "react", "node", "express",
	"mongodb", "typescript", "tailwind", "python", "java",
}

// ParseKeywords splits a comma-separated keyword list, lower-casing and
// dropping blanks. An empty input yields DefaultMatchKeywords.
func ParseKeywords(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string{}, DefaultMatchKeywords...)
	}
	return out
}
