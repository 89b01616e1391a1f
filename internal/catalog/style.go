package catalog

import "strings"

const deviconBase = "https://cdn.jsdelivr.net/gh/devicons/devicon/icons/"

// BadgeStyle is the icon and accent color shown for a badge.
type BadgeStyle struct {
	Icon  string
	Color string
}

type styleRule struct {
	keywords []string
	style    BadgeStyle
}

// Rules are checked in order: framework names win over the language they
// build on, and "javascript" is tested before "java".
var styleRules = []styleRule{
	{[]string{"html"}, BadgeStyle{deviconBase + "html5/html5-original.svg", "#e34c26"}},
	{[]string{"tailwind"}, BadgeStyle{deviconBase + "tailwindcss/tailwindcss-original.svg", "#06b6d4"}},
	{[]string{"css"}, BadgeStyle{deviconBase + "css3/css3-original.svg", "#264de4"}},
	{[]string{"react"}, BadgeStyle{deviconBase + "react/react-original.svg", "#61dafb"}},
	{[]string{"node"}, BadgeStyle{deviconBase + "nodejs/nodejs-original.svg", "#68a063"}},
	{[]string{"express"}, BadgeStyle{deviconBase + "express/express-original.svg", "#000000"}},
	{[]string{"mongodb"}, BadgeStyle{deviconBase + "mongodb/mongodb-original.svg", "#47A248"}},
	{[]string{"typescript"}, BadgeStyle{deviconBase + "typescript/typescript-original.svg", "#3178c6"}},
	{[]string{"javascript", "js"}, BadgeStyle{deviconBase + "javascript/javascript-original.svg", "#f0db4f"}},
	{[]string{"python"}, BadgeStyle{deviconBase + "python/python-original.svg", "#3776ab"}},
	{[]string{"java"}, BadgeStyle{deviconBase + "java/java-original.svg", "#007396"}},
	{[]string{"sql", "database", "postgres"}, BadgeStyle{deviconBase + "postgresql/postgresql-original.svg", "#336791"}},
	{[]string{"figma"}, BadgeStyle{deviconBase + "figma/figma-original.svg", "#F24E1E"}},
	{[]string{"git"}, BadgeStyle{deviconBase + "git/git-original.svg", "#f05032"}},
	{[]string{"docker"}, BadgeStyle{deviconBase + "docker/docker-original.svg", "#2496ed"}},
}

// DefaultBadgeStyle applies when no keyword matches the course name.
var DefaultBadgeStyle = BadgeStyle{
	Icon:  deviconBase + "devicon/devicon-original.svg",
	Color: "#6366f1",
}

// StyleFor picks the badge style for a course by keyword containment.
// Multi-letter keywords shorter than four characters ("js", "sql", "git")
// must appear as a separate word.
func StyleFor(courseName string) BadgeStyle {
	name := strings.ToLower(courseName)
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, rule := range styleRules {
		for _, kw := range rule.keywords {
			if len(kw) < 4 {
				for _, w := range words {
					if w == kw {
						return rule.style
					}
				}
				continue
			}
			if strings.Contains(name, kw) {
				return rule.style
			}
		}
	}
	return DefaultBadgeStyle
}
