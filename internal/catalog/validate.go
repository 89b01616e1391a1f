package catalog

import (
	"fmt"
	"strings"
)

// Validate checks every shipped template. Used by tests and by
// `skilltrack catalog goals --check`.
func Validate() error {
	var errs []string
	for _, goal := range AllGoals() {
		if _, ok := templates[goal]; !ok {
			errs = append(errs, fmt.Sprintf("goal %q has no template", goal))
			continue
		}
		if err := validateTemplate(templates[goal]); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", goal, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// validateTemplate rejects blank or duplicate skill names. Skill names are
// the lookup key for every roadmap operation, so they must be unique.
func validateTemplate(entries []SkillTemplate) error {
	var errs []string
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, fmt.Sprintf("entry %d has a blank name", i))
			continue
		}
		if seen[e.Name] {
			errs = append(errs, fmt.Sprintf("duplicate skill name: %q", e.Name))
		}
		seen[e.Name] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
