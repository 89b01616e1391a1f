package roadmap

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Encode serializes a tracker as a JSON document.
func Encode(t *Tracker) ([]byte, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode tracker: %w", err)
	}
	return b, nil
}

// Decode parses a document produced by Encode. Nil slices are normalized
// to empty ones so a decoded tracker compares equal to a fresh one.
func Decode(b []byte) (*Tracker, error) {
	var t Tracker
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode tracker: %w", err)
	}
	normalize(&t)
	return &t, nil
}

// Clone returns a deep copy of t.
func Clone(t *Tracker) *Tracker {
	c := *t
	c.Roadmap = append([]Skill{}, t.Roadmap...)
	c.CompletedSkills = append([]Completion{}, t.CompletedSkills...)
	c.ExistingKnowledge = append([]string{}, t.ExistingKnowledge...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

func normalize(t *Tracker) {
	if t.Roadmap == nil {
		t.Roadmap = []Skill{}
	}
	if t.CompletedSkills == nil {
		t.CompletedSkills = []Completion{}
	}
	if t.ExistingKnowledge == nil {
		t.ExistingKnowledge = []string{}
	}
}
