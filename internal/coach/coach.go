// Package coach asks a language model for next-step advice on a learner's
// roadmap.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/skilltrack/internal/llm"
	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

// ErrEmptyRoadmap is returned for trackers without skills to advise on.
var ErrEmptyRoadmap = errors.New("roadmap has no skills")

type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds one Advise call including provider retries. Zero
	// means no extra deadline.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:   600,
		Temperature: 0.4,
		Timeout:     45 * time.Second,
	}
}

// Advice is the coach's answer for one tracker.
type Advice struct {
	Summary   string   `json:"summary"`
	NextSkill string   `json:"nextSkill"`
	Steps     []string `json:"steps"`
	Model     string   `json:"model,omitempty"`
}

type Coach struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

func New(provider llm.Provider, cfg Config, log *logger.Logger) *Coach {
	if log == nil {
		log = logger.Nop()
	}
	return &Coach{provider: provider, cfg: cfg, log: log.With("service", "Coach")}
}

// Advise returns advice for t. NextSkill is cleared unless it names a
// roadmap skill that is not yet completed.
func (c *Coach) Advise(ctx context.Context, t *roadmap.Tracker) (Advice, error) {
	if t == nil || len(t.Roadmap) == 0 {
		return Advice{}, ErrEmptyRoadmap
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	ctx = llm.WithUser(llm.WithPurpose(ctx, "coach"), t.UserID)

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(t)}},
		Schema:      AdviceSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return Advice{}, fmt.Errorf("roadmap advice: %w", err)
	}

	var out Advice
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Advice{}, fmt.Errorf("parse advice: %w", err)
	}
	out.Model = resp.Model

	if name, ok := pendingSkill(t, out.NextSkill); ok {
		out.NextSkill = name
	} else if out.NextSkill != "" {
		c.log.Debug("discarding suggested skill", "user_id", t.UserID, "skill", out.NextSkill)
		out.NextSkill = ""
	}
	return out, nil
}

// pendingSkill resolves name against the roadmap entries that are not
// completed, ignoring case and surrounding space.
func pendingSkill(t *roadmap.Tracker, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, s := range t.Remaining() {
		if strings.EqualFold(s.Name, name) {
			return s.Name, true
		}
	}
	return "", false
}
