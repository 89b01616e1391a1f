package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func anthropicServer(t *testing.T, status int, body map[string]any) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 40},
	}
}

func TestAnthropicStructuredReply(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(
		`{"summary":"Keep going","nextSkill":"React","steps":["Build a todo app"]}`, "end_turn"))

	resp, err := p.Generate(context.Background(), Request{
		System:    "You coach learners through a career roadmap.",
		Messages:  []Message{{Role: RoleUser, Content: "What next?"}},
		Schema:    adviceLikeSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.TotalTokens != 160 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if resp.StopReason != "end" || resp.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("StopReason = %q, Model = %q", resp.StopReason, resp.Model)
	}
}

func TestAnthropicTruncatedStructuredReply(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(`{"summary":"Keep`, "max_tokens"))

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "What next?"}},
		Schema:    adviceLikeSchema(),
		MaxTokens: 8,
	})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("err = %T (%v), want ErrMaxTokensExceeded", err, err)
	}
}

func TestAnthropicErrorMapping(t *testing.T) {
	errBody := func(kind string) map[string]any {
		return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
	}

	p := anthropicServer(t, http.StatusTooManyRequests, errBody("rate_limit_error"))
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Errorf("429: err = %T, want ErrRateLimit", err)
	}

	p = anthropicServer(t, http.StatusInternalServerError, errBody("api_error"))
	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Errorf("500: err = %T, want ErrProviderUnavailable", err)
	}
}

func TestAnthropicModelResolution(t *testing.T) {
	tests := []struct{ in, want string }{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-opus-4-1", "claude-opus-4-1"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, anthropicModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := NewAnthropicProvider(AnthropicConfig{}); err == nil {
		t.Error("missing key accepted")
	}
}

func adviceLikeSchema() *Schema {
	return &Schema{
		Name: "test-advice",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary":   map[string]any{"type": "string"},
				"nextSkill": map[string]any{"type": "string"},
				"steps":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required":             []any{"summary", "nextSkill", "steps"},
			"additionalProperties": false,
		},
	}
}

func TestAnthropicFencedReplyIsUnwrapped(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(
		"```json\n{\"summary\":\"Keep going\",\"nextSkill\":\"CSS\",\"steps\":[]}\n```", "end_turn"))

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "What next?"}},
		Schema:    adviceLikeSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !json.Valid(resp.Content) {
		t.Fatalf("Content = %s", resp.Content)
	}
}

func TestAnthropicRefusal(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage("", "refusal"))

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	if !errors.Is(err, ErrRefused) {
		t.Fatalf("err = %v, want ErrRefused", err)
	}
	if !isPermanent(err) {
		t.Error("refusal should not be retried")
	}
}
