// Package llm talks to hosted language models behind one Provider
// interface. Requests can carry a JSON schema; providers then use their
// native structured-output mode and the reply is validated before return.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, before any server-side aliasing.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for JSON conforming to it. Without it
	// Response.Content is the raw text.
	Schema *Schema

	MaxTokens int

	// Temperature in 0..1. Zero leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name is kebab-case ("roadmap-advice") and
// doubles as the cache key for the compiled validator.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	// Model is what actually served the request.
	Model string
	StopReason string
}

// Normalised stop reasons shared by every adapter.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopRefused   = "refused"
)

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish rejects refusals, and truncated or off-schema structured replies.
func finish(req Request, resp *Response) (*Response, error) {
	if resp.StopReason == StopRefused {
		return nil, ErrRefused
	}
	if req.Schema == nil {
		return resp, nil
	}
	resp.Content = unfence(resp.Content)
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

// unfence strips a markdown code fence some models wrap around JSON even in
// structured-output mode.
func unfence(body json.RawMessage) json.RawMessage {
	s := strings.TrimSpace(string(body))
	if !strings.HasPrefix(s, "```") {
		return body
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return json.RawMessage(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```")))
}

// classifyStatus turns an SDK error with an HTTP status into one of the
// retry-aware error types.
func classifyStatus(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// isPermanent reports errors no retry can fix.
func isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrRefused) {
		return true
	}
	var maxTok *ErrMaxTokensExceeded
	return errors.As(err, &maxTok)
}
