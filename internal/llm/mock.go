package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MockResponse is a canned reply for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays canned replies in FIFO order and records every
// request. With stubbing enabled an empty queue is answered with the
// smallest document that satisfies the request schema, which lets the coach
// run offline.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	stub      bool
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned replies.
// Once they run out, Generate fails with ErrProviderUnavailable.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewStubProvider is the "mock" provider selected from configuration.
func NewStubProvider() *MockProvider {
	return &MockProvider{stub: true}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var next MockResponse
	switch {
	case len(m.responses) > 0:
		next = m.responses[0]
		m.responses = m.responses[1:]
	case m.stub && req.Schema != nil:
		b, err := json.Marshal(stubValue(req.Schema.Definition))
		if err != nil {
			return nil, err
		}
		next = MockResponse{Content: b}
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues another canned reply.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// stubValue builds a minimal instance of a JSON Schema definition: first
// enum value, minimum numbers, minLength strings, minItems arrays and every
// declared property.
func stubValue(def map[string]any) any {
	if enum, ok := def["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}
	switch def["type"] {
	case "object":
		out := map[string]any{}
		props, _ := def["properties"].(map[string]any)
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				out[name] = stubValue(pm)
			}
		}
		return out
	case "array":
		items, _ := def["items"].(map[string]any)
		arr := make([]any, schemaInt(def["minItems"]))
		for i := range arr {
			arr[i] = stubValue(items)
		}
		return arr
	case "string":
		return strings.Repeat("x", schemaInt(def["minLength"]))
	case "integer", "number":
		return schemaInt(def["minimum"])
	case "boolean":
		return false
	}
	return nil
}

func schemaInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
