package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func skillEntrySchema() *Schema {
	return &Schema{
		Name:        "skill-entry",
		Description: "A roadmap skill",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"skill": map[string]any{"type": "string"},
				"hours": map[string]any{"type": "integer", "minimum": 0},
				"level": map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced"}},
			},
			"required": []any{"skill", "hours"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"skill":"HTML","hours":10,"level":"beginner"}`, false},
		{"optional omitted", `{"skill":"CSS","hours":8}`, false},
		{"missing required", `{"skill":"React"}`, true},
		{"wrong type", `{"skill":"Node","hours":"ten"}`, true},
		{"enum violation", `{"skill":"SQL","hours":3,"level":"guru"}`, true},
		{"negative minimum", `{"skill":"SQL","hours":-1}`, true},
		{"malformed", `{not json}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(skillEntrySchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_Empty(t *testing.T) {
	if err := validateResponse(skillEntrySchema(), json.RawMessage(``)); err == nil {
		t.Fatal("empty response accepted")
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("nil schema rejected: %v", err)
	}
}

func TestValidateResponse_NestedArrays(t *testing.T) {
	schema := &Schema{
		Name: "roadmap-phase",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"phase": map[string]any{
					"type":       "object",
					"properties": map[string]any{"title": map[string]any{"type": "string"}},
					"required":   []any{"title"},
				},
				"hours": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"phase", "hours"},
		},
	}

	if err := validateResponse(schema, json.RawMessage(`{"phase":{"title":"Foundations"},"hours":[4,6,2]}`)); err != nil {
		t.Fatalf("valid nested response rejected: %v", err)
	}
	if err := validateResponse(schema, json.RawMessage(`{"phase":{"title":"Foundations"},"hours":["four"]}`)); err == nil {
		t.Fatal("wrong array item type accepted")
	}
}
