package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelResolution(t *testing.T) {
	tests := []struct{ in, want string }{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, geminiModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	schema := buildGeminiSchema(adviceLikeSchema().Definition)

	if schema.Type != genai.TypeObject {
		t.Fatalf("Type = %s, want OBJECT", schema.Type)
	}
	if len(schema.Properties) != 3 || len(schema.Required) != 3 {
		t.Fatalf("properties = %d, required = %d", len(schema.Properties), len(schema.Required))
	}
	steps := schema.Properties["steps"]
	if steps.Type != genai.TypeArray || steps.Items.Type != genai.TypeString {
		t.Errorf("steps = %+v", steps)
	}

	if len(schema.PropertyOrdering) != 3 || schema.PropertyOrdering[0] != "summary" {
		t.Errorf("PropertyOrdering = %v", schema.PropertyOrdering)
	}

	bounded := buildGeminiSchema(map[string]any{"type": "array", "minItems": 1, "maxItems": 5})
	if bounded.MinItems == nil || *bounded.MinItems != 1 || *bounded.MaxItems != 5 {
		t.Errorf("bounds = %v %v", bounded.MinItems, bounded.MaxItems)
	}

	enum := buildGeminiSchema(map[string]any{"type": "string", "enum": []any{"beginner", "advanced"}})
	if len(enum.Enum) != 2 {
		t.Errorf("Enum = %v", enum.Enum)
	}
}

func TestGeminiStructuredReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"summary":"Good pace","nextSkill":"SQL","steps":["Practice joins"]}`}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 70, "candidatesTokenCount": 20, "totalTokenCount": 90},
		})
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", Model: "gemini-flash"},
		genai.HTTPOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		System:   "You coach learners.",
		Messages: []Message{{Role: RoleUser, Content: "What next?"}},
		Schema:   adviceLikeSchema(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Usage.TotalTokens != 90 || resp.StopReason != "end" || resp.Model != "gemini-2.5-flash" {
		t.Errorf("resp = %+v", resp)
	}
}
