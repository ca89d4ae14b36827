package llm

import "testing"

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	schema := geminiSchema(explanationSchema().Definition)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["explanation"].Type != "STRING" {
		t.Fatalf("expected STRING for explanation, got %s", schema.Properties["explanation"].Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %v", schema.Required)
	}
}

func TestGeminiSchemaNested(t *testing.T) {
	schema := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"verdict": map[string]any{"type": "string", "enum": []any{"correct", "incorrect"}},
			"steps": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
			"weird": map[string]any{"type": "null"},
		},
		"required": []string{"verdict"},
	})

	if len(schema.Properties["verdict"].Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %v", schema.Properties["verdict"].Enum)
	}
	if schema.Properties["steps"].Type != "ARRAY" || schema.Properties["steps"].Items.Type != "INTEGER" {
		t.Fatalf("unexpected array schema: %+v", schema.Properties["steps"])
	}
	if schema.Properties["weird"].Type != "STRING" {
		t.Fatalf("unknown types should fall back to STRING, got %s", schema.Properties["weird"].Type)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "verdict" {
		t.Fatalf("unexpected required list %v", schema.Required)
	}
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(t.Context(), GeminiConfig{Model: "gemini-flash"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
