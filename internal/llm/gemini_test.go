package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchemaFromExplanation(t *testing.T) {
	s := geminiSchema(explanationSchema().Definition)

	if s.Type != genai.TypeObject {
		t.Fatalf("type = %s", s.Type)
	}
	if len(s.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(s.Properties))
	}
	keys := s.Properties["answerKeys"]
	if keys.Type != genai.TypeArray || keys.Items == nil || keys.Items.Type != genai.TypeString {
		t.Fatalf("answerKeys = %+v", keys)
	}
	if len(s.Required) != 3 {
		t.Fatalf("required = %v", s.Required)
	}
}

func TestGeminiSchemaEnumsAndStringLists(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"confidence": map[string]any{"type": "string", "enum": []any{"low", "high"}},
			"score":      map[string]any{"type": "integer"},
			"odd":        map[string]any{"type": "null"},
		},
		"required": []string{"confidence"},
	})
	if got := s.Properties["confidence"].Enum; len(got) != 2 || got[1] != "high" {
		t.Errorf("enum = %v", got)
	}
	if s.Properties["score"].Type != genai.TypeInteger {
		t.Errorf("score type = %s", s.Properties["score"].Type)
	}
	if s.Properties["odd"].Type != genai.TypeString {
		t.Errorf("unknown types fall back to string, got %s", s.Properties["odd"].Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "confidence" {
		t.Errorf("required = %v", s.Required)
	}
}
