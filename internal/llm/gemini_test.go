package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchemaFromQuestionDefinition(t *testing.T) {
	// The question schema the content layer sends must survive the
	// translation into the SDK's own schema type.
	s := geminiSchema(practiceQuestionSchema().Definition)

	if s.Type != genai.TypeObject {
		t.Fatalf("type = %v, want object", s.Type)
	}
	if len(s.Required) != 3 {
		t.Fatalf("required = %v", s.Required)
	}

	text, ok := s.Properties["text"]
	if !ok || text.Type != genai.TypeString {
		t.Errorf("text property = %+v", text)
	}
	opts, ok := s.Properties["options"]
	if !ok || opts.Type != genai.TypeArray {
		t.Fatalf("options property = %+v", opts)
	}
	if opts.Items == nil || opts.Items.Type != genai.TypeString {
		t.Errorf("options items = %+v", opts.Items)
	}
	if idx := s.Properties["correct_index"]; idx == nil || idx.Type != genai.TypeInteger {
		t.Errorf("correct_index property = %+v", idx)
	}
}

func TestGeminiSchemaCarriesEnumsAndDescriptions(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type":        "object",
		"description": "difficulty rating for a generated question",
		"properties": map[string]any{
			"difficulty": map[string]any{
				"type": "string",
				"enum": []any{"easy", "medium", "hard"},
			},
		},
	})

	if s.Description == "" {
		t.Error("description dropped in translation")
	}
	d := s.Properties["difficulty"]
	if d == nil || len(d.Enum) != 3 {
		t.Fatalf("difficulty property = %+v", d)
	}
	if d.Enum[0] != "easy" || d.Enum[2] != "hard" {
		t.Errorf("enum order changed: %v", d.Enum)
	}
}

func TestGeminiUnknownJSONTypeFallsBackToString(t *testing.T) {
	s := geminiSchema(map[string]any{"type": "null"})
	if s.Type != genai.TypeString {
		t.Errorf("type = %v, want string fallback", s.Type)
	}
}

func TestGeminiShortModelNames(t *testing.T) {
	cases := map[string]string{
		"gemini-flash":     "gemini-2.0-flash",
		"gemini-pro":       "gemini-2.0-pro",
		"gemini-2.5-flash": "gemini-2.5-flash",
	}
	for short, want := range cases {
		if got := resolveModel(short, geminiModels); got != want {
			t.Errorf("resolveModel(%q) = %q, want %q", short, got, want)
		}
	}
}
