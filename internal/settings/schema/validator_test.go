package schema

import (
	"strings"
	"testing"
)

func testSchema() Schema {
	return Schema{
		"appearance": {
			"fontSize":    Integer().Range(8, 32),
			"theme":       String().Values("dark", "light"),
			"accentColor": String().As(FormatColor),
		},
		"general": {
			"language": String().As(FormatLanguage),
			"enabled":  Boolean(),
		},
		"backends": {
			"primaryURL": String().As(FormatURL),
		},
	}
}

func TestValidator_CleanDocument(t *testing.T) {
	v := NewValidator(testSchema())

	doc := map[string]any{
		"appearance": map[string]any{
			"fontSize":    float64(14),
			"theme":       "dark",
			"accentColor": "#569cd6",
		},
		"general": map[string]any{
			"language": "en",
			"enabled":  true,
		},
		"backends": map[string]any{
			"primaryURL": "https://example.com/api",
		},
	}

	if got := v.Validate(doc); len(got) != 0 {
		t.Errorf("Validate() = %v, want no violations", got)
	}
}

func TestValidator_Violations(t *testing.T) {
	v := NewValidator(testSchema())

	tests := []struct {
		name     string
		doc      map[string]any
		wantPath string
	}{
		{
			name: "integer below minimum",
			doc: map[string]any{
				"appearance": map[string]any{"fontSize": float64(4)},
			},
			wantPath: "appearance.fontSize",
		},
		{
			name: "integer above maximum",
			doc: map[string]any{
				"appearance": map[string]any{"fontSize": float64(100)},
			},
			wantPath: "appearance.fontSize",
		},
		{
			name: "enum mismatch",
			doc: map[string]any{
				"appearance": map[string]any{"theme": "sepia"},
			},
			wantPath: "appearance.theme",
		},
		{
			name: "bad hex color",
			doc: map[string]any{
				"appearance": map[string]any{"accentColor": "#zzzzzz"},
			},
			wantPath: "appearance.accentColor",
		},
		{
			name: "bad language tag",
			doc: map[string]any{
				"general": map[string]any{"language": "not a tag!"},
			},
			wantPath: "general.language",
		},
		{
			name: "bad URL",
			doc: map[string]any{
				"backends": map[string]any{"primaryURL": "ftp://example.com"},
			},
			wantPath: "backends.primaryURL",
		},
		{
			name: "type mismatch",
			doc: map[string]any{
				"general": map[string]any{"enabled": "yes"},
			},
			wantPath: "general.enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.doc)
			if len(got) != 1 {
				t.Fatalf("Validate() = %v, want exactly one violation", got)
			}
			if got[0].Path != tt.wantPath {
				t.Errorf("violation path = %q, want %q", got[0].Path, tt.wantPath)
			}
		})
	}
}

func TestValidator_EmptyStringSkipsFormat(t *testing.T) {
	v := NewValidator(testSchema())

	doc := map[string]any{
		"backends": map[string]any{"primaryURL": ""},
	}
	if got := v.Validate(doc); len(got) != 0 {
		t.Errorf("empty URL should pass format check, got %v", got)
	}
}

func TestValidator_MissingFieldsIgnored(t *testing.T) {
	v := NewValidator(testSchema())

	// Completeness is the migration layer's job.
	if got := v.Validate(map[string]any{}); len(got) != 0 {
		t.Errorf("empty document should validate, got %v", got)
	}
}

func TestValidator_ValidateField(t *testing.T) {
	v := NewValidator(testSchema())

	got := v.ValidateField("appearance", "fontSize", float64(100))
	if len(got) != 1 || got[0].Path != "appearance.fontSize" {
		t.Errorf("ValidateField() = %v, want one violation at appearance.fontSize", got)
	}

	if got := v.ValidateField("appearance", "unknown", 1); got != nil {
		t.Errorf("unknown field should produce no violations, got %v", got)
	}
}

func TestValidator_ViolationMessages(t *testing.T) {
	v := NewValidator(testSchema())

	got := v.Validate(map[string]any{
		"appearance": map[string]any{"theme": "sepia"},
	})
	if len(got) != 1 {
		t.Fatalf("want one violation, got %v", got)
	}
	if !strings.Contains(got[0].Message, "sepia") {
		t.Errorf("message should name the offending value: %q", got[0].Message)
	}
}
