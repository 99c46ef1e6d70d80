package exchange

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/migrate"
)

func TestEncode_EnvelopeShape(t *testing.T) {
	doc := settings.Defaults()
	generatedAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	blob, err := Encode(doc, settings.SchemaVersion, generatedAt)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if len(raw) != 3 {
		t.Errorf("envelope has %d top-level fields, want exactly 3", len(raw))
	}
	for _, field := range []string{"document", "version", "generatedAt"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("envelope missing field %q", field)
		}
	}

	var env Envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		t.Fatal(err)
	}
	if env.Version != settings.SchemaVersion {
		t.Errorf("version = %d, want %d", env.Version, settings.SchemaVersion)
	}
	if !env.GeneratedAt.Equal(generatedAt) {
		t.Errorf("generatedAt = %v, want %v", env.GeneratedAt, generatedAt)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	doc := settings.Defaults()
	doc.General.Language = "es"
	doc.Appearance.FontSize = 18

	blob, err := Encode(doc, settings.SchemaVersion, time.Now())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(blob, migrate.NewResolver())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !got.Equal(doc) {
		t.Errorf("round trip changed the document:\nwant %+v\ngot  %+v", doc, got)
	}
}

func TestDecode_MalformedPayloads(t *testing.T) {
	r := migrate.NewResolver()

	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"not json", []byte("{{{")},
		{"array", []byte(`[]`)},
		{"no document field", []byte(`{"version": 3}`)},
		{"document not an object", []byte(`{"document": 7, "version": 3}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.blob, r); !errors.Is(err, settings.ErrMalformedInput) {
				t.Errorf("Decode() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestDecode_MigratesOldVersions(t *testing.T) {
	// A v0 export written before the ui category was renamed.
	blob := []byte(`{
		"document": {"ui": {"theme": "light"}},
		"version": 0,
		"generatedAt": "2024-01-01T00:00:00Z"
	}`)

	got, err := Decode(blob, migrate.NewResolver())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Appearance.Theme != "light" {
		t.Errorf("theme = %q, want light", got.Appearance.Theme)
	}
}
