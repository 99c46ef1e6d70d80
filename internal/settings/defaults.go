package settings

import "github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/schema"

// SchemaVersion is the current settings schema version. Persisted blobs and
// exchange envelopes declare the version they were written at; the migration
// resolver upgrades anything older.
const SchemaVersion = 3

// Defaults returns the factory default document.
func Defaults() Document {
	return Document{
		General: GeneralSettings{
			Language:         "en",
			AuthorName:       "",
			AuthorEmail:      "",
			TelemetryEnabled: false,
			UpdateChannel:    "stable",
		},
		Appearance: AppearanceSettings{
			Theme:       "dark",
			FontSize:    14,
			FontFamily:  "monospace",
			AccentColor: "#569cd6",
		},
		Editor: EditorSettings{
			TabSize:         4,
			InsertSpaces:    true,
			WordWrap:        "off",
			LineNumbers:     true,
			AutoSaveDelayMs: 1000,
			FormatOnSave:    false,
		},
		Backends: BackendSettings{
			PrimaryURL: "",
			TimeoutMs:  10000,
			VerifyTLS:  true,
		},
		KeyBindings: KeyBindingSettings{
			Preset:       "default",
			EnableChords: true,
		},
		VersionControl: VersionControlSettings{
			Enabled:              true,
			SignCommits:          false,
			SigningKeyPath:       "",
			AutoFetchIntervalSec: 300,
		},
		Sync: SyncSettings{
			Enabled:        false,
			IntervalSec:    300,
			ConflictPolicy: "ask",
		},
	}
}

// DefaultCategory returns the default map form of a single category.
func DefaultCategory(category string) (map[string]any, bool) {
	m, ok := Defaults().ToMap()[category].(map[string]any)
	return m, ok
}

// FieldSchema declares the per-field constraints for every category.
func FieldSchema() schema.Schema {
	return schema.Schema{
		CategoryGeneral: {
			"language":         schema.String().As(schema.FormatLanguage),
			"authorName":       schema.String(),
			"authorEmail":      schema.String(),
			"telemetryEnabled": schema.Boolean(),
			"updateChannel":    schema.String().Values("stable", "beta", "nightly"),
		},
		CategoryAppearance: {
			"theme":       schema.String().Values("dark", "light", "system"),
			"fontSize":    schema.Integer().Range(8, 32),
			"fontFamily":  schema.String(),
			"accentColor": schema.String().As(schema.FormatColor),
		},
		CategoryEditor: {
			"tabSize":         schema.Integer().Range(1, 16),
			"insertSpaces":    schema.Boolean(),
			"wordWrap":        schema.String().Values("off", "on", "bounded"),
			"lineNumbers":     schema.Boolean(),
			"autoSaveDelayMs": schema.Integer().Range(100, 60000),
			"formatOnSave":    schema.Boolean(),
		},
		CategoryBackends: {
			"primaryURL": schema.String().As(schema.FormatURL),
			"timeoutMs":  schema.Integer().Range(100, 120000),
			"verifyTLS":  schema.Boolean(),
		},
		CategoryKeyBindings: {
			"preset":       schema.String().Values("default", "vim", "emacs"),
			"enableChords": schema.Boolean(),
		},
		CategoryVersionControl: {
			"enabled":              schema.Boolean(),
			"signCommits":          schema.Boolean(),
			"signingKeyPath":       schema.String(),
			"autoFetchIntervalSec": schema.Integer().Range(0, 3600),
		},
		CategorySync: {
			"enabled":        schema.Boolean(),
			"intervalSec":    schema.Integer().Range(30, 86400),
			"conflictPolicy": schema.String().Values("local-wins", "remote-wins", "ask"),
		},
	}
}
