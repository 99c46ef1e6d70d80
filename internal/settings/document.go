package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
)

// Category name constants.
const (
	CategoryGeneral        = "general"
	CategoryAppearance     = "appearance"
	CategoryEditor         = "editor"
	CategoryBackends       = "backends"
	CategoryKeyBindings    = "keyBindings"
	CategoryVersionControl = "versionControl"
	CategorySync           = "sync"
)

// Categories lists every category in schema order.
var Categories = []string{
	CategoryGeneral,
	CategoryAppearance,
	CategoryEditor,
	CategoryBackends,
	CategoryKeyBindings,
	CategoryVersionControl,
	CategorySync,
}

// GeneralSettings holds identity and application-wide options.
type GeneralSettings struct {
	Language         string `json:"language"`
	AuthorName       string `json:"authorName"`
	AuthorEmail      string `json:"authorEmail"`
	TelemetryEnabled bool   `json:"telemetryEnabled"`
	UpdateChannel    string `json:"updateChannel"`
}

// AppearanceSettings holds theme and typography options.
type AppearanceSettings struct {
	Theme       string `json:"theme"`
	FontSize    int    `json:"fontSize"`
	FontFamily  string `json:"fontFamily"`
	AccentColor string `json:"accentColor"`
}

// EditorSettings holds text editing behavior options.
type EditorSettings struct {
	TabSize         int    `json:"tabSize"`
	InsertSpaces    bool   `json:"insertSpaces"`
	WordWrap        string `json:"wordWrap"`
	LineNumbers     bool   `json:"lineNumbers"`
	AutoSaveDelayMs int    `json:"autoSaveDelayMs"`
	FormatOnSave    bool   `json:"formatOnSave"`
}

// BackendSettings holds connection options for the authoritative store.
type BackendSettings struct {
	PrimaryURL string `json:"primaryURL"`
	TimeoutMs  int    `json:"timeoutMs"`
	VerifyTLS  bool   `json:"verifyTLS"`
}

// KeyBindingSettings holds keymap preset options.
type KeyBindingSettings struct {
	Preset       string `json:"preset"`
	EnableChords bool   `json:"enableChords"`
}

// VersionControlSettings holds source control integration options.
type VersionControlSettings struct {
	Enabled              bool   `json:"enabled"`
	SignCommits          bool   `json:"signCommits"`
	SigningKeyPath       string `json:"signingKeyPath"`
	AutoFetchIntervalSec int    `json:"autoFetchIntervalSec"`
}

// SyncSettings holds cross-device synchronization options.
type SyncSettings struct {
	Enabled        bool   `json:"enabled"`
	IntervalSec    int    `json:"intervalSec"`
	ConflictPolicy string `json:"conflictPolicy"`
}

// Document is the complete settings document: a closed set of typed
// categories. It is a plain value; copying it copies every field, so
// snapshots never alias live state.
type Document struct {
	General        GeneralSettings        `json:"general"`
	Appearance     AppearanceSettings     `json:"appearance"`
	Editor         EditorSettings         `json:"editor"`
	Backends       BackendSettings        `json:"backends"`
	KeyBindings    KeyBindingSettings     `json:"keyBindings"`
	VersionControl VersionControlSettings `json:"versionControl"`
	Sync           SyncSettings           `json:"sync"`
}

// Clone returns a value copy of the document. All category structs contain
// only scalar fields, so a shallow struct copy is a deep copy.
func (d Document) Clone() Document {
	return d
}

// Equal reports deep value equality with other.
func (d Document) Equal(other Document) bool {
	return reflect.DeepEqual(d, other)
}

// ToMap converts the document to its generic map form for validation and
// merging.
func (d Document) ToMap() map[string]any {
	raw, err := json.Marshal(d)
	if err != nil {
		// Document contains only scalar JSON-encodable fields.
		panic("settings: document marshal: " + err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic("settings: document unmarshal: " + err.Error())
	}
	return m
}

// MarshalBytes serializes the document as JSON.
func (d Document) MarshalBytes() []byte {
	raw, err := json.Marshal(d)
	if err != nil {
		panic("settings: document marshal: " + err.Error())
	}
	return raw
}

// FromMap decodes a document from its generic map form. When strict is true
// unknown categories or fields fail with ErrUnknownSetting and values whose
// type does not match the declared field type fail with a TypeError;
// otherwise unknown fields are dropped silently (the migration path).
func FromMap(m map[string]any, strict bool) (Document, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return Document{}, ErrMalformedInput
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&doc); err != nil {
		if strict {
			return Document{}, decodeError(err)
		}
		return Document{}, ErrMalformedInput
	}
	return doc, nil
}

// decodeError converts a json decode failure into the settings error
// taxonomy.
func decodeError(err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return &TypeError{
			Path:     ute.Field,
			Expected: ute.Type.Kind().String(),
			Actual:   ute.Value,
		}
	}
	return ErrUnknownSetting
}
