// Package migrate converts arbitrary persisted blobs into documents
// conforming to the current settings schema.
//
// Resolution runs in two stages. Version-keyed structural transforms are
// applied first, directly on the raw JSON, to handle renamed fields and
// split categories from older schema versions. The transformed document is
// then merged over the factory defaults category by category: incoming
// fields override defaults, missing fields fall back to defaults, and
// fields unknown to the current schema are dropped. Resolving an
// already-current document is a no-op.
package migrate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings"
)

// Transform is a version-specific structural migration applied to the raw
// document JSON before the generic defaults merge.
type Transform struct {
	// ToVersion is the schema version the transform upgrades to.
	ToVersion int

	// Description describes what the transform does.
	Description string

	// Apply rewrites the raw document JSON.
	Apply func(raw []byte) ([]byte, error)
}

// DefectError reports a transform that panicked instead of returning a
// structured result. This is a programming defect, not a data problem, and
// is distinct from ErrMalformedInput.
type DefectError struct {
	// ToVersion identifies the offending transform.
	ToVersion int
	// Recovered is the recovered panic value.
	Recovered any
}

// Error implements the error interface.
func (e *DefectError) Error() string {
	return fmt.Sprintf("migration transform to v%d panicked: %v", e.ToVersion, e.Recovered)
}

// Resolver migrates persisted blobs to the current schema version.
type Resolver struct {
	current    int
	transforms []Transform
}

// NewResolver creates a resolver at the current schema version with the
// built-in transforms registered.
func NewResolver() *Resolver {
	r := &Resolver{current: settings.SchemaVersion}
	r.Register(Transform{
		ToVersion:   1,
		Description: "rename the ui category to appearance",
		Apply:       renameCategoryUI,
	})
	r.Register(Transform{
		ToVersion:   2,
		Description: "rename appearance.colour and convert editor.autoSave to a delay",
		Apply:       modernizeEditorFields,
	})
	r.Register(Transform{
		ToVersion:   3,
		Description: "split the remote category into backends and sync",
		Apply:       splitRemoteCategory,
	})
	return r
}

// CurrentVersion returns the schema version the resolver migrates to.
func (r *Resolver) CurrentVersion() int {
	return r.current
}

// Register adds a transform, keeping transforms ordered by target version.
func (r *Resolver) Register(t Transform) {
	r.transforms = append(r.transforms, t)
	sort.Slice(r.transforms, func(i, j int) bool {
		return r.transforms[i].ToVersion < r.transforms[j].ToVersion
	})
}

// Resolve converts a persisted blob into a document conforming to the
// current schema. The blob may be an exchange envelope or a bare document,
// from any schema version; blobs that declare no version are treated as
// version 0 and receive every transform in order. Input that is not a JSON
// object fails with settings.ErrMalformedInput.
func (r *Resolver) Resolve(blob []byte) (settings.Document, error) {
	if len(blob) == 0 || !gjson.ValidBytes(blob) {
		return settings.Document{}, settings.ErrMalformedInput
	}
	root := gjson.ParseBytes(blob)
	if !root.IsObject() {
		return settings.Document{}, settings.ErrMalformedInput
	}

	raw := blob
	version := 0
	if doc := root.Get("document"); doc.IsObject() {
		raw = []byte(doc.Raw)
		version = int(root.Get("version").Int())
	} else if v := root.Get("_version"); v.Exists() {
		version = int(v.Int())
	}

	raw, err := r.applyTransforms(raw, version)
	if err != nil {
		return settings.Document{}, err
	}

	var incoming map[string]any
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return settings.Document{}, settings.ErrMalformedInput
	}

	merged := MergeWithDefaults(settings.Defaults().ToMap(), incoming)
	return settings.FromMap(merged, false)
}

// applyTransforms runs every transform targeting a version newer than the
// blob's declared version, in order.
func (r *Resolver) applyTransforms(raw []byte, version int) (out []byte, err error) {
	for _, t := range r.transforms {
		if t.ToVersion <= version || t.ToVersion > r.current {
			continue
		}
		raw, err = r.applyOne(t, raw)
		if err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// applyOne runs a single transform with panic recovery.
func (r *Resolver) applyOne(t Transform, raw []byte) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &DefectError{ToVersion: t.ToVersion, Recovered: rec}
		}
	}()
	out, err = t.Apply(raw)
	if err != nil {
		return nil, fmt.Errorf("migration to v%d: %w", t.ToVersion, err)
	}
	return out, nil
}

// renameCategoryUI moves the legacy ui category to appearance.
func renameCategoryUI(raw []byte) ([]byte, error) {
	ui := gjson.GetBytes(raw, "ui")
	if !ui.IsObject() {
		return raw, nil
	}
	var err error
	if !gjson.GetBytes(raw, "appearance").Exists() {
		raw, err = sjson.SetRawBytes(raw, "appearance", []byte(ui.Raw))
		if err != nil {
			return nil, err
		}
	}
	return sjson.DeleteBytes(raw, "ui")
}

// modernizeEditorFields renames appearance.colour to appearance.accentColor
// and converts the legacy editor.autoSave boolean into autoSaveDelayMs.
func modernizeEditorFields(raw []byte) ([]byte, error) {
	var err error

	if colour := gjson.GetBytes(raw, "appearance.colour"); colour.Exists() {
		if !gjson.GetBytes(raw, "appearance.accentColor").Exists() {
			raw, err = sjson.SetBytes(raw, "appearance.accentColor", colour.Value())
			if err != nil {
				return nil, err
			}
		}
		raw, err = sjson.DeleteBytes(raw, "appearance.colour")
		if err != nil {
			return nil, err
		}
	}

	if autoSave := gjson.GetBytes(raw, "editor.autoSave"); autoSave.Exists() {
		if autoSave.Type == gjson.True && !gjson.GetBytes(raw, "editor.autoSaveDelayMs").Exists() {
			raw, err = sjson.SetBytes(raw, "editor.autoSaveDelayMs", 1000)
			if err != nil {
				return nil, err
			}
		}
		raw, err = sjson.DeleteBytes(raw, "editor.autoSave")
		if err != nil {
			return nil, err
		}
	}

	return raw, nil
}

// splitRemoteCategory distributes the legacy remote category across
// backends and sync.
func splitRemoteCategory(raw []byte) ([]byte, error) {
	remote := gjson.GetBytes(raw, "remote")
	if !remote.IsObject() {
		return raw, nil
	}
	var err error

	if u := remote.Get("url"); u.Exists() && !gjson.GetBytes(raw, "backends.primaryURL").Exists() {
		raw, err = sjson.SetBytes(raw, "backends.primaryURL", u.Value())
		if err != nil {
			return nil, err
		}
	}
	if enabled := remote.Get("sync"); enabled.Exists() && !gjson.GetBytes(raw, "sync.enabled").Exists() {
		raw, err = sjson.SetBytes(raw, "sync.enabled", enabled.Value())
		if err != nil {
			return nil, err
		}
	}
	if interval := remote.Get("intervalSec"); interval.Exists() && !gjson.GetBytes(raw, "sync.intervalSec").Exists() {
		raw, err = sjson.SetBytes(raw, "sync.intervalSec", interval.Value())
		if err != nil {
			return nil, err
		}
	}

	return sjson.DeleteBytes(raw, "remote")
}
