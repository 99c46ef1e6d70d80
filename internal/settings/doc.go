// Package settings implements the typed, validated settings state engine.
//
// The engine is the single source of truth for user-configurable settings.
// It is built from a small set of collaborating pieces:
//
//   - Document: the closed, typed settings document partitioned into
//     categories (general, appearance, editor, backends, keyBindings,
//     versionControl, sync). Documents are plain values; snapshots never
//     alias live state.
//
//   - Store: the state container. It owns the current document and the
//     last durably-saved snapshot, applies mutations, recomputes the dirty
//     flag and validation findings after every operation, and notifies
//     subscribers synchronously.
//
//   - Pipeline: the validation pipeline. A declarative per-field schema
//     (bounds, enums, URL/color/language formats) plus whole-document rules
//     for cross-category constraints. Validation never blocks in-memory
//     edits; invalid values are applied verbatim and surfaced as findings.
//     Error-severity findings block persistence.
//
// Persistence, migration, and import/export live in the migrate, exchange,
// and persist subpackages.
//
// Basic usage:
//
//	store := settings.NewStore()
//	sub := store.Subscribe(func(c notify.Change) { ... })
//	defer sub.Unsubscribe()
//
//	if err := store.UpdateField("appearance", "fontSize", 16); err != nil {
//		// wrong type or unknown setting; the document is unchanged
//	}
//	state := store.Get()
//	if settings.HasErrors(state.Findings) {
//		// saves will be refused until the errors are fixed
//	}
package settings
