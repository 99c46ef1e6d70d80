package settings

import (
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/notify"
)

// Provenance records where the installed document came from.
type Provenance string

const (
	// ProvenanceDefault means the document is the factory defaults.
	ProvenanceDefault Provenance = "default"
	// ProvenanceLocalCache means the document was loaded from the local cache.
	ProvenanceLocalCache Provenance = "local-cache"
	// ProvenanceSynced means the document was loaded from the backend.
	ProvenanceSynced Provenance = "synced"
)

// Meta carries document metadata.
type Meta struct {
	// Version is the schema version of the installed document.
	Version int
	// LastModified is the time of the last mutation.
	LastModified time.Time
	// Provenance records where the document came from.
	Provenance Provenance
}

// State is a value snapshot of the full settings state.
type State struct {
	Document Document
	Meta     Meta
	Dirty    bool
	Findings []Finding
	Loading  bool
	Saving   bool
}

// Store is the settings state container. It owns the current document and
// the last durably-saved snapshot, recomputes findings and the dirty flag
// after every mutation, and notifies subscribers synchronously.
//
// A Store is an explicit instance; construct one per process (or per test)
// with NewStore and pass it to consumers.
type Store struct {
	mu sync.RWMutex

	current   Document
	lastSaved Document
	meta      Meta
	findings  []Finding
	loading   bool
	saving    bool

	pipeline *Pipeline
	notifier *notify.Notifier
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPipeline overrides the validation pipeline.
func WithPipeline(p *Pipeline) StoreOption {
	return func(s *Store) {
		s.pipeline = p
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store initialized with the factory defaults. The
// defaults are installed as both the current document and the last-saved
// snapshot, so a fresh store starts non-dirty.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		current:   Defaults(),
		lastSaved: Defaults(),
		notifier:  notify.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = NewPipeline()
	}
	s.meta = Meta{
		Version:      SchemaVersion,
		LastModified: s.now(),
		Provenance:   ProvenanceDefault,
	}
	s.findings = s.pipeline.Run(s.current)
	return s
}

// Get returns a value snapshot of the current state. The snapshot never
// aliases store-owned state.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	findings := make([]Finding, len(s.findings))
	copy(findings, s.findings)

	return State{
		Document: s.current.Clone(),
		Meta:     s.meta,
		Dirty:    !s.current.Equal(s.lastSaved),
		Findings: findings,
		Loading:  s.loading,
		Saving:   s.saving,
	}
}

// Document returns a snapshot of the current document.
func (s *Store) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// LastSaved returns a snapshot of the last durably-saved document.
func (s *Store) LastSaved() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSaved.Clone()
}

// Subscribe registers an observer for all state changes. The returned
// subscription's Unsubscribe removes only that observer.
func (s *Store) Subscribe(observer notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(observer)
}

// SubscribeCategory registers an observer for changes to one category.
func (s *Store) SubscribeCategory(category string, observer notify.Observer) *notify.Subscription {
	return s.notifier.SubscribeCategory(category, observer)
}

// UpdateField replaces one field inside one category. The whole document is
// re-validated; an out-of-range or ill-formatted value is still applied and
// surfaces as an error finding. Only values of the wrong type or paths not
// declared in the schema are rejected, without mutating.
func (s *Store) UpdateField(category, field string, value any) error {
	return s.UpdateCategory(category, map[string]any{field: value})
}

// UpdateCategory merges multiple fields into one category atomically;
// subscribers observe a single change with every field applied.
func (s *Store) UpdateCategory(category string, fields map[string]any) error {
	s.mu.Lock()

	m := s.current.ToMap()
	catMap, ok := m[category].(map[string]any)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownCategory
	}
	for name, value := range fields {
		if _, known := catMap[name]; !known {
			s.mu.Unlock()
			return ErrUnknownSetting
		}
		catMap[name] = value
	}

	doc, err := FromMap(m, true)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.current = doc
	change := s.recomputeLocked(notify.Change{Kind: notify.KindUpdate, Category: category})
	s.mu.Unlock()

	s.notifier.Notify(change)
	return nil
}

// Replace installs a full replacement document (reset-all and import paths).
func (s *Store) Replace(doc Document) {
	s.mu.Lock()
	s.current = doc.Clone()
	change := s.recomputeLocked(notify.Change{Kind: notify.KindReplace})
	s.mu.Unlock()

	s.notifier.Notify(change)
}

// ResetCategory replaces one category with its defaults, leaving every
// other category untouched.
func (s *Store) ResetCategory(category string) error {
	s.mu.Lock()

	def, ok := DefaultCategory(category)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownCategory
	}
	m := s.current.ToMap()
	m[category] = def

	doc, err := FromMap(m, true)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.current = doc
	change := s.recomputeLocked(notify.Change{Kind: notify.KindReset, Category: category})
	s.mu.Unlock()

	s.notifier.Notify(change)
	return nil
}

// ResetAll replaces the whole document with the factory defaults.
func (s *Store) ResetAll() {
	s.mu.Lock()
	s.current = Defaults()
	change := s.recomputeLocked(notify.Change{Kind: notify.KindReset})
	s.mu.Unlock()

	s.notifier.Notify(change)
}

// Discard reverts the current document to the last-saved snapshot.
func (s *Store) Discard() {
	s.mu.Lock()
	s.current = s.lastSaved.Clone()
	change := s.recomputeLocked(notify.Change{Kind: notify.KindDiscard})
	s.mu.Unlock()

	s.notifier.Notify(change)
}

// MarkSaved advances the last-saved snapshot to doc. The persistence
// coordinator calls this with the document it captured at save time; if a
// mutation landed while the save was in flight, the current document stays
// dirty relative to the new snapshot and a further save is still required.
func (s *Store) MarkSaved(doc Document) {
	s.mu.Lock()
	s.lastSaved = doc.Clone()
	change := s.recomputeLocked(notify.Change{Kind: notify.KindSaved})
	s.mu.Unlock()

	s.notifier.Notify(change)
}

// InstallLoaded installs a freshly loaded document as both the current
// document and the last-saved snapshot, so the loaded state starts
// non-dirty.
func (s *Store) InstallLoaded(doc Document, provenance Provenance) {
	s.mu.Lock()
	s.current = doc.Clone()
	s.lastSaved = doc.Clone()
	s.meta.Version = SchemaVersion
	s.meta.Provenance = provenance
	change := s.recomputeLocked(notify.Change{Kind: notify.KindLoaded})
	s.mu.Unlock()

	s.notifier.Notify(change)
}

// SetLoading sets the loading busy flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// SetSaving sets the saving busy flag.
func (s *Store) SetSaving(saving bool) {
	s.mu.Lock()
	s.saving = saving
	s.mu.Unlock()
}

// Validate runs the store's validation pipeline over a candidate document
// without installing it.
func (s *Store) Validate(doc Document) []Finding {
	return s.pipeline.Run(doc)
}

// Findings returns a copy of the current findings.
func (s *Store) Findings() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// Dirty reports whether the current document differs from the last-saved
// snapshot.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.current.Equal(s.lastSaved)
}

// GetValue returns the value at a dot-separated path in the current
// document, e.g. "appearance.fontSize".
func (s *Store) GetValue(path string) (any, bool) {
	s.mu.RLock()
	raw := s.current.MarshalBytes()
	s.mu.RUnlock()

	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// GetString returns a string value at the given path.
func (s *Store) GetString(path string) (string, error) {
	v, ok := s.GetValue(path)
	if !ok {
		return "", ErrUnknownSetting
	}
	str, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: valueTypeName(v)}
	}
	return str, nil
}

// GetInt returns an integer value at the given path.
func (s *Store) GetInt(path string) (int, error) {
	v, ok := s.GetValue(path)
	if !ok {
		return 0, ErrUnknownSetting
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &TypeError{Path: path, Expected: "int", Actual: valueTypeName(v)}
	}
	return int(f), nil
}

// GetBool returns a boolean value at the given path.
func (s *Store) GetBool(path string) (bool, error) {
	v, ok := s.GetValue(path)
	if !ok {
		return false, ErrUnknownSetting
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: valueTypeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path.
func (s *Store) GetFloat(path string) (float64, error) {
	v, ok := s.GetValue(path)
	if !ok {
		return 0, ErrUnknownSetting
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &TypeError{Path: path, Expected: "float64", Actual: valueTypeName(v)}
	}
	return f, nil
}

// recomputeLocked refreshes findings, the dirty flag, and the modification
// time after a mutation. Callers hold s.mu and deliver the returned change
// after unlocking.
func (s *Store) recomputeLocked(change notify.Change) notify.Change {
	s.findings = s.pipeline.Run(s.current)
	s.meta.LastModified = s.now()
	change.Dirty = !s.current.Equal(s.lastSaved)
	return change
}

func valueTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
