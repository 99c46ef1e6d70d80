// Package persist sequences all durable reads and writes of the settings
// document.
//
// The Coordinator owns the fallback load chain (backend, then local cache,
// then defaults), the single debounced save timer, and the rule that a
// document counts as saved only when both destinations confirm.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/logging"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/exchange"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/migrate"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/notify"
)

// DefaultDebounceDelay is the delay between the last mutation and the
// automatic save it schedules.
const DefaultDebounceDelay = 800 * time.Millisecond

// Backend is the authoritative remote store, reached over an RPC boundary.
// Absence of a stored document is a valid state distinct from a failure.
type Backend interface {
	// Load returns the persisted blob and whether one exists.
	Load(ctx context.Context) (blob []byte, found bool, err error)

	// Save writes the blob durably.
	Save(ctx context.Context, blob []byte) error
}

// Cache is the fast local store: a synchronous read/write of a single JSON
// blob under one fixed key. Absence is a valid state distinct from a read
// failure.
type Cache interface {
	// Read returns the cached blob and whether one exists.
	Read() (blob []byte, found bool, err error)

	// Write replaces the cached blob.
	Write(blob []byte) error
}

// PersistError reports a durable write that did not confirm.
type PersistError struct {
	// Dest names the destination that failed: "cache" or "backend".
	Dest string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting to %s: %v", e.Dest, e.Err)
}

// Unwrap returns settings.ErrPersistenceFailure so callers can match with
// errors.Is, while errors.As still reaches the destination detail.
func (e *PersistError) Unwrap() error {
	return settings.ErrPersistenceFailure
}

// Coordinator orchestrates loads and saves between the store and the two
// persistence destinations.
type Coordinator struct {
	store    *settings.Store
	backend  Backend
	cache    Cache
	resolver *migrate.Resolver
	log      *logging.Logger
	delay    time.Duration
	now      func() time.Time

	// saveMu serializes saves so at most one is in flight.
	saveMu sync.Mutex

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	sub    *notify.Subscription
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounceDelay sets the automatic save delay.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithResolver overrides the migration resolver.
func WithResolver(r *migrate.Resolver) Option {
	return func(c *Coordinator) {
		c.resolver = r
	}
}

// WithClock overrides the time source used for export timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// New creates a Coordinator bound to a store and its two destinations. The
// coordinator subscribes to the store and schedules a debounced save
// whenever a change leaves the state dirty.
func New(store *settings.Store, backend Backend, cache Cache, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		backend:  backend,
		cache:    cache,
		resolver: migrate.NewResolver(),
		log:      logging.Null,
		delay:    DefaultDebounceDelay,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("persist")

	c.sub = store.Subscribe(func(change notify.Change) {
		if change.Dirty {
			c.ScheduleSave()
		}
	})
	return c
}

// SetDebounceDelay updates the automatic save delay. A pending timer keeps
// its original delay.
func (c *Coordinator) SetDebounceDelay(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.delay = d
	c.mu.Unlock()
}

// Init performs the initial load: backend first, then the local cache, then
// factory defaults. Whatever source succeeds is migrated and installed as
// both the current document and the last-saved snapshot, so freshly loaded
// state starts non-dirty. Source failures fall through to the next source;
// the returned error is non-nil only when every durable source failed and
// defaults had to be used, and the defaults are installed regardless.
func (c *Coordinator) Init(ctx context.Context) error {
	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	var loadErrs []error

	if blob, found, err := c.backend.Load(ctx); err != nil {
		c.log.Warn("backend load failed, falling back to cache: %v", err)
		loadErrs = append(loadErrs, &PersistError{Dest: "backend", Err: err})
	} else if found {
		doc, rerr := c.resolver.Resolve(blob)
		if rerr == nil {
			c.store.InstallLoaded(doc, settings.ProvenanceSynced)
			c.log.Info("settings loaded from backend")
			return nil
		}
		c.log.Warn("backend blob unusable, falling back to cache: %v", rerr)
		loadErrs = append(loadErrs, rerr)
	}

	if blob, found, err := c.cache.Read(); err != nil {
		c.log.Warn("cache read failed, falling back to defaults: %v", err)
		loadErrs = append(loadErrs, &PersistError{Dest: "cache", Err: err})
	} else if found {
		doc, rerr := c.resolver.Resolve(blob)
		if rerr == nil {
			c.store.InstallLoaded(doc, settings.ProvenanceLocalCache)
			c.log.Info("settings loaded from local cache")
			return nil
		}
		c.log.Warn("cached blob unusable, falling back to defaults: %v", rerr)
		loadErrs = append(loadErrs, rerr)
	}

	c.store.InstallLoaded(settings.Defaults(), settings.ProvenanceDefault)
	c.log.Info("settings initialized from defaults")
	return errors.Join(loadErrs...)
}

// Save persists the current document to both destinations. It is a no-op
// when the state is not dirty, and refuses with ErrValidationFailed when
// any finding has error severity. An explicit save cancels a pending
// debounced save first. The document to persist is captured at call time;
// mutations that land while the writes are in flight leave the state dirty
// relative to the snapshot this save installs.
func (c *Coordinator) Save(ctx context.Context) error {
	c.cancelTimer()

	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	if !c.store.Dirty() {
		return nil
	}
	if errs := settings.ErrorFindings(c.store.Findings()); len(errs) > 0 {
		return &settings.FindingsError{Findings: errs}
	}

	doc := c.store.Document()
	blob, err := exchange.Encode(doc, settings.SchemaVersion, c.now())
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	saveID := uuid.NewString()
	log := c.log.WithField("save_id", saveID)

	c.store.SetSaving(true)
	defer c.store.SetSaving(false)

	// Both destinations are written concurrently; both must confirm before
	// the snapshot advances.
	var wg sync.WaitGroup
	var cacheErr, backendErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		cacheErr = c.cache.Write(blob)
	}()
	go func() {
		defer wg.Done()
		backendErr = c.backend.Save(ctx, blob)
	}()
	wg.Wait()

	if cacheErr != nil || backendErr != nil {
		var errs []error
		if cacheErr != nil {
			errs = append(errs, &PersistError{Dest: "cache", Err: cacheErr})
		}
		if backendErr != nil {
			errs = append(errs, &PersistError{Dest: "backend", Err: backendErr})
		}
		err := errors.Join(errs...)
		log.Error("save failed, changes remain unsaved: %v", err)
		return err
	}

	c.store.MarkSaved(doc)
	log.Info("settings saved")
	return nil
}

// ScheduleSave restarts the single pending save timer. Bursts of mutations
// within the delay window coalesce into one save. A save that has already
// started executing is not affected.
func (c *Coordinator) ScheduleSave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		c.timer = nil
		c.mu.Unlock()

		if err := c.Save(context.Background()); err != nil && !errors.Is(err, settings.ErrValidationFailed) {
			c.log.Error("debounced save failed: %v", err)
		}
	})
}

// Flush fires a pending debounced save immediately. It is a no-op when no
// save is pending.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	pending := c.timer != nil
	c.mu.Unlock()

	if !pending {
		return nil
	}
	return c.Save(ctx)
}

// ExportSnapshot serializes the current document, schema version, and a
// generation timestamp in the exchange format.
func (c *Coordinator) ExportSnapshot() ([]byte, error) {
	return exchange.Encode(c.store.Document(), settings.SchemaVersion, c.now())
}

// ImportSnapshot parses an exchange payload, migrates it, and installs it.
// Payloads that resolve to a document with error-severity findings are
// rejected without mutating anything. On success the document is installed
// and saved immediately, bypassing the debounce.
func (c *Coordinator) ImportSnapshot(ctx context.Context, blob []byte) error {
	doc, err := exchange.Decode(blob, c.resolver)
	if err != nil {
		return err
	}

	if errs := settings.ErrorFindings(c.store.Validate(doc)); len(errs) > 0 {
		return &settings.FindingsError{Findings: errs}
	}

	c.store.Replace(doc)
	return c.Save(ctx)
}

// Close cancels any pending debounced save and detaches from the store.
// In-flight writes are left to complete; persistence calls are idempotent
// and safe to finish in the background.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if c.sub != nil {
		c.sub.Unsubscribe()
	}
}

// cancelTimer stops a pending debounced save, if any.
func (c *Coordinator) cancelTimer() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}
