// Package notify delivers settings change notifications to subscribers.
//
// Delivery is synchronous: every mutating store operation notifies all
// registered observers after derived state (dirty flag, findings) has been
// recomputed, so observers always see a consistent snapshot.
package notify

import "sync"

// Kind classifies a settings change.
type Kind int

const (
	// KindUpdate indicates one or more fields changed in a category.
	KindUpdate Kind = iota

	// KindReplace indicates the whole document was replaced.
	KindReplace

	// KindReset indicates a category or the whole document was reset to
	// defaults.
	KindReset

	// KindDiscard indicates unsaved changes were reverted.
	KindDiscard

	// KindSaved indicates the last-saved snapshot advanced.
	KindSaved

	// KindLoaded indicates a freshly loaded document was installed.
	KindLoaded
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUpdate:
		return "update"
	case KindReplace:
		return "replace"
	case KindReset:
		return "reset"
	case KindDiscard:
		return "discard"
	case KindSaved:
		return "saved"
	case KindLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Change describes one settings state transition.
type Change struct {
	// Kind is the type of change.
	Kind Kind

	// Category is the affected category, empty for whole-document changes.
	Category string

	// Dirty is the dirty flag after the change.
	Dirty bool
}

// Observer is called after each settings state transition.
type Observer func(change Change)

// Subscription represents an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Other subscriptions are unaffected.
// It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages settings change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Global observers that receive all changes
	observers map[uint64]Observer

	// Category-scoped observers
	categoryObservers map[string]map[uint64]Observer

	// Next subscription ID
	nextID uint64
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{
		observers:         make(map[uint64]Observer),
		categoryObservers: make(map[string]map[uint64]Observer),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeCategory registers an observer for changes scoped to one
// category. Whole-document changes (replace, discard, reset-all, load)
// are delivered to every category observer.
func (n *Notifier) SubscribeCategory(category string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.categoryObservers[category] == nil {
		n.categoryObservers[category] = make(map[uint64]Observer)
	}
	n.categoryObservers[category][id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify delivers a change to all matching observers synchronously.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	var observers []Observer
	for _, obs := range n.observers {
		observers = append(observers, obs)
	}
	if change.Category != "" {
		for _, obs := range n.categoryObservers[change.Category] {
			observers = append(observers, obs)
		}
	} else {
		for _, catObs := range n.categoryObservers {
			for _, obs := range catObs {
				observers = append(observers, obs)
			}
		}
	}
	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		obs(change)
	}
}

// Len returns the number of registered observers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	count := len(n.observers)
	for _, catObs := range n.categoryObservers {
		count += len(catObs)
	}
	return count
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.observers, id)
	for category, observers := range n.categoryObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.categoryObservers, category)
		}
	}
}
