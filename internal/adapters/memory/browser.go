package memory

import (
	"maps"

	"github.com/bft-labs/historystate/internal/domain"
	"github.com/bft-labs/historystate/internal/ports"
)

// Entry is one native history entry.
type Entry struct {
	Location domain.Location
	State    map[string]any
}

// Browser simulates the parts of a browser the history state depends on: the
// native history entries with their state objects, pop and unload events, and
// a session storage that survives reloads.
//
// Browser is not safe for concurrent use.
type Browser struct {
	entries []Entry
	index   int
	storage ports.Storage

	popListeners    []*popListener
	unloadListeners []*unloadListener
}

type popListener struct{ fn func(map[string]any) }

type unloadListener struct{ fn func() }

// NewBrowser creates a browser showing initial. A nil storage gets an
// in-memory session storage.
func NewBrowser(initial domain.Location, storage ports.Storage) *Browser {
	if storage == nil {
		storage = NewStorage()
	}
	return &Browser{
		entries: []Entry{{Location: initial}},
		storage: storage,
	}
}

// SessionStorage returns the session-scoped storage.
func (b *Browser) SessionStorage() ports.Storage {
	return b.storage
}

// Current returns the active entry.
func (b *Browser) Current() Entry {
	return b.entries[b.index]
}

// Index returns the position of the active entry.
func (b *Browser) Index() int {
	return b.index
}

// Len returns the number of native entries.
func (b *Browser) Len() int {
	return len(b.entries)
}

// State returns the state object of the active entry.
func (b *Browser) State() map[string]any {
	return b.entries[b.index].State
}

// ReplaceState replaces the state object of the active entry.
func (b *Browser) ReplaceState(state map[string]any) {
	b.entries[b.index].State = state
}

// PushEntry appends a new active entry for loc, dropping forward entries.
func (b *Browser) PushEntry(loc domain.Location) {
	b.entries = append(b.entries[:b.index+1], Entry{Location: loc})
	b.index++
}

// Back moves one entry back. It reports whether the move happened.
func (b *Browser) Back() bool {
	return b.Go(-1)
}

// Forward moves one entry forward. It reports whether the move happened.
func (b *Browser) Forward() bool {
	return b.Go(1)
}

// Go moves delta entries and fires pop listeners with the state of the entry
// that became active. Out-of-range moves do nothing.
func (b *Browser) Go(delta int) bool {
	target := b.index + delta
	if delta == 0 || target < 0 || target >= len(b.entries) {
		return false
	}
	b.index = target

	var state map[string]any
	if s := b.entries[target].State; s != nil {
		state = maps.Clone(s)
	}
	for _, l := range append([]*popListener(nil), b.popListeners...) {
		if l.fn != nil {
			l.fn(state)
		}
	}
	return true
}

// OnPopState registers fn for pop events.
func (b *Browser) OnPopState(fn func(state map[string]any)) (cancel func()) {
	l := &popListener{fn: fn}
	b.popListeners = append(b.popListeners, l)
	return func() { l.fn = nil }
}

// OnUnload registers fn for the unload event.
func (b *Browser) OnUnload(fn func()) (cancel func()) {
	l := &unloadListener{fn: fn}
	b.unloadListeners = append(b.unloadListeners, l)
	return func() { l.fn = nil }
}

// Unload fires unload listeners and then drops every listener, as a page
// unload does. Entries and session storage are kept, so the next page load
// sees the same URL and storage.
func (b *Browser) Unload() {
	for _, l := range append([]*unloadListener(nil), b.unloadListeners...) {
		if l.fn != nil {
			l.fn()
		}
	}
	b.popListeners = nil
	b.unloadListeners = nil
}
