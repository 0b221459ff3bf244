package ports

// NativeHistory is the host's native history: the state object attached to
// the current entry and notifications when the user moves between entries.
type NativeHistory interface {
	// State returns the state object of the current entry. It may be nil.
	State() map[string]any

	// ReplaceState replaces the state object of the current entry.
	ReplaceState(state map[string]any)

	// OnPopState registers fn to run whenever the active entry changes through
	// back/forward navigation. fn receives the state of the entry that became
	// active. The returned function removes the listener.
	OnPopState(fn func(state map[string]any)) (cancel func())
}

// UnloadNotifier signals that the page is about to unload.
type UnloadNotifier interface {
	// OnUnload registers fn to run before unload. The returned function
	// removes the listener.
	OnUnload(fn func()) (cancel func())
}
