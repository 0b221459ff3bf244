package historystate

import (
	"github.com/bft-labs/historystate/internal/adapters/memory"
	"github.com/bft-labs/historystate/internal/ports"
)

// Option configures optional behavior of a HistoryState.
type Option func(*options)

type options struct {
	storage       ports.Storage
	native        ports.NativeHistory
	unload        ports.UnloadNotifier
	logger        ports.Logger
	eventHandlers []EventHandler
}

// WithStorage sets the session storage holding the reload backup.
// Without it the stack always starts fresh.
func WithStorage(s Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithNativeHistory sets the native history whose entries carry the page
// index outside reloadable mode.
func WithNativeHistory(n NativeHistory) Option {
	return func(o *options) {
		o.native = n
	}
}

// WithUnloadNotifier sets the source of the unload signal used to write the
// reload backup.
func WithUnloadNotifier(u UnloadNotifier) Option {
	return func(o *options) {
		o.unload = u
	}
}

// WithBrowser wires a simulated browser as native history, unload notifier
// and session storage at once.
func WithBrowser(b *Browser) Option {
	return func(o *options) {
		o.native = b
		o.unload = b
		o.storage = b.SessionStorage()
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler adds a handler for history events. Handlers are called
// synchronously, in registration order, from the navigation event that caused
// them.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandlers = append(o.eventHandlers, handler)
	}
}

var _ interface {
	ports.NativeHistory
	ports.UnloadNotifier
} = (*memory.Browser)(nil)
