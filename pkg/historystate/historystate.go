package historystate

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/bft-labs/historystate/internal/adapters/fs"
	logAdapter "github.com/bft-labs/historystate/internal/adapters/log"
	"github.com/bft-labs/historystate/internal/adapters/memory"
	"github.com/bft-labs/historystate/internal/app"
	"github.com/bft-labs/historystate/internal/domain"
	"github.com/bft-labs/historystate/internal/ports"
)

// Version is the current version of the historystate module.
const Version = "1.0.0"

// Re-export types from the internal packages for convenient access.
type (
	// Action labels the most recent transition.
	Action = domain.Action

	// Route is the resolved route handed to pre-navigation guards.
	Route = domain.Route

	// RouteDescriptor is the route snapshot stored for a page.
	RouteDescriptor = domain.RouteDescriptor

	// Location is the target of a push.
	Location = domain.Location

	// Snapshot is the data kept for a page.
	Snapshot = domain.Snapshot

	// SnapshotFunc produces the snapshot of the mounted view.
	SnapshotFunc = domain.SnapshotFunc

	// Stack is the navigation stack.
	Stack = domain.Stack

	// Storage is session-scoped key/value storage.
	Storage = ports.Storage

	// NativeHistory is the host's native history.
	NativeHistory = ports.NativeHistory

	// UnloadNotifier signals page unload.
	UnloadNotifier = ports.UnloadNotifier

	// Navigator is the router surface the state hooks into.
	Navigator = ports.Navigator

	// PushFunc is a router push primitive.
	PushFunc = ports.PushFunc

	// GuardFunc is a pre-navigation guard.
	GuardFunc = ports.GuardFunc

	// Logger is the interface for structured logging.
	Logger = ports.Logger

	// LogField is a structured log field.
	LogField = ports.Field

	// Browser is an in-memory simulated browser.
	Browser = memory.Browser

	// Router is a minimal router over a Browser.
	Router = memory.Router

	// RouteRecord declares a Router route.
	RouteRecord = memory.RouteRecord
)

// Transition labels.
const (
	ActionNew     = domain.ActionNew
	ActionReload  = domain.ActionReload
	ActionPush    = domain.ActionPush
	ActionBack    = domain.ActionBack
	ActionForward = domain.ActionForward
)

// Errors returned by the package. Check them with errors.Is.
var (
	ErrIllegalHistoryData = domain.ErrIllegalHistoryData
	ErrInvalidConfig      = domain.ErrInvalidConfig
	ErrPageOutOfRange     = domain.ErrPageOutOfRange
	ErrNoRoute            = memory.ErrNoRoute
)

// Snapshotter is implemented by views that keep data across navigation.
// BackupData is called once when the page showing the view is left.
type Snapshotter interface {
	BackupData() Snapshot
}

// HistoryState is the navigation history of one page load.
// Use New() to create an instance.
type HistoryState struct {
	config      Config
	state       *app.HistoryState
	interceptor *app.Interceptor
	logger      ports.Logger
}

// New creates the history state of a page load, restoring it from the backup
// in storage when one exists.
func New(ctx context.Context, cfg Config, opts ...Option) (*HistoryState, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Reloadable && (o.storage == nil || o.unload == nil) {
		return nil, fmt.Errorf("%w: reloadable mode needs storage and an unload notifier", ErrInvalidConfig)
	}

	logger := o.logger
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}

	var emitter app.TransitionEmitter
	if len(o.eventHandlers) > 0 {
		emitter = &eventEmitterWrapper{handlers: o.eventHandlers}
	}

	state := app.NewHistoryState(ctx,
		app.HistoryConfig{Reloadable: cfg.Reloadable, StorageKey: cfg.StorageKey},
		o.storage, o.unload, logger, emitter)

	interceptor := app.NewInterceptor(
		app.InterceptorConfig{Reloadable: cfg.Reloadable, QueryKey: cfg.QueryKey, StateKey: cfg.StateKey},
		state, o.native, logger)

	return &HistoryState{
		config:      cfg,
		state:       state,
		interceptor: interceptor,
		logger:      logger,
	}, nil
}

// Action returns the label of the most recent transition.
func (h *HistoryState) Action() Action { return h.state.Action() }

// Page returns the index of the active page.
func (h *HistoryState) Page() int { return h.state.Page() }

// Route returns the route recorded for the active page, or nil.
func (h *HistoryState) Route() *RouteDescriptor { return h.state.Route() }

// Data returns the snapshot stored for the active page, or nil.
func (h *HistoryState) Data() Snapshot { return h.state.Data() }

// BackIndexOf returns the offset (negative) of the nearest earlier page whose
// route contains partial, keyed by descriptor JSON names ("name", "query",
// "params", ...). ok is false when no earlier page matches.
func (h *HistoryState) BackIndexOf(partial map[string]any) (offset int, ok bool) {
	return h.state.BackIndexOf(partial)
}

// Reader returns the read-only view of h.
func (h *HistoryState) Reader() Reader {
	return h
}

// Install composes the push middleware and the pre-navigation guard into nav.
// Call it once, before the router's first navigation.
func (h *HistoryState) Install(nav Navigator) {
	h.interceptor.Install(nav)
}

// WrapPush decorates a push primitive, for routers that are not a Navigator.
func (h *HistoryState) WrapPush(next PushFunc) PushFunc {
	return h.interceptor.WrapPush(next)
}

// Guard returns the pre-navigation guard, for routers that are not a Navigator.
func (h *HistoryState) Guard() GuardFunc {
	return h.interceptor.Guard()
}

// Mount registers the snapshot callback of a newly mounted view. Views that
// do not implement Snapshotter register none.
func (h *HistoryState) Mount(view any) {
	var fn SnapshotFunc
	if s, ok := view.(Snapshotter); ok {
		fn = s.BackupData
	}
	h.state.Register(fn)
}

// MountFunc registers fn as the snapshot callback of the mounted view.
func (h *HistoryState) MountFunc(fn SnapshotFunc) {
	h.state.Register(fn)
}

// Persist writes the stack to storage right away. Reloadable states already
// do this on unload.
func (h *HistoryState) Persist(ctx context.Context) error {
	return h.state.Persist(ctx)
}

// Stack returns the navigation stack. Callers must not modify it.
func (h *HistoryState) Stack() *Stack {
	return h.state.Stack()
}

// Close stops listening for native history events.
func (h *HistoryState) Close() {
	h.interceptor.Close()
}

// DecodeBackup parses a backup blob as written on unload.
func DecodeBackup(blob string) (*Stack, error) {
	return domain.DecodeStack([]byte(blob))
}

// PeekBackup reads the backup stored under key without consuming it.
// It returns nil when there is none.
func PeekBackup(ctx context.Context, s Storage, key string) (*Stack, error) {
	blob, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return DecodeBackup(blob)
}

// NewMemoryStorage creates an in-memory Storage.
func NewMemoryStorage() Storage {
	return memory.NewStorage()
}

// NewFileStorage creates a Storage persisted as dir/<session>.json.
func NewFileStorage(dir, session string) Storage {
	return fs.NewSessionStorage(dir, session)
}

// SessionFile returns the file backing session under dir.
func SessionFile(dir, session string) string {
	return fs.SessionFile(dir, session)
}

// SessionOf returns the session name of a session file path, or "".
func SessionOf(path string) string {
	return fs.SessionOf(path)
}

// ReadSessionFile decodes all values of a session file.
func ReadSessionFile(path string) (map[string]string, error) {
	return fs.ReadSessionFile(path)
}

// NewBrowser creates a simulated browser showing initial. A nil storage gets
// an in-memory one.
func NewBrowser(initial Location, storage Storage) *Browser {
	return memory.NewBrowser(initial, storage)
}

// NewRouter creates a minimal router over b.
func NewRouter(b *Browser, records ...RouteRecord) *Router {
	return memory.NewRouter(b, records...)
}

// NewZerologLogger creates a Logger writing console lines to w at level.
func NewZerologLogger(w io.Writer, level zerolog.Level) Logger {
	return logAdapter.NewZerologAdapter(w, level)
}

// NewZerologLoggerWith wraps an existing zerolog.Logger.
func NewZerologLoggerWith(logger zerolog.Logger) Logger {
	return logAdapter.NewZerologAdapterWithLogger(logger)
}

// LogString creates a string log field.
func LogString(key, value string) LogField { return ports.String(key, value) }

// LogInt creates an int log field.
func LogInt(key string, value int) LogField { return ports.Int(key, value) }

// LogErr creates an error log field.
func LogErr(err error) LogField { return ports.Err(err) }

// NewNoopLogger creates a Logger that discards everything.
func NewNoopLogger() Logger {
	return logAdapter.NewNoopLogger()
}
