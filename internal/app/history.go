package app

import (
	"context"

	"go.uber.org/atomic"

	"github.com/bft-labs/historystate/internal/domain"
	"github.com/bft-labs/historystate/internal/ports"
)

// HistoryConfig contains configuration for the history state machine.
type HistoryConfig struct {
	// Reloadable enables the unload-time backup and its restore on the next load.
	Reloadable bool

	// StorageKey is the session storage key holding the backup.
	StorageKey string
}

// TransitionEmitter is called when the history state changes.
type TransitionEmitter interface {
	OnTransition(action domain.Action, from, to int)
	OnRestore(action domain.Action, err error)
}

// HistoryState keeps the navigation stack and classifies every transition.
//
// HistoryState is driven by navigation events and is not safe for concurrent
// use. Transitions must not overlap; an overlapping call is logged and then
// carried out anyway.
type HistoryState struct {
	config  HistoryConfig
	storage ports.Storage
	unload  ports.UnloadNotifier
	logger  ports.Logger
	emitter TransitionEmitter

	// ctx is used by the unload hook, which has no caller context.
	ctx context.Context

	stack        *domain.Stack
	action       domain.Action
	dataFunc     domain.SnapshotFunc
	cancelUnload func()
	busy         *atomic.Bool
}

// NewHistoryState creates the state machine, restoring the stack from the
// backup in storage when one exists. The backup is removed as soon as it has
// been read. A malformed backup is logged and the stack starts fresh.
// storage, unload and emitter may be nil.
func NewHistoryState(
	ctx context.Context,
	config HistoryConfig,
	storage ports.Storage,
	unload ports.UnloadNotifier,
	logger ports.Logger,
	emitter TransitionEmitter,
) *HistoryState {
	h := &HistoryState{
		config:  config,
		storage: storage,
		unload:  unload,
		logger:  logger,
		emitter: emitter,
		ctx:     ctx,
		busy:    atomic.NewBool(false),
	}

	stack, err := h.restore(ctx)
	if err != nil {
		h.logger.Error("discarding history backup", ports.Err(err))
	}
	if stack != nil {
		h.stack = stack
		h.action = domain.ActionReload
		h.logger.Info("history restored",
			ports.Int("page", stack.Page),
			ports.Int("entries", stack.Len()))
	} else {
		h.stack = domain.NewStack()
		h.action = domain.ActionNew
	}

	if h.emitter != nil {
		h.emitter.OnRestore(h.action, err)
	}
	return h
}

// restore reads and removes the backup. It returns a nil stack when there is
// no usable backup.
func (h *HistoryState) restore(ctx context.Context) (*domain.Stack, error) {
	if h.storage == nil {
		return nil, nil
	}

	blob, ok, err := h.storage.Get(ctx, h.config.StorageKey)
	if err != nil {
		// The backup is read once even when it cannot be read.
		if rmErr := h.storage.Remove(ctx, h.config.StorageKey); rmErr != nil {
			h.logger.Warn("failed to remove history backup", ports.Err(rmErr))
		}
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := h.storage.Remove(ctx, h.config.StorageKey); err != nil {
		h.logger.Warn("failed to remove history backup", ports.Err(err))
	}
	if blob == "" {
		return nil, nil
	}

	return domain.DecodeStack([]byte(blob))
}

// Action returns the label of the most recent transition.
func (h *HistoryState) Action() domain.Action {
	return h.action
}

// Page returns the index of the active page.
func (h *HistoryState) Page() int {
	return h.stack.Page
}

// Len returns the number of stack entries, including forward entries.
func (h *HistoryState) Len() int {
	return h.stack.Len()
}

// Route returns the descriptor recorded for the active page, or nil.
func (h *HistoryState) Route() *domain.RouteDescriptor {
	return h.stack.Route()
}

// Data returns the snapshot stored for the active page, or nil.
func (h *HistoryState) Data() domain.Snapshot {
	return h.stack.Data()
}

// BackIndexOf returns the offset of the nearest earlier page whose route
// contains partial, and whether one was found.
func (h *HistoryState) BackIndexOf(partial map[string]any) (int, bool) {
	return h.stack.BackIndexOf(partial)
}

// Register makes fn the snapshot callback of the mounted view. fn may be nil.
// In reloadable mode it also arms the unload-time persist hook.
func (h *HistoryState) Register(fn domain.SnapshotFunc) {
	h.dataFunc = fn

	if !h.config.Reloadable || h.unload == nil {
		return
	}
	h.disarmUnload()
	h.cancelUnload = h.unload.OnUnload(func() {
		if err := h.Persist(h.ctx); err != nil {
			h.logger.Error("failed to persist history", ports.Err(err))
		}
	})
}

// Enter advances to a brand-new page, dropping any forward entries.
func (h *HistoryState) Enter() {
	defer h.guard("enter")()

	from := h.stack.Page
	h.action = domain.ActionPush
	h.stack.Enter()
	h.transitioned(from)
}

// RecordRoute stores the descriptor of a resolved route at the active page.
func (h *HistoryState) RecordRoute(route domain.Route) {
	defer h.guard("record-route")()

	h.stack.SetRoute(domain.DescriptorOf(route))
	h.logger.Debug("route recorded",
		ports.Int("page", h.stack.Page),
		ports.String("name", route.Name),
		ports.String("fullPath", route.FullPath))
}

// Leave snapshots the active page and forgets the mounted view.
func (h *HistoryState) Leave() {
	defer h.guard("leave")()

	h.save()
	h.disarmUnload()
	h.dataFunc = nil
}

// Update moves to an existing page and labels the move back or forward.
func (h *HistoryState) Update(page int) {
	defer h.guard("update")()

	from := h.stack.Page
	h.action = domain.DirectionTo(from, page)
	if page >= h.stack.Len() {
		h.logger.Warn("page has no stack entry",
			ports.Err(domain.ErrPageOutOfRange),
			ports.Int("page", page),
			ports.Int("entries", h.stack.Len()))
	}
	h.stack.MoveTo(page)
	h.transitioned(from)
}

// Persist snapshots the mounted view, if any, and writes the whole stack to
// session storage.
func (h *HistoryState) Persist(ctx context.Context) error {
	defer h.guard("persist")()

	if h.storage == nil {
		return nil
	}
	if h.dataFunc != nil {
		h.save()
	}

	blob, err := h.stack.Encode()
	if err != nil {
		return err
	}
	return h.storage.Set(ctx, h.config.StorageKey, string(blob))
}

// Stack returns the stack itself. Callers must treat it as read-only.
func (h *HistoryState) Stack() *domain.Stack {
	return h.stack
}

func (h *HistoryState) save() {
	var fresh domain.Snapshot
	if h.dataFunc != nil {
		fresh = h.dataFunc()
	}
	h.stack.SetData(domain.MergeSnapshots(h.stack.Data(), fresh))
}

func (h *HistoryState) disarmUnload() {
	if h.cancelUnload != nil {
		h.cancelUnload()
		h.cancelUnload = nil
	}
}

func (h *HistoryState) transitioned(from int) {
	if h.emitter != nil {
		h.emitter.OnTransition(h.action, from, h.stack.Page)
	}

	h.logger.Debug("history transition",
		ports.String("action", h.action.String()),
		ports.Int("from", from),
		ports.Int("to", h.stack.Page))
}

// guard flags overlapping transitions. The returned func ends the transition.
func (h *HistoryState) guard(op string) func() {
	if !h.busy.CompareAndSwap(false, true) {
		h.logger.Warn("overlapping history transition", ports.String("op", op))
		return func() {}
	}
	return func() { h.busy.Store(false) }
}
