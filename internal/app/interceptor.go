package app

import (
	"context"
	"math"
	"strconv"

	"github.com/bft-labs/historystate/internal/domain"
	"github.com/bft-labs/historystate/internal/ports"
)

// InterceptorConfig contains configuration for the navigation interceptor.
type InterceptorConfig struct {
	// Reloadable carries the page index in the URL query instead of the
	// native history entry state.
	Reloadable bool

	// QueryKey is the query parameter carrying the page index in reloadable mode.
	QueryKey string

	// StateKey is the native entry state key carrying the page index otherwise.
	StateKey string
}

// Interceptor keeps a HistoryState in step with the router and the native
// history.
type Interceptor struct {
	config    InterceptorConfig
	history   *HistoryState
	native    ports.NativeHistory
	logger    ports.Logger
	cancelPop func()
}

// NewInterceptor creates an interceptor for history. Outside reloadable mode
// it listens for native pop events, so native must then be non-nil for
// back/forward navigation to be tracked.
func NewInterceptor(
	config InterceptorConfig,
	history *HistoryState,
	native ports.NativeHistory,
	logger ports.Logger,
) *Interceptor {
	i := &Interceptor{
		config:  config,
		history: history,
		native:  native,
		logger:  logger,
	}
	if !config.Reloadable && native != nil {
		i.cancelPop = native.OnPopState(i.onPopState)
	}
	return i
}

// Install composes the interceptor into nav.
func (i *Interceptor) Install(nav ports.Navigator) {
	nav.UsePush(i.WrapPush)
	nav.BeforeEach(i.Guard())
}

// WrapPush decorates the router's push primitive. The current page is
// snapshotted and the page pointer advanced before next runs; an aborted
// navigation does not roll the pointer back.
func (i *Interceptor) WrapPush(next ports.PushFunc) ports.PushFunc {
	return func(ctx context.Context, to domain.Location) error {
		i.history.Leave()

		if i.config.Reloadable {
			i.history.Enter()
			to = to.WithQuery(i.config.QueryKey, strconv.Itoa(i.history.Page()))
		} else {
			i.annotateEntry()
			i.history.Enter()
		}

		return next(ctx, to)
	}
}

// Guard returns the pre-navigation hook. It never aborts a navigation.
func (i *Interceptor) Guard() ports.GuardFunc {
	return func(ctx context.Context, to, from domain.Route) error {
		if i.config.Reloadable {
			page := queryPage(to.Query, i.config.QueryKey)
			if page != i.history.Page() {
				i.history.Leave()
				i.history.Update(page)
			}
		}
		i.history.RecordRoute(to)
		return nil
	}
}

// WrapGuard runs the interceptor's hook before next.
func (i *Interceptor) WrapGuard(next ports.GuardFunc) ports.GuardFunc {
	guard := i.Guard()
	return func(ctx context.Context, to, from domain.Route) error {
		if err := guard(ctx, to, from); err != nil {
			return err
		}
		return next(ctx, to, from)
	}
}

// Close stops listening for native pop events.
func (i *Interceptor) Close() {
	if i.cancelPop != nil {
		i.cancelPop()
		i.cancelPop = nil
	}
}

// annotateEntry writes the current page index into the state of the native
// entry that is about to be left.
func (i *Interceptor) annotateEntry() {
	if i.native == nil {
		return
	}
	current := i.native.State()
	state := make(map[string]any, len(current)+1)
	for k, v := range current {
		state[k] = v
	}
	state[i.config.StateKey] = i.history.Page()
	i.native.ReplaceState(state)
}

func (i *Interceptor) onPopState(state map[string]any) {
	i.history.Leave()

	page, ok := pageValue(state[i.config.StateKey])
	if !ok {
		// Entries created before the interceptor was installed carry no page.
		// The last stack index is a guess that is wrong once the stack has
		// grown past that entry.
		page = i.history.Len() - 1
		i.logger.Debug("pop event without page, using last entry", ports.Int("page", page))
	}

	i.history.Update(page)
}

// queryPage reads the page index from a route query. Absent or unparsable
// values mean page 0.
func queryPage(query map[string]any, key string) int {
	v, ok := query[key]
	if !ok {
		return 0
	}
	if list, isList := v.([]any); isList {
		if len(list) == 0 {
			return 0
		}
		v = list[0]
	}
	if s, isStr := v.(string); isStr {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	if n, ok := pageValue(v); ok {
		return n
	}
	return 0
}

// pageValue converts a numeric state value into a page index.
func pageValue(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, false
		}
		return n, true
	case int64:
		f = float64(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return 0, false
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
