package historystate

import "context"

// ContextName is the name under which the state is exposed to application code.
const ContextName = "historyState"

type contextKey struct{ name string }

var readerKey = contextKey{name: ContextName}

// Reader is the read-only view of the history state offered to application code.
type Reader interface {
	Action() Action
	Page() int
	Route() *RouteDescriptor
	Data() Snapshot
	BackIndexOf(partial map[string]any) (int, bool)
}

// NewContext returns a copy of ctx carrying r.
func NewContext(ctx context.Context, r Reader) context.Context {
	return context.WithValue(ctx, readerKey, r)
}

// FromContext returns the Reader carried by ctx, if any.
func FromContext(ctx context.Context) (Reader, bool) {
	r, ok := ctx.Value(readerKey).(Reader)
	return r, ok
}
