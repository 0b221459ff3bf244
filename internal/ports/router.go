package ports

import (
	"context"

	"github.com/bft-labs/historystate/internal/domain"
)

// PushFunc is the router's low-level "push a new location" primitive.
type PushFunc func(ctx context.Context, to domain.Location) error

// PushMiddleware decorates a PushFunc.
type PushMiddleware func(next PushFunc) PushFunc

// GuardFunc runs before every navigation once its target has resolved.
// Returning an error aborts the navigation.
type GuardFunc func(ctx context.Context, to, from domain.Route) error

// Navigator is the part of a router the history state hooks into.
type Navigator interface {
	// UsePush composes mw around the router's push primitive.
	UsePush(mw PushMiddleware)

	// BeforeEach registers a guard that runs before every navigation,
	// including back/forward and programmatic pushes.
	BeforeEach(guard GuardFunc)
}
