package historystate

import "github.com/bft-labs/historystate/internal/domain"

// EventHandler receives notifications about history transitions.
// Embed BaseEventHandler to implement only the methods you need.
type EventHandler interface {
	// OnTransition is called after every push, back or forward transition.
	OnTransition(event TransitionEvent)

	// OnRestore is called once, when the state is created.
	OnRestore(event RestoreEvent)
}

// TransitionEvent describes one page pointer move.
type TransitionEvent struct {
	Action Action
	From   int
	To     int
}

// RestoreEvent describes how the state was initialized. Err is set when a
// backup existed but could not be used.
type RestoreEvent struct {
	Action Action
	Err    error
}

// BaseEventHandler implements EventHandler with no-ops.
type BaseEventHandler struct{}

func (BaseEventHandler) OnTransition(TransitionEvent) {}
func (BaseEventHandler) OnRestore(RestoreEvent)       {}

// eventEmitterWrapper adapts EventHandlers to the internal emitter interface.
type eventEmitterWrapper struct {
	handlers []EventHandler
}

func (e *eventEmitterWrapper) OnTransition(action domain.Action, from, to int) {
	for _, h := range e.handlers {
		h.OnTransition(TransitionEvent{Action: action, From: from, To: to})
	}
}

func (e *eventEmitterWrapper) OnRestore(action domain.Action, err error) {
	for _, h := range e.handlers {
		h.OnRestore(RestoreEvent{Action: action, Err: err})
	}
}
