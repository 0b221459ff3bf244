package domain

// Action labels the most recent transition of the navigation stack.
type Action string

const (
	// ActionNew is the first load of a session with no backup.
	ActionNew Action = "new"
	// ActionReload is a load that restored the stack from backup storage.
	ActionReload Action = "reload"
	// ActionPush is a forward navigation to a brand-new page.
	ActionPush Action = "push"
	// ActionBack is a navigation to an earlier stack index.
	ActionBack Action = "back"
	// ActionForward is a navigation to a later, already visited stack index.
	ActionForward Action = "forward"
)

// String returns the action label.
func (a Action) String() string {
	return string(a)
}

// Valid reports whether a is one of the known labels.
func (a Action) Valid() bool {
	switch a {
	case ActionNew, ActionReload, ActionPush, ActionBack, ActionForward:
		return true
	default:
		return false
	}
}

// DirectionTo classifies a move from page current to page target.
// Moving to the same page counts as back.
func DirectionTo(current, target int) Action {
	if target > current {
		return ActionForward
	}
	return ActionBack
}
