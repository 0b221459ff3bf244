package domain

import "errors"

// Domain errors represent error conditions in the history domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrIllegalHistoryData is returned when a backup blob does not describe a stack.
	ErrIllegalHistoryData = errors.New("historystate: illegal history data")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("historystate: invalid configuration")

	// ErrPageOutOfRange is returned when a page index has no stack entry.
	ErrPageOutOfRange = errors.New("historystate: page out of range")
)
