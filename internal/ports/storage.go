package ports

import "context"

// Storage is the session-scoped key/value store holding the reload backup.
// Values are opaque strings.
type Storage interface {
	// Get returns the value stored under key and whether it exists.
	// A missing key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
