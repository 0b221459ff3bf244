package historystate

import (
	"fmt"

	"github.com/bft-labs/historystate/internal/domain"
)

// Default keys.
const (
	DefaultStorageKey = "history-state"
	DefaultQueryKey   = "_p"
	DefaultStateKey   = "page"
)

// Config holds the configuration of a HistoryState.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Reloadable keeps the stack across full page reloads.
	Reloadable bool

	// StorageKey is the session storage key of the reload backup.
	StorageKey string

	// QueryKey is the URL query parameter carrying the page index in
	// reloadable mode.
	QueryKey string

	// StateKey is the native history entry state key carrying the page index
	// outside reloadable mode.
	StateKey string
}

// DefaultConfig returns a non-reloadable Config with the default keys.
func DefaultConfig() Config {
	return Config{
		StorageKey: DefaultStorageKey,
		QueryKey:   DefaultQueryKey,
		StateKey:   DefaultStateKey,
	}
}

// SetDefaults fills empty keys with their defaults.
func (c *Config) SetDefaults() {
	if c.StorageKey == "" {
		c.StorageKey = DefaultStorageKey
	}
	if c.QueryKey == "" {
		c.QueryKey = DefaultQueryKey
	}
	if c.StateKey == "" {
		c.StateKey = DefaultStateKey
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.StorageKey == "" {
		return fmt.Errorf("%w: storage key is required", domain.ErrInvalidConfig)
	}
	if c.QueryKey == "" {
		return fmt.Errorf("%w: query key is required", domain.ErrInvalidConfig)
	}
	if c.StateKey == "" {
		return fmt.Errorf("%w: state key is required", domain.ErrInvalidConfig)
	}
	return nil
}
