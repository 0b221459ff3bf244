package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/historystate/pkg/historystate"
)

// Config holds CLI configuration for historystate.
type Config struct {
	StorageDir string
	Session    string

	StorageKey string
	QueryKey   string
	StateKey   string
	Reloadable bool

	DebounceDelay time.Duration
	LogLevel      string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		StorageDir:    DefaultStorageDir(),
		StorageKey:    historystate.DefaultStorageKey,
		QueryKey:      historystate.DefaultQueryKey,
		StateKey:      historystate.DefaultStateKey,
		DebounceDelay: 50 * time.Millisecond,
		LogLevel:      "info",
	}
}

// DefaultStorageDir returns ~/.historystate/sessions, or "" when the home
// directory is not accessible.
func DefaultStorageDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".historystate", "sessions")
	}
	return ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Session, `/\`) {
		return fmt.Errorf("session %q must not contain path separators", c.Session)
	}
	if c.DebounceDelay <= 0 {
		return fmt.Errorf("debounce delay must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return c.Library().Validate()
}

// Library converts c into the library configuration.
func (c *Config) Library() historystate.Config {
	return historystate.Config{
		Reloadable: c.Reloadable,
		StorageKey: c.StorageKey,
		QueryKey:   c.QueryKey,
		StateKey:   c.StateKey,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
