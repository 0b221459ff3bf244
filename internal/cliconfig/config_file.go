package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	StorageDir    string `toml:"storage_dir"`
	Session       string `toml:"session"`
	StorageKey    string `toml:"storage_key"`
	QueryKey      string `toml:"query_key"`
	StateKey      string `toml:"state_key"`
	Reloadable    *bool  `toml:"reloadable"`
	DebounceDelay string `toml:"debounce"`
	LogLevel      string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.historystate/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".historystate", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("storage-dir", fc.StorageDir, &cfg.StorageDir)
	s.setString("session", fc.Session, &cfg.Session)
	s.setString("storage-key", fc.StorageKey, &cfg.StorageKey)
	s.setString("query-key", fc.QueryKey, &cfg.QueryKey)
	s.setString("state-key", fc.StateKey, &cfg.StateKey)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("debounce", fc.DebounceDelay, &cfg.DebounceDelay); err != nil {
		return err
	}

	s.setBool("reloadable", fc.Reloadable, &cfg.Reloadable)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
