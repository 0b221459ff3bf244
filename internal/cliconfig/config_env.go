package cliconfig

import "os"

// ApplyEnvConfig applies HISTORYSTATE_* environment variables to cfg.
// Flags that were explicitly set (changed map) win.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("storage-dir", os.Getenv("HISTORYSTATE_STORAGE_DIR"), &cfg.StorageDir)
	s.setString("session", os.Getenv("HISTORYSTATE_SESSION"), &cfg.Session)
	s.setString("storage-key", os.Getenv("HISTORYSTATE_STORAGE_KEY"), &cfg.StorageKey)
	s.setString("query-key", os.Getenv("HISTORYSTATE_QUERY_KEY"), &cfg.QueryKey)
	s.setString("state-key", os.Getenv("HISTORYSTATE_STATE_KEY"), &cfg.StateKey)
	s.setString("log-level", os.Getenv("HISTORYSTATE_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("debounce", os.Getenv("HISTORYSTATE_DEBOUNCE"), &cfg.DebounceDelay); err != nil {
		return err
	}

	s.setBoolFromString("reloadable", os.Getenv("HISTORYSTATE_RELOADABLE"), &cfg.Reloadable)
	return nil
}
