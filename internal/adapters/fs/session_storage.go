package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileExt is the extension of session files.
const FileExt = ".json"

// ErrCorruptSessionFile is returned when a session file is not a JSON object
// of strings. Set and Remove replace such a file instead of failing.
var ErrCorruptSessionFile = errors.New("fs: corrupt session file")

// SessionStorage implements ports.Storage with one JSON file per session.
// The file holds a flat object of string values.
type SessionStorage struct {
	dir     string
	session string
}

// NewSessionStorage creates a SessionStorage for session under dir.
func NewSessionStorage(dir, session string) *SessionStorage {
	return &SessionStorage{dir: dir, session: session}
}

// SessionFile returns the path of the file backing session under dir.
func SessionFile(dir, session string) string {
	return filepath.Join(dir, session+FileExt)
}

// SessionOf returns the session name of a session file path, or "" if path
// is not one.
func SessionOf(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, FileExt) {
		return ""
	}
	return strings.TrimSuffix(base, FileExt)
}

// Path returns the full path to the session file.
func (s *SessionStorage) Path() string {
	return SessionFile(s.dir, s.session)
}

// Get returns the value stored under key.
// A missing session file holds no keys.
func (s *SessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	values, err := ReadSessionFile(s.Path())
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key. A corrupt file is replaced.
func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	values, err := ReadSessionFile(s.Path())
	if errors.Is(err, ErrCorruptSessionFile) {
		values = map[string]string{}
	} else if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

// Remove deletes key. The file is removed once it holds no keys, or when it
// is corrupt.
func (s *SessionStorage) Remove(ctx context.Context, key string) error {
	values, err := ReadSessionFile(s.Path())
	if errors.Is(err, ErrCorruptSessionFile) {
		values = map[string]string{key: ""}
	} else if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return s.write(values)
}

// ReadSessionFile decodes a session file. A missing file yields an empty map.
// Undecodable content wraps ErrCorruptSessionFile.
func ReadSessionFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSessionFile, filepath.Base(path), err)
	}
	return values, nil
}

// write persists values atomically (temp file, then rename).
func (s *SessionStorage) write(values map[string]string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	path := s.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
