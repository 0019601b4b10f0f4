// Package store provides a JSON file-based persistence layer with atomic
// writes. The collector service uses it to keep recorded sessions and the
// report index across restarts:
//
//	~/.local/share/resource-pulse/
//	  session.json
//	  reports.json
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store writes one JSON document per key into a flat directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a store at the given directory. The directory is created with
// 0700 permissions if it does not exist. A nil logger discards diagnostics.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("store: create directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{dir: dir, logger: logger}, nil
}

// keyPath returns the filesystem path for a key.
func (s *Store) keyPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads a stored value. A missing key returns nil with no error;
// corrupted JSON is removed and treated as missing.
func (s *Store) Get(key string) (json.RawMessage, error) {
	path := s.keyPath(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}

	if !json.Valid(data) {
		s.logger.Warn("store: removing corrupted entry", slog.String("key", key))
		_ = os.Remove(path)
		return nil, nil
	}

	return json.RawMessage(data), nil
}

// Set writes a value with an atomic write (write to temp file, then rename),
// so a crash mid-write can never leave a torn document behind.
func (s *Store) Set(key string, data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}

	path := s.keyPath(key)

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+key+"-*.json")
	if err != nil {
		return fmt.Errorf("store: create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any failure path.
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: chmod temp for %s: %w", key, err)
	}

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: write temp for %s: %w", key, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp for %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: rename temp for %s: %w", key, err)
	}

	success = true
	return nil
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

// Keys returns all stored keys (filenames without the .json extension).
func (s *Store) Keys() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		if strings.HasSuffix(name, ".json") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys
}

// GetTyped reads and unmarshals a stored value into the type parameter T.
// Returns nil if the key does not exist; entries that fail to unmarshal are
// removed and treated as missing.
func GetTyped[T any](s *Store, key string) (*T, error) {
	raw, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Warn("store: removing entry with unmarshal error",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		_ = os.Remove(s.keyPath(key))
		return nil, nil
	}

	return &result, nil
}

// SetTyped marshals and stores a value of type T.
func SetTyped[T any](s *Store, key string, data *T) error {
	return s.Set(key, data)
}
