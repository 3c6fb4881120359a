package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// KV is the key-value store underneath the storage service. Get returns
// (nil, nil) when the key is absent; Set replaces the whole value.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// JSONKV implements KV using a single JSON file holding all keys.
type JSONKV struct {
	path string
}

// NewJSONKV creates a JSONKV backed by the given file path.
func NewJSONKV(path string) *JSONKV {
	return &JSONKV{path: path}
}

// Path returns the storage file path.
func (s *JSONKV) Path() string {
	return s.path
}

// Get reads a single key. A missing file or missing key yields (nil, nil).
func (s *JSONKV) Get(key string) ([]byte, error) {
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	value, ok := entries[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

// Set writes a single key, replacing the file contents.
// Creates the directory if it doesn't exist.
func (s *JSONKV) Set(key string, value []byte) error {
	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = json.RawMessage(value)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Compact marshal: indentation would rewrite the stored raw values
	// and break the Get/Set round trip.
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Close is a no-op for the file-backed store.
func (s *JSONKV) Close() error {
	return nil
}

func (s *JSONKV) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = map[string]json.RawMessage{}
	}
	return entries, nil
}

// DefaultStatePath returns the default JSON state path: ~/.config/gboost/state.json
func DefaultStatePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "gboost", "state.json"), nil
}

// Open opens the appropriate KV backend.
// Prefers SQLite if the database file exists, otherwise falls back to JSON.
func Open() (KV, error) {
	sqlitePath, err := DefaultSQLitePath()
	if err != nil {
		return nil, err
	}

	// If SQLite database exists, use it
	if _, err := os.Stat(sqlitePath); err == nil {
		return NewSQLiteKV(sqlitePath)
	}

	// Fall back to JSON
	jsonPath, err := DefaultStatePath()
	if err != nil {
		return nil, err
	}
	return NewJSONKV(jsonPath), nil
}
