package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starsync/stars/pkg/config"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
	// DefaultFile is the filename used inside the config directory.
	DefaultFile = "persist.json"
)

// Store is a flat key-value document persisted between runs, used by
// targets to keep credentials. Keys are chosen by targets and must not
// collide. A Store is not safe for concurrent use.
type Store interface {
	// Read returns the raw JSON value stored at key.
	Read(key string) (json.RawMessage, bool)
	// ReadString returns the value at key if it is a JSON string.
	ReadString(key string) (string, bool)
	// Write sets key to the JSON encoding of value and flushes the whole
	// document to disk before returning.
	Write(key string, value any) error
	// Delete removes key and flushes. Deleting a missing key is not an error.
	Delete(key string) error
	// Path returns the backing file path.
	Path() string
}

// Open loads the document at path. A missing or unreadable document is
// treated as empty. When ignoreSaved is true the existing document is not
// loaded, though writes still replace it.
func Open(path string, ignoreSaved bool) Store {
	s := &store{path: path, kvs: map[string]json.RawMessage{}}
	if ignoreSaved {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	kvs := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &kvs); err != nil {
		return s
	}
	s.kvs = kvs
	return s
}

// Default opens persist.json in the per-user config directory.
func Default(ignoreSaved bool) (Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, DefaultFile), ignoreSaved), nil
}

type store struct {
	path string
	kvs  map[string]json.RawMessage
}

var _ Store = &store{}

func (s *store) Path() string {
	return s.path
}

func (s *store) Read(key string) (json.RawMessage, bool) {
	v, ok := s.kvs[key]
	return v, ok
}

func (s *store) ReadString(key string) (string, bool) {
	raw, ok := s.kvs[key]
	if !ok {
		return "", false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return "", false
	}
	return str, true
}

func (s *store) Write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	s.kvs[key] = raw
	return s.flush()
}

func (s *store) Delete(key string) error {
	if _, ok := s.kvs[key]; !ok {
		return nil
	}
	delete(s.kvs, key)
	return s.flush()
}

func (s *store) flush() error {
	data, err := json.Marshal(s.kvs)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", s.path, err)
	}
	return os.Rename(tmp, s.path)
}
