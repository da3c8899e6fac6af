// Package prefs is a small file-backed key-value store for string
// preferences that must survive process restarts.
package prefs

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const prefsFileName = "prefs.yaml"

// Store persists string preferences to a YAML file in a data folder.
// All operations are safe for concurrent use; writes are atomic
// (write-to-temp then rename).
type Store struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// Open loads the preferences file from dataFolder, creating the folder if
// needed. A missing file is treated as an empty store.
func Open(dataFolder string) (*Store, error) {
	if err := os.MkdirAll(dataFolder, 0o755); err != nil {
		return nil, errors.Wrap(err, "[prefs.Open] MkdirAll")
	}

	s := &Store{
		path:   filepath.Join(dataFolder, prefsFileName),
		values: make(map[string]string),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "[prefs.Open] ReadFile")
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, errors.Wrap(err, "[prefs.Open] Unmarshal")
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores the value for key and persists the store synchronously.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flush()
}

// Remove deletes key and persists the store synchronously. Removing an
// absent key is a no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

// flush writes the store to disk. Callers must hold the lock.
func (s *Store) flush() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return errors.Wrap(err, "[prefs.flush] Marshal")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "[prefs.flush] WriteFile")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "[prefs.flush] Rename")
	}
	return nil
}
