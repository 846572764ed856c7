// Package settings provides the per-user key/value store that backs tool
// defaults between runs. Values live in a flat JSON file under the user
// config directory; every accessor tolerates a missing or mistyped key by
// returning the caller's fallback, so older settings files keep working
// when new keys are introduced.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	dirName  = "playblast-tool"
	fileName = "settings.json"
)

// Store is a flat string-keyed settings map.
type Store struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, dirName, fileName)
}

// Load reads the store from path. A missing file yields an empty store;
// callers rely on accessor fallbacks for defaults.
func Load(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	s := &Store{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	_ = json.Unmarshal(data, &s.values)
	return s
}

// Save writes the store back to disk, creating the directory if needed.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return errors.WithStack(err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(s.path, data, 0o644))
}

// Keys returns all stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := maps.Keys(s.values)
	slices.Sort(keys)
	return keys
}

// Reset drops every stored value.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]interface{})
}

// Delete removes a single key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Value returns the raw stored value for key.
func (s *Store) Value(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// String returns a string value, or fallback if absent or mistyped.
func (s *Store) String(key, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return fallback
}

// Float returns a float64 value, or fallback.
func (s *Store) Float(key string, fallback float64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch n := s.values[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return fallback
}

// Int returns an int value, or fallback. JSON numbers decode as float64, so
// whole floats are accepted.
func (s *Store) Int(key string, fallback int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch n := s.values[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return fallback
}

// Bool returns a bool value, or fallback.
func (s *Store) Bool(key string, fallback bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(bool); ok {
		return v
	}
	return fallback
}

// Floats returns a fixed-length float slice (colors, pairs), or fallback if
// the stored value is absent or has the wrong length.
func (s *Store) Floats(key string, fallback []float64) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.values[key].([]interface{})
	if !ok || len(raw) != len(fallback) {
		return fallback
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return fallback
		}
		out[i] = f
	}
	return out
}

// SetString stores a string value.
func (s *Store) SetString(key, value string) {
	s.set(key, value)
}

// SetFloat stores a float value.
func (s *Store) SetFloat(key string, value float64) {
	s.set(key, value)
}

// SetInt stores an int value.
func (s *Store) SetInt(key string, value int) {
	s.set(key, value)
}

// SetBool stores a bool value.
func (s *Store) SetBool(key string, value bool) {
	s.set(key, value)
}

// SetFloats stores a float slice value.
func (s *Store) SetFloats(key string, value []float64) {
	vs := make([]interface{}, len(value))
	for i, f := range value {
		vs[i] = f
	}
	s.set(key, vs)
}

func (s *Store) set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
