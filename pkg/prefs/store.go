// Package prefs persists user-tunable generation parameters across runs.
// Values live in a small YAML file of string entries; today the only entry
// is the temperature, stored as a decimal string under TemperatureKey.
//
// Durability is best-effort: a failed write is logged and otherwise ignored,
// and an unreadable file behaves as if nothing was ever saved.
package prefs

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// TemperatureKey is the entry the temperature is stored under.
const TemperatureKey = "ai-writer-temperature"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger that receives swallowed persistence failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Store reads and writes the preferences file. It is safe for concurrent
// use, though in practice the session is its only writer.
type Store struct {
	mu       sync.Mutex
	filePath string
	log      *slog.Logger
}

// New creates a Store backed by the file at path. Nothing is read until Load.
func New(path string, opts ...Option) *Store {
	s := &Store{filePath: path}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}

	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.filePath }

// Load returns the persisted temperature. The bool is false when no value
// was ever saved or the stored value is not a finite number.
func (s *Store) Load() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		s.log.Warn("prefs: load failed", "path", s.filePath, "error", err)
		return 0, false
	}

	raw, ok := entries[TemperatureKey]
	if !ok {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		s.log.Warn("prefs: ignoring unparseable temperature", "value", raw)
		return 0, false
	}

	return v, true
}

// Save overwrites the persisted temperature. Failures are logged, never
// returned.
func (s *Store) Save(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(TemperatureKey, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		s.log.Warn("prefs: save failed", "path", s.filePath, "error", err)
	}
}

func (s *Store) save(key, value string) error {
	entries, err := s.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future save.
		entries = make(map[string]string)
	}

	entries[key] = value

	return s.persist(entries)
}

// --- persistence ---

func (s *Store) read() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}

		return nil, fmt.Errorf("prefs: read file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prefs: parse file: %w", err)
	}

	for k, v := range raw {
		switch val := v.(type) {
		case string:
			entries[k] = val
		case int, int64, float64, bool:
			entries[k] = fmt.Sprint(val)
		}
	}

	return entries, nil
}

// persist writes entries through a temp file and rename so readers never
// observe a partial file.
func (s *Store) persist(entries map[string]string) error {
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("prefs: marshal: %w", err)
	}

	dir := filepath.Dir(s.filePath)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("prefs: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("prefs: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("prefs: write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("prefs: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.filePath); err != nil { //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("prefs: rename temp file: %w", err)
	}

	return nil
}
