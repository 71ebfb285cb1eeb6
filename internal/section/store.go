// Package section implements the file-backed key/value store behind one
// satchel section: lazy load, write-through persistence, obfuscation, and
// typed reads over the generically deserialized map.
package section

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/satchel-io/satchel/pkg/types"
)

// ChangeFunc receives the data id and new value of every successful Set.
// It runs synchronously, before Set returns to the caller.
type ChangeFunc func(dataID string, value any)

// Store owns one section file and its in-memory key/value map. Reads load
// the file lazily; every mutation serializes the whole map, obfuscates it,
// and replaces the file before returning. All methods are safe for
// concurrent use; the change callback runs outside the store lock.
type Store struct {
	id   string
	path string
	obf  types.Obfuscator
	log  *slog.Logger

	mu       sync.Mutex
	loaded   bool
	data     map[string]any
	onChange ChangeFunc
}

// New creates a store for a resolved section. The file is not touched until
// the first read or write.
func New(id, path string, obf types.Obfuscator, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		id:   id,
		path: path,
		obf:  obf,
		log:  log,
		data: map[string]any{},
	}
}

// ID returns the section identifier.
func (s *Store) ID() string { return s.id }

// Path returns the resolved section file path.
func (s *Store) Path() string { return s.path }

// SetChangeFunc installs the callback fired after every successful Set.
func (s *Store) SetChangeFunc(fn ChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load reads and deserializes the section file. Idempotent when already
// loaded unless force is set. A missing directory or file is a first run:
// the section starts empty and no file is created.
func (s *Store) Load(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(force)
}

func (s *Store) loadLocked(force bool) error {
	if s.loaded && !force {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.data = map[string]any{}
		s.loaded = true
		return nil
	}
	if err != nil {
		s.log.Error("section load failed", "section", s.id, "path", s.path, "error", err)
		return fmt.Errorf("reading section %q: %w", s.id, err)
	}

	text, err := s.obf.Deobfuscate(raw)
	if err != nil {
		s.log.Error("section deobfuscation failed", "section", s.id, "path", s.path, "error", err)
		return fmt.Errorf("deobfuscating section %q: %w", s.id, err)
	}

	m, err := decodeMap([]byte(text))
	if err != nil {
		s.log.Error("section deserialization failed", "section", s.id, "path", s.path, "error", err)
		return fmt.Errorf("deserializing section %q: %w", s.id, err)
	}

	s.data = m
	s.loaded = true
	return nil
}

// decodeMap deserializes a section payload. UseNumber keeps numerics as
// json.Number so typed reads can narrow without a lossy float64 hop.
func decodeMap(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	m := map[string]any{}
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCorruptData, err)
	}
	return m, nil
}

// persistLocked serializes the full map, obfuscates it, and atomically
// replaces the section file. Must be called with s.mu held.
func (s *Store) persistLocked() error {
	text, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing section %q: %w", s.id, err)
	}
	if err := WriteFileAtomic(s.path, s.obf.Obfuscate(string(text))); err != nil {
		s.log.Error("section persist failed", "section", s.id, "path", s.path, "error", err)
		return fmt.Errorf("writing section %q: %w", s.id, err)
	}
	return nil
}

// Raw returns the stored dynamic value for id, loading the section first
// when needed.
func (s *Store) Raw(id string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(false); err != nil {
		return nil, false, err
	}
	v, ok := s.data[id]
	return v, ok, nil
}

// Has reports whether id exists in the section.
func (s *Store) Has(id string) (bool, error) {
	_, ok, err := s.Raw(id)
	return ok, err
}

// SetValue stores value under id and persists the whole map immediately.
// Every call persists, even when the value is unchanged; equality-based
// suppression is deliberately absent so the file always reflects the last
// Set. The change callback fires before SetValue returns.
func (s *Store) SetValue(id string, value any) error {
	s.mu.Lock()
	if err := s.loadLocked(false); err != nil {
		s.mu.Unlock()
		return err
	}
	s.data[id] = value
	err := s.persistLocked()
	fn := s.onChange
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if fn != nil {
		fn(id, value)
	}
	return nil
}

// Clear removes id if present and persists the removal. Clearing an absent
// id is a no-op, not an error.
func (s *Store) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(false); err != nil {
		return err
	}
	if _, ok := s.data[id]; !ok {
		return nil
	}
	delete(s.data, id)
	return s.persistLocked()
}

// ClearAll empties the section and persists the empty map.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]any{}
	s.loaded = true
	return s.persistLocked()
}

// Keys returns the ids currently stored, sorted, loading if needed.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(false); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// RawBytes returns the obfuscated on-disk bytes without deserializing them.
// Escape hatch for the rekey utility.
func (s *Store) RawBytes() ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("section %q: %w", s.id, types.ErrFileMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("reading section %q: %w", s.id, err)
	}
	return b, nil
}

// WriteRawBytes atomically replaces the on-disk bytes without serializing
// the in-memory map, and drops the loaded flag so the next read reloads
// from disk.
func (s *Store) WriteRawBytes(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := WriteFileAtomic(s.path, b); err != nil {
		return fmt.Errorf("writing section %q: %w", s.id, err)
	}
	s.loaded = false
	return nil
}
