// Package cache persists benchmark results as one JSON file per
// configuration, so that repeating a benchmark is cheap and returns the
// same numbers.
//
// The store owns its directory exclusively.  It takes no locks: concurrent
// writers of the same key race and the last rename wins, but every write
// goes through a temporary file, so a reader sees either the old or the new
// entry and never a partial one.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the file extension of cache entries.
const Ext = ".json"

// ErrWrite is returned by [Store.Save] and [Store.Clear] when the cache
// directory or an entry cannot be written.
var ErrWrite = errors.New("cache: write failed")

// Key identifies one benchmark configuration.
type Key struct {
	Algorithm       string
	SaltMode        string
	SaltLen         int
	DurationSeconds float64
}

// Millis returns the duration truncated to whole milliseconds.  Keys whose
// durations differ by less than a millisecond share an entry.
func (k Key) Millis() int64 {
	return int64(k.DurationSeconds * 1000)
}

// Identifier returns the file name of the entry for key:
//
//	<algorithm>_<salt_mode>_<salt_len>_<milliseconds>.json
func Identifier(key Key) string {
	return fmt.Sprintf("%s_%s_%d_%d%s",
		sanitize(key.Algorithm), sanitize(key.SaltMode), key.SaltLen, key.Millis(), Ext)
}

// sanitize keeps a name inside the cache directory.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '-'
		}
		return r
	}, s)
}

// Config configures a [Store].
type Config struct {
	Logger *slog.Logger // optional

	// FileMode is the permission of new entries.
	//
	// Defaults to 0o644.
	FileMode fs.FileMode // optional
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) func(*Config) {
	return func(cfg *Config) { cfg.Logger = logger }
}

// WithFileMode configures the permission of new entries.
func WithFileMode(mode fs.FileMode) func(*Config) {
	return func(cfg *Config) { cfg.FileMode = mode }
}

// Store maps a [Key] to a previously saved value of type T.
type Store[T any] struct {
	dir    string
	config Config
}

// New creates a Store rooted at dir.  The directory does not need to exist;
// it is created by the first [Store.Save].
func New[T any](dir string, config ...func(*Config)) *Store[T] {
	cfg := Config{FileMode: 0o644}
	for _, f := range config {
		f(&cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Store[T]{dir: dir, config: cfg}
}

// Dir returns the directory the Store writes to.
func (s *Store[T]) Dir() string { return s.dir }

// Path returns the file that holds the entry for key.
func (s *Store[T]) Path(key Key) string {
	return filepath.Join(s.dir, Identifier(key))
}

// Validator is implemented by entry types that can tell a decoded entry
// apart from an empty or foreign one.  Load reports an entry whose Valid
// method returns false as a miss.
type Validator interface {
	Valid() bool
}

// Load returns the value saved for key.
//
// A missing, unreadable or malformed entry is reported as a miss; Load
// never fails.  So are a JSON null and, when T implements [Validator], an
// entry that does not validate.
func (s *Store[T]) Load(key Key) (T, bool) {
	var v T
	path := s.Path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.config.Logger.Debug("cache: unreadable entry", slog.String("path", path), slog.Any("error", err))
		} else {
			s.config.Logger.Debug("cache: miss", slog.String("path", path))
		}
		return v, false
	}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		s.config.Logger.Debug("cache: empty entry", slog.String("path", path))
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		s.config.Logger.Debug("cache: corrupt entry", slog.String("path", path), slog.Any("error", err))
		var zero T
		return zero, false
	}

	if !valid(&v) {
		s.config.Logger.Debug("cache: invalid entry", slog.String("path", path))
		var zero T
		return zero, false
	}

	s.config.Logger.Debug("cache: hit", slog.String("path", path))
	return v, true
}

// Save writes v as the entry for key, replacing any previous entry.
//
// The entry is indented JSON.  It is written to a temporary file in the
// cache directory and renamed into place.
func (s *Store[T]) Save(key Key, v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrWrite, s.dir, err)
	}

	path := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, "."+Identifier(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	if err := os.Chmod(tmpName, s.config.FileMode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	s.config.Logger.Debug("cache: saved", slog.String("path", path))
	return nil
}

// Entries returns the identifiers of all entries in sorted order.  A
// missing directory has no entries.
func (s *Store[T]) Entries() ([]string, error) {
	dirents, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: list %s: %w", s.dir, err)
	}

	var ids []string
	for _, e := range dirents {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != Ext {
			continue
		}
		ids = append(ids, name)
	}

	// os.ReadDir sorts by file name.
	return ids, nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store[T]) Clear() (int, error) {
	ids, err := s.Entries()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, id := range ids {
		if err := os.Remove(filepath.Join(s.dir, id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return n, fmt.Errorf("%w: remove %s: %w", ErrWrite, id, err)
		}
		n++
	}

	s.config.Logger.Debug("cache: cleared", slog.String("dir", s.dir), slog.Int("entries", n))
	return n, nil
}

func valid[T any](v *T) bool {
	if c, ok := any(v).(Validator); ok {
		return c.Valid()
	}
	if c, ok := any(*v).(Validator); ok {
		return c.Valid()
	}
	return true
}
