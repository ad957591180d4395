package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/jmcampanini/awr/internal/freshness"
)

const (
	entryExtension = ".json"
	tempPattern    = ".tmp-*"
)

// ErrInvalidKey is returned when a key lacks a kind or profile.
var ErrInvalidKey = errors.New("cache key requires a kind and a profile")

// Store persists raw JSON documents on disk, one file per key, grouped in a
// directory per profile. A file's modification time is the only timestamp:
// entries older than the TTL are deleted on read and reported as a miss.
//
// The store is best-effort. Read failures are misses and write failures are
// returned only so callers can log them.
type Store struct {
	dir string
	log *clog.Logger
	ttl time.Duration
}

// EntryInfo describes one entry on disk.
type EntryInfo struct {
	Age     time.Duration
	Expired bool
	Name    string // file name without extension, e.g. "repo_info_svc-a"
	Profile string
	Size    int64
}

// NewStore creates a store rooted at dir. A non-positive ttl disables caching.
// The directory is created lazily on the first write.
func NewStore(dir string, ttl time.Duration) *Store {
	return &Store{
		dir: dir,
		log: clog.Default().WithPrefix("cache"),
		ttl: ttl,
	}
}

// Enabled reports whether entries are read and written at all.
func (s *Store) Enabled() bool {
	return s.ttl > 0 && s.dir != ""
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// TTL returns the maximum age an entry may reach before it is discarded.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the payload stored under key and its age.
// ok is false when the entry is absent, unreadable, or older than the TTL;
// expired entries are removed from disk.
func (s *Store) Get(key Key) (payload []byte, age time.Duration, ok bool) {
	if !s.Enabled() || !key.IsValid() {
		return nil, 0, false
	}

	path := s.path(key)
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("cache stat failed", "key", key, "error", err)
		}
		return nil, 0, false
	}

	age = time.Since(info.ModTime())
	if age < 0 {
		age = 0
	}
	if age > s.ttl {
		s.log.Debug("cache entry expired", "key", key, "age", age, "ttl", s.ttl)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("failed to remove expired cache entry", "key", key, "error", err)
		}
		return nil, 0, false
	}

	payload, err = os.ReadFile(path)
	if err != nil {
		s.log.Debug("cache read failed", "key", key, "error", err)
		return nil, 0, false
	}

	s.log.Debug("cache hit", "key", key, "age", freshness.Format(age))
	return payload, age, true
}

// Set writes payload under key, replacing any existing entry and resetting
// its age. The payload is written to a temporary file in the same directory
// and renamed into place, so readers never observe a partial document.
func (s *Store) Set(key Key, payload []byte) error {
	if !s.Enabled() {
		return nil
	}
	if !key.IsValid() {
		return ErrInvalidKey
	}

	path := s.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	s.log.Debug("cache write", "key", key, "bytes", len(payload))
	return nil
}

// Delete removes a single entry. A missing entry is not an error.
func (s *Store) Delete(key Key) error {
	if s.dir == "" {
		return nil
	}
	if !key.IsValid() {
		return ErrInvalidKey
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// ClearProfile removes every entry in the profile's namespace.
func (s *Store) ClearProfile(profile string) error {
	if s.dir == "" {
		return nil
	}
	if profile == "" {
		return ErrInvalidKey
	}
	if err := os.RemoveAll(s.profileDir(profile)); err != nil {
		return fmt.Errorf("failed to clear cache for profile %s: %w", profile, err)
	}
	s.log.Debug("cleared cache namespace", "profile", profile)
	return nil
}

// Clear removes every profile namespace under the store directory.
// Files directly under the directory are left alone.
func (s *Store) Clear() error {
	if s.dir == "" {
		return nil
	}
	children, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.dir, child.Name())); err != nil {
			return fmt.Errorf("failed to clear cache directory %s: %w", child.Name(), err)
		}
	}
	s.log.Debug("cleared cache", "dir", s.dir)
	return nil
}

// Entries lists every entry on disk, sorted by profile then name.
// Expired entries are included and flagged; nothing is deleted.
func (s *Store) Entries() ([]EntryInfo, error) {
	if s.dir == "" {
		return nil, nil
	}
	profiles, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	now := time.Now()
	var entries []EntryInfo
	for _, profile := range profiles {
		if !profile.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.dir, profile.Name()))
		if err != nil {
			s.log.Debug("failed to read cache namespace", "profile", profile.Name(), "error", err)
			continue
		}
		for _, file := range files {
			name := file.Name()
			if file.IsDir() || filepath.Ext(name) != entryExtension || strings.HasPrefix(name, ".tmp-") {
				continue
			}
			info, err := file.Info()
			if err != nil {
				continue
			}
			age := now.Sub(info.ModTime())
			if age < 0 {
				age = 0
			}
			entries = append(entries, EntryInfo{
				Age:     age,
				Expired: s.ttl > 0 && age > s.ttl,
				Name:    strings.TrimSuffix(name, entryExtension),
				Profile: profile.Name(),
				Size:    info.Size(),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Profile != entries[j].Profile {
			return entries[i].Profile < entries[j].Profile
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// AgeString formats an entry age in whole seconds, e.g. "2m ago".
func AgeString(ageSeconds int64) string {
	return freshness.FormatSeconds(ageSeconds)
}

func (s *Store) profileDir(profile string) string {
	return filepath.Join(s.dir, sanitizeSegment(profile))
}

func (s *Store) path(key Key) string {
	return filepath.Join(s.profileDir(key.Profile), key.fileName())
}
