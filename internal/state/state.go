package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	clog "github.com/charmbracelet/log"
)

// SelectionState is the last profile, repository and pipeline the user chose.
// Names are weak references: the resources may no longer exist.
type SelectionState struct {
	Profile    string `json:"profile"`
	Repository string `json:"repository"`
	Pipeline   string `json:"pipeline"`
}

// IsEmpty reports whether nothing has been selected.
func (s SelectionState) IsEmpty() bool {
	return s == SelectionState{}
}

// WithProfile returns the state for a newly selected profile.
// Repository and pipeline names belong to the previous profile's account and are dropped.
func (s SelectionState) WithProfile(profile string) SelectionState {
	if profile == s.Profile {
		return s
	}
	return SelectionState{Profile: profile}
}

// Store persists a SelectionState as a small JSON file.
type Store struct {
	log  *clog.Logger
	path string
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{
		log:  clog.Default().WithPrefix("state"),
		path: path,
	}
}

// Path returns the location of the state file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted state. A missing, unreadable or malformed file
// yields an empty state.
func (s *Store) Load() SelectionState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("failed to read state file", "path", s.path, "error", err)
		}
		return SelectionState{}
	}

	var st SelectionState
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Warn("ignoring malformed state file", "path", s.path, "error", err)
		return SelectionState{}
	}

	s.log.Debug("state loaded", "path", s.path, "profile", st.Profile, "repository", st.Repository, "pipeline", st.Pipeline)
	return st
}

// Save overwrites the state file with st. The file is replaced atomically.
func (s *Store) Save(st SelectionState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.log.Debug("state saved", "path", s.path)
	return nil
}
