package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Saved is what the store keeps on disk.
type Saved struct {
	Token   string `json:"token"`
	Email   string `json:"email,omitempty"`
	SavedAt string `json:"savedAt,omitempty"`
}

// Store persists the session to a JSON file. Nothing outside this package
// reads or writes the file.
type Store struct {
	Path  string
	Saved Saved
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the file. A missing file is an empty session, not an error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		s.Saved = Saved{}
		return nil
	}
	if err != nil {
		return err
	}

	var saved Saved
	if err := json.Unmarshal(data, &saved); err != nil {
		return err
	}
	s.Saved = saved
	return nil
}

func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Saved, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0600)
}

// Clear removes the file.
func (s *Store) Clear() error {
	s.Saved = Saved{}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
