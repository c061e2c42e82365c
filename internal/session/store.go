// Package session persists the signed-in user between runs.
//
// The session is a small JSON file (0600) under the user's config
// directory; writes go through a temp file and rename so a crash never
// leaves a half-written session behind.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"moneymate/internal/core"
)

const fileName = "session.json"

type sessionFile struct {
	User    core.User `json:"user"`
	SavedAt time.Time `json:"savedAt"`
}

// Store reads and writes the current session. It is safe for
// concurrent use; the file is the source of truth only at startup,
// after Load the in-memory copy is authoritative.
type Store struct {
	mu   sync.RWMutex
	path string
	user *core.User
}

// DefaultPath returns the session file location under the user config
// directory, creating the parent directory if needed.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "moneymate")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// NewStore opens a store backed by path and loads any existing
// session. A missing or unreadable file yields an empty store, never
// an error: a corrupt session means the user signs in again.
func NewStore(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving session path: %w", err)
		}
	}
	s := &Store{path: path}
	s.load()
	return s, nil
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return
	}
	if sf.User.ID == "" && sf.User.Username == "" {
		return
	}
	s.user = &sf.User
}

// Current returns the signed-in user, or nil when nobody is signed in.
func (s *Store) Current() *core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Save replaces the current session and persists it.
func (s *Store) Save(user core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(sessionFile{User: user, SavedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	s.user = &user
	return nil
}

// Update applies fn to the current session in place. It is a no-op
// when nobody is signed in.
func (s *Store) Update(fn func(*core.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	fn(&u)
	if err := s.write(sessionFile{User: u, SavedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	s.user = &u
	return nil
}

// Clear signs the user out and removes the session file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (s *Store) write(sf sessionFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
