// Package credentials implements storage for the client's bearer credential.
// The credential is a single opaque token: set on login, cleared on logout or
// authorization failure, and persisted locally so a restarted client can pick
// up its previous session.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store holds the current bearer credential.
//
// The request pipeline reads the store on every send, so a Set or Clear between
// two requests is reflected in each of them. The session manager is the only
// writer; everything else treats the store as read-only.
type Store interface {
	// Get returns the current credential and whether one is present.
	Get() (string, bool)

	// Set replaces the current credential and persists it.
	Set(token string) error

	// Clear removes the credential from memory and persistent storage.
	// Clearing an empty store is a no-op.
	Clear() error
}

// ══════════════════════════════════════════════════════════════════════════════
// FILE STORE
// ══════════════════════════════════════════════════════════════════════════════

// FileStore persists the credential in a single file under the user's config
// directory. Reads are served from memory; the file is only touched on Set and
// Clear, which keeps Get side-effect free.
type FileStore struct {
	path string

	mu    sync.RWMutex
	token string
}

// NewFileStore creates a store backed by the given file path. An existing
// token file is loaded immediately so a persisted session survives restarts.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// DefaultTokenPath returns the conventional location of the token file.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "edubase", "token"), nil
}

// Get returns the current credential, if any.
func (s *FileStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set replaces the credential and writes it to disk. The token file is created
// with 0600 permissions since it grants full account access.
func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}

	s.token = token
	return nil
}

// Clear deletes the token file and then removes the credential from memory.
// The file goes first: if the remove fails the credential stays live in
// memory, instead of silently coming back from the leftover file on the next
// start.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	s.token = ""
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MEMORY STORE
// ══════════════════════════════════════════════════════════════════════════════

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current credential, if any.
func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set replaces the credential.
func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear removes the credential.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
