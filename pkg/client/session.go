package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session is the client-side login state. Token, Role and User are always
// saved and cleared together.
type Session struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	User  *User  `json:"user"`
}

// SessionStore persists a Session. Load returns nil, nil when none is stored.
type SessionStore interface {
	Save(s Session) error
	Load() (*Session, error)
	Clear() error
}

// MemoryStore keeps the session for the lifetime of the process.
type MemoryStore struct {
	mu sync.RWMutex
	s  *Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = &s
	return nil
}

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

// FileStore keeps the session in a JSON file readable only by the owner, so
// it survives restarts of a CLI.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// Save writes to a temporary file and renames it over the old one so a
// crash never leaves a partial session behind.
func (f *FileStore) Save(s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

func (f *FileStore) Load() (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
