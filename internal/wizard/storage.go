package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage is the durable backend the Store persists wizard state to.
// Read returns (nil, nil) when no state exists for the account.
type Storage interface {
	Read(accountID string) ([]byte, error)
	Write(accountID string, data []byte) error
	Delete(accountID string) error
}

// FileStorage keeps one JSON document per account under a state directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the state directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(accountID string) string {
	// Account IDs are UUIDs in practice; strip separators anyway so a
	// hostile ID cannot escape the state directory.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, accountID)
	return filepath.Join(f.dir, safe+".json")
}

func (f *FileStorage) Read(accountID string) ([]byte, error) {
	data, err := os.ReadFile(f.path(accountID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wizard state: %w", err)
	}
	return data, nil
}

func (f *FileStorage) Write(accountID string, data []byte) error {
	tmp := f.path(accountID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write wizard state: %w", err)
	}
	if err := os.Rename(tmp, f.path(accountID)); err != nil {
		return fmt.Errorf("failed to replace wizard state: %w", err)
	}
	return nil
}

func (f *FileStorage) Delete(accountID string) error {
	err := os.Remove(f.path(accountID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete wizard state: %w", err)
	}
	return nil
}

// MemoryStorage is an in-process backend used by tests and mock mode.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Read(accountID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[accountID]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryStorage) Write(accountID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.data[accountID] = buf
	return nil
}

func (m *MemoryStorage) Delete(accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, accountID)
	return nil
}
