package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Keys of the persisted client state.
const (
	KeyArticles       = "articles"
	KeyGlobalArticles = "globalArticles"
	KeyShelfRacks     = "shelfRacks"
	KeyActivityLog    = "activityLog"
	KeyNotifications  = "notifications"
)

var ErrNoState = errors.New("no persisted state")

// Persistence stores JSON documents by key. Load returns ErrNoState when the key
// is absent or its content was unreadable.
type Persistence interface {
	Load(key string, v interface{}) error
	Save(key string, v interface{}) error
	Remove(key string) error
}

// FileStore keeps one JSON file per key under dir.
type FileStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (f *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("invalid state key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Load removes a corrupted file and reports ErrNoState for it.
func (f *FileStore) Load(key string, v interface{}) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoState
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		f.logger.Warn("discarding corrupted state", "key", key, "error", err)
		_ = os.Remove(p)
		return ErrNoState
	}
	return nil
}

func (f *FileStore) Save(key string, v interface{}) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return os.Rename(tmp.Name(), p)
}

func (f *FileStore) Remove(key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore is the in-process Persistence used by tests and one-shot commands.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(key string, v interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return ErrNoState
	}
	if err := json.Unmarshal(raw, v); err != nil {
		delete(m.data, key)
		return ErrNoState
	}
	return nil
}

func (m *MemoryStore) Save(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Put stores raw bytes under key, bypassing encoding.
func (m *MemoryStore) Put(key string, raw []byte) {
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
}

func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}
