package auth

import (
	"errors"
	"sync"
	"time"
)

var errMemStoreMiss = errors.New("key not found")

type memEntry struct {
	value   string
	expires time.Time
}

// MemoryStore is an in-process TokenStore used when Redis is disabled
// and in tests. Entries expire lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

// NewMemoryStore creates an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry)}
}

// Get retrieves a live value
func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return "", errMemStoreMiss
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		delete(m.entries, key)
		return "", errMemStoreMiss
	}
	return entry.value, nil
}

// Set stores a value with a TTL; zero TTL means no expiry
func (m *MemoryStore) Set(key string, value interface{}, ttl time.Duration) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("memory store only holds strings")
	}
	entry := memEntry{value: s}
	if ttl > 0 {
		entry.expires = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes a key; deleting a missing key is a no-op
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
