package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// MemoryStore is an in-process Store used in tests and as the fallback when
// no Redis server is reachable at startup.  Expiry is enforced lazily on
// read; single-node only.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Create(_ context.Context, id string, snap Snapshot, ttl time.Duration) error {
	if id == "" || snap.Username == "" {
		return fmt.Errorf("session: missing id or username")
	}
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{snap: snap, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, id)
		return nil, nil
	}
	snap := e.snap
	return &snap, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
