package placement

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long an abandoned diagnostic session survives before
// the store reaps it.
const DefaultTTL = 30 * time.Minute

// StateStore holds live diagnostic sessions keyed by session ID. Entries
// expire after the store's TTL so abandoned runs never leak.
type StateStore interface {
	Put(ctx context.Context, s *State) error
	Get(ctx context.Context, sessionID string) (*State, error)
	Delete(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

// MemoryStore is the default in-process StateStore with TTL expiry. A
// background janitor sweeps expired entries; Close stops it.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *MemoryStore) Put(_ context.Context, s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.SessionID] = memoryEntry{state: s, expiresAt: time.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*State, error) {
	m.mu.RLock()
	entry, ok := m.entries[sessionID]
	m.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	return entry.state, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (m *MemoryStore) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for id, entry := range m.entries {
				if now.After(entry.expiresAt) {
					delete(m.entries, id)
				}
			}
			m.mu.Unlock()
		}
	}
}
