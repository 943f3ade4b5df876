package session

import (
	"context"
	"sync"
	"time"

	"chatpress/internal/domain/conversation"
)

type memoryEntry struct {
	state     conversation.State
	tags      []string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Intended for tests and local
// development; state does not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an in-memory session store with the given retention
// window.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

var _ conversation.SessionStore = (*MemoryStore)(nil)

func (m *MemoryStore) Get(_ context.Context, userID string) (*conversation.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[userID]
	if !ok {
		return nil, nil
	}
	if m.now().After(entry.expiresAt) {
		// Lazy expiry: a stale record reads as absent.
		delete(m.entries, userID)
		return nil, nil
	}
	st := entry.state
	st.Data.Tags = append([]string(nil), entry.tags...)
	if len(st.Data.Tags) == 0 {
		st.Data.Tags = nil
	}
	return &st, nil
}

func (m *MemoryStore) Set(_ context.Context, userID string, state *conversation.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[userID]; ok && !m.now().After(entry.expiresAt) {
		if entry.state.Version != state.Version {
			return conversation.ErrVersionConflict
		}
	}
	m.put(userID, state, state.Version+1)
	return nil
}

func (m *MemoryStore) ResetToIdle(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var version int64 = 1
	if entry, ok := m.entries[userID]; ok {
		version = entry.state.Version + 1
	}
	m.put(userID, conversation.NewState(m.now()), version)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}

func (m *MemoryStore) Stats(_ context.Context) (conversation.StoreStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var active int64
	for _, entry := range m.entries {
		if !now.After(entry.expiresAt) {
			active++
		}
	}
	return conversation.StoreStats{ActiveSessions: active}, nil
}

// put stores a copy of state under the bumped version. Caller holds the lock.
func (m *MemoryStore) put(userID string, state *conversation.State, version int64) {
	stored := *state
	stored.Version = version
	m.entries[userID] = &memoryEntry{
		state:     stored,
		tags:      append([]string(nil), state.Data.Tags...),
		expiresAt: m.now().Add(m.ttl),
	}
}
