package session

import (
	"context"
	"sync"
	"time"

	"github.com/replysight/server/internal/agent/model"
)

// MemoryStore is a process-local checkpoint store with the same TTL
// semantics as the Redis store. Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	state     *model.RunState
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*model.RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, sessionID)
		return nil, ErrNotFound
	}
	return e.state, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, state *model.RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = memoryEntry{
		state:     state,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Evict(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}
