package draft

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps one session's draft in process memory. Values round
// trip through JSON so reads always see a detached copy, a caller mutating
// what it got back never changes what is stored.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m: make(map[string]json.RawMessage),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string, out any) bool {
	s.mu.RLock()
	raw, ok := s.m[key]
	s.mu.RUnlock()

	if !ok {
		return false
	}

	err := json.Unmarshal(raw, out)

	if err != nil {
		// a corrupt value is treated the same as a missing one
		return false
	}

	return true
}

func (s *MemoryStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)

	if err != nil {
		return err
	}

	s.mu.Lock()
	s.m[key] = raw
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()

	for _, key := range WellKnownKeys() {
		delete(s.m, key)
	}

	s.mu.Unlock()

	return nil
}
