package clientstate

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests. It honors the same contract
// as the durable stores but forgets everything when the process exits.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (s *MemoryStore) Load(ctx context.Context, key string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	return state, ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[key] = state
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, key)
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context, fromKey, toKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[fromKey]
	if !ok {
		return nil
	}
	s.states[toKey] = state
	delete(s.states, fromKey)
	return nil
}
