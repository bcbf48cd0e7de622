package kvstore

import (
	"context"
	"sync"

	"miniminds/internal/sentinel"
)

// InMemory keeps values in process memory. Contents do not survive restarts.
type InMemory struct {
	mu     sync.RWMutex
	spaces map[string]map[string][]byte
}

// NewInMemory constructs an empty in-memory backend.
func NewInMemory() *InMemory {
	return &InMemory{spaces: make(map[string]map[string][]byte)}
}

func (m *InMemory) Get(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.spaces[namespace][key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *InMemory) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	space, ok := m.spaces[namespace]
	if !ok {
		space = make(map[string][]byte)
		m.spaces[namespace] = space
	}
	v := make([]byte, len(value))
	copy(v, value)
	space[key] = v
	return nil
}

func (m *InMemory) Remove(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.spaces[namespace], key)
	return nil
}
