package offline

import (
	"context"
	"errors"
	"sync"
)

// ErrCacheMiss is returned by Match when no entry exists for a key.
var ErrCacheMiss = errors.New("offline: cache miss")

// Store is one named cache partition mapping request keys to responses.
type Store interface {
	Match(ctx context.Context, key string) (*Response, error)
	Put(ctx context.Context, key string, resp *Response) error
	Keys(ctx context.Context) ([]string, error)
}

// Storage is the set of named stores.
type Storage interface {
	// Open returns the named store, creating it if needed.
	Open(ctx context.Context, name string) (Store, error)
	// Names lists the stores in creation order.
	Names(ctx context.Context) ([]string, error)
	// Delete removes a store and its entries, reporting whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
	// Match searches every store in creation order.
	Match(ctx context.Context, key string) (*Response, error)
}

// MemoryStorage keeps stores in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	order  []string
	stores map[string]*memoryStore
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{stores: make(map[string]*memoryStore)}
}

func (s *MemoryStorage) Open(ctx context.Context, name string) (Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[name]; ok {
		return st, nil
	}
	st := &memoryStore{entries: make(map[string]*Response)}
	s.stores[name] = st
	s.order = append(s.order, name)
	return st, nil
}

func (s *MemoryStorage) Names(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stores[name]; !ok {
		return false, nil
	}
	delete(s.stores, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryStorage) Match(ctx context.Context, key string) (*Response, error) {
	s.mu.RLock()
	stores := make([]*memoryStore, 0, len(s.order))
	for _, n := range s.order {
		stores = append(stores, s.stores[n])
	}
	s.mu.RUnlock()

	for _, st := range stores {
		if resp, err := st.Match(ctx, key); err == nil {
			return resp, nil
		}
	}
	return nil, ErrCacheMiss
}

type memoryStore struct {
	mu      sync.RWMutex
	keys    []string
	entries map[string]*Response
}

func (m *memoryStore) Match(ctx context.Context, key string) (*Response, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return resp.Clone(), nil
}

func (m *memoryStore) Put(ctx context.Context, key string, resp *Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = resp.Clone()
	return nil
}

func (m *memoryStore) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.keys...), nil
}
