package session

import (
	"context"
	"sync"
)

// Manager hands out one Store per browser session ID and caches live
// stores in-process, so all requests from one browser share a single
// writer. Separate tabs share the persisted blob; last writer wins.
type Manager struct {
	persist Persister

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a manager over the given persister.
func NewManager(persist Persister) *Manager {
	return &Manager{persist: persist, stores: make(map[string]*Store)}
}

// Get returns the store for sid, creating and hydrating it on first use.
func (m *Manager) Get(ctx context.Context, sid string) (*Store, error) {
	m.mu.Lock()
	if st, ok := m.stores[sid]; ok {
		m.mu.Unlock()
		return st, nil
	}
	m.mu.Unlock()

	st := NewStore(sid, m.persist)
	if err := st.Hydrate(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have hydrated the same sid concurrently.
	if existing, ok := m.stores[sid]; ok {
		return existing, nil
	}
	m.stores[sid] = st
	return st, nil
}

// Drop evicts the in-process store for sid. Persisted state is untouched.
func (m *Manager) Drop(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sid)
}
