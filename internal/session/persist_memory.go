package session

import (
	"context"
	"sync"
)

// MemoryPersister keeps session blobs in a process-local map. Used by
// tests and for running without Redis.
type MemoryPersister struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{blobs: make(map[string][]byte)}
}

func (p *MemoryPersister) Save(_ context.Context, sid string, blob []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(blob))
	copy(cp, blob)
	p.blobs[sid] = cp
	return nil
}

func (p *MemoryPersister) Load(_ context.Context, sid string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	blob, ok := p.blobs[sid]
	if !ok {
		return nil, ErrNotFound
	}
	return blob, nil
}

func (p *MemoryPersister) Delete(_ context.Context, sid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.blobs, sid)
	return nil
}
