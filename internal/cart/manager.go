package cart

import (
	"context"
	"sync"
)

// Manager hands out the one Store per user, rehydrating it from durable
// storage the first time the user shows up in this process.
type Manager struct {
	persister Persister

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(persister Persister) *Manager {
	return &Manager{
		persister: persister,
		stores:    make(map[string]*Store),
	}
}

// ForUser returns the user's store, creating and loading it on first use.
func (m *Manager) ForUser(ctx context.Context, userID string) *Store {
	m.mu.Lock()
	store, ok := m.stores[userID]
	if !ok {
		store = NewStore(userID, m.persister)
		m.stores[userID] = store
	}
	m.mu.Unlock()

	if !ok {
		store.Load(ctx)
	}
	return store
}
