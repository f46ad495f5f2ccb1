package cart

import (
	"context"
	"sync"

	"storefront/internal/model"
)

// memoryStorage keeps carts in process memory.
type memoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]model.CartLineItem
}

// NewMemoryStorage creates an in-process cart storage.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		carts: make(map[string][]model.CartLineItem),
	}
}

func (m *memoryStorage) Load(_ context.Context, userID string) ([]model.CartLineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.carts[userID]
	out := make([]model.CartLineItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *memoryStorage) Save(_ context.Context, userID string, items []model.CartLineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]model.CartLineItem, len(items))
	copy(stored, items)
	m.carts[userID] = stored
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, userID)
	return nil
}
