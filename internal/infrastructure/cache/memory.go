package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory Store with expiration. Used in
// tests and as the degraded-mode backing when Redis is disabled.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
}

type memoryItem struct {
	item       Item
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// Set stores an item with expiration
func (ms *MemoryStore) Set(ctx context.Context, key string, item *Item, maxAge time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = &memoryItem{
		item:       *item,
		expireTime: time.Now().Add(maxAge),
	}
	return nil
}

// Get retrieves an item by key (nil if not found or expired)
func (ms *MemoryStore) Get(ctx context.Context, key string) (*Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	entry, exists := ms.items[key]
	if !exists {
		return nil, nil
	}

	// Check if expired
	if time.Now().After(entry.expireTime) {
		return nil, nil
	}

	item := entry.item
	return &item, nil
}

// Delete removes a key
func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
	return nil
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.mu.Lock()
		now := time.Now()
		for key, entry := range ms.items {
			if now.After(entry.expireTime) {
				delete(ms.items, key)
			}
		}
		ms.mu.Unlock()
	}
}
