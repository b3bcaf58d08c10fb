package cache

import (
	"context"
	"time"
)

// Item is one stored cache value. StoredAt is kept alongside the bytes
// so the read-through layer can compute age and distinguish fresh from
// stale without trusting store-level expiry.
type Item struct {
	Value    []byte    `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Store is the physical backing of the read cache. Entries are kept
// past their freshness TTL (up to maxAge) so a failed recompute can
// still serve the previous value explicitly marked stale.
type Store interface {
	// Get returns the stored item, or nil when absent.
	Get(ctx context.Context, key string) (*Item, error)

	// Set stores an item, evicting it after maxAge.
	Set(ctx context.Context, key string, item *Item, maxAge time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error
}
