package aggregate

import "sync"

// KeyLocks provides per-key mutual exclusion. Two aggregation runs for
// the same call_id (or rollup key) must be serialized so that
// overlapping recomputes cannot interleave their read/upsert pairs;
// runs for different keys stay independent.
type KeyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLocks creates a new keyed lock set
func NewKeyLocks() *KeyLocks {
	return &KeyLocks{locks: make(map[string]*keyLock)}
}

// Lock acquires the lock for key and returns its unlock function.
// Entries are reference-counted and removed when unused, so the set
// does not grow with the total number of calls ever seen.
func (k *KeyLocks) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
