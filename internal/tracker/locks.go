package tracker

import "sync"

type lockKey struct {
	habitID string
	userID  string
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per (habit, user). Entries are dropped once no
// goroutine holds or waits on them, so the map only grows with live contention.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[lockKey]*lockEntry
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[lockKey]*lockEntry)}
}

// Lock blocks until the key is free and returns the matching unlock func
func (k *keyedMutex) Lock(key lockKey) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
