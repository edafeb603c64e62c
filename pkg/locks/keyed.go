package locks

import (
	"sort"
	"sync"
)

// KeyedLocker provides per-key mutual exclusion. Operations that touch a set
// of product rows acquire their locks in sorted key order, so two operations
// over overlapping sets can never deadlock, and operations over disjoint
// sets proceed in parallel.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLocker creates a new KeyedLocker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{
		locks: make(map[string]*lockEntry),
	}
}

// Acquire locks every key (deduplicated, in sorted order) and returns a
// release function. The release function must be called exactly once.
func (l *KeyedLocker) Acquire(keys ...string) func() {
	ordered := dedupeSorted(keys)

	entries := make([]*lockEntry, 0, len(ordered))
	for _, key := range ordered {
		entries = append(entries, l.retain(key))
	}

	for _, e := range entries {
		e.mu.Lock()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release in reverse acquisition order
			for i := len(entries) - 1; i >= 0; i-- {
				entries[i].mu.Unlock()
			}
			for _, key := range ordered {
				l.release(key)
			}
		})
	}
}

func (l *KeyedLocker) retain(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		e = &lockEntry{}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *KeyedLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

func dedupeSorted(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
