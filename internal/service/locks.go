package service

import (
	"sort"
	"sync"
)

type lockEntry struct {
	mu   sync.RWMutex
	refs int
}

// lockTable hands out one RWMutex per session ID. An entry lives while any
// caller holds or waits on it, so every caller for an ID shares one mutex.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*lockEntry)}
}

func (t *lockTable) acquire(id string) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.locks[id]
	if !ok {
		e = &lockEntry{}
		t.locks[id] = e
	}
	e.refs++
	return e
}

func (t *lockTable) release(id string, e *lockEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(t.locks, id)
	}
}

// lock write-locks id and returns the matching unlock function.
func (t *lockTable) lock(id string) func() {
	e := t.acquire(id)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		t.release(id, e)
	}
}

// rlock read-locks id and returns the matching unlock function.
func (t *lockTable) rlock(id string) func() {
	e := t.acquire(id)
	e.mu.RLock()
	return func() {
		e.mu.RUnlock()
		t.release(id, e)
	}
}

func (t *lockTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}

// lockAll write-locks every id in sorted order and returns the matching
// unlock function.
func (t *lockTable) lockAll(ids []string) func() {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	unlocks := make([]func(), 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		unlocks = append(unlocks, t.lock(id))
	}

	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}
