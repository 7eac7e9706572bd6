package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/crossplay/internal/store"
)

// MockSessionStore implements store.SessionStore in memory for testing.
// It is safe for concurrent use.
type MockSessionStore struct {
	// Function fields for customizable behavior
	SaveFn       func(ctx context.Context, id string, data []byte, lastActivity time.Time) error
	LoadFn       func(ctx context.Context, id string) ([]byte, error)
	DeleteFn     func(ctx context.Context, id string) error
	DeleteManyFn func(ctx context.Context, ids []string) (int, error)
	ListIdleFn   func(ctx context.Context, olderThan time.Time) ([]string, error)
	ListIDsFn    func(ctx context.Context) ([]string, error)

	// Errors returned by the default implementation when set
	SaveError   error
	LoadError   error
	DeleteError error

	mu           sync.Mutex
	snapshots    map[string]storedSession
	saveCalls    int
	loadCalls    int
	deleteCalls  int
	lastSavedID  string
	lastSavedDoc []byte
}

type storedSession struct {
	data         []byte
	lastActivity time.Time
}

var _ store.SessionStore = (*MockSessionStore)(nil)

// NewMockSessionStore creates a new mock store with initialized defaults
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		snapshots: make(map[string]storedSession),
	}
}

// Save implements the SessionStore interface
func (m *MockSessionStore) Save(ctx context.Context, id string, data []byte, lastActivity time.Time) error {
	m.mu.Lock()
	m.saveCalls++
	m.mu.Unlock()

	if m.SaveFn != nil {
		return m.SaveFn(ctx, id, data, lastActivity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveError != nil {
		return m.SaveError
	}

	doc := append([]byte(nil), data...)
	m.snapshots[id] = storedSession{data: doc, lastActivity: lastActivity}
	m.lastSavedID = id
	m.lastSavedDoc = doc
	return nil
}

// Load implements the SessionStore interface
func (m *MockSessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFn != nil {
		return m.LoadFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadError != nil {
		return nil, m.LoadError
	}

	s, ok := m.snapshots[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return append([]byte(nil), s.data...), nil
}

// Delete implements the SessionStore interface
func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.deleteCalls++
	m.mu.Unlock()

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteError != nil {
		return m.DeleteError
	}

	if _, ok := m.snapshots[id]; !ok {
		return store.ErrSessionNotFound
	}
	delete(m.snapshots, id)
	return nil
}

// DeleteMany implements the SessionStore interface
func (m *MockSessionStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if m.DeleteManyFn != nil {
		return m.DeleteManyFn(ctx, ids)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteError != nil {
		return 0, m.DeleteError
	}

	removed := 0
	for _, id := range ids {
		if _, ok := m.snapshots[id]; ok {
			delete(m.snapshots, id)
			removed++
		}
	}
	return removed, nil
}

// ListIdle implements the SessionStore interface
func (m *MockSessionStore) ListIdle(ctx context.Context, olderThan time.Time) ([]string, error) {
	if m.ListIdleFn != nil {
		return m.ListIdleFn(ctx, olderThan)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, s := range m.snapshots {
		if s.lastActivity.Before(olderThan) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ListIDs implements the SessionStore interface
func (m *MockSessionStore) ListIDs(ctx context.Context) ([]string, error) {
	if m.ListIDsFn != nil {
		return m.ListIDsFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.snapshots))
	for id := range m.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Put seeds a snapshot directly, bypassing Save and its call counter.
func (m *MockSessionStore) Put(id string, data []byte, lastActivity time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[id] = storedSession{data: append([]byte(nil), data...), lastActivity: lastActivity}
}

// Has reports whether a snapshot is stored under id.
func (m *MockSessionStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.snapshots[id]
	return ok
}

// Len returns the number of stored snapshots.
func (m *MockSessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}

// SaveCalls returns how many times Save was called.
func (m *MockSessionStore) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

// LoadCalls returns how many times Load was called.
func (m *MockSessionStore) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// DeleteCalls returns how many times Delete was called.
func (m *MockSessionStore) DeleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCalls
}

// LastSaved returns the ID and document of the most recent successful Save.
func (m *MockSessionStore) LastSaved() (string, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSavedID, m.lastSavedDoc
}
