package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/crossplay/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockSessionStore is a mock of store.SessionStore interface for use with testify/mock
type TestifyMockSessionStore struct {
	mock.Mock
}

var _ store.SessionStore = (*TestifyMockSessionStore)(nil)

// Save is a mock implementation of store.SessionStore.Save
func (m *TestifyMockSessionStore) Save(ctx context.Context, id string, data []byte, lastActivity time.Time) error {
	args := m.Called(ctx, id, data, lastActivity)
	return args.Error(0)
}

// Load is a mock implementation of store.SessionStore.Load
func (m *TestifyMockSessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete is a mock implementation of store.SessionStore.Delete
func (m *TestifyMockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DeleteMany is a mock implementation of store.SessionStore.DeleteMany
func (m *TestifyMockSessionStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

// ListIdle is a mock implementation of store.SessionStore.ListIdle
func (m *TestifyMockSessionStore) ListIdle(ctx context.Context, olderThan time.Time) ([]string, error) {
	args := m.Called(ctx, olderThan)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListIDs is a mock implementation of store.SessionStore.ListIDs
func (m *TestifyMockSessionStore) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}
