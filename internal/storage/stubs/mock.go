package stubs

import (
	"context"
	"sync"

	"catalog/internal/storage"
)

// MockDB is an in-memory implementation of the Storage interface, used for
// tests and for USE_MOCK_DB style runs where nothing needs to survive a restart
type MockDB struct {
	mu       sync.RWMutex
	values   map[string]string
	writeErr error
	writes   int
}

var _ storage.Storage = (*MockDB)(nil)

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		values: make(map[string]string),
	}
}

// Initialize does nothing for mock DB
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// Get returns the value stored under key
func (m *MockDB) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

// PutMany stores all entries under a single lock
func (m *MockDB) PutMany(ctx context.Context, entries []storage.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	for _, e := range entries {
		m.values[e.Key] = e.Value
	}
	m.writes++
	return nil
}

// Set writes a single raw value, bypassing write failures. Tests use it to
// plant corrupt payloads.
func (m *MockDB) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// FailWrites makes every following PutMany return err. Pass nil to recover.
func (m *MockDB) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes returns the number of successful PutMany calls
func (m *MockDB) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}
