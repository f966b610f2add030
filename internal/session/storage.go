package session

import (
	"context"
	"sync"
	"time"
)

// Storage persists named string records per session scope.  Scopes are
// opaque; implementations key records by the hash of the scope.
type Storage interface {
	// Get returns the record and whether it exists.
	Get(ctx context.Context, scope, name string) (string, bool, error)
	// Set writes the record; a positive ttl expires it.
	Set(ctx context.Context, scope, name, value string, ttl time.Duration) error
	// Delete removes the named records; missing records are not an error.
	Delete(ctx context.Context, scope string, names ...string) error
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}

// MemoryStorage keeps records in process memory.  It is the default
// backend for a single-instance deployment and the test double for the
// redis and mysql backends.
type MemoryStorage struct {
	mu      sync.Mutex
	records map[string]memRecord
	now     func() time.Time
}

type memRecord struct {
	value   string
	expires time.Time
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]memRecord), now: time.Now}
}

func memKey(scope, name string) string { return scopeKey(scope) + ":" + name }

func (m *MemoryStorage) Get(_ context.Context, scope, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(scope, name)
	rec, ok := m.records[k]
	if !ok {
		return "", false, nil
	}
	if !rec.expires.IsZero() && !m.now().Before(rec.expires) {
		delete(m.records, k)
		return "", false, nil
	}
	return rec.value, true, nil
}

func (m *MemoryStorage) Set(_ context.Context, scope, name, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := memRecord{value: value}
	if ttl > 0 {
		rec.expires = m.now().Add(ttl)
	}
	m.records[memKey(scope, name)] = rec
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, scope string, names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range names {
		delete(m.records, memKey(scope, n))
	}
	return nil
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }

// Purge drops expired records.  Get already hides them; Purge frees the
// memory of sessions nobody comes back to.
func (m *MemoryStorage) Purge(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for k, rec := range m.records {
		if !rec.expires.IsZero() && !now.Before(rec.expires) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of live and expired records held.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
