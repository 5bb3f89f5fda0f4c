package tracking

import (
	"context"
	"sync"

	"llmdeploy/internal/models"
)

// MemoryStore keeps both tables in process memory with no eviction.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[models.TrackingKey]models.TrackingEntry
	lastNames map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   map[models.TrackingKey]models.TrackingEntry{},
		lastNames: map[string]string{},
	}
}

func (m *MemoryStore) Get(_ context.Context, key models.TrackingKey) (models.TrackingEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	return entry, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key models.TrackingKey, entry models.TrackingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

func (m *MemoryStore) Has(_ context.Context, key models.TrackingKey) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok, nil
}

func (m *MemoryStore) LastTaskName(_ context.Context, requesterID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.lastNames[requesterID]
	return name, ok, nil
}

func (m *MemoryStore) SetLastTaskName(_ context.Context, requesterID, taskName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastNames[requesterID] = taskName
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
