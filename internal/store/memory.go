package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Store for tests and throwaway servers.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]Collection
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]Collection)}
}

func copyRecords(records []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = append(json.RawMessage{}, r...)
	}
	return out
}

// Get returns a copy of a collection.
func (m *Memory) Get(ctx context.Context, key string) (Collection, error) {
	if err := ctx.Err(); err != nil {
		return Collection{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[key]
	if !ok {
		return Collection{Key: key, Records: []json.RawMessage{}}, nil
	}
	return Collection{Key: key, Records: copyRecords(c.Records), Version: c.Version}, nil
}

// Put replaces a collection if expectedVersion matches.
func (m *Memory) Put(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.collections[key].Version
	if current != expectedVersion {
		return 0, &VersionConflict{Key: key, Expected: expectedVersion, Actual: current}
	}
	next := current + 1
	m.collections[key] = Collection{Key: key, Records: copyRecords(records), Version: next}
	return next, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
