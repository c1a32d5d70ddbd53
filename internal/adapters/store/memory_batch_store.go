package store

import (
	"context"
	"sync"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/services"
)

// MemoryBatchStore keeps flattened rows in memory. Used by tests and dry runs.
// It stores rows rather than batches so every save and load goes through the
// same flatten and unflatten path as the real stores.
type MemoryBatchStore struct {
	mu    sync.Mutex
	rows  []services.Row
	saves int

	LoadErr error
	SaveErr error
}

func NewMemoryBatchStore() *MemoryBatchStore {
	return &MemoryBatchStore{}
}

func (m *MemoryBatchStore) Load(_ context.Context) (map[string]*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return services.Unflatten(m.rows)
}

func (m *MemoryBatchStore) Save(_ context.Context, batches map[string]*domain.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.rows = services.Flatten(batches)
	m.saves++
	return nil
}

// SetRows replaces the stored rows, e.g. to seed legacy or corrupt data.
func (m *MemoryBatchStore) SetRows(rows []services.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
}

// Rows returns a copy of the stored rows.
func (m *MemoryBatchStore) Rows() []services.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]services.Row, len(m.rows))
	for i, r := range m.rows {
		c := make(services.Row, len(r))
		for k, v := range r {
			c[k] = v
		}
		out[i] = c
	}
	return out
}

// Saves reports how many saves succeeded.
func (m *MemoryBatchStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// SetErrors sets the injected load and save failures.
func (m *MemoryBatchStore) SetErrors(load, save error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadErr, m.SaveErr = load, save
}
