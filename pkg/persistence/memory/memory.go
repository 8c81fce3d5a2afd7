// Package memory provides an in-memory persistence adapter. It backs
// ephemeral sessions and tests that need the full adapter contract without
// touching the file system.
package memory

import (
	"context"
	"sync"

	"github.com/tabflow/tabflow/pkg/persistence"
)

// Persistence implements persistence.Persistence over a held document.
type Persistence struct {
	mu  sync.Mutex
	raw []byte
}

// NewPersistence creates an empty in-memory adapter.
func NewPersistence() *Persistence {
	return &Persistence{}
}

// Load decodes the held document, or returns the empty dataset when nothing
// has been saved yet.
func (mp *Persistence) Load(_ context.Context) (*persistence.Dataset, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.raw == nil {
		return persistence.EmptyDataset(), nil
	}

	return persistence.DecodeDocument(mp.raw), nil
}

// SaveAll replaces the held document.
func (mp *Persistence) SaveAll(_ context.Context, dataset *persistence.Dataset) error {
	data, err := persistence.EncodeDocument(dataset)
	if err != nil {
		return persistence.NewStoreError("SaveAll", persistence.StorageKey, err)
	}

	mp.mu.Lock()
	mp.raw = data
	mp.mu.Unlock()

	return nil
}

// HealthCheck always succeeds for the in-memory adapter.
func (mp *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

// Close performs any necessary cleanup; there is nothing to clean up.
func (mp *Persistence) Close(_ context.Context) error {
	return nil
}
