// Package persistence provides the storage abstraction for the editor's full
// data set: table data plus the aggregate database schema, persisted as one
// document under a fixed key.
package persistence

import (
	"context"

	"github.com/tabflow/tabflow/pkg/models"
)

// StorageKey is the fixed key (file name, redis key, row key) under which the
// whole document is stored.
const StorageKey = "table-management-data"

// Dataset is the full persisted data set.
type Dataset struct {
	TableData []*models.TableData    `json:"tableData"`
	Schema    *models.DatabaseSchema `json:"schema"`
}

// EmptyDataset returns a fresh dataset with no tables and an empty schema.
func EmptyDataset() *Dataset {
	return &Dataset{
		TableData: make([]*models.TableData, 0),
		Schema: &models.DatabaseSchema{
			Tables:        make([]*models.TableSchema, 0),
			Relationships: make([]*models.Relationship, 0),
		},
	}
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}

	clone := &Dataset{
		TableData: make([]*models.TableData, 0, len(d.TableData)),
		Schema:    d.Schema.Clone(),
	}

	for _, table := range d.TableData {
		clone.TableData = append(clone.TableData, table.Clone())
	}

	return clone
}

// Persistence is the storage adapter contract. Load returns the stored
// dataset, tolerating historical document shapes; SaveAll replaces the stored
// document in full (last-writer-wins, single-writer assumption). Any
// conforming adapter can back the store; swapping adapters must require no
// store changes.
type Persistence interface {
	Load(ctx context.Context) (*Dataset, error)
	SaveAll(ctx context.Context, dataset *Dataset) error
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
