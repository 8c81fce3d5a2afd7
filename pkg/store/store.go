// Package store implements the table/schema state store: the sole authority
// for table schemas, rows and relationships. Every write is applied to the
// in-memory state and persisted through the storage adapter; if persistence
// fails the in-memory change is rolled back and the error propagates, so
// memory and the stored document never silently diverge.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tabflow/tabflow/pkg/models"
	"github.com/tabflow/tabflow/pkg/persistence"
)

// Default grid layout for tables created without a position: successive
// tables fill a 3-column grid with fixed offsets.
const (
	gridColumns  = 3
	gridOriginX  = 100.0
	gridOriginY  = 100.0
	gridSpacingX = 300.0
	gridSpacingY = 250.0
)

// Store holds the in-memory dataset and mediates every mutation through the
// storage adapter.
type Store struct {
	mu          sync.Mutex
	persistence persistence.Persistence
	logger      *slog.Logger

	tables []*models.TableData
	schema *models.DatabaseSchema
}

// NewStore creates a store over the given adapter. Call Load before use.
func NewStore(p persistence.Persistence, logger *slog.Logger) *Store {
	empty := persistence.EmptyDataset()

	return &Store{
		persistence: p,
		logger:      logger,
		tables:      empty.TableData,
		schema:      empty.Schema,
	}
}

// Load populates the store from the adapter. A load failure resets both table
// data and schema to the empty state rather than leaving the consumer stalled.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dataset, err := s.persistence.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load stored data, starting empty", "error", err)

		dataset = persistence.EmptyDataset()
	}

	s.tables = dataset.TableData
	s.schema = dataset.Schema
}

// snapshot captures the current state for rollback. Mutators clone up front so
// a failed persist can restore the exact prior state.
func (s *Store) snapshot() ([]*models.TableData, *models.DatabaseSchema) {
	tables := make([]*models.TableData, 0, len(s.tables))
	for _, table := range s.tables {
		tables = append(tables, table.Clone())
	}

	return tables, s.schema.Clone()
}

// persist writes the full dataset through the adapter, restoring the given
// prior state when the write fails.
func (s *Store) persist(ctx context.Context, op string, prevTables []*models.TableData, prevSchema *models.DatabaseSchema) error {
	dataset := &persistence.Dataset{TableData: s.tables, Schema: s.schema}

	if err := s.persistence.SaveAll(ctx, dataset); err != nil {
		s.tables = prevTables
		s.schema = prevSchema

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) findTable(id string) *models.TableData {
	for _, table := range s.tables {
		if table.Schema.ID == id {
			return table
		}
	}

	return nil
}

// CreateTable registers a new table. An empty id gets a fresh uuid; a missing
// position gets the next slot in the default grid. The schema is appended both
// to the per-table list and to the aggregate schema's table list.
func (s *Store) CreateTable(ctx context.Context, schema *models.TableSchema) (*models.TableSchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if schema.ID == "" {
		schema.ID = uuid.New().String()
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("CreateTable: %w", err)
	}

	if schema.Position == nil {
		index := len(s.tables)
		schema.Position = &models.Position{
			X: gridOriginX + float64(index%gridColumns)*gridSpacingX,
			Y: gridOriginY + float64(index/gridColumns)*gridSpacingY,
		}
	}

	prevTables, prevSchema := s.snapshot()

	s.tables = append(s.tables, &models.TableData{
		Schema: schema.Clone(),
		Rows:   make([]*models.TableRow, 0),
	})
	s.schema.Tables = append(s.schema.Tables, schema.Clone())

	if err := s.persist(ctx, "CreateTable", prevTables, prevSchema); err != nil {
		return nil, err
	}

	return schema, nil
}

// UpdateTable merges a partial schema update into both the per-table copy and
// the aggregate entry. An unknown id is a silent no-op. Column-set changes do
// not retroactively validate existing row data.
func (s *Store) UpdateTable(ctx context.Context, id string, patch *models.TableSchemaPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.findTable(id)
	if table == nil {
		return nil
	}

	prevTables, prevSchema := s.snapshot()

	patch.Apply(table.Schema)

	if entry := s.schema.TableByID(id); entry != nil {
		patch.Apply(entry)
	}

	return s.persist(ctx, "UpdateTable", prevTables, prevSchema)
}

// DeleteTable removes the table, its aggregate entry and, atomically with it,
// every relationship mentioning the table on either endpoint. Row-level
// references held by other tables' column values are left untouched.
func (s *Store) DeleteTable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findTable(id) == nil {
		return nil
	}

	prevTables, prevSchema := s.snapshot()

	kept := make([]*models.TableData, 0, len(s.tables))
	for _, table := range s.tables {
		if table.Schema.ID != id {
			kept = append(kept, table)
		}
	}

	s.tables = kept

	keptSchemas := make([]*models.TableSchema, 0, len(s.schema.Tables))
	for _, entry := range s.schema.Tables {
		if entry.ID != id {
			keptSchemas = append(keptSchemas, entry)
		}
	}

	s.schema.Tables = keptSchemas

	keptRels := make([]*models.Relationship, 0, len(s.schema.Relationships))
	for _, rel := range s.schema.Relationships {
		if !rel.Mentions(id) {
			keptRels = append(keptRels, rel)
		}
	}

	s.schema.Relationships = keptRels

	return s.persist(ctx, "DeleteTable", prevTables, prevSchema)
}

// AddRow appends a row with a fresh unique id. The store does not validate
// required or typed columns; that is the caller's responsibility before
// invoking this operation. An unknown table is a silent no-op.
func (s *Store) AddRow(ctx context.Context, tableID string, values map[string]models.Value) (*models.TableRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.findTable(tableID)
	if table == nil {
		return nil, nil
	}

	prevTables, prevSchema := s.snapshot()

	row := &models.TableRow{ID: uuid.New().String(), Values: values}
	if row.Values == nil {
		row.Values = make(map[string]models.Value)
	}

	table.Rows = append(table.Rows, row)

	if err := s.persist(ctx, "AddRow", prevTables, prevSchema); err != nil {
		return nil, err
	}

	return row.Clone(), nil
}

// UpdateRow merges the given values into the row. A missing table or row is a
// silent no-op.
func (s *Store) UpdateRow(ctx context.Context, tableID, rowID string, values map[string]models.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.findTable(tableID)
	if table == nil {
		return nil
	}

	var row *models.TableRow

	for _, candidate := range table.Rows {
		if candidate.ID == rowID {
			row = candidate

			break
		}
	}

	if row == nil {
		return nil
	}

	prevTables, prevSchema := s.snapshot()

	for columnID, value := range values {
		row.Values[columnID] = value
	}

	return s.persist(ctx, "UpdateRow", prevTables, prevSchema)
}

// DeleteRow removes the row. A missing table or row is a silent no-op.
func (s *Store) DeleteRow(ctx context.Context, tableID, rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.findTable(tableID)
	if table == nil {
		return nil
	}

	index := -1

	for i, row := range table.Rows {
		if row.ID == rowID {
			index = i

			break
		}
	}

	if index < 0 {
		return nil
	}

	prevTables, prevSchema := s.snapshot()

	table.Rows = append(table.Rows[:index], table.Rows[index+1:]...)

	return s.persist(ctx, "DeleteRow", prevTables, prevSchema)
}

// AddRelationship appends a relationship to the aggregate list. Existence of
// the referenced tables and columns is expected to be validated upstream, at
// the gesture that produced the relationship.
func (s *Store) AddRelationship(ctx context.Context, rel *models.Relationship) (*models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}

	prevTables, prevSchema := s.snapshot()

	relCopy := *rel
	s.schema.Relationships = append(s.schema.Relationships, &relCopy)

	if err := s.persist(ctx, "AddRelationship", prevTables, prevSchema); err != nil {
		return nil, err
	}

	return rel, nil
}

// DeleteRelationship removes the relationship. An unknown id is a silent no-op.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1

	for i, rel := range s.schema.Relationships {
		if rel.ID == id {
			index = i

			break
		}
	}

	if index < 0 {
		return nil
	}

	prevTables, prevSchema := s.snapshot()

	s.schema.Relationships = append(s.schema.Relationships[:index], s.schema.Relationships[index+1:]...)

	return s.persist(ctx, "DeleteRelationship", prevTables, prevSchema)
}

// GetTableByID returns a copy of the table data, or nil. Pure lookup, no side
// effects.
func (s *Store) GetTableByID(id string) *models.TableData {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.findTable(id)
	if table == nil {
		return nil
	}

	return table.Clone()
}

// Tables returns a copy of all table data.
func (s *Store) Tables() []*models.TableData {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := make([]*models.TableData, 0, len(s.tables))
	for _, table := range s.tables {
		tables = append(tables, table.Clone())
	}

	return tables
}

// Schema returns a copy of the aggregate database schema.
func (s *Store) Schema() *models.DatabaseSchema {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.schema.Clone()
}

// Replace swaps in a whole new dataset, used by import. The previous state is
// restored when persisting the new dataset fails.
func (s *Store) Replace(ctx context.Context, dataset *persistence.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevTables, prevSchema := s.tables, s.schema

	s.tables = dataset.TableData
	s.schema = dataset.Schema

	return s.persist(ctx, "Replace", prevTables, prevSchema)
}

// HealthCheck reports the health of the underlying adapter.
func (s *Store) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}
