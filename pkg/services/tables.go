package services

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/tabflow/tabflow/pkg/exchange"
	"github.com/tabflow/tabflow/pkg/models"
	"github.com/tabflow/tabflow/pkg/persistence"
	"github.com/tabflow/tabflow/pkg/store"
)

// Tables is the service in front of the table/schema state store. It owns the
// caller-side validation the store deliberately does not do: required column
// presence, declared-type checks, relationship endpoint existence.
type Tables struct {
	store    *store.Store
	validate *validator.Validate
}

// NewTables creates a new tables service.
func NewTables(s *store.Store) *Tables {
	return &Tables{
		store:    s,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck reports the health of the persistence layer.
func (t *Tables) HealthCheck(ctx context.Context) (string, bool) {
	return t.store.HealthCheck(ctx)
}

// ListTables returns all table data.
func (t *Tables) ListTables() []*models.TableData {
	return t.store.Tables()
}

// GetTable returns the table data or ErrTableNotFound.
func (t *Tables) GetTable(id string) (*models.TableData, error) {
	table := t.store.GetTableByID(id)
	if table == nil {
		return nil, persistence.ErrTableNotFound
	}

	return table, nil
}

// Schema returns the aggregate database schema.
func (t *Tables) Schema() *models.DatabaseSchema {
	return t.store.Schema()
}

// CreateTable validates and registers a new table schema.
func (t *Tables) CreateTable(ctx context.Context, schema *models.TableSchema) (*models.TableSchema, error) {
	if schema == nil || schema.Name == "" {
		return nil, NewValidationError("CreateTable", "table name is required", ErrInvalidRequest)
	}

	for i := range schema.Columns {
		if err := t.validate.StructCtx(ctx, schema.Columns[i]); err != nil {
			return nil, NewValidationError("CreateTable", err.Error(), ErrInvalidRequest)
		}
	}

	created, err := t.store.CreateTable(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return created, nil
}

// UpdateTable merges a partial schema update. Unknown ids surface as
// ErrTableNotFound here; the store itself treats them as a silent no-op.
func (t *Tables) UpdateTable(ctx context.Context, id string, patch *models.TableSchemaPatch) error {
	if t.store.GetTableByID(id) == nil {
		return persistence.ErrTableNotFound
	}

	return t.store.UpdateTable(ctx, id, patch)
}

// DeleteTable removes the table and, with it, every relationship mentioning it.
func (t *Tables) DeleteTable(ctx context.Context, id string) error {
	if t.store.GetTableByID(id) == nil {
		return persistence.ErrTableNotFound
	}

	return t.store.DeleteTable(ctx, id)
}

// normalizeRow coerces string-kinded values to their column's declared type
// and checks the result against the table schema: no unknown columns, no type
// mismatches and, when full is set, no missing required values. Detection
// happens before any mutation; the returned map holds the coerced values to
// store.
func (t *Tables) normalizeRow(op string, schema *models.TableSchema, values map[string]models.Value, full bool) (map[string]models.Value, error) {
	normalized := make(map[string]models.Value, len(values))

	for columnID, value := range values {
		col := schema.ColumnByID(columnID)
		if col == nil {
			return nil, NewValidationError(op, "column "+columnID+" does not exist", ErrUnknownColumn)
		}

		value = value.CoerceToColumn(*col)
		if !value.MatchesColumn(*col) {
			return nil, NewValidationError(op,
				fmt.Sprintf("column %s expects %s", col.Name, col.Type), ErrTypeMismatch)
		}

		normalized[columnID] = value
	}

	if !full {
		return normalized, nil
	}

	for _, col := range schema.Columns {
		if !col.Required {
			continue
		}

		if value, ok := normalized[col.ID]; !ok || value.IsNull() {
			return nil, NewValidationError(op, "column "+col.Name+" is required", ErrMissingRequiredValue)
		}
	}

	return normalized, nil
}

// AddRow validates and appends a row.
func (t *Tables) AddRow(ctx context.Context, tableID string, values map[string]models.Value) (*models.TableRow, error) {
	table := t.store.GetTableByID(tableID)
	if table == nil {
		return nil, persistence.ErrTableNotFound
	}

	normalized, err := t.normalizeRow("AddRow", table.Schema, values, true)
	if err != nil {
		return nil, err
	}

	row, err := t.store.AddRow(ctx, tableID, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to add row: %w", err)
	}

	return row, nil
}

// UpdateRow validates and merges values into an existing row.
func (t *Tables) UpdateRow(ctx context.Context, tableID, rowID string, values map[string]models.Value) error {
	table := t.store.GetTableByID(tableID)
	if table == nil {
		return persistence.ErrTableNotFound
	}

	found := false

	for _, row := range table.Rows {
		if row.ID == rowID {
			found = true

			break
		}
	}

	if !found {
		return persistence.ErrRowNotFound
	}

	normalized, err := t.normalizeRow("UpdateRow", table.Schema, values, false)
	if err != nil {
		return err
	}

	return t.store.UpdateRow(ctx, tableID, rowID, normalized)
}

// DeleteRow removes a row.
func (t *Tables) DeleteRow(ctx context.Context, tableID, rowID string) error {
	table := t.store.GetTableByID(tableID)
	if table == nil {
		return persistence.ErrTableNotFound
	}

	return t.store.DeleteRow(ctx, tableID, rowID)
}

// Relationships returns the aggregate relationship list.
func (t *Tables) Relationships() []*models.Relationship {
	return t.store.Schema().Relationships
}

// AddRelationship validates both endpoints against the current schema before
// appending; the store itself does not enforce existence.
func (t *Tables) AddRelationship(ctx context.Context, rel *models.Relationship) (*models.Relationship, error) {
	if rel == nil || !rel.Type.IsValid() {
		return nil, NewValidationError("AddRelationship", "relationship type must be one-to-one, one-to-many or many-to-many", ErrInvalidRelationship)
	}

	for _, endpoint := range []struct {
		tableID  string
		columnID string
	}{
		{rel.FromTableID, rel.FromColumnID},
		{rel.ToTableID, rel.ToColumnID},
	} {
		table := t.store.GetTableByID(endpoint.tableID)
		if table == nil {
			return nil, NewValidationError("AddRelationship", "table "+endpoint.tableID+" does not exist", ErrUnknownTable)
		}

		if table.Schema.ColumnByID(endpoint.columnID) == nil {
			return nil, NewValidationError("AddRelationship", "column "+endpoint.columnID+" does not exist", ErrUnknownColumn)
		}
	}

	created, err := t.store.AddRelationship(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("failed to add relationship: %w", err)
	}

	return created, nil
}

// DeleteRelationship removes a relationship.
func (t *Tables) DeleteRelationship(ctx context.Context, id string) error {
	return t.store.DeleteRelationship(ctx, id)
}

// ExportCSV renders the table's rows as CSV.
func (t *Tables) ExportCSV(tableID string) ([]byte, error) {
	table := t.store.GetTableByID(tableID)
	if table == nil {
		return nil, persistence.ErrTableNotFound
	}

	return exchange.ExportCSV(table)
}

// ImportCSV parses CSV against the table's schema and appends the resulting
// rows. Values arrive already coerced to their declared types, so no further
// validation applies.
func (t *Tables) ImportCSV(ctx context.Context, tableID string, r io.Reader) (int, error) {
	table := t.store.GetTableByID(tableID)
	if table == nil {
		return 0, persistence.ErrTableNotFound
	}

	rows, err := exchange.ImportCSV(table.Schema, r)
	if err != nil {
		return 0, err
	}

	for _, values := range rows {
		if _, err := t.store.AddRow(ctx, tableID, values); err != nil {
			return 0, fmt.Errorf("failed to add imported row: %w", err)
		}
	}

	return len(rows), nil
}
