// Package models defines the core domain models for table schemas, rows and
// relationships managed by the editor.
package models

import "fmt"

// ColumnType represents the declared type of a table column.
type ColumnType string

const (
	ColumnTypeString  ColumnType = "string"
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeDate    ColumnType = "date"
)

// IsValid reports whether the column type is one of the supported types.
func (t ColumnType) IsValid() bool {
	switch t {
	case ColumnTypeString, ColumnTypeNumber, ColumnTypeBoolean, ColumnTypeDate:
		return true
	}

	return false
}

// Column describes a single column of a table schema.
type Column struct {
	ID       string     `json:"id"       validate:"required"`
	Name     string     `json:"name"     validate:"required,min=1"`
	Type     ColumnType `json:"type"     validate:"required"`
	Required bool       `json:"required"`
	Unique   bool       `json:"unique"`
	IsList   bool       `json:"isList"` // Column holds a sequence of values instead of a scalar
}

// Position is a 2-D canvas position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TableSchema describes a table: its identity, name and ordered column set.
// Column order is display order.
type TableSchema struct {
	ID       string    `json:"id"       validate:"required"`
	Name     string    `json:"name"     validate:"required,min=1"`
	Columns  []Column  `json:"columns"`
	Position *Position `json:"position,omitempty"`
}

// Validate checks structural invariants of the schema, in particular that
// column ids are unique within the table.
func (s *TableSchema) Validate() error {
	seen := make(map[string]struct{}, len(s.Columns))

	for _, col := range s.Columns {
		if col.ID == "" {
			return fmt.Errorf("table %s: column %q has no id", s.ID, col.Name)
		}

		if _, dup := seen[col.ID]; dup {
			return fmt.Errorf("table %s: duplicate column id %s", s.ID, col.ID)
		}

		seen[col.ID] = struct{}{}

		if !col.Type.IsValid() {
			return fmt.Errorf("table %s: column %s has unsupported type %q", s.ID, col.ID, col.Type)
		}
	}

	return nil
}

// ColumnByID returns the column with the given id, or nil.
func (s *TableSchema) ColumnByID(id string) *Column {
	for i := range s.Columns {
		if s.Columns[i].ID == id {
			return &s.Columns[i]
		}
	}

	return nil
}

// ColumnByName returns the column with the given name, or nil.
func (s *TableSchema) ColumnByName(name string) *Column {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i]
		}
	}

	return nil
}

// TableRow is a single row of table data: an id plus a mapping from column id
// to a tagged value.
type TableRow struct {
	ID     string           `json:"id"`
	Values map[string]Value `json:"values"`
}

// TableData bundles a table schema with its row data. The schema here is the
// authoritative per-table copy; the aggregate DatabaseSchema keeps a matching
// entry for every table.
type TableData struct {
	Schema *TableSchema `json:"schema" validate:"required"`
	Rows   []*TableRow  `json:"rows"`
}

// TableSchemaPatch is a partial schema update. Nil fields are left unchanged.
type TableSchemaPatch struct {
	Name     *string   `json:"name,omitempty"`
	Columns  *[]Column `json:"columns,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// Apply merges the patch into the schema.
func (p *TableSchemaPatch) Apply(s *TableSchema) {
	if p.Name != nil {
		s.Name = *p.Name
	}

	if p.Columns != nil {
		s.Columns = append([]Column(nil), (*p.Columns)...)
	}

	if p.Position != nil {
		pos := *p.Position
		s.Position = &pos
	}
}

// Clone returns a deep copy of the schema.
func (s *TableSchema) Clone() *TableSchema {
	if s == nil {
		return nil
	}

	clone := *s
	clone.Columns = append([]Column(nil), s.Columns...)

	if s.Position != nil {
		pos := *s.Position
		clone.Position = &pos
	}

	return &clone
}

// Clone returns a deep copy of the row.
func (r *TableRow) Clone() *TableRow {
	if r == nil {
		return nil
	}

	clone := &TableRow{ID: r.ID, Values: make(map[string]Value, len(r.Values))}
	for k, v := range r.Values {
		clone.Values[k] = v.Clone()
	}

	return clone
}

// Clone returns a deep copy of the table data.
func (d *TableData) Clone() *TableData {
	if d == nil {
		return nil
	}

	clone := &TableData{Schema: d.Schema.Clone(), Rows: make([]*TableRow, 0, len(d.Rows))}
	for _, row := range d.Rows {
		clone.Rows = append(clone.Rows, row.Clone())
	}

	return clone
}
