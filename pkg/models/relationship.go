package models

// RelationshipType represents the cardinality of a relationship between two
// table columns.
type RelationshipType string

const (
	RelationshipOneToOne   RelationshipType = "one-to-one"
	RelationshipOneToMany  RelationshipType = "one-to-many"
	RelationshipManyToMany RelationshipType = "many-to-many"
)

// IsValid reports whether the relationship type is supported.
func (t RelationshipType) IsValid() bool {
	switch t {
	case RelationshipOneToOne, RelationshipOneToMany, RelationshipManyToMany:
		return true
	}

	return false
}

// Relationship links a column of one table to a column of another. Both
// endpoints must exist while the relationship is live; deleting either table
// removes the relationship together with the table.
type Relationship struct {
	ID           string           `json:"id"           validate:"required"`
	FromTableID  string           `json:"fromTableId"  validate:"required"`
	FromColumnID string           `json:"fromColumnId" validate:"required"`
	ToTableID    string           `json:"toTableId"    validate:"required"`
	ToColumnID   string           `json:"toColumnId"   validate:"required"`
	Type         RelationshipType `json:"type"         validate:"required"`
}

// Mentions reports whether the relationship references the given table on
// either endpoint.
func (r *Relationship) Mentions(tableID string) bool {
	return r.FromTableID == tableID || r.ToTableID == tableID
}

// DatabaseSchema aggregates every table schema plus all relationships. Its
// table list is kept in sync with the authoritative per-table schema copies.
type DatabaseSchema struct {
	Tables        []*TableSchema  `json:"tables"`
	Relationships []*Relationship `json:"relationships"`
}

// Clone returns a deep copy of the aggregate schema.
func (s *DatabaseSchema) Clone() *DatabaseSchema {
	if s == nil {
		return nil
	}

	clone := &DatabaseSchema{
		Tables:        make([]*TableSchema, 0, len(s.Tables)),
		Relationships: make([]*Relationship, 0, len(s.Relationships)),
	}

	for _, table := range s.Tables {
		clone.Tables = append(clone.Tables, table.Clone())
	}

	for _, rel := range s.Relationships {
		relCopy := *rel
		clone.Relationships = append(clone.Relationships, &relCopy)
	}

	return clone
}

// TableByID returns the aggregate entry for the given table id, or nil.
func (s *DatabaseSchema) TableByID(id string) *TableSchema {
	for _, table := range s.Tables {
		if table.ID == id {
			return table
		}
	}

	return nil
}
