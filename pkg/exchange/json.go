// Package exchange implements the file-transfer formats of the editor: the
// versioned JSON export document and per-table CSV. Import tolerates every
// historical document shape and never touches caller state on malformed
// input.
package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/tabflow/tabflow/pkg/models"
	"github.com/tabflow/tabflow/pkg/persistence"
)

// ExportVersion is the version stamped on exported documents.
const ExportVersion = "2.0"

// ErrInvalidDocument indicates the import payload is not a recognizable
// export document.
var ErrInvalidDocument = errors.New("invalid import document")

// ExportTable pairs a table schema with its row data in the export shape.
type ExportTable struct {
	Schema *models.TableSchema `json:"schema"`
	Data   []*models.TableRow  `json:"data"`
}

// ExportDocument is the full export file shape, version 2.0.
type ExportDocument struct {
	Tables        []ExportTable          `json:"tables"`
	Relationships []*models.Relationship `json:"relationships"`
	FlowTabs      []*models.FlowTab      `json:"flowTabs"`
	ActiveTabID   string                 `json:"activeTabId"`
	ExportDate    string                 `json:"exportDate"`
	Version       string                 `json:"version"`
}

// ImportResult is the decoded content of an accepted import document.
type ImportResult struct {
	Dataset     *persistence.Dataset
	FlowTabs    []*models.FlowTab
	ActiveTabID string
}

// importSchema constrains the accepted document shapes: the versioned object
// with a tables array, or the legacy bare array of tables.
const importSchema = `{
	"oneOf": [
		{
			"type": "object",
			"required": ["tables"],
			"properties": {
				"tables": {"type": "array", "items": {"type": "object", "required": ["schema"]}},
				"relationships": {"type": "array"},
				"flowTabs": {"type": "array"},
				"activeTabId": {"type": "string"},
				"version": {"type": "string"}
			}
		},
		{
			"type": "array",
			"items": {"type": "object", "required": ["schema"]}
		}
	]
}`

// ExportJSON serializes the dataset plus flow tabs into the current export
// document.
func ExportJSON(dataset *persistence.Dataset, tabs []*models.FlowTab, activeTabID string) ([]byte, error) {
	doc := ExportDocument{
		Tables:        make([]ExportTable, 0, len(dataset.TableData)),
		Relationships: dataset.Schema.Relationships,
		FlowTabs:      tabs,
		ActiveTabID:   activeTabID,
		ExportDate:    time.Now().UTC().Format(time.RFC3339),
		Version:       ExportVersion,
	}

	if doc.Relationships == nil {
		doc.Relationships = make([]*models.Relationship, 0)
	}

	if doc.FlowTabs == nil {
		doc.FlowTabs = make([]*models.FlowTab, 0)
	}

	for _, table := range dataset.TableData {
		doc.Tables = append(doc.Tables, ExportTable{Schema: table.Schema, Data: table.Rows})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export document: %w", err)
	}

	return data, nil
}

// legacyTable tolerates both the export key ("data") and the persisted key
// ("rows") for row content.
type legacyTable struct {
	Schema *models.TableSchema `json:"schema"`
	Data   []*models.TableRow  `json:"data"`
	Rows   []*models.TableRow  `json:"rows"`
}

func (t *legacyTable) rows() []*models.TableRow {
	if t.Data != nil {
		return t.Data
	}

	if t.Rows != nil {
		return t.Rows
	}

	return make([]*models.TableRow, 0)
}

// ImportJSON parses an import payload, accepting the version 2.0 document,
// the prior shape without flowTabs/version, and the legacy bare array of
// tables. Malformed payloads return ErrInvalidDocument and no result.
func ImportJSON(raw []byte) (*ImportResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDocument)
	}

	validation, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(importSchema),
		gojsonschema.NewBytesLoader(trimmed),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if !validation.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, validation.Errors()[0].String())
	}

	var (
		tables        []legacyTable
		relationships []*models.Relationship
		flowTabs      []*models.FlowTab
		activeTabID   string
	)

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &tables); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	} else {
		var doc struct {
			Tables        []legacyTable          `json:"tables"`
			Relationships []*models.Relationship `json:"relationships"`
			FlowTabs      []*models.FlowTab      `json:"flowTabs"`
			ActiveTabID   string                 `json:"activeTabId"`
		}

		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}

		tables = doc.Tables
		relationships = doc.Relationships
		flowTabs = doc.FlowTabs
		activeTabID = doc.ActiveTabID
	}

	result := &ImportResult{
		Dataset:     persistence.EmptyDataset(),
		FlowTabs:    flowTabs,
		ActiveTabID: activeTabID,
	}

	if result.FlowTabs == nil {
		result.FlowTabs = make([]*models.FlowTab, 0)
	}

	for _, table := range tables {
		if table.Schema == nil {
			continue
		}

		result.Dataset.TableData = append(result.Dataset.TableData, &models.TableData{
			Schema: table.Schema,
			Rows:   table.rows(),
		})
		result.Dataset.Schema.Tables = append(result.Dataset.Schema.Tables, table.Schema.Clone())
	}

	if relationships != nil {
		result.Dataset.Schema.Relationships = relationships
	}

	return result, nil
}
