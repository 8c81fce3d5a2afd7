package persistence

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/tabflow/tabflow/pkg/models"
)

// documentVersion is the current persisted document version.
const documentVersion = 1

// document is the on-disk envelope for the dataset.
type document struct {
	Version      int                    `json:"version"`
	TableData    []*models.TableData    `json:"tableData"`
	Schema       *models.DatabaseSchema `json:"schema"`
	LastModified string                 `json:"lastModified"`
}

// EncodeDocument serializes the dataset into the current document shape,
// stamped with a last-modified timestamp.
func EncodeDocument(dataset *Dataset) ([]byte, error) {
	doc := document{
		Version:      documentVersion,
		TableData:    dataset.TableData,
		Schema:       dataset.Schema,
		LastModified: time.Now().UTC().Format(time.RFC3339),
	}

	return json.MarshalIndent(doc, "", "  ")
}

// DecodeDocument deserializes a stored document, tolerating the three
// historical shapes: the current versioned envelope, a prior envelope without
// an explicit schema (reconstructed from the per-table schemas), and the
// legacy bare array of table data. Anything unrecognized decodes to the empty
// dataset rather than an error.
func DecodeDocument(raw []byte) *Dataset {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return EmptyDataset()
	}

	if trimmed[0] == '[' {
		var tables []*models.TableData
		if err := json.Unmarshal(trimmed, &tables); err != nil {
			return EmptyDataset()
		}

		return normalizeDataset(&Dataset{TableData: tables})
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return EmptyDataset()
	}

	return normalizeDataset(&Dataset{TableData: doc.TableData, Schema: doc.Schema})
}

// normalizeDataset fills in the pieces older document shapes lack: a missing
// aggregate schema is rebuilt from the per-table schemas with an empty
// relationship list, nil slices become empty ones.
func normalizeDataset(dataset *Dataset) *Dataset {
	if dataset.TableData == nil {
		dataset.TableData = make([]*models.TableData, 0)
	}

	kept := dataset.TableData[:0]

	for _, table := range dataset.TableData {
		if table == nil || table.Schema == nil {
			continue
		}

		if table.Rows == nil {
			table.Rows = make([]*models.TableRow, 0)
		}

		kept = append(kept, table)
	}

	dataset.TableData = kept

	if dataset.Schema == nil {
		dataset.Schema = &models.DatabaseSchema{
			Relationships: make([]*models.Relationship, 0),
		}
		for _, table := range dataset.TableData {
			dataset.Schema.Tables = append(dataset.Schema.Tables, table.Schema.Clone())
		}
	}

	if dataset.Schema.Tables == nil {
		dataset.Schema.Tables = make([]*models.TableSchema, 0)
	}

	if dataset.Schema.Relationships == nil {
		dataset.Schema.Relationships = make([]*models.Relationship, 0)
	}

	return dataset
}
