package persistence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabflow/tabflow/pkg/models"
)

func sampleDataset() *Dataset {
	schema := &models.TableSchema{
		ID:   "t1",
		Name: "users",
		Columns: []models.Column{
			{ID: "c1", Name: "name", Type: models.ColumnTypeString, Required: true},
		},
		Position: &models.Position{X: 100, Y: 100},
	}

	return &Dataset{
		TableData: []*models.TableData{
			{
				Schema: schema,
				Rows: []*models.TableRow{
					{ID: "r1", Values: map[string]models.Value{"c1": models.StringValue("alice")}},
				},
			},
		},
		Schema: &models.DatabaseSchema{
			Tables:        []*models.TableSchema{schema.Clone()},
			Relationships: make([]*models.Relationship, 0),
		},
	}
}

func TestEncodeDecodeDocument_RoundTrip(t *testing.T) {
	raw, err := EncodeDocument(sampleDataset())
	require.NoError(t, err)

	var envelope map[string]json.RawMessage

	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Contains(t, envelope, "version")
	assert.Contains(t, envelope, "lastModified")

	decoded := DecodeDocument(raw)
	require.Len(t, decoded.TableData, 1)
	assert.Equal(t, "users", decoded.TableData[0].Schema.Name)
	require.Len(t, decoded.TableData[0].Rows, 1)
	assert.Equal(t, "alice", decoded.TableData[0].Rows[0].Values["c1"].Str)
	require.Len(t, decoded.Schema.Tables, 1)
}

func TestDecodeDocument_LegacyBareArray(t *testing.T) {
	raw := []byte(`[
		{
			"schema": {"id": "t1", "name": "users", "columns": [{"id": "c1", "name": "name", "type": "string"}]},
			"rows": [{"id": "r1", "values": {"c1": "alice"}}]
		}
	]`)

	decoded := DecodeDocument(raw)
	require.Len(t, decoded.TableData, 1)
	assert.Equal(t, "users", decoded.TableData[0].Schema.Name)

	// The aggregate schema is rebuilt from the per-table schemas.
	require.NotNil(t, decoded.Schema)
	require.Len(t, decoded.Schema.Tables, 1)
	assert.Equal(t, "t1", decoded.Schema.Tables[0].ID)
	assert.Empty(t, decoded.Schema.Relationships)
}

func TestDecodeDocument_EnvelopeWithoutSchema(t *testing.T) {
	raw := []byte(`{
		"version": 1,
		"tableData": [
			{"schema": {"id": "t1", "name": "users", "columns": []}, "rows": []}
		]
	}`)

	decoded := DecodeDocument(raw)
	require.Len(t, decoded.TableData, 1)
	require.Len(t, decoded.Schema.Tables, 1)
}

func TestDecodeDocument_Unrecognized(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", `{"version": "zzz"`} {
		decoded := DecodeDocument([]byte(raw))
		require.NotNil(t, decoded, "input %q", raw)
		assert.Empty(t, decoded.TableData, "input %q", raw)
		assert.NotNil(t, decoded.Schema, "input %q", raw)
	}
}

func TestDecodeDocument_DropsEntriesWithoutSchema(t *testing.T) {
	raw := []byte(`[
		{"schema": null, "rows": []},
		{"schema": {"id": "t1", "name": "users", "columns": []}, "rows": null}
	]`)

	decoded := DecodeDocument(raw)
	require.Len(t, decoded.TableData, 1)
	assert.NotNil(t, decoded.TableData[0].Rows)
}

func TestDataset_Clone_IsDeep(t *testing.T) {
	dataset := sampleDataset()
	clone := dataset.Clone()

	clone.TableData[0].Schema.Name = "mutated"
	clone.Schema.Tables[0].Name = "mutated"

	assert.Equal(t, "users", dataset.TableData[0].Schema.Name)
	assert.Equal(t, "users", dataset.Schema.Tables[0].Name)
}

func TestStoreError_Unwrap(t *testing.T) {
	err := NewStoreError("Load", StorageKey, ErrStorageUnavailable)

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "Load")
}
