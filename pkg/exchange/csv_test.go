package exchange

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabflow/tabflow/pkg/models"
)

func csvTable() *models.TableData {
	return &models.TableData{
		Schema: &models.TableSchema{
			ID:   "t1",
			Name: "users",
			Columns: []models.Column{
				{ID: "c1", Name: "name", Type: models.ColumnTypeString},
				{ID: "c2", Name: "age", Type: models.ColumnTypeNumber},
				{ID: "c3", Name: "active", Type: models.ColumnTypeBoolean},
				{ID: "c4", Name: "tags", Type: models.ColumnTypeString, IsList: true},
			},
		},
		Rows: []*models.TableRow{
			{ID: "r1", Values: map[string]models.Value{
				"c1": models.StringValue("alice"),
				"c2": models.NumberValue(30),
				"c3": models.BoolValue(true),
				"c4": models.ListValue([]models.Value{models.StringValue("admin"), models.StringValue("ops")}),
			}},
			{ID: "r2", Values: map[string]models.Value{
				"c1": models.StringValue("bob, jr"),
				"c2": models.NumberValue(2.5),
				"c3": models.BoolValue(false),
			}},
		},
	}
}

func TestExportCSV(t *testing.T) {
	raw, err := ExportCSV(csvTable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,age,active,tags", lines[0])
	assert.Equal(t, "alice,30,true,admin;ops", lines[1])

	// Values containing commas are quoted; missing cells render empty.
	assert.Equal(t, `"bob, jr",2.5,false,`, lines[2])
}

func TestImportCSV_RoundTrip(t *testing.T) {
	table := csvTable()

	raw, err := ExportCSV(table)
	require.NoError(t, err)

	rows, err := ImportCSV(table.Schema, strings.NewReader(string(raw)))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, models.StringValue("alice").Equal(rows[0]["c1"]))
	assert.True(t, models.NumberValue(30).Equal(rows[0]["c2"]))
	assert.True(t, models.BoolValue(true).Equal(rows[0]["c3"]))

	require.Equal(t, models.ValueKindList, rows[0]["c4"].Kind)
	require.Len(t, rows[0]["c4"].List, 2)
	assert.Equal(t, "ops", rows[0]["c4"].List[1].Str)
}

func TestImportCSV_Coercion(t *testing.T) {
	schema := csvTable().Schema

	input := "name,age,active,tags\ncarol,not-a-number,TRUE,solo\n"

	rows, err := ImportCSV(schema, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Unparseable numbers coerce to zero, booleans match case-insensitively,
	// a single value still becomes a one-element list.
	assert.Equal(t, float64(0), rows[0]["c2"].Num)
	assert.True(t, rows[0]["c3"].Bool)
	require.Len(t, rows[0]["c4"].List, 1)
	assert.Equal(t, "solo", rows[0]["c4"].List[0].Str)
}

func TestImportCSV_IgnoresUnknownHeaderColumns(t *testing.T) {
	schema := csvTable().Schema

	input := "name,unknown\nalice,ignored\n"

	rows, err := ImportCSV(schema, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["c1"].Str)
	assert.Len(t, rows[0], 1)
}

func TestImportCSV_EmptyInput(t *testing.T) {
	schema := csvTable().Schema

	_, err := ImportCSV(schema, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
