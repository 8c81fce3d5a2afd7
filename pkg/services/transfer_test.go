package services

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabflow/tabflow/pkg/exchange"
	"github.com/tabflow/tabflow/pkg/flow"
	"github.com/tabflow/tabflow/pkg/models"
	"github.com/tabflow/tabflow/pkg/persistence/memory"
	"github.com/tabflow/tabflow/pkg/store"
)

func newTransferFixture(t *testing.T) (*Transfer, *Tables, *flow.Board) {
	t.Helper()

	s := store.NewStore(memory.NewPersistence(), slog.Default())
	s.Load(t.Context())

	board := flow.NewBoard(slog.Default(), nil)

	return NewTransfer(s, board), NewTables(s), board
}

func TestTransfer_ExportImportRoundTrip(t *testing.T) {
	transfer, tables, board := newTransferFixture(t)

	created, err := tables.CreateTable(t.Context(), &models.TableSchema{
		Name:    "users",
		Columns: []models.Column{{ID: "c1", Name: "name", Type: models.ColumnTypeString}},
	})
	require.NoError(t, err)

	_, err = tables.AddRow(t.Context(), created.ID, map[string]models.Value{
		"c1": models.StringValue("alice"),
	})
	require.NoError(t, err)

	tab := board.CreateTab("Pipeline")
	require.NoError(t, board.SetActiveTab(tab.ID))

	raw, err := transfer.Export()
	require.NoError(t, err)

	var doc exchange.ExportDocument

	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, exchange.ExportVersion, doc.Version)
	require.Len(t, doc.Tables, 1)

	// Re-import into a fresh workspace.
	fresh, freshTables, freshBoard := newTransferFixture(t)
	require.NoError(t, fresh.Import(t.Context(), raw))

	got, err := freshTables.GetTable(created.ID)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "alice", got.Rows[0].Values["c1"].Str)

	assert.Equal(t, tab.ID, freshBoard.ActiveTabID())

	names := make([]string, 0)
	for _, ft := range freshBoard.FlowTabs() {
		names = append(names, ft.Name)
	}

	assert.Contains(t, names, "Pipeline")
}

func TestTransfer_Import_MalformedLeavesStateUntouched(t *testing.T) {
	transfer, tables, _ := newTransferFixture(t)

	created, err := tables.CreateTable(t.Context(), &models.TableSchema{
		Name:    "users",
		Columns: []models.Column{{ID: "c1", Name: "name", Type: models.ColumnTypeString}},
	})
	require.NoError(t, err)

	err = transfer.Import(t.Context(), []byte(`{"broken": []}`))
	require.ErrorIs(t, err, exchange.ErrInvalidDocument)

	// Existing tables survive a rejected import.
	_, err = tables.GetTable(created.ID)
	assert.NoError(t, err)
}
