package flow

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabflow/tabflow/pkg/models"
)

func newTestBoard() *Board {
	return NewBoard(slog.Default(), nil)
}

func defaultFlowTab(t *testing.T, b *Board) *models.FlowTab {
	t.Helper()

	tabs := b.FlowTabs()
	require.Len(t, tabs, 1)

	return tabs[0]
}

func TestNewBoard_SeedsReservedViewsAndDefaultTab(t *testing.T) {
	b := newTestBoard()

	tabs := b.Tabs()
	require.Len(t, tabs, 4)
	assert.Equal(t, models.TabTableEditor, tabs[0].ID)
	assert.Equal(t, models.TabSchemaDesigner, tabs[1].ID)
	assert.Equal(t, models.TabImportExport, tabs[2].ID)
	assert.Equal(t, DefaultTabName, tabs[3].Name)

	assert.Equal(t, models.TabTableEditor, b.ActiveTabID())
}

func TestBoard_TabLifecycle(t *testing.T) {
	b := newTestBoard()

	tab := b.CreateTab("Flow 2")
	assert.NotEmpty(t, tab.ID)

	require.NoError(t, b.RenameTab(tab.ID, "Cleanup"))

	got, err := b.TabByID(tab.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cleanup", got.Name)

	require.NoError(t, b.SetActiveTab(tab.ID))
	assert.Equal(t, tab.ID, b.ActiveTabID())

	require.NoError(t, b.DeleteTab(t.Context(), tab.ID))

	_, err = b.TabByID(tab.ID)
	assert.ErrorIs(t, err, ErrTabNotFound)

	// Deleting the active tab falls back to the table editor view.
	assert.Equal(t, models.TabTableEditor, b.ActiveTabID())
}

func TestBoard_ReservedTabsAreProtected(t *testing.T) {
	b := newTestBoard()

	assert.ErrorIs(t, b.RenameTab(models.TabTableEditor, "x"), ErrReservedTab)
	assert.ErrorIs(t, b.DeleteTab(t.Context(), models.TabSchemaDesigner), ErrReservedTab)

	_, err := b.AddNode(t.Context(), models.TabImportExport, storageNode(""))
	assert.ErrorIs(t, err, ErrReservedTab)
}

func TestBoard_UnknownTab(t *testing.T) {
	b := newTestBoard()

	_, err := b.TabByID("missing")
	assert.ErrorIs(t, err, ErrTabNotFound)
	assert.ErrorIs(t, b.SetActiveTab("missing"), ErrTabNotFound)
	assert.ErrorIs(t, b.RenameTab("missing", "x"), ErrTabNotFound)
	assert.ErrorIs(t, b.DeleteTab(t.Context(), "missing"), ErrTabNotFound)
}

func TestBoard_AddNode_StampsIDAndTimestamps(t *testing.T) {
	b := newTestBoard()
	tab := defaultFlowTab(t, b)

	node, err := b.AddNode(t.Context(), tab.ID, storageNode(""))
	require.NoError(t, err)
	assert.NotEmpty(t, node.ID)
	assert.False(t, node.Data.CreatedAt.IsZero())
	assert.Equal(t, node.Data.CreatedAt, node.Data.UpdatedAt)
}

func TestBoard_MoveNode(t *testing.T) {
	b := newTestBoard()
	tab := defaultFlowTab(t, b)

	node, err := b.AddNode(t.Context(), tab.ID, storageNode(""))
	require.NoError(t, err)

	require.NoError(t, b.MoveNode(t.Context(), tab.ID, node.ID, models.Position{X: 5, Y: 9}))

	got, err := b.TabByID(tab.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 5, Y: 9}, got.NodeByID(node.ID).Position)

	assert.ErrorIs(t, b.MoveNode(t.Context(), tab.ID, "missing", models.Position{}), ErrNodeNotFound)
}

func TestBoard_UpdateNode(t *testing.T) {
	b := newTestBoard()
	tab := defaultFlowTab(t, b)

	node, err := b.AddNode(t.Context(), tab.ID, transformNode(""))
	require.NoError(t, err)

	label := "normalize"
	require.NoError(t, b.UpdateNode(t.Context(), tab.ID, node.ID, &models.NodeDataPatch{Label: &label}))

	got, err := b.TabByID(tab.ID)
	require.NoError(t, err)
	assert.Equal(t, "normalize", got.NodeByID(node.ID).Data.Label)
}

func TestBoard_Connect_And_DeleteEdge(t *testing.T) {
	b := newTestBoard()
	tab := defaultFlowTab(t, b)

	source, err := b.AddNode(t.Context(), tab.ID, storageNode(""))
	require.NoError(t, err)
	target, err := b.AddNode(t.Context(), tab.ID, transformNode(""))
	require.NoError(t, err)

	edge, err := b.Connect(t.Context(), tab.ID, &models.FlowEdge{Source: source.ID, Target: target.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, edge.ID)

	got, err := b.TabByID(tab.ID)
	require.NoError(t, err)
	require.Len(t, got.Edges, 1)

	require.NoError(t, b.DeleteEdge(t.Context(), tab.ID, edge.ID))
	assert.ErrorIs(t, b.DeleteEdge(t.Context(), tab.ID, edge.ID), ErrEdgeNotFound)
}

func TestBoard_Connect_RejectedLeavesGraphUntouched(t *testing.T) {
	b := newTestBoard()
	tab := defaultFlowTab(t, b)

	a, err := b.AddNode(t.Context(), tab.ID, storageNode(""))
	require.NoError(t, err)
	c, err := b.AddNode(t.Context(), tab.ID, storageNode(""))
	require.NoError(t, err)

	_, err = b.Connect(t.Context(), tab.ID, &models.FlowEdge{Source: a.ID, Target: c.ID})
	require.Error(t, err)
	assert.True(t, IsInvalidConnection(err))

	got, lookupErr := b.TabByID(tab.ID)
	require.NoError(t, lookupErr)
	assert.Empty(t, got.Edges)
}

func TestBoard_DeleteNode_CascadesEdges(t *testing.T) {
	b := newTestBoard()
	tab := defaultFlowTab(t, b)

	source, err := b.AddNode(t.Context(), tab.ID, storageNode(""))
	require.NoError(t, err)
	middle, err := b.AddNode(t.Context(), tab.ID, transformNode(""))
	require.NoError(t, err)
	sink, err := b.AddNode(t.Context(), tab.ID, miscNode(""))
	require.NoError(t, err)

	_, err = b.Connect(t.Context(), tab.ID, &models.FlowEdge{Source: source.ID, Target: middle.ID})
	require.NoError(t, err)
	_, err = b.Connect(t.Context(), tab.ID, &models.FlowEdge{Source: middle.ID, Target: sink.ID})
	require.NoError(t, err)

	require.NoError(t, b.DeleteNode(t.Context(), tab.ID, middle.ID))

	got, err := b.TabByID(tab.ID)
	require.NoError(t, err)
	assert.Len(t, got.Nodes, 2)
	assert.Empty(t, got.Edges)
}

func TestBoard_ReplaceTabs_KeepsReservedViews(t *testing.T) {
	b := newTestBoard()

	imported := []*models.FlowTab{
		{ID: "imported-1", Name: "Imported", Nodes: make([]*models.FlowNode, 0), Edges: make([]*models.FlowEdge, 0)},
		{ID: models.TabTableEditor, Name: "smuggled reserved id"},
	}

	b.ReplaceTabs(imported, "imported-1")

	tabs := b.Tabs()
	require.Len(t, tabs, 4)
	assert.Equal(t, "Table Editor", tabs[0].Name)
	assert.Equal(t, "imported-1", tabs[3].ID)
	assert.Equal(t, "imported-1", b.ActiveTabID())

	// An unknown active tab falls back to the table editor.
	b.ReplaceTabs(nil, "missing")
	assert.Equal(t, models.TabTableEditor, b.ActiveTabID())
}

func TestBoard_ReplaceGraph(t *testing.T) {
	b := newTestBoard()
	tab := defaultFlowTab(t, b)

	nodes := []*models.FlowNode{storageNode("n1")}
	require.NoError(t, b.ReplaceGraph(tab.ID, nodes, nil))

	got, err := b.TabByID(tab.ID)
	require.NoError(t, err)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "n1", got.Nodes[0].ID)
}
