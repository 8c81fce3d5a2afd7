package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabflow/tabflow/pkg/models"
)

func graphOfSize(n int) []*models.FlowNode {
	nodes := make([]*models.FlowNode, 0, n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, &models.FlowNode{
			ID:   string(rune('a' + i)),
			Type: "data",
			Data: models.NodeData{Category: models.CategoryStorage},
		})
	}

	return nodes
}

func TestTracker_StartsWithEmptySnapshot(t *testing.T) {
	tr := NewTracker(0)

	assert.Equal(t, 1, tr.Len())
	assert.False(t, tr.CanUndo())
	assert.False(t, tr.CanRedo())
	assert.Empty(t, tr.CurrentState().Nodes)
}

func TestTracker_UndoRedoRoundTrip(t *testing.T) {
	tr := NewTracker(10)

	tr.SaveState(graphOfSize(1), nil)
	tr.SaveState(graphOfSize(2), nil)

	var applied []Entry

	collect := func(e Entry) { applied = append(applied, e) }

	require.True(t, tr.Undo(collect))
	require.Len(t, applied, 1)
	assert.Len(t, applied[0].Nodes, 1)

	require.True(t, tr.Redo(collect))
	require.Len(t, applied, 2)
	assert.Len(t, applied[1].Nodes, 2)
}

func TestTracker_UndoAtOldestIsNoOp(t *testing.T) {
	tr := NewTracker(10)

	assert.False(t, tr.Undo(nil))

	tr.SaveState(graphOfSize(1), nil)
	require.True(t, tr.Undo(nil))
	assert.False(t, tr.Undo(nil))
}

func TestTracker_RedoAtNewestIsNoOp(t *testing.T) {
	tr := NewTracker(10)

	tr.SaveState(graphOfSize(1), nil)
	assert.False(t, tr.Redo(nil))
}

func TestTracker_SaveTruncatesRedoBranch(t *testing.T) {
	tr := NewTracker(10)

	tr.SaveState(graphOfSize(1), nil)
	tr.SaveState(graphOfSize(2), nil)

	require.True(t, tr.Undo(nil))
	require.True(t, tr.CanRedo())

	tr.SaveState(graphOfSize(3), nil)
	assert.False(t, tr.CanRedo())
	assert.Len(t, tr.CurrentState().Nodes, 3)

	// The branch point is still reachable backwards.
	require.True(t, tr.Undo(nil))
	assert.Len(t, tr.CurrentState().Nodes, 1)
}

func TestTracker_ConsecutiveDuplicatesCollapse(t *testing.T) {
	tr := NewTracker(10)

	tr.SaveState(graphOfSize(1), nil)
	tr.SaveState(graphOfSize(1), nil)
	tr.SaveState(graphOfSize(1), nil)

	assert.Equal(t, 2, tr.Len())
}

func TestTracker_EvictsOldestBeyondLimit(t *testing.T) {
	tr := NewTracker(5)

	for i := 1; i <= 20; i++ {
		tr.SaveState(graphOfSize(i), nil)
	}

	assert.Equal(t, 5, tr.Len())
	assert.Len(t, tr.CurrentState().Nodes, 20)

	// Only limit-1 undo steps remain; the oldest states are gone.
	steps := 0
	for tr.Undo(nil) {
		steps++
	}

	assert.Equal(t, 4, steps)
	assert.Len(t, tr.CurrentState().Nodes, 16)
}

func TestTracker_SaveDuringReplayIsSuppressed(t *testing.T) {
	tr := NewTracker(10)

	tr.SaveState(graphOfSize(1), nil)
	tr.SaveState(graphOfSize(2), nil)

	require.True(t, tr.Undo(func(Entry) {
		// Applying a snapshot can echo a mutation notification; it must not
		// grow the log.
		tr.SaveState(graphOfSize(9), nil)
	}))

	assert.Equal(t, 3, tr.Len())
	assert.Len(t, tr.CurrentState().Nodes, 1)
}

func TestTracker_ClearHistory(t *testing.T) {
	tr := NewTracker(10)

	tr.SaveState(graphOfSize(1), nil)
	tr.SaveState(graphOfSize(2), nil)
	tr.ClearHistory()

	assert.Equal(t, 1, tr.Len())
	assert.False(t, tr.CanUndo())
	assert.False(t, tr.CanRedo())
	assert.Empty(t, tr.CurrentState().Nodes)
}

func TestTracker_SnapshotsAreIsolated(t *testing.T) {
	tr := NewTracker(10)

	nodes := graphOfSize(1)
	tr.SaveState(nodes, nil)

	nodes[0].Data.Label = "mutated after save"

	assert.Empty(t, tr.CurrentState().Nodes[0].Data.Label)
}
