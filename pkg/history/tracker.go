// Package history implements bounded linear undo/redo over a tab's node/edge
// graph: an append-only snapshot log with a movable cursor, capped at a fixed
// number of entries with oldest-first eviction.
package history

import (
	"encoding/json"
	"sync"

	"github.com/tabflow/tabflow/pkg/models"
)

// DefaultLimit is the maximum number of snapshots kept per tab.
const DefaultLimit = 50

// Entry is an immutable snapshot of a tab's full node and edge collections at
// one instant.
type Entry struct {
	Nodes []*models.FlowNode `json:"nodes"`
	Edges []*models.FlowEdge `json:"edges"`
}

func cloneEntry(nodes []*models.FlowNode, edges []*models.FlowEdge) Entry {
	entry := Entry{
		Nodes: make([]*models.FlowNode, 0, len(nodes)),
		Edges: make([]*models.FlowEdge, 0, len(edges)),
	}

	for _, node := range nodes {
		entry.Nodes = append(entry.Nodes, node.Clone())
	}

	for _, edge := range edges {
		edgeCopy := *edge
		entry.Edges = append(entry.Edges, &edgeCopy)
	}

	return entry
}

func fingerprint(entry Entry) string {
	// Canonical serialization; marshal errors cannot occur for these types.
	data, _ := json.Marshal(entry)

	return string(data)
}

// Tracker is the undo/redo log for one tab. While a snapshot is being
// replayed, pushes triggered as a side effect of applying the replayed state
// are suppressed, so undo/redo cannot corrupt its own history.
type Tracker struct {
	mu           sync.Mutex
	entries      []Entry
	fingerprints []string
	cursor       int
	limit        int
	replaying    bool
}

// NewTracker creates a tracker seeded with a single empty snapshot. A limit
// of zero or less falls back to DefaultLimit.
func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultLimit
	}

	empty := cloneEntry(nil, nil)

	return &Tracker{
		entries:      []Entry{empty},
		fingerprints: []string{fingerprint(empty)},
		limit:        limit,
	}
}

// SaveState records a new snapshot. It is a no-op while a replay is in
// progress, and a no-op when the snapshot is structurally identical to the
// one at the cursor. Any redo branch beyond the cursor is discarded, and the
// log is trimmed from the oldest end once it exceeds the limit.
func (t *Tracker) SaveState(nodes []*models.FlowNode, edges []*models.FlowEdge) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.replaying {
		return
	}

	entry := cloneEntry(nodes, edges)
	print := fingerprint(entry)

	if print == t.fingerprints[t.cursor] {
		return
	}

	t.entries = append(t.entries[:t.cursor+1], entry)
	t.fingerprints = append(t.fingerprints[:t.cursor+1], print)
	t.cursor++

	if len(t.entries) > t.limit {
		overflow := len(t.entries) - t.limit
		t.entries = t.entries[overflow:]
		t.fingerprints = t.fingerprints[overflow:]
		t.cursor -= overflow

		if t.cursor < 0 {
			t.cursor = 0
		}
	}
}

// Undo moves the cursor one entry back and applies that snapshot via the
// callback, with new pushes suppressed for the duration. It reports whether a
// step was taken; at the oldest entry it is a no-op.
func (t *Tracker) Undo(apply func(Entry)) bool {
	t.mu.Lock()

	if t.cursor == 0 {
		t.mu.Unlock()

		return false
	}

	t.cursor--
	t.replaying = true
	entry := t.entries[t.cursor]
	snapshot := cloneEntry(entry.Nodes, entry.Edges)
	t.mu.Unlock()

	if apply != nil {
		apply(snapshot)
	}

	t.mu.Lock()
	t.replaying = false
	t.mu.Unlock()

	return true
}

// Redo moves the cursor one entry forward, with the same replay bracketing as
// Undo. At the newest entry it is a no-op.
func (t *Tracker) Redo(apply func(Entry)) bool {
	t.mu.Lock()

	if t.cursor >= len(t.entries)-1 {
		t.mu.Unlock()

		return false
	}

	t.cursor++
	t.replaying = true
	entry := t.entries[t.cursor]
	snapshot := cloneEntry(entry.Nodes, entry.Edges)
	t.mu.Unlock()

	if apply != nil {
		apply(snapshot)
	}

	t.mu.Lock()
	t.replaying = false
	t.mu.Unlock()

	return true
}

// ClearHistory resets the log to a single empty snapshot. History is scoped
// per tab, so this runs when the tab is switched or closed.
func (t *Tracker) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()

	empty := cloneEntry(nil, nil)
	t.entries = []Entry{empty}
	t.fingerprints = []string{fingerprint(empty)}
	t.cursor = 0
	t.replaying = false
}

// CurrentState returns a copy of the snapshot at the cursor.
func (t *Tracker) CurrentState() Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.entries[t.cursor]

	return cloneEntry(entry.Nodes, entry.Edges)
}

// CanUndo reports whether an undo step is available.
func (t *Tracker) CanUndo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cursor > 0
}

// CanRedo reports whether a redo step is available.
func (t *Tracker) CanRedo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cursor < len(t.entries)-1
}

// Len returns the number of recorded snapshots.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}
