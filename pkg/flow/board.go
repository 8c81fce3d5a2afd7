// Package flow implements the pipeline graph model: per-tab node and edge
// collections, tab lifecycle around the reserved editor views, and the
// connection-validity rules for proposed edges. Successful graph mutations
// are announced on the event bus in the order they were issued.
package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tabflow/tabflow/pkg/eventbus"
	"github.com/tabflow/tabflow/pkg/models"
)

// DefaultTabName names the flow tab every fresh board starts with.
const DefaultTabName = "Flow 1"

// Board owns the flow tabs and their graphs.
type Board struct {
	mu          sync.Mutex
	logger      *slog.Logger
	bus         eventbus.EventBus
	tabs        []*models.FlowTab
	activeTabID string
}

// NewBoard creates a board seeded with the reserved views and one empty flow
// tab. The bus may be nil when no observers are wired.
func NewBoard(logger *slog.Logger, bus eventbus.EventBus) *Board {
	now := time.Now().UTC()

	board := &Board{
		logger: logger,
		bus:    bus,
		tabs: []*models.FlowTab{
			{ID: models.TabTableEditor, Name: "Table Editor", CreatedAt: now},
			{ID: models.TabSchemaDesigner, Name: "Schema Designer", CreatedAt: now},
			{ID: models.TabImportExport, Name: "Import / Export", CreatedAt: now},
		},
	}

	defaultTab := &models.FlowTab{
		ID:        uuid.New().String(),
		Name:      DefaultTabName,
		Nodes:     make([]*models.FlowNode, 0),
		Edges:     make([]*models.FlowEdge, 0),
		CreatedAt: now,
	}

	board.tabs = append(board.tabs, defaultTab)
	board.activeTabID = models.TabTableEditor

	return board
}

func (b *Board) tabByID(id string) *models.FlowTab {
	for _, tab := range b.tabs {
		if tab.ID == id {
			return tab
		}
	}

	return nil
}

// publish announces the tab's current graph on the bus, keyed by tab id so
// per-tab ordering is preserved.
func (b *Board) publish(ctx context.Context, tab *models.FlowTab) {
	if b.bus == nil {
		return
	}

	clone := tab.Clone()

	err := b.bus.Publish(ctx, tab.ID, eventbus.GraphChanged{
		TabID: clone.ID,
		Nodes: clone.Nodes,
		Edges: clone.Edges,
	})
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to publish graph change", "tab_id", tab.ID, "error", err)
	}
}

// Tabs returns copies of all tabs, reserved views included.
func (b *Board) Tabs() []*models.FlowTab {
	b.mu.Lock()
	defer b.mu.Unlock()

	tabs := make([]*models.FlowTab, 0, len(b.tabs))
	for _, tab := range b.tabs {
		tabs = append(tabs, tab.Clone())
	}

	return tabs
}

// TabByID returns a copy of the tab, or ErrTabNotFound.
func (b *Board) TabByID(id string) (*models.FlowTab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab := b.tabByID(id)
	if tab == nil {
		return nil, ErrTabNotFound
	}

	return tab.Clone(), nil
}

// ActiveTabID returns the id of the currently active tab.
func (b *Board) ActiveTabID() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.activeTabID
}

// SetActiveTab switches the active tab.
func (b *Board) SetActiveTab(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tabByID(id) == nil {
		return ErrTabNotFound
	}

	b.activeTabID = id

	return nil
}

// CreateTab adds a new empty flow tab.
func (b *Board) CreateTab(name string) *models.FlowTab {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab := &models.FlowTab{
		ID:        uuid.New().String(),
		Name:      name,
		Nodes:     make([]*models.FlowNode, 0),
		Edges:     make([]*models.FlowEdge, 0),
		CreatedAt: time.Now().UTC(),
	}

	b.tabs = append(b.tabs, tab)

	return tab.Clone()
}

// RenameTab renames a tab. Reserved views cannot be renamed.
func (b *Board) RenameTab(id, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if models.IsReservedTab(id) {
		return ErrReservedTab
	}

	tab := b.tabByID(id)
	if tab == nil {
		return ErrTabNotFound
	}

	tab.Name = name

	return nil
}

// DeleteTab removes a tab and announces its closure so per-tab observers can
// drop their state. Reserved views cannot be deleted.
func (b *Board) DeleteTab(ctx context.Context, id string) error {
	b.mu.Lock()

	if models.IsReservedTab(id) {
		b.mu.Unlock()

		return ErrReservedTab
	}

	index := -1

	for i, tab := range b.tabs {
		if tab.ID == id {
			index = i

			break
		}
	}

	if index < 0 {
		b.mu.Unlock()

		return ErrTabNotFound
	}

	b.tabs = append(b.tabs[:index], b.tabs[index+1:]...)

	if b.activeTabID == id {
		b.activeTabID = models.TabTableEditor
	}

	bus := b.bus
	b.mu.Unlock()

	if bus != nil {
		if err := bus.Publish(ctx, id, eventbus.TabClosed{TabID: id}); err != nil {
			b.logger.WarnContext(ctx, "Failed to publish tab closure", "tab_id", id, "error", err)
		}
	}

	return nil
}

// AddNode places a node on the tab, stamping id and timestamps.
func (b *Board) AddNode(ctx context.Context, tabID string, node *models.FlowNode) (*models.FlowNode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if models.IsReservedTab(tabID) {
		return nil, ErrReservedTab
	}

	tab := b.tabByID(tabID)
	if tab == nil {
		return nil, ErrTabNotFound
	}

	if node.ID == "" {
		node.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	node.Data.CreatedAt = now
	node.Data.UpdatedAt = now

	tab.Nodes = append(tab.Nodes, node.Clone())

	b.publish(ctx, tab)

	return node, nil
}

// UpdateNode merges a data patch into the node.
func (b *Board) UpdateNode(ctx context.Context, tabID, nodeID string, patch *models.NodeDataPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab := b.tabByID(tabID)
	if tab == nil {
		return ErrTabNotFound
	}

	node := tab.NodeByID(nodeID)
	if node == nil {
		return ErrNodeNotFound
	}

	patch.Apply(&node.Data)

	b.publish(ctx, tab)

	return nil
}

// MoveNode updates the node's canvas position.
func (b *Board) MoveNode(ctx context.Context, tabID, nodeID string, pos models.Position) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab := b.tabByID(tabID)
	if tab == nil {
		return ErrTabNotFound
	}

	node := tab.NodeByID(nodeID)
	if node == nil {
		return ErrNodeNotFound
	}

	node.Position = pos
	node.Data.UpdatedAt = time.Now().UTC()

	b.publish(ctx, tab)

	return nil
}

// DeleteNode removes the node and every edge referencing it as source or
// target. Dangling edges are never left behind.
func (b *Board) DeleteNode(ctx context.Context, tabID, nodeID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab := b.tabByID(tabID)
	if tab == nil {
		return ErrTabNotFound
	}

	index := -1

	for i, node := range tab.Nodes {
		if node.ID == nodeID {
			index = i

			break
		}
	}

	if index < 0 {
		return ErrNodeNotFound
	}

	tab.Nodes = append(tab.Nodes[:index], tab.Nodes[index+1:]...)

	keptEdges := make([]*models.FlowEdge, 0, len(tab.Edges))
	for _, edge := range tab.Edges {
		if !edge.References(nodeID) {
			keptEdges = append(keptEdges, edge)
		}
	}

	tab.Edges = keptEdges

	b.publish(ctx, tab)

	return nil
}

// Connect validates and adds a directed edge. A rejected connection mutates
// nothing and surfaces no persisted side effect.
func (b *Board) Connect(ctx context.Context, tabID string, edge *models.FlowEdge) (*models.FlowEdge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab := b.tabByID(tabID)
	if tab == nil {
		return nil, ErrTabNotFound
	}

	source := tab.NodeByID(edge.Source)
	target := tab.NodeByID(edge.Target)

	if !IsValidConnection(source, target, edge) {
		return nil, &ConnectionError{
			TabID:  tabID,
			Source: edge.Source,
			Target: edge.Target,
			Reason: "endpoints must pair a storage or miscellaneous node with a transform node",
		}
	}

	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}

	edgeCopy := *edge
	tab.Edges = append(tab.Edges, &edgeCopy)

	b.publish(ctx, tab)

	return edge, nil
}

// DeleteEdge removes an edge by id.
func (b *Board) DeleteEdge(ctx context.Context, tabID, edgeID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab := b.tabByID(tabID)
	if tab == nil {
		return ErrTabNotFound
	}

	index := -1

	for i, edge := range tab.Edges {
		if edge.ID == edgeID {
			index = i

			break
		}
	}

	if index < 0 {
		return ErrEdgeNotFound
	}

	tab.Edges = append(tab.Edges[:index], tab.Edges[index+1:]...)

	b.publish(ctx, tab)

	return nil
}

// ReplaceGraph swaps a tab's full node/edge collections without announcing a
// change. Undo/redo replay applies snapshots through here; publishing the
// replayed state would feed it straight back into the history it came from.
func (b *Board) ReplaceGraph(tabID string, nodes []*models.FlowNode, edges []*models.FlowEdge) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tab := b.tabByID(tabID)
	if tab == nil {
		return ErrTabNotFound
	}

	tab.Nodes = nodes
	tab.Edges = edges

	return nil
}

// ReplaceTabs swaps in a whole new set of flow tabs, as produced by import.
// Reserved views are kept; an unknown active tab falls back to the table
// editor.
func (b *Board) ReplaceTabs(tabs []*models.FlowTab, activeTabID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]*models.FlowTab, 0, len(b.tabs))

	for _, tab := range b.tabs {
		if models.IsReservedTab(tab.ID) {
			kept = append(kept, tab)
		}
	}

	for _, tab := range tabs {
		if !models.IsReservedTab(tab.ID) {
			kept = append(kept, tab.Clone())
		}
	}

	b.tabs = kept

	if b.tabByID(activeTabID) != nil {
		b.activeTabID = activeTabID
	} else {
		b.activeTabID = models.TabTableEditor
	}
}

// FlowTabs returns copies of the non-reserved tabs, the ones that carry
// graphs and history.
func (b *Board) FlowTabs() []*models.FlowTab {
	b.mu.Lock()
	defer b.mu.Unlock()

	tabs := make([]*models.FlowTab, 0, len(b.tabs))

	for _, tab := range b.tabs {
		if !models.IsReservedTab(tab.ID) {
			tabs = append(tabs, tab.Clone())
		}
	}

	return tabs
}
