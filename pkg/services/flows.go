package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/tabflow/tabflow/pkg/flow"
	"github.com/tabflow/tabflow/pkg/history"
	"github.com/tabflow/tabflow/pkg/models"
	"github.com/tabflow/tabflow/pkg/script"
)

// Flows is the service in front of the pipeline board and its per-tab
// history.
type Flows struct {
	board    *flow.Board
	history  *history.Manager
	validate *validator.Validate
}

// NewFlows creates a new flows service.
func NewFlows(board *flow.Board, manager *history.Manager) *Flows {
	return &Flows{
		board:    board,
		history:  manager,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Tabs returns all tabs, reserved views included.
func (f *Flows) Tabs() []*models.FlowTab {
	return f.board.Tabs()
}

// GetTab returns one tab.
func (f *Flows) GetTab(id string) (*models.FlowTab, error) {
	return f.board.TabByID(id)
}

// ActiveTabID returns the id of the active tab.
func (f *Flows) ActiveTabID() string {
	return f.board.ActiveTabID()
}

// SetActiveTab switches the active tab.
func (f *Flows) SetActiveTab(id string) error {
	return f.board.SetActiveTab(id)
}

// CreateTab adds a new flow tab.
func (f *Flows) CreateTab(name string) (*models.FlowTab, error) {
	if name == "" {
		return nil, NewValidationError("CreateTab", "tab name is required", ErrInvalidRequest)
	}

	return f.board.CreateTab(name), nil
}

// RenameTab renames a flow tab. Reserved views are rejected.
func (f *Flows) RenameTab(id, name string) error {
	if name == "" {
		return NewValidationError("RenameTab", "tab name is required", ErrInvalidRequest)
	}

	return f.board.RenameTab(id, name)
}

// DeleteTab removes a flow tab and its history.
func (f *Flows) DeleteTab(ctx context.Context, id string) error {
	return f.board.DeleteTab(ctx, id)
}

// AddNode validates and places a node.
func (f *Flows) AddNode(ctx context.Context, tabID string, node *models.FlowNode) (*models.FlowNode, error) {
	if node == nil {
		return nil, NewValidationError("AddNode", "node is required", ErrInvalidRequest)
	}

	if err := f.validate.StructCtx(ctx, node.Data); err != nil {
		return nil, NewValidationError("AddNode", err.Error(), ErrInvalidRequest)
	}

	if !node.Data.Category.IsValid() {
		return nil, NewValidationError("AddNode", "node category must be storage, transform or miscellaneous", ErrInvalidRequest)
	}

	return f.board.AddNode(ctx, tabID, node)
}

// UpdateNode merges a data patch into a node.
func (f *Flows) UpdateNode(ctx context.Context, tabID, nodeID string, patch *models.NodeDataPatch) error {
	return f.board.UpdateNode(ctx, tabID, nodeID, patch)
}

// MoveNode updates a node's position.
func (f *Flows) MoveNode(ctx context.Context, tabID, nodeID string, pos models.Position) error {
	return f.board.MoveNode(ctx, tabID, nodeID, pos)
}

// DeleteNode removes a node and its edges.
func (f *Flows) DeleteNode(ctx context.Context, tabID, nodeID string) error {
	return f.board.DeleteNode(ctx, tabID, nodeID)
}

// Connect validates and adds an edge.
func (f *Flows) Connect(ctx context.Context, tabID string, edge *models.FlowEdge) (*models.FlowEdge, error) {
	if edge == nil || edge.Source == "" || edge.Target == "" {
		return nil, NewValidationError("Connect", "edge source and target are required", ErrInvalidRequest)
	}

	return f.board.Connect(ctx, tabID, edge)
}

// DeleteEdge removes an edge.
func (f *Flows) DeleteEdge(ctx context.Context, tabID, edgeID string) error {
	return f.board.DeleteEdge(ctx, tabID, edgeID)
}

// Undo steps the tab's history back and applies the snapshot to the board.
// It reports whether a step was taken.
func (f *Flows) Undo(tabID string) (bool, error) {
	if _, err := f.board.TabByID(tabID); err != nil {
		return false, err
	}

	stepped := f.history.Undo(tabID, func(entry history.Entry) {
		_ = f.board.ReplaceGraph(tabID, entry.Nodes, entry.Edges)
	})

	return stepped, nil
}

// Redo steps the tab's history forward and applies the snapshot to the board.
func (f *Flows) Redo(tabID string) (bool, error) {
	if _, err := f.board.TabByID(tabID); err != nil {
		return false, err
	}

	stepped := f.history.Redo(tabID, func(entry history.Entry) {
		_ = f.board.ReplaceGraph(tabID, entry.Nodes, entry.Edges)
	})

	return stepped, nil
}

// GenerateScript renders the transform script for a node and stores it on the
// node's data.
func (f *Flows) GenerateScript(ctx context.Context, tabID, nodeID string) (string, error) {
	tab, err := f.board.TabByID(tabID)
	if err != nil {
		return "", err
	}

	node := tab.NodeByID(nodeID)
	if node == nil {
		return "", flow.ErrNodeNotFound
	}

	rendered, err := script.Generate(node)
	if err != nil {
		return "", NewValidationError("GenerateScript", err.Error(), ErrInvalidRequest)
	}

	err = f.board.UpdateNode(ctx, tabID, nodeID, &models.NodeDataPatch{GeneratedScript: &rendered})
	if err != nil {
		return "", fmt.Errorf("failed to store generated script: %w", err)
	}

	return rendered, nil
}
