package services

import (
	"context"
	"fmt"

	"github.com/tabflow/tabflow/pkg/exchange"
	"github.com/tabflow/tabflow/pkg/flow"
	"github.com/tabflow/tabflow/pkg/persistence"
	"github.com/tabflow/tabflow/pkg/store"
)

// Transfer implements whole-workspace export and import across the table
// store and the flow board.
type Transfer struct {
	store *store.Store
	board *flow.Board
}

// NewTransfer creates a new transfer service.
func NewTransfer(s *store.Store, board *flow.Board) *Transfer {
	return &Transfer{store: s, board: board}
}

// Export serializes the full workspace into the versioned export document.
func (t *Transfer) Export() ([]byte, error) {
	dataset := &persistence.Dataset{
		TableData: t.store.Tables(),
		Schema:    t.store.Schema(),
	}

	return exchange.ExportJSON(dataset, t.board.FlowTabs(), t.board.ActiveTabID())
}

// Import parses an export document and, only once parsing has fully
// succeeded, replaces the workspace with its content. Malformed documents
// leave existing state untouched.
func (t *Transfer) Import(ctx context.Context, raw []byte) error {
	result, err := exchange.ImportJSON(raw)
	if err != nil {
		return err
	}

	if err := t.store.Replace(ctx, result.Dataset); err != nil {
		return fmt.Errorf("failed to persist imported data: %w", err)
	}

	t.board.ReplaceTabs(result.FlowTabs, result.ActiveTabID)

	return nil
}
