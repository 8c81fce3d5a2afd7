package web

import "github.com/tabflow/tabflow/pkg/models"

// CreateTableRequest is the payload for table creation.
type CreateTableRequest struct {
	Name     string           `json:"name"`
	Columns  []models.Column  `json:"columns"`
	Position *models.Position `json:"position,omitempty"`
}

// RowRequest carries column-id-to-value bindings for row creation and update.
type RowRequest struct {
	Values map[string]models.Value `json:"values"`
}

// CreateRelationshipRequest is the payload for relationship creation.
type CreateRelationshipRequest struct {
	FromTableID  string                  `json:"fromTableId"`
	FromColumnID string                  `json:"fromColumnId"`
	ToTableID    string                  `json:"toTableId"`
	ToColumnID   string                  `json:"toColumnId"`
	Type         models.RelationshipType `json:"type"`
}

// TabRequest names a tab on create or rename.
type TabRequest struct {
	Name string `json:"name"`
}

// AddNodeRequest is the payload for placing a node.
type AddNodeRequest struct {
	Type     string          `json:"type"`
	Position models.Position `json:"position"`
	Data     models.NodeData `json:"data"`
}

// MoveNodeRequest is the payload for a position update.
type MoveNodeRequest struct {
	Position models.Position `json:"position"`
}

// ConnectRequest is the payload for edge creation.
type ConnectRequest struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Animated     bool   `json:"animated"`
}

// HistoryStepResponse reports whether an undo/redo step was applied.
type HistoryStepResponse struct {
	Applied bool `json:"applied"`
}
