package models

import "time"

// Reserved tab identifiers denote the non-graph views of the editor. They are
// excluded from tab CRUD and carry no undo history.
const (
	TabTableEditor    = "table-editor"
	TabSchemaDesigner = "schema-designer"
	TabImportExport   = "import-export"
)

// IsReservedTab reports whether the id names one of the built-in views.
func IsReservedTab(id string) bool {
	switch id {
	case TabTableEditor, TabSchemaDesigner, TabImportExport:
		return true
	}

	return false
}

// FlowTab is an independent named collection of pipeline nodes and edges with
// its own undo history.
type FlowTab struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"      validate:"required,min=1"`
	Nodes     []*FlowNode `json:"nodes"`
	Edges     []*FlowEdge `json:"edges"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NodeByID returns the node with the given id, or nil.
func (t *FlowTab) NodeByID(id string) *FlowNode {
	for _, node := range t.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// Clone returns a deep copy of the tab.
func (t *FlowTab) Clone() *FlowTab {
	if t == nil {
		return nil
	}

	clone := &FlowTab{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		Nodes:     make([]*FlowNode, 0, len(t.Nodes)),
		Edges:     make([]*FlowEdge, 0, len(t.Edges)),
	}

	for _, node := range t.Nodes {
		clone.Nodes = append(clone.Nodes, node.Clone())
	}

	for _, edge := range t.Edges {
		edgeCopy := *edge
		clone.Edges = append(clone.Edges, &edgeCopy)
	}

	return clone
}
