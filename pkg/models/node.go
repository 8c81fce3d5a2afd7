// Package models defines the flow graph models for the pipeline canvas.
package models

import "time"

// NodeCategory represents the category of a flow node.
type NodeCategory string

const (
	CategoryStorage       NodeCategory = "storage"       // Data nodes backed by a table
	CategoryTransform     NodeCategory = "transform"     // Process nodes with transform logic
	CategoryMiscellaneous NodeCategory = "miscellaneous" // Annotation and helper nodes
)

// IsValid reports whether the category is one of the supported categories.
func (c NodeCategory) IsValid() bool {
	switch c {
	case CategoryStorage, CategoryTransform, CategoryMiscellaneous:
		return true
	}

	return false
}

// NodeData carries the user-visible payload of a flow node. Storage nodes use
// TableName and Columns; transform nodes use OutputColumns, ProcessLogic and
// the generated script.
type NodeData struct {
	Label           string       `json:"label"                     validate:"required,min=1"`
	Description     string       `json:"description,omitempty"`
	Color           string       `json:"color,omitempty"`
	Category        NodeCategory `json:"category"                  validate:"required"`
	TableName       string       `json:"tableName,omitempty"`
	Columns         []Column     `json:"columns,omitempty"`
	OutputColumns   []Column     `json:"outputColumns,omitempty"`
	ProcessLogic    string       `json:"processLogic,omitempty"`
	GeneratedScript string       `json:"generatedScript,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// FlowNode represents a node instance on the canvas.
type FlowNode struct {
	ID       string   `json:"id"       validate:"required"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

func (n *FlowNode) IsStorage() bool       { return n.Data.Category == CategoryStorage }
func (n *FlowNode) IsTransform() bool     { return n.Data.Category == CategoryTransform }
func (n *FlowNode) IsMiscellaneous() bool { return n.Data.Category == CategoryMiscellaneous }

// Clone returns a deep copy of the node.
func (n *FlowNode) Clone() *FlowNode {
	if n == nil {
		return nil
	}

	clone := *n
	clone.Data.Columns = append([]Column(nil), n.Data.Columns...)
	clone.Data.OutputColumns = append([]Column(nil), n.Data.OutputColumns...)

	return &clone
}

// NodeDataPatch is a partial node update. Nil fields are left unchanged.
type NodeDataPatch struct {
	Label           *string   `json:"label,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Color           *string   `json:"color,omitempty"`
	TableName       *string   `json:"tableName,omitempty"`
	Columns         *[]Column `json:"columns,omitempty"`
	OutputColumns   *[]Column `json:"outputColumns,omitempty"`
	ProcessLogic    *string   `json:"processLogic,omitempty"`
	GeneratedScript *string   `json:"generatedScript,omitempty"`
}

// Apply merges the patch into the node data and bumps UpdatedAt.
func (p *NodeDataPatch) Apply(d *NodeData) {
	if p.Label != nil {
		d.Label = *p.Label
	}

	if p.Description != nil {
		d.Description = *p.Description
	}

	if p.Color != nil {
		d.Color = *p.Color
	}

	if p.TableName != nil {
		d.TableName = *p.TableName
	}

	if p.Columns != nil {
		d.Columns = append([]Column(nil), (*p.Columns)...)
	}

	if p.OutputColumns != nil {
		d.OutputColumns = append([]Column(nil), (*p.OutputColumns)...)
	}

	if p.ProcessLogic != nil {
		d.ProcessLogic = *p.ProcessLogic
	}

	if p.GeneratedScript != nil {
		d.GeneratedScript = *p.GeneratedScript
	}

	d.UpdatedAt = time.Now().UTC()
}
