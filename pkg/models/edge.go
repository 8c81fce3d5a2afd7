// Package models defines handle-based edge models for node connections.
package models

// Canonical handle roles. Edges created without explicit handles resolve to
// these defaults.
const (
	HandleOutput = "output"
	HandleInput  = "input"
)

// FlowEdge is a directed connection between two nodes on the canvas.
type FlowEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Animated     bool   `json:"animated"`
}

// ResolvedSourceHandle returns the edge's source handle, defaulting to the
// canonical output handle.
func (e *FlowEdge) ResolvedSourceHandle() string {
	if e.SourceHandle == "" {
		return HandleOutput
	}

	return e.SourceHandle
}

// ResolvedTargetHandle returns the edge's target handle, defaulting to the
// canonical input handle.
func (e *FlowEdge) ResolvedTargetHandle() string {
	if e.TargetHandle == "" {
		return HandleInput
	}

	return e.TargetHandle
}

// References reports whether the edge touches the given node on either end.
func (e *FlowEdge) References(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
