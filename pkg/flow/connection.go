package flow

import "github.com/tabflow/tabflow/pkg/models"

// IsValidConnection decides whether a proposed edge between the two nodes is
// legal: no self-loops, source handle must resolve to the output role and
// target handle to the input role, and the endpoint categories must pair a
// storage or miscellaneous node with a transform node in either direction.
// Transform to transform and storage/miscellaneous to storage/miscellaneous
// are rejected.
func IsValidConnection(source, target *models.FlowNode, edge *models.FlowEdge) bool {
	if source == nil || target == nil {
		return false
	}

	if source.ID == target.ID {
		return false
	}

	if edge.ResolvedSourceHandle() != models.HandleOutput {
		return false
	}

	if edge.ResolvedTargetHandle() != models.HandleInput {
		return false
	}

	feeds := source.IsStorage() || source.IsMiscellaneous()
	drains := target.IsStorage() || target.IsMiscellaneous()

	return (feeds && target.IsTransform()) || (source.IsTransform() && drains)
}
