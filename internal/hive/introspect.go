package hive

import "github.com/dreamware/hivedir/internal/metadata"

// Status returns the hive's locally-known revision and read-only flag, as of
// the last successful sync. Used by read-only inspection tooling
// (cmd/hivectl); callers that need the freshest possible value should call
// ForceSynchronize first.
func (h *Hive) Status() metadata.HiveSemaphore {
	g := h.snapshot()
	return metadata.HiveSemaphore{Revision: g.revision, Status: g.hiveStatus}
}

// ListDimensions returns every partition dimension in the current graph.
func (h *Hive) ListDimensions() []metadata.PartitionDimension {
	g := h.snapshot()
	out := make([]metadata.PartitionDimension, 0, len(g.dimensions))
	for _, d := range g.dimensions {
		out = append(out, d)
	}
	return out
}

// ListNodes returns every node under dimensionName in the current graph.
func (h *Hive) ListNodes(dimensionName string) []metadata.Node {
	g := h.snapshot()
	nodes := g.nodes[dimensionName]
	out := make([]metadata.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}
