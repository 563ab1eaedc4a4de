// Package lock implements the three-scope writability predicate of spec.md
// §4.5: a key is writable iff the hive is writable, and for every semaphore
// the directory returns for that key, its node is writable and the
// semaphore itself is writable. There is no teacher analog for this
// composition — it is novel logic over the metadata model's status fields —
// so it is grounded on spec.md directly rather than on borrowed code.
package lock

import (
	"fmt"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// RequireWritable fails with a ReadOnly error naming the first non-writable
// scope it finds, checked in hive -> node -> key order. nodeStatus must
// return the status of the node a semaphore names; it is supplied by the
// caller (the hive façade) because the lock engine itself holds no
// reference to the metadata graph.
func RequireWritable(op string, hive metadata.HiveSemaphore, semaphores []metadata.KeySemaphore, nodeStatus func(metadata.ObjectID) (metadata.Status, bool), label string) error {
	if !hive.Writable() {
		return hiveerr.ReadOnlyErr(op, label, "hive", "hive is read-only")
	}
	for _, s := range semaphores {
		status, found := nodeStatus(s.NodeID)
		if found && !status.Writable() {
			return hiveerr.ReadOnlyErr(op, label, "node", fmt.Sprintf("node %d is read-only", s.NodeID))
		}
		if !s.Writable() {
			return hiveerr.ReadOnlyErr(op, label, "key", "key semaphore is read-only")
		}
	}
	return nil
}

// RequireHiveWritable is the degenerate single-scope case: metadata CRUD
// (dimensions, resources, indexes, nodes themselves) only ever checks the
// hive-wide flag, since there is no per-key semaphore involved.
func RequireHiveWritable(op string, hive metadata.HiveSemaphore, label string) error {
	if !hive.Writable() {
		return hiveerr.ReadOnlyErr(op, label, "hive", "hive is read-only")
	}
	return nil
}

// RequireNodeWritable checks hive and one node's status, used when mutating
// the node itself or opening a connection that targets it directly rather
// than through a key semaphore.
func RequireNodeWritable(op string, hive metadata.HiveSemaphore, node metadata.Node, label string) error {
	if !hive.Writable() {
		return hiveerr.ReadOnlyErr(op, label, "hive", "hive is read-only")
	}
	if !node.Status.Writable() {
		return hiveerr.ReadOnlyErr(op, label, "node", fmt.Sprintf("node %q is read-only", node.Name))
	}
	return nil
}
