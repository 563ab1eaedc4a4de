package hive

import (
	"context"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/lock"
	"github.com/dreamware/hivedir/internal/metadata"
)

// InsertPrimaryIndexKey assigns key to a writable node chosen by the
// dimension's configured assigner, then records the routing row (spec.md
// §4.6 "Key CRUD").
func (h *Hive) InsertPrimaryIndexKey(ctx context.Context, dimensionName string, key any) (metadata.Node, error) {
	const op = "Hive.InsertPrimaryIndexKey"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return metadata.Node{}, err
	}
	dim, ok := g.dimension(dimensionName)
	if !ok {
		return metadata.Node{}, hiveerr.New(hiveerr.MissingParent, op, dimensionName, "dimension not found")
	}
	writable := g.writableNodes(dimensionName)
	pick, err := h.assigner.Resolve(dim.Assigner)
	if err != nil {
		return metadata.Node{}, err
	}
	policy, err := pick.Choose(writable, key)
	if err != nil {
		return metadata.Node{}, err
	}

	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return metadata.Node{}, err
	}
	if err := d.InsertPrimaryIndexKey(ctx, key, policy.ID); err != nil {
		return metadata.Node{}, err
	}
	h.metrics.DirectoryWrite()
	if err := h.commitAndSync(ctx); err != nil {
		return metadata.Node{}, err
	}
	return policy, nil
}

// InsertResourceId records resourceId -> primaryKey under resourceName. A
// no-op for partitioning resources (spec.md invariant 6).
func (h *Hive) InsertResourceId(ctx context.Context, dimensionName, resourceName string, resourceID, primaryKey any) error {
	const op = "Hive.InsertResourceId"
	if err := h.requireKeyWritable(ctx, op, dimensionName, primaryKey); err != nil {
		return err
	}
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return err
	}
	if err := d.InsertResourceId(ctx, resourceName, resourceID, primaryKey); err != nil {
		return err
	}
	h.metrics.DirectoryWrite()
	return h.commitAndSync(ctx)
}

// InsertSecondaryIndexKey records secondaryKey -> resourceId under
// resourceName/indexName.
func (h *Hive) InsertSecondaryIndexKey(ctx context.Context, dimensionName, resourceName, indexName string, secondaryKey, resourceID any) error {
	const op = "Hive.InsertSecondaryIndexKey"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return err
	}
	semaphores, err := d.GetKeySemaphoresOfResourceId(ctx, resourceName, resourceID)
	if err != nil {
		return err
	}
	if err := h.checkSemaphores(op, dimensionName, semaphores); err != nil {
		return err
	}
	if err := d.InsertSecondaryIndexKey(ctx, resourceName, indexName, secondaryKey, resourceID); err != nil {
		return err
	}
	h.metrics.DirectoryWrite()
	return h.commitAndSync(ctx)
}

// UpdatePrimaryIndexKeyReadOnly sets or clears the read-only flag on every
// semaphore for key.
func (h *Hive) UpdatePrimaryIndexKeyReadOnly(ctx context.Context, dimensionName string, key any, readOnly bool) error {
	const op = "Hive.UpdatePrimaryIndexKeyReadOnly"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return err
	}
	if err := d.UpdatePrimaryIndexKeyReadOnly(ctx, key, readOnly); err != nil {
		return err
	}
	h.metrics.DirectoryWrite()
	return h.commitAndSync(ctx)
}

// UpdatePrimaryIndexKeyOfResourceId repoints a resource's partition key.
func (h *Hive) UpdatePrimaryIndexKeyOfResourceId(ctx context.Context, dimensionName, resourceName string, resourceID, newPrimaryKey any) error {
	const op = "Hive.UpdatePrimaryIndexKeyOfResourceId"
	if err := h.requireKeyWritable(ctx, op, dimensionName, newPrimaryKey); err != nil {
		return err
	}
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return err
	}
	if err := d.UpdatePrimaryIndexKeyOfResourceId(ctx, resourceName, resourceID, newPrimaryKey); err != nil {
		return err
	}
	h.metrics.DirectoryWrite()
	return h.commitAndSync(ctx)
}

// DeletePrimaryIndexKey removes key and cascades to every resource and
// secondary row pointing at it.
func (h *Hive) DeletePrimaryIndexKey(ctx context.Context, dimensionName string, key any) error {
	const op = "Hive.DeletePrimaryIndexKey"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return err
	}
	if err := d.DeletePrimaryIndexKey(ctx, key); err != nil {
		return err
	}
	h.metrics.DirectoryWrite()
	return h.commitAndSync(ctx)
}

// DeleteResourceId removes a resource row and its secondary rows.
func (h *Hive) DeleteResourceId(ctx context.Context, dimensionName, resourceName string, resourceID any) error {
	const op = "Hive.DeleteResourceId"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return err
	}
	if err := d.DeleteResourceId(ctx, resourceName, resourceID); err != nil {
		return err
	}
	h.metrics.DirectoryWrite()
	return h.commitAndSync(ctx)
}

// DeleteSecondaryIndexKey removes one secondary row.
func (h *Hive) DeleteSecondaryIndexKey(ctx context.Context, dimensionName, resourceName, indexName string, secondaryKey any) error {
	const op = "Hive.DeleteSecondaryIndexKey"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return err
	}
	if err := d.DeleteSecondaryIndexKey(ctx, resourceName, indexName, secondaryKey); err != nil {
		return err
	}
	h.metrics.DirectoryWrite()
	return h.commitAndSync(ctx)
}

// GetNodeIdsOfPrimaryIndexKey returns the set of nodes a partition key is
// assigned to (spec.md scenario S1).
func (h *Hive) GetNodeIdsOfPrimaryIndexKey(ctx context.Context, dimensionName string, key any) ([]metadata.ObjectID, error) {
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return nil, err
	}
	h.metrics.DirectoryRead()
	return d.GetNodeIdsOfPrimaryIndexKey(ctx, key)
}

// GetKeySemaphoresOfPrimaryIndexKey returns the semaphore set for key.
func (h *Hive) GetKeySemaphoresOfPrimaryIndexKey(ctx context.Context, dimensionName string, key any) ([]metadata.KeySemaphore, error) {
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return nil, err
	}
	h.metrics.DirectoryRead()
	return d.GetKeySemaphoresOfPrimaryIndexKey(ctx, key)
}

// GetKeySemaphoresOfResourceId returns the semaphore set for resourceID.
func (h *Hive) GetKeySemaphoresOfResourceId(ctx context.Context, dimensionName, resourceName string, resourceID any) ([]metadata.KeySemaphore, error) {
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return nil, err
	}
	h.metrics.DirectoryRead()
	return d.GetKeySemaphoresOfResourceId(ctx, resourceName, resourceID)
}

// GetKeySemaphoresOfSecondaryIndexKey returns the semaphore set for
// secondaryKey via the secondary -> resource -> primary join.
func (h *Hive) GetKeySemaphoresOfSecondaryIndexKey(ctx context.Context, dimensionName, resourceName, indexName string, secondaryKey any) ([]metadata.KeySemaphore, error) {
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return nil, err
	}
	h.metrics.DirectoryRead()
	return d.GetKeySemaphoresOfSecondaryIndexKey(ctx, resourceName, indexName, secondaryKey)
}

// GetPrimaryIndexKeyOfResourceId resolves a resource id to its partition key.
func (h *Hive) GetPrimaryIndexKeyOfResourceId(ctx context.Context, dimensionName, resourceName string, resourceID any) (any, bool, error) {
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return nil, false, err
	}
	h.metrics.DirectoryRead()
	return d.GetPrimaryIndexKeyOfResourceId(ctx, resourceName, resourceID)
}

// requireKeyWritable resolves key's current semaphores and runs the lock
// engine against hive + node + key, the common "mutate an existing key"
// pattern shared by InsertResourceId and UpdatePrimaryIndexKeyOfResourceId.
func (h *Hive) requireKeyWritable(ctx context.Context, op, dimensionName string, key any) error {
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	d, err := h.directoryFor(dimensionName)
	if err != nil {
		return err
	}
	semaphores, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, key)
	if err != nil {
		return err
	}
	if len(semaphores) == 0 {
		return hiveerr.New(hiveerr.MissingParent, op, "", "primary key has no row")
	}
	return h.checkSemaphores(op, dimensionName, semaphores)
}

func (h *Hive) checkSemaphores(op, dimensionName string, semaphores []metadata.KeySemaphore) error {
	g := h.snapshot()
	hiveSem := metadata.HiveSemaphore{Revision: g.revision, Status: g.hiveStatus}
	nodeStatus := func(id metadata.ObjectID) (metadata.Status, bool) {
		n, ok := g.nodeByID(dimensionName, id)
		if !ok {
			return "", false
		}
		return n.Status, true
	}
	return lock.RequireWritable(op, hiveSem, semaphores, nodeStatus, "")
}
