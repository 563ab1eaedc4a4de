package hive

import (
	"context"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// bumpRevision persists the next revision and the current read-only flag,
// retrying once against a freshly-loaded semaphore if another process raced
// us to the compare-and-swap (spec.md §3 invariant 4: bumped exactly once
// per committed mutation; §5: updates to the revision are serialized one
// writer at a time, so a lost race here means re-reading and retrying, not
// silently skipping the bump).
func (h *Hive) bumpRevision(ctx context.Context) (int64, error) {
	const op = "Hive.bumpRevision"
	for attempt := 0; attempt < 2; attempt++ {
		h.mu.RLock()
		current := metadata.HiveSemaphore{Revision: h.g.revision, Status: h.g.hiveStatus}
		h.mu.RUnlock()

		next := metadata.HiveSemaphore{Revision: current.Revision + 1, Status: current.Status}
		ok, err := h.gw.semaphore.CompareAndSwapRevision(ctx, current.Revision, next)
		if err != nil {
			return 0, err
		}
		if ok {
			return next.Revision, nil
		}
		sem, err := h.gw.semaphore.Load(ctx)
		if err != nil {
			return 0, err
		}
		h.mu.Lock()
		refreshed := h.g.clone()
		refreshed.revision = sem.Revision
		refreshed.hiveStatus = sem.Status
		h.g = refreshed
		h.mu.Unlock()
	}
	return 0, hiveerr.New(hiveerr.PersistenceError, op, "", "revision compare-and-swap lost the race twice")
}

// commitAndSync bumps the revision, then forces an immediate resynchronize
// so this process's own graph reflects the mutation it just made, matching
// spec.md §4.6 step 6 ("Calls sync() to reconcile caches").
func (h *Hive) commitAndSync(ctx context.Context) error {
	if _, err := h.bumpRevision(ctx); err != nil {
		return err
	}
	return h.ForceSynchronize(ctx)
}

// AddPartitionDimension creates a new partitioning axis. Fails DuplicateName
// if dim.Name is already taken.
func (h *Hive) AddPartitionDimension(ctx context.Context, dim metadata.PartitionDimension) (metadata.PartitionDimension, error) {
	const op = "Hive.AddPartitionDimension"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return metadata.PartitionDimension{}, err
	}
	if _, exists := g.dimension(dim.Name); exists {
		return metadata.PartitionDimension{}, hiveerr.New(hiveerr.DuplicateName, op, dim.Name, "dimension already exists")
	}
	if dim.Assigner == "" {
		dim.Assigner = "hash-mod"
	}
	if _, err := h.assigner.Resolve(dim.Assigner); err != nil {
		return metadata.PartitionDimension{}, err
	}
	created, err := h.gw.dimensions.Create(ctx, dim)
	if err != nil {
		return metadata.PartitionDimension{}, err
	}
	if err := h.commitAndSync(ctx); err != nil {
		return metadata.PartitionDimension{}, err
	}
	return created, nil
}

// UpdatePartitionDimension persists changes to an existing dimension.
func (h *Hive) UpdatePartitionDimension(ctx context.Context, dim metadata.PartitionDimension) error {
	const op = "Hive.UpdatePartitionDimension"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	existing, ok := g.dimension(dim.Name)
	if !ok {
		return nameNotFound(op, "dimension", dim.Name)
	}
	dim.ID = existing.ID
	if err := h.gw.dimensions.Update(ctx, dim); err != nil {
		return err
	}
	return h.commitAndSync(ctx)
}

// DeletePartitionDimension removes a dimension. Fails NotFound if absent.
func (h *Hive) DeletePartitionDimension(ctx context.Context, name string) error {
	const op = "Hive.DeletePartitionDimension"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	dim, ok := g.dimension(name)
	if !ok {
		return nameNotFound(op, "dimension", name)
	}
	if err := h.gw.dimensions.Delete(ctx, dim.ID); err != nil {
		return err
	}
	return h.commitAndSync(ctx)
}

// AddResource creates a new resource under an existing dimension.
func (h *Hive) AddResource(ctx context.Context, dimensionName string, res metadata.Resource) (metadata.Resource, error) {
	const op = "Hive.AddResource"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return metadata.Resource{}, err
	}
	dim, ok := g.dimension(dimensionName)
	if !ok {
		return metadata.Resource{}, hiveerr.New(hiveerr.MissingParent, op, dimensionName, "dimension not found")
	}
	if _, exists := g.resource(dimensionName, res.Name); exists {
		return metadata.Resource{}, hiveerr.New(hiveerr.DuplicateName, op, res.Name, "resource already exists")
	}
	row, err := h.gw.resources.Create(ctx, dim.ID, res)
	if err != nil {
		return metadata.Resource{}, err
	}
	res.ID, res.DimensionName = row.ID, dimensionName
	if err := h.commitAndSync(ctx); err != nil {
		return metadata.Resource{}, err
	}
	return res, nil
}

// UpdateResource persists changes to an existing resource.
func (h *Hive) UpdateResource(ctx context.Context, dimensionName string, res metadata.Resource) error {
	const op = "Hive.UpdateResource"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	existing, ok := g.resource(dimensionName, res.Name)
	if !ok {
		return nameNotFound(op, "resource", res.Name)
	}
	res.ID = existing.ID
	if err := h.gw.resources.Update(ctx, existing.ID, res); err != nil {
		return err
	}
	return h.commitAndSync(ctx)
}

// DeleteResource removes a resource and its directory table.
func (h *Hive) DeleteResource(ctx context.Context, dimensionName, resourceName string) error {
	const op = "Hive.DeleteResource"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	res, ok := g.resource(dimensionName, resourceName)
	if !ok {
		return nameNotFound(op, "resource", resourceName)
	}
	if err := h.gw.resources.Delete(ctx, res.ID); err != nil {
		return err
	}
	if d, err := h.directoryFor(dimensionName); err == nil {
		if err := d.UnregisterResource(ctx, resourceName); err != nil && !hiveerr.Is(err, hiveerr.NotFound) {
			return err
		}
	}
	return h.commitAndSync(ctx)
}

// AddSecondaryIndex creates a new secondary index on a resource.
func (h *Hive) AddSecondaryIndex(ctx context.Context, dimensionName, resourceName string, idx metadata.SecondaryIndex) (metadata.SecondaryIndex, error) {
	const op = "Hive.AddSecondaryIndex"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return metadata.SecondaryIndex{}, err
	}
	res, ok := g.resource(dimensionName, resourceName)
	if !ok {
		return metadata.SecondaryIndex{}, hiveerr.New(hiveerr.MissingParent, op, resourceName, "resource not found")
	}
	if _, exists := g.index(dimensionName, resourceName, idx.Name); exists {
		return metadata.SecondaryIndex{}, hiveerr.New(hiveerr.DuplicateName, op, idx.Name, "secondary index already exists")
	}
	row, err := h.gw.indexes.Create(ctx, res.ID, idx)
	if err != nil {
		return metadata.SecondaryIndex{}, err
	}
	idx.ID, idx.DimensionName, idx.ResourceName = row.ID, dimensionName, resourceName
	if err := h.commitAndSync(ctx); err != nil {
		return metadata.SecondaryIndex{}, err
	}
	return idx, nil
}

// UpdateSecondaryIndex persists changes to an existing secondary index.
func (h *Hive) UpdateSecondaryIndex(ctx context.Context, dimensionName, resourceName string, idx metadata.SecondaryIndex) error {
	const op = "Hive.UpdateSecondaryIndex"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	existing, ok := g.index(dimensionName, resourceName, idx.Name)
	if !ok {
		return nameNotFound(op, "secondary index", idx.Name)
	}
	idx.ID = existing.ID
	if err := h.gw.indexes.Update(ctx, existing.ID, idx); err != nil {
		return err
	}
	return h.commitAndSync(ctx)
}

// DeleteSecondaryIndex removes a secondary index and its directory table.
func (h *Hive) DeleteSecondaryIndex(ctx context.Context, dimensionName, resourceName, indexName string) error {
	const op = "Hive.DeleteSecondaryIndex"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	idx, ok := g.index(dimensionName, resourceName, indexName)
	if !ok {
		return nameNotFound(op, "secondary index", indexName)
	}
	if err := h.gw.indexes.Delete(ctx, idx.ID); err != nil {
		return err
	}
	if d, err := h.directoryFor(dimensionName); err == nil {
		if err := d.UnregisterSecondaryIndex(ctx, resourceName, indexName); err != nil && !hiveerr.Is(err, hiveerr.NotFound) {
			return err
		}
	}
	return h.commitAndSync(ctx)
}

// AddNode creates a new physical shard under a dimension.
func (h *Hive) AddNode(ctx context.Context, dimensionName string, n metadata.Node) (metadata.Node, error) {
	const op = "Hive.AddNode"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return metadata.Node{}, err
	}
	dim, ok := g.dimension(dimensionName)
	if !ok {
		return metadata.Node{}, hiveerr.New(hiveerr.MissingParent, op, dimensionName, "dimension not found")
	}
	if _, exists := g.node(dimensionName, n.Name); exists {
		return metadata.Node{}, hiveerr.New(hiveerr.DuplicateName, op, n.Name, "node already exists")
	}
	if !n.Status.Valid() {
		n.Status = metadata.StatusWritable
	}
	row, err := h.gw.nodes.Create(ctx, dim.ID, n)
	if err != nil {
		return metadata.Node{}, err
	}
	n.ID, n.DimensionName = row.ID, dimensionName
	if err := h.commitAndSync(ctx); err != nil {
		return metadata.Node{}, err
	}
	return n, nil
}

// UpdateNode persists changes to an existing node, including its status.
func (h *Hive) UpdateNode(ctx context.Context, dimensionName string, n metadata.Node) error {
	const op = "Hive.UpdateNode"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	existing, ok := g.node(dimensionName, n.Name)
	if !ok {
		return nameNotFound(op, "node", n.Name)
	}
	n.ID = existing.ID
	if err := h.gw.nodes.Update(ctx, existing.ID, n); err != nil {
		return err
	}
	return h.commitAndSync(ctx)
}

// UpdateNodeStatus flips a node's writable/readOnly status (spec.md §4.6
// "Status control"). A thin wrapper over UpdateNode that preserves every
// other field.
func (h *Hive) UpdateNodeStatus(ctx context.Context, dimensionName, nodeName string, status metadata.Status) error {
	const op = "Hive.UpdateNodeStatus"
	g := h.snapshot()
	n, ok := g.node(dimensionName, nodeName)
	if !ok {
		return nameNotFound(op, "node", nodeName)
	}
	n.Status = status
	return h.UpdateNode(ctx, dimensionName, n)
}

// DeleteNode removes a node.
func (h *Hive) DeleteNode(ctx context.Context, dimensionName, nodeName string) error {
	const op = "Hive.DeleteNode"
	g := h.snapshot()
	if err := requireWritableHive(op, g.hiveStatus); err != nil {
		return err
	}
	n, ok := g.node(dimensionName, nodeName)
	if !ok {
		return nameNotFound(op, "node", nodeName)
	}
	if err := h.gw.nodes.Delete(ctx, n.ID); err != nil {
		return err
	}
	return h.commitAndSync(ctx)
}

// UpdateHiveStatus writes the hive-wide read-only flag (spec.md §4.6
// "Status control"). Per SPEC_FULL.md's resolution of spec.md §9's two
// update-paths question, this is the single writer for HiveSemaphore.Status;
// HiveSemaphoreGateway itself exposes no independent setter.
func (h *Hive) UpdateHiveStatus(ctx context.Context, status metadata.Status) error {
	const op = "Hive.UpdateHiveStatus"
	for attempt := 0; attempt < 2; attempt++ {
		h.mu.RLock()
		current := metadata.HiveSemaphore{Revision: h.g.revision, Status: h.g.hiveStatus}
		h.mu.RUnlock()

		next := metadata.HiveSemaphore{Revision: current.Revision + 1, Status: status}
		ok, err := h.gw.semaphore.CompareAndSwapRevision(ctx, current.Revision, next)
		if err != nil {
			return err
		}
		if ok {
			return h.ForceSynchronize(ctx)
		}
		if err := h.ForceSynchronize(ctx); err != nil {
			return err
		}
	}
	return hiveerr.New(hiveerr.PersistenceError, op, "", "hive status compare-and-swap lost the race twice")
}
