package hive

import (
	"context"
	"fmt"

	"github.com/dreamware/hivedir/internal/gateway"
	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// resourceKey namespaces a resource name by its dimension, since resource
// names are only unique within a dimension (spec.md §3 invariant 1).
func resourceKey(dimensionName, resourceName string) string {
	return dimensionName + "/" + resourceName
}

// graph is the in-memory object graph spec.md §5 calls "the in-memory
// metadata graph": dimensions, resources, indexes, and nodes, all
// name-indexed. It is replaced wholesale (never mutated in place) by
// sync() and the metadata-CRUD operations, per spec.md §9's replacement of
// cyclic parent/child references with forward references plus name lookups.
type graph struct {
	revision   int64
	hiveStatus metadata.Status

	dimensions map[string]metadata.PartitionDimension            // dimension name -> dimension
	resources  map[string]metadata.Resource                      // resourceKey(dim,res) -> resource
	indexes    map[string]map[string]metadata.SecondaryIndex      // resourceKey(dim,res) -> index name -> index
	nodes      map[string]map[string]metadata.Node               // dimension name -> node name -> node
}

func emptyGraph() *graph {
	return &graph{
		dimensions: make(map[string]metadata.PartitionDimension),
		resources:  make(map[string]metadata.Resource),
		indexes:    make(map[string]map[string]metadata.SecondaryIndex),
		nodes:      make(map[string]map[string]metadata.Node),
	}
}

// clone returns a shallow copy of g whose top-level maps are distinct,
// suitable for building the next graph generation without mutating the one
// concurrent readers may still hold a reference to.
func (g *graph) clone() *graph {
	next := &graph{
		revision:   g.revision,
		hiveStatus: g.hiveStatus,
		dimensions: make(map[string]metadata.PartitionDimension, len(g.dimensions)),
		resources:  make(map[string]metadata.Resource, len(g.resources)),
		indexes:    make(map[string]map[string]metadata.SecondaryIndex, len(g.indexes)),
		nodes:      make(map[string]map[string]metadata.Node, len(g.nodes)),
	}
	for k, v := range g.dimensions {
		next.dimensions[k] = v
	}
	for k, v := range g.resources {
		next.resources[k] = v
	}
	for k, m := range g.indexes {
		cp := make(map[string]metadata.SecondaryIndex, len(m))
		for ik, iv := range m {
			cp[ik] = iv
		}
		next.indexes[k] = cp
	}
	for k, m := range g.nodes {
		cp := make(map[string]metadata.Node, len(m))
		for nk, nv := range m {
			cp[nk] = nv
		}
		next.nodes[k] = cp
	}
	return next
}

func (g *graph) dimension(name string) (metadata.PartitionDimension, bool) {
	d, ok := g.dimensions[name]
	return d, ok
}

func (g *graph) resource(dimensionName, resourceName string) (metadata.Resource, bool) {
	r, ok := g.resources[resourceKey(dimensionName, resourceName)]
	return r, ok
}

func (g *graph) index(dimensionName, resourceName, indexName string) (metadata.SecondaryIndex, bool) {
	m, ok := g.indexes[resourceKey(dimensionName, resourceName)]
	if !ok {
		return metadata.SecondaryIndex{}, false
	}
	idx, ok := m[indexName]
	return idx, ok
}

func (g *graph) node(dimensionName, nodeName string) (metadata.Node, bool) {
	m, ok := g.nodes[dimensionName]
	if !ok {
		return metadata.Node{}, false
	}
	n, ok := m[nodeName]
	return n, ok
}

func (g *graph) nodeByID(dimensionName string, id metadata.ObjectID) (metadata.Node, bool) {
	for _, n := range g.nodes[dimensionName] {
		if n.ID == id {
			return n, true
		}
	}
	return metadata.Node{}, false
}

func (g *graph) writableNodes(dimensionName string) []metadata.Node {
	var out []metadata.Node
	for _, n := range g.nodes[dimensionName] {
		if n.Status.Writable() {
			out = append(out, n)
		}
	}
	return out
}

// gateways bundles the five hive-metadata-database gateways a graph is
// rebuilt from. It mirrors the teacher's pattern of a small struct of
// collaborators passed into one reload function rather than a long
// parameter list.
type gateways struct {
	dimensions *gateway.DimensionGateway
	resources  *gateway.ResourceGateway
	indexes    *gateway.IndexGateway
	nodes      *gateway.NodeGateway
	semaphore  *gateway.HiveSemaphoreGateway
}

// loadGraph reconstructs the full in-memory graph from the gateways in one
// pass, resolving the id-based parent references each row carries into the
// name-indexed shape the rest of the façade uses (spec.md §9: name lookups,
// never owning back-pointers).
func loadGraph(ctx context.Context, gw gateways) (*graph, error) {
	const op = "hive.loadGraph"

	dims, err := gw.dimensions.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	g := emptyGraph()
	dimByID := make(map[metadata.ObjectID]string, len(dims))
	for _, d := range dims {
		g.dimensions[d.Name] = d
		dimByID[d.ID] = d.Name
	}

	resRows, err := gw.resources.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	resNameByID := make(map[metadata.ObjectID]resourceIdentity, len(resRows))
	for _, r := range resRows {
		dimName, ok := dimByID[r.DimensionID]
		if !ok {
			return nil, hiveerr.New(hiveerr.PersistenceError, op, r.Name, "resource references unknown dimension id")
		}
		resource := metadata.Resource{
			ID:                     r.ID,
			DimensionName:          dimName,
			Name:                   r.Name,
			KeyType:                r.KeyType,
			IsPartitioningResource: r.IsPartitioningResource,
		}
		g.resources[resourceKey(dimName, r.Name)] = resource
		resNameByID[r.ID] = resourceIdentity{dimensionName: dimName, resourceName: r.Name}
	}

	idxRows, err := gw.indexes.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, idxRow := range idxRows {
		identity, ok := resNameByID[idxRow.ResourceID]
		if !ok {
			return nil, hiveerr.New(hiveerr.PersistenceError, op, idxRow.Name, "secondary index references unknown resource id")
		}
		idx := metadata.SecondaryIndex{
			ID:            idxRow.ID,
			DimensionName: identity.dimensionName,
			ResourceName:  identity.resourceName,
			Name:          idxRow.Name,
			ColumnType:    idxRow.ColumnType,
		}
		key := resourceKey(identity.dimensionName, identity.resourceName)
		if g.indexes[key] == nil {
			g.indexes[key] = make(map[string]metadata.SecondaryIndex)
		}
		g.indexes[key][idxRow.Name] = idx
	}

	nodeRows, err := gw.nodes.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range nodeRows {
		dimName, ok := dimByID[n.DimensionID]
		if !ok {
			return nil, hiveerr.New(hiveerr.PersistenceError, op, n.Name, "node references unknown dimension id")
		}
		if g.nodes[dimName] == nil {
			g.nodes[dimName] = make(map[string]metadata.Node)
		}
		g.nodes[dimName][n.Name] = metadata.Node{
			ID:            n.ID,
			DimensionName: dimName,
			Name:          n.Name,
			URI:           n.URI,
			Status:        n.Status(),
		}
	}

	hiveSem, err := gw.semaphore.Load(ctx)
	if err != nil {
		return nil, err
	}
	g.revision = hiveSem.Revision
	g.hiveStatus = hiveSem.Status
	return g, nil
}

type resourceIdentity struct {
	dimensionName string
	resourceName  string
}

// nameNotFound is a small helper for the many CRUD methods that need a
// consistent NotFound message for "no entity by this name".
func nameNotFound(op, kind, name string) error {
	return hiveerr.New(hiveerr.NotFound, op, name, fmt.Sprintf("%s %q not found", kind, name))
}
