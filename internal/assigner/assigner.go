package assigner

import (
	"cmp"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// Assigner chooses one node from writableNodes for key. Implementations must
// be deterministic for the same (sorted node ids, key) input and must never
// return a node outside writableNodes.
type Assigner interface {
	Choose(writableNodes []metadata.Node, key any) (metadata.Node, error)
	// Name identifies the policy, stored on PartitionDimension.Assigner so a
	// dimension's assignment policy survives a sync/reload.
	Name() string
}

// Registry resolves an assigner policy by name, the way a dimension's
// Assigner field is resolved to a live implementation.
type Registry struct {
	policies map[string]Assigner
}

// NewRegistry builds a registry pre-populated with HashModAssigner under its
// own name.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]Assigner)}
	r.Register(NewHashModAssigner())
	return r
}

// Register adds or replaces a policy under its own Name().
func (r *Registry) Register(a Assigner) {
	r.policies[a.Name()] = a
}

// Resolve looks up a policy by name. Fails NotFound if unregistered.
func (r *Registry) Resolve(name string) (Assigner, error) {
	a, ok := r.policies[name]
	if !ok {
		return nil, hiveerr.New(hiveerr.NotFound, "Registry.Resolve", name, "assigner policy not registered")
	}
	return a, nil
}

// HashModAssigner is the default policy: FNV-1a hash the key, sort the
// candidate nodes by id, and pick by modulo — the same consistent-hash shape
// as the teacher's ShardRegistry.GetShardForKey, applied directly to nodes
// rather than to an intermediate shard index.
type HashModAssigner struct{}

// NewHashModAssigner builds the default assigner.
func NewHashModAssigner() *HashModAssigner { return &HashModAssigner{} }

// Name identifies this policy for PartitionDimension.Assigner.
func (HashModAssigner) Name() string { return "hash-mod" }

// Choose picks deterministically among writableNodes for key.
func (HashModAssigner) Choose(writableNodes []metadata.Node, key any) (metadata.Node, error) {
	const op = "HashModAssigner.Choose"
	if len(writableNodes) == 0 {
		return metadata.Node{}, hiveerr.New(hiveerr.NoWritableNode, op, "", "no writable node available")
	}

	sorted := make([]metadata.Node, len(writableNodes))
	copy(sorted, writableNodes)
	slices.SortFunc(sorted, func(a, b metadata.Node) int { return cmp.Compare(a.ID, b.ID) })

	h := fnv.New32a()
	h.Write([]byte(fmt.Sprint(key)))
	idx := int(h.Sum32()) % len(sorted)
	return sorted[idx], nil
}
