// Package assigner implements the pluggable node-selection policy invoked on
// primary-key insertion (spec.md §4.4): given a non-empty set of writable
// nodes and a new partition key, choose exactly one node, deterministically,
// for the same (sorted node ids, key) input.
//
// Grounded on internal/coordinator/shard_registry.go's GetShardForKey
// (FNV-1a hash + modulo) and RebalanceShards (stable sort over node ids
// before assignment), generalized from choosing a shard index to choosing a
// node directly.
package assigner
