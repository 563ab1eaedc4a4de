// Package metadata defines the value objects that make up a hive's metadata
// graph: partition dimensions, resources, secondary indexes, nodes, and the
// two semaphore records that carry read-only state.
//
// # Design
//
// Every entity here is plain data with an integer identity and a name that is
// unique within its enclosing scope. None of them hold a live database
// connection or an owning back-pointer to a parent: a Resource carries its
// dimension's name, not a pointer to the PartitionDimension itself, so the
// graph can be copied, diffed, and swapped wholesale by the sync daemon
// without worrying about cycles. Back-lookups (resource -> dimension,
// index -> resource) are the hive façade's job, via its name-indexed maps.
//
// Equality is always an explicit field-by-field compare. None of these types
// should ever be compared with Go's == on a struct containing a slice or map,
// and none of them implement a hash-based equality shortcut.
package metadata
