// Package directory implements the per-dimension key-routing tables of
// spec.md §4.3: primary_index (partition key -> node), resource_index_{R}
// (resource id -> partition key), and secondary_index_{R}.{S} (secondary key
// -> resource id). A Directory is mechanical — it never consults the lock
// engine; enforcement is the hive façade's job (spec.md §4.3, last
// paragraph).
//
// Each Directory owns one *sql.DB, the dimension's indexUri. Table names for
// resource and secondary indexes are built from the resource/index names, so
// RegisterResource and RegisterSecondaryIndex reject any name that is not a
// safe identifier (see ValidIdentifier). The hive façade does not check
// names itself before persisting a resource or index row.
//
// Grounded on internal/coordinator/shard_registry.go: an RWMutex-guarded
// read cache sits in front of the SQL tables the same way the teacher's
// ShardRegistry keeps an in-memory assignments map, returning copies and
// never holding the lock during I/O.
package directory
