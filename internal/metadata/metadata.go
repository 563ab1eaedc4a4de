package metadata

// ObjectID identifies a persisted metadata row. An entity whose ID equals
// NewObjectID has never been written through a gateway; callers must not look
// such an entity up by ID.
type ObjectID int64

// NewObjectID is the sentinel value carried by an entity that has not yet
// been persisted. Gateways overwrite it with the database-assigned id on
// create.
const NewObjectID ObjectID = 0

// Status is the two-state flag shared by hives, nodes, and key semaphores.
// All three are flat state machines: writable or readOnly, nothing else.
type Status string

const (
	// StatusWritable means the scope accepts writes.
	StatusWritable Status = "writable"
	// StatusReadOnly means the scope rejects writes but still serves reads.
	StatusReadOnly Status = "readOnly"
)

// Writable reports whether the status allows writes.
func (s Status) Writable() bool { return s == StatusWritable }

// Valid reports whether s is one of the two defined statuses.
func (s Status) Valid() bool { return s == StatusWritable || s == StatusReadOnly }

// PartitionDimension is a named partitioning axis. A hive typically has one
// dimension, but multiple are permitted.
type PartitionDimension struct {
	ID       ObjectID
	Name     string // unique within the hive
	KeyType  string // SQL type code for the partition key, e.g. "INTEGER"
	IndexURI string // directory database URI; defaults to the hive URI
	Assigner string // name of the registered assigner policy
}

// Equal compares two dimensions field by field.
func (d PartitionDimension) Equal(other PartitionDimension) bool {
	return d.ID == other.ID &&
		d.Name == other.Name &&
		d.KeyType == other.KeyType &&
		d.IndexURI == other.IndexURI &&
		d.Assigner == other.Assigner
}

// Resource is a named entity class partitioned along a dimension. It carries
// its dimension's name rather than a pointer to the dimension itself — see
// the package doc for why.
type Resource struct {
	ID                     ObjectID
	DimensionName          string
	Name                   string // unique within the dimension
	KeyType                string
	IsPartitioningResource bool // if true, the resource's id is the partition key
}

// Equal compares two resources field by field.
func (r Resource) Equal(other Resource) bool {
	return r.ID == other.ID &&
		r.DimensionName == other.DimensionName &&
		r.Name == other.Name &&
		r.KeyType == other.KeyType &&
		r.IsPartitioningResource == other.IsPartitioningResource
}

// SecondaryIndex is a named attribute index on a resource. DimensionName is
// carried alongside ResourceName because resource names are only unique
// within their dimension, and the directory table name
// ("secondary_index_{resource}.{index}") needs both to be unambiguous.
type SecondaryIndex struct {
	ID            ObjectID
	DimensionName string
	ResourceName  string
	Name          string // unique within the resource
	ColumnType    string
}

// Equal compares two secondary indexes field by field.
func (s SecondaryIndex) Equal(other SecondaryIndex) bool {
	return s.ID == other.ID &&
		s.DimensionName == other.DimensionName &&
		s.ResourceName == other.ResourceName &&
		s.Name == other.Name &&
		s.ColumnType == other.ColumnType
}

// Node is a physical shard: one database a dimension's keys may route to.
type Node struct {
	ID            ObjectID
	DimensionName string
	Name          string // unique within the dimension
	URI           string // JDBC-style connect string, e.g. "postgres://host/db"
	Status        Status
}

// Equal compares two nodes field by field.
func (n Node) Equal(other Node) bool {
	return n.ID == other.ID &&
		n.DimensionName == other.DimensionName &&
		n.Name == other.Name &&
		n.URI == other.URI &&
		n.Status == other.Status
}

// KeySemaphore is the status record binding one primary key value to one
// node. A key may have more than one semaphore (it can live on several
// nodes); see directory.GetKeySemaphoresOfPrimaryIndexKey.
type KeySemaphore struct {
	NodeID ObjectID
	Status Status
}

// Writable reports whether this single semaphore allows writes.
func (k KeySemaphore) Writable() bool { return k.Status.Writable() }

// Equal compares two semaphores field by field.
func (k KeySemaphore) Equal(other KeySemaphore) bool {
	return k.NodeID == other.NodeID && k.Status == other.Status
}

// HiveSemaphore is the hive-wide coordination record: a single row carrying
// the monotonic revision counter and the global read-only flag.
type HiveSemaphore struct {
	Revision int64
	Status   Status
}

// Writable reports whether the hive as a whole allows writes.
func (h HiveSemaphore) Writable() bool { return h.Status.Writable() }

// Equal compares two hive semaphores field by field.
func (h HiveSemaphore) Equal(other HiveSemaphore) bool {
	return h.Revision == other.Revision && h.Status == other.Status
}
