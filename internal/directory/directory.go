package directory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dreamware/hivedir/internal/gateway"
	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// resourceSchema records the table names and key types a registered resource
// needs once its directory rows start getting written. It is populated by
// RegisterResource/RegisterSecondaryIndex and consulted by the cascade-delete
// path, which otherwise has no way to discover which secondary tables point
// at a given resource.
type resourceSchema struct {
	keyType          string
	isPartitioning   bool
	secondaryIndexes map[string]string // index name -> column type
}

// Directory owns the primary_index, resource_index_{R}, and
// secondary_index_{R}.{S} tables for one partition dimension. It is
// mechanical: every method here is a direct SQL operation or a cache lookup,
// never a lock-engine check (see the package doc and spec §4.3's last
// paragraph). The hive façade is the only caller, and it is responsible for
// enforcing writability before calling any mutating method here.
type Directory struct {
	db               *sql.DB
	dialect          gateway.Dialect
	partitionKeyType string

	cache *semaphoreCache

	mu        sync.RWMutex
	resources map[string]*resourceSchema
}

// NewDirectory builds a Directory over db for a dimension whose partition
// key has SQL type partitionKeyType.
func NewDirectory(db *sql.DB, dialect gateway.Dialect, partitionKeyType string) *Directory {
	return &Directory{
		db:               db,
		dialect:          dialect,
		partitionKeyType: partitionKeyType,
		cache:            newSemaphoreCache(),
		resources:        make(map[string]*resourceSchema),
	}
}

// EnsureSchema creates the primary_index table if it does not already exist.
// Called once when a dimension's Directory is constructed by the hive
// façade, before any resource or index registration.
func (d *Directory) EnsureSchema(ctx context.Context) error {
	const op = "Directory.EnsureSchema"
	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS primary_index (
			partition_key %s NOT NULL,
			node_id BIGINT NOT NULL,
			read_only BOOLEAN NOT NULL DEFAULT FALSE,
			last_updated TIMESTAMP NOT NULL,
			PRIMARY KEY (partition_key, node_id)
		)`, d.partitionKeyType)
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, "primary_index", err)
	}
	return nil
}

// RegisterResource creates the resource's directory table (a no-op table for
// partitioning resources, which never get rows of their own — see spec
// invariant 6) and remembers its key type for later secondary-index
// registration and cascade deletes.
func (d *Directory) RegisterResource(ctx context.Context, name, keyType string, isPartitioning bool) error {
	const op = "Directory.RegisterResource"
	if !ValidIdentifier(name) {
		return hiveerr.New(hiveerr.PersistenceError, op, name, "resource name is not a valid SQL identifier")
	}
	if !isPartitioning {
		query := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				resource_id %s NOT NULL PRIMARY KEY,
				partition_key %s NOT NULL,
				last_updated TIMESTAMP NOT NULL
			)`, quoteIdent(d.dialect, resourceTable(name)), keyType, d.partitionKeyType)
		if _, err := d.db.ExecContext(ctx, query); err != nil {
			return hiveerr.Wrap(hiveerr.PersistenceError, op, name, err)
		}
	}
	d.mu.Lock()
	d.resources[name] = &resourceSchema{
		keyType:          keyType,
		isPartitioning:   isPartitioning,
		secondaryIndexes: make(map[string]string),
	}
	d.mu.Unlock()
	return nil
}

// UnregisterResource drops the resource's table (and any secondary tables
// still registered under it) and forgets its schema. Called when the hive
// façade deletes a Resource.
func (d *Directory) UnregisterResource(ctx context.Context, name string) error {
	const op = "Directory.UnregisterResource"
	d.mu.Lock()
	schema, ok := d.resources[name]
	if ok {
		delete(d.resources, name)
	}
	d.mu.Unlock()
	if !ok {
		return hiveerr.New(hiveerr.NotFound, op, name, "resource not registered")
	}
	for idx := range schema.secondaryIndexes {
		table := quoteIdent(d.dialect, secondaryTable(name, idx))
		if _, err := d.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return hiveerr.Wrap(hiveerr.PersistenceError, op, name, err)
		}
	}
	if !schema.isPartitioning {
		table := quoteIdent(d.dialect, resourceTable(name))
		if _, err := d.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return hiveerr.Wrap(hiveerr.PersistenceError, op, name, err)
		}
	}
	return nil
}

// RegisterSecondaryIndex creates the index's directory table.
func (d *Directory) RegisterSecondaryIndex(ctx context.Context, resourceName, indexName, columnType string) error {
	const op = "Directory.RegisterSecondaryIndex"
	if !ValidIdentifier(resourceName) || !ValidIdentifier(indexName) {
		return hiveerr.New(hiveerr.PersistenceError, op, indexName, "name is not a valid SQL identifier")
	}
	d.mu.Lock()
	schema, ok := d.resources[resourceName]
	if !ok {
		d.mu.Unlock()
		return hiveerr.New(hiveerr.MissingParent, op, resourceName, "resource not registered")
	}
	d.mu.Unlock()

	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			secondary_key %s NOT NULL PRIMARY KEY,
			resource_id %s NOT NULL,
			last_updated TIMESTAMP NOT NULL
		)`, quoteIdent(d.dialect, secondaryTable(resourceName, indexName)), columnType, schema.keyType)
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, indexName, err)
	}

	d.mu.Lock()
	schema.secondaryIndexes[indexName] = columnType
	d.mu.Unlock()
	return nil
}

// UnregisterSecondaryIndex drops the index's table.
func (d *Directory) UnregisterSecondaryIndex(ctx context.Context, resourceName, indexName string) error {
	const op = "Directory.UnregisterSecondaryIndex"
	d.mu.Lock()
	schema, ok := d.resources[resourceName]
	if ok {
		_, ok = schema.secondaryIndexes[indexName]
		if ok {
			delete(schema.secondaryIndexes, indexName)
		}
	}
	d.mu.Unlock()
	if !ok {
		return hiveerr.New(hiveerr.NotFound, op, indexName, "secondary index not registered")
	}
	table := quoteIdent(d.dialect, secondaryTable(resourceName, indexName))
	if _, err := d.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, indexName, err)
	}
	return nil
}

// InsertPrimaryIndexKey adds the (key, node) row. Fails DuplicateKey if the
// pair already exists.
func (d *Directory) InsertPrimaryIndexKey(ctx context.Context, key any, nodeID metadata.ObjectID) error {
	const op = "Directory.InsertPrimaryIndexKey"
	query := fmt.Sprintf(
		"INSERT INTO primary_index (partition_key, node_id, read_only, last_updated) VALUES (%s, %s, %s, %s)",
		d.dialect.Placeholder(1), d.dialect.Placeholder(2), d.dialect.Placeholder(3), d.dialect.Placeholder(4))
	if _, err := d.db.ExecContext(ctx, query, key, int64(nodeID), false, time.Now().UTC()); err != nil {
		if gateway.IsUniqueViolation(err) {
			return hiveerr.New(hiveerr.DuplicateKey, op, fmt.Sprint(key), "key already assigned to this node")
		}
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
	}
	d.cache.delete(primaryCacheKey(key))
	return nil
}

// InsertResourceId records resourceId -> primaryKey. A no-op for partitioning
// resources, whose id space already equals the partition-key space.
func (d *Directory) InsertResourceId(ctx context.Context, resourceName string, resourceID, primaryKey any) error {
	const op = "Directory.InsertResourceId"
	schema, err := d.schemaFor(op, resourceName)
	if err != nil {
		return err
	}
	if schema.isPartitioning {
		return nil
	}
	semaphores, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, primaryKey)
	if err != nil {
		return err
	}
	if len(semaphores) == 0 {
		return hiveerr.New(hiveerr.MissingParent, op, fmt.Sprint(primaryKey), "primary key has no row")
	}
	query := fmt.Sprintf("INSERT INTO %s (resource_id, partition_key, last_updated) VALUES (%s, %s, %s)",
		quoteIdent(d.dialect, resourceTable(resourceName)),
		d.dialect.Placeholder(1), d.dialect.Placeholder(2), d.dialect.Placeholder(3))
	if _, err := d.db.ExecContext(ctx, query, resourceID, primaryKey, time.Now().UTC()); err != nil {
		if gateway.IsUniqueViolation(err) {
			return hiveerr.New(hiveerr.DuplicateKey, op, fmt.Sprint(resourceID), "resource id already mapped")
		}
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(resourceID), err)
	}
	d.cache.delete(resourceCacheKey(resourceName, resourceID))
	return nil
}

// InsertSecondaryIndexKey records secondaryKey -> resourceId.
func (d *Directory) InsertSecondaryIndexKey(ctx context.Context, resourceName, indexName string, secondaryKey, resourceID any) error {
	const op = "Directory.InsertSecondaryIndexKey"
	if _, err := d.schemaFor(op, resourceName); err != nil {
		return err
	}
	exists, err := d.resourceRowExists(ctx, resourceName, resourceID)
	if err != nil {
		return err
	}
	if !exists {
		return hiveerr.New(hiveerr.MissingParent, op, fmt.Sprint(resourceID), "resource id unknown")
	}
	query := fmt.Sprintf("INSERT INTO %s (secondary_key, resource_id, last_updated) VALUES (%s, %s, %s)",
		quoteIdent(d.dialect, secondaryTable(resourceName, indexName)),
		d.dialect.Placeholder(1), d.dialect.Placeholder(2), d.dialect.Placeholder(3))
	if _, err := d.db.ExecContext(ctx, query, secondaryKey, resourceID, time.Now().UTC()); err != nil {
		if gateway.IsUniqueViolation(err) {
			return hiveerr.New(hiveerr.DuplicateKey, op, fmt.Sprint(secondaryKey), "secondary key already mapped")
		}
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(secondaryKey), err)
	}
	d.cache.delete(secondaryCacheKey(resourceName, indexName, secondaryKey))
	return nil
}

// GetKeySemaphoresOfPrimaryIndexKey returns every (node, status) pair a
// partition key is currently assigned to. An empty, nil-error result means
// the key is unknown.
func (d *Directory) GetKeySemaphoresOfPrimaryIndexKey(ctx context.Context, key any) ([]metadata.KeySemaphore, error) {
	const op = "Directory.GetKeySemaphoresOfPrimaryIndexKey"
	cacheKey := primaryCacheKey(key)
	if cached, ok := d.cache.get(cacheKey); ok {
		return cached, nil
	}
	query := fmt.Sprintf("SELECT node_id, read_only FROM primary_index WHERE partition_key = %s", d.dialect.Placeholder(1))
	rows, err := d.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
	}
	defer rows.Close()

	var out []metadata.KeySemaphore
	for rows.Next() {
		var nodeID int64
		var readOnly bool
		if err := rows.Scan(&nodeID, &readOnly); err != nil {
			return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
		}
		status := metadata.StatusWritable
		if readOnly {
			status = metadata.StatusReadOnly
		}
		out = append(out, metadata.KeySemaphore{NodeID: metadata.ObjectID(nodeID), Status: status})
	}
	if err := rows.Err(); err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
	}
	d.cache.put(cacheKey, out)
	return out, nil
}

// GetNodeIdsOfPrimaryIndexKey is GetKeySemaphoresOfPrimaryIndexKey projected
// down to node ids, for callers (spec scenario S1/S5) that only care about
// placement, not status.
func (d *Directory) GetNodeIdsOfPrimaryIndexKey(ctx context.Context, key any) ([]metadata.ObjectID, error) {
	semaphores, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, key)
	if err != nil {
		return nil, err
	}
	ids := make([]metadata.ObjectID, len(semaphores))
	for i, s := range semaphores {
		ids[i] = s.NodeID
	}
	return ids, nil
}

// GetPrimaryIndexKeyOfResourceId resolves a resource id to its partition
// key. For a partitioning resource the identity function applies (invariant
// 6): the resource id IS the partition key.
func (d *Directory) GetPrimaryIndexKeyOfResourceId(ctx context.Context, resourceName string, resourceID any) (any, bool, error) {
	const op = "Directory.GetPrimaryIndexKeyOfResourceId"
	schema, err := d.schemaFor(op, resourceName)
	if err != nil {
		return nil, false, err
	}
	if schema.isPartitioning {
		return resourceID, true, nil
	}
	query := fmt.Sprintf("SELECT partition_key FROM %s WHERE resource_id = %s",
		quoteIdent(d.dialect, resourceTable(resourceName)), d.dialect.Placeholder(1))
	var key any
	if err := d.db.QueryRowContext(ctx, query, resourceID).Scan(&key); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(resourceID), err)
	}
	return key, true, nil
}

// GetKeySemaphoresOfResourceId joins resource -> primary -> semaphore,
// deferring to the primary lookup directly for a partitioning resource.
func (d *Directory) GetKeySemaphoresOfResourceId(ctx context.Context, resourceName string, resourceID any) ([]metadata.KeySemaphore, error) {
	const op = "Directory.GetKeySemaphoresOfResourceId"
	if cached, ok := d.cache.get(resourceCacheKey(resourceName, resourceID)); ok {
		return cached, nil
	}
	key, found, err := d.GetPrimaryIndexKeyOfResourceId(ctx, resourceName, resourceID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	semaphores, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, key)
	if err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(resourceID), err)
	}
	d.cache.put(resourceCacheKey(resourceName, resourceID), semaphores)
	return semaphores, nil
}

// GetKeySemaphoresOfSecondaryIndexKey joins secondary -> resource -> primary
// -> semaphore. A secondary key maps to exactly one resource row by
// construction (secondary_key is its table's primary key), but the result is
// still a set for symmetry with the other two lookups.
func (d *Directory) GetKeySemaphoresOfSecondaryIndexKey(ctx context.Context, resourceName, indexName string, secondaryKey any) ([]metadata.KeySemaphore, error) {
	const op = "Directory.GetKeySemaphoresOfSecondaryIndexKey"
	cacheKey := secondaryCacheKey(resourceName, indexName, secondaryKey)
	if cached, ok := d.cache.get(cacheKey); ok {
		return cached, nil
	}
	query := fmt.Sprintf("SELECT resource_id FROM %s WHERE secondary_key = %s",
		quoteIdent(d.dialect, secondaryTable(resourceName, indexName)), d.dialect.Placeholder(1))
	var resourceID any
	if err := d.db.QueryRowContext(ctx, query, secondaryKey).Scan(&resourceID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(secondaryKey), err)
	}
	semaphores, err := d.GetKeySemaphoresOfResourceId(ctx, resourceName, resourceID)
	if err != nil {
		return nil, err
	}
	d.cache.put(cacheKey, semaphores)
	return semaphores, nil
}

// UpdatePrimaryIndexKeyReadOnly flips the read-only flag on every semaphore
// row for key. Fails NotFound if key has no rows.
func (d *Directory) UpdatePrimaryIndexKeyReadOnly(ctx context.Context, key any, readOnly bool) error {
	const op = "Directory.UpdatePrimaryIndexKeyReadOnly"
	query := fmt.Sprintf("UPDATE primary_index SET read_only = %s, last_updated = %s WHERE partition_key = %s",
		d.dialect.Placeholder(1), d.dialect.Placeholder(2), d.dialect.Placeholder(3))
	res, err := d.db.ExecContext(ctx, query, readOnly, time.Now().UTC(), key)
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
	}
	if err := requireRowsAffected(res, op, fmt.Sprint(key)); err != nil {
		return err
	}
	d.cache.delete(primaryCacheKey(key))
	return nil
}

// UpdatePrimaryIndexKeyOfResourceId repoints a resource's partition key, used
// when a record is repartitioned onto a new key. No-op for partitioning
// resources, whose identity mapping cannot be repointed.
func (d *Directory) UpdatePrimaryIndexKeyOfResourceId(ctx context.Context, resourceName string, resourceID, newPrimaryKey any) error {
	const op = "Directory.UpdatePrimaryIndexKeyOfResourceId"
	schema, err := d.schemaFor(op, resourceName)
	if err != nil {
		return err
	}
	if schema.isPartitioning {
		return nil
	}
	semaphores, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, newPrimaryKey)
	if err != nil {
		return err
	}
	if len(semaphores) == 0 {
		return hiveerr.New(hiveerr.MissingParent, op, fmt.Sprint(newPrimaryKey), "new primary key has no row")
	}
	query := fmt.Sprintf("UPDATE %s SET partition_key = %s, last_updated = %s WHERE resource_id = %s",
		quoteIdent(d.dialect, resourceTable(resourceName)),
		d.dialect.Placeholder(1), d.dialect.Placeholder(2), d.dialect.Placeholder(3))
	res, err := d.db.ExecContext(ctx, query, newPrimaryKey, time.Now().UTC(), resourceID)
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(resourceID), err)
	}
	if err := requireRowsAffected(res, op, fmt.Sprint(resourceID)); err != nil {
		return err
	}
	d.cache.delete(resourceCacheKey(resourceName, resourceID))
	return nil
}

// DeletePrimaryIndexKey removes every semaphore row for key, cascading to
// every resource row across every registered resource that points at key
// and every secondary row pointing at those resources, all inside one
// transaction (spec §9's open question on transactional cascade: resolved in
// favor of one transaction — see DESIGN.md).
func (d *Directory) DeletePrimaryIndexKey(ctx context.Context, key any) error {
	const op = "Directory.DeletePrimaryIndexKey"
	d.mu.RLock()
	names := make([]string, 0, len(d.resources))
	schemas := make(map[string]*resourceSchema, len(d.resources))
	for name, schema := range d.resources {
		names = append(names, name)
		schemas[name] = schema
	}
	d.mu.RUnlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
	}
	defer tx.Rollback()

	for _, name := range names {
		schema := schemas[name]
		if schema.isPartitioning {
			continue
		}
		resourceIDs, err := queryResourceIDsForKey(ctx, tx, d.dialect, name, key)
		if err != nil {
			return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
		}
		for idx := range schema.secondaryIndexes {
			for _, rid := range resourceIDs {
				q := fmt.Sprintf("DELETE FROM %s WHERE resource_id = %s",
					quoteIdent(d.dialect, secondaryTable(name, idx)), d.dialect.Placeholder(1))
				if _, err := tx.ExecContext(ctx, q, rid); err != nil {
					return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
				}
			}
		}
		q := fmt.Sprintf("DELETE FROM %s WHERE partition_key = %s",
			quoteIdent(d.dialect, resourceTable(name)), d.dialect.Placeholder(1))
		if _, err := tx.ExecContext(ctx, q, key); err != nil {
			return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
		}
	}

	query := fmt.Sprintf("DELETE FROM primary_index WHERE partition_key = %s", d.dialect.Placeholder(1))
	res, err := tx.ExecContext(ctx, query, key)
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
	}
	if err := requireRowsAffected(res, op, fmt.Sprint(key)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(key), err)
	}
	d.cache.invalidateAll()
	return nil
}

// DeleteResourceId removes the resource row and every secondary row pointing
// at it, inside one transaction. No-op (NotFound, since there is no row to
// remove) for a partitioning resource — callers should delete the primary
// key directly instead.
func (d *Directory) DeleteResourceId(ctx context.Context, resourceName string, resourceID any) error {
	const op = "Directory.DeleteResourceId"
	schema, err := d.schemaFor(op, resourceName)
	if err != nil {
		return err
	}
	if schema.isPartitioning {
		return hiveerr.New(hiveerr.NotFound, op, fmt.Sprint(resourceID), "partitioning resource has no resource row")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(resourceID), err)
	}
	defer tx.Rollback()

	for idx := range schema.secondaryIndexes {
		q := fmt.Sprintf("DELETE FROM %s WHERE resource_id = %s",
			quoteIdent(d.dialect, secondaryTable(resourceName, idx)), d.dialect.Placeholder(1))
		if _, err := tx.ExecContext(ctx, q, resourceID); err != nil {
			return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(resourceID), err)
		}
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE resource_id = %s",
		quoteIdent(d.dialect, resourceTable(resourceName)), d.dialect.Placeholder(1))
	res, err := tx.ExecContext(ctx, query, resourceID)
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(resourceID), err)
	}
	if err := requireRowsAffected(res, op, fmt.Sprint(resourceID)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(resourceID), err)
	}
	d.cache.delete(resourceCacheKey(resourceName, resourceID))
	return nil
}

// DeleteSecondaryIndexKey removes one secondary row.
func (d *Directory) DeleteSecondaryIndexKey(ctx context.Context, resourceName, indexName string, secondaryKey any) error {
	const op = "Directory.DeleteSecondaryIndexKey"
	query := fmt.Sprintf("DELETE FROM %s WHERE secondary_key = %s",
		quoteIdent(d.dialect, secondaryTable(resourceName, indexName)), d.dialect.Placeholder(1))
	res, err := d.db.ExecContext(ctx, query, secondaryKey)
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(secondaryKey), err)
	}
	if err := requireRowsAffected(res, op, fmt.Sprint(secondaryKey)); err != nil {
		return err
	}
	d.cache.delete(secondaryCacheKey(resourceName, indexName, secondaryKey))
	return nil
}

func (d *Directory) schemaFor(op, resourceName string) (*resourceSchema, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	schema, ok := d.resources[resourceName]
	if !ok {
		return nil, hiveerr.New(hiveerr.MissingParent, op, resourceName, "resource not registered")
	}
	return schema, nil
}

func (d *Directory) resourceRowExists(ctx context.Context, resourceName string, resourceID any) (bool, error) {
	schema, err := d.schemaFor("Directory.resourceRowExists", resourceName)
	if err != nil {
		return false, err
	}
	if schema.isPartitioning {
		semaphores, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, resourceID)
		return len(semaphores) > 0, err
	}
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE resource_id = %s",
		quoteIdent(d.dialect, resourceTable(resourceName)), d.dialect.Placeholder(1))
	var one int
	if err := d.db.QueryRowContext(ctx, query, resourceID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func queryResourceIDsForKey(ctx context.Context, tx *sql.Tx, dialect gateway.Dialect, resourceName string, key any) ([]any, error) {
	query := fmt.Sprintf("SELECT resource_id FROM %s WHERE partition_key = %s",
		quoteIdent(dialect, resourceTable(resourceName)), dialect.Placeholder(1))
	rows, err := tx.QueryContext(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []any
	for rows.Next() {
		var id any
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func requireRowsAffected(res sql.Result, op, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, entity, err)
	}
	if n == 0 {
		return hiveerr.New(hiveerr.NotFound, op, entity, "no matching row")
	}
	return nil
}

func primaryCacheKey(key any) string { return fmt.Sprintf("p:%v", key) }

func resourceCacheKey(resourceName string, resourceID any) string {
	return fmt.Sprintf("r:%s:%v", resourceName, resourceID)
}

func secondaryCacheKey(resourceName, indexName string, secondaryKey any) string {
	return fmt.Sprintf("s:%s.%s:%v", resourceName, indexName, secondaryKey)
}
