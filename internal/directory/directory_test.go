package directory

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/hivedir/internal/gateway"
	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

func openTestDirectory(t *testing.T) *Directory {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := NewDirectory(db, gateway.SQLite, "INTEGER")
	require.NoError(t, d.EnsureSchema(context.Background()))
	return d
}

// S1: install & route — insert a primary key onto a node, then resolve it.
func TestDirectoryInsertAndRoutePrimaryKey(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(42), metadata.ObjectID(1)))

	ids, err := d.GetNodeIdsOfPrimaryIndexKey(ctx, int64(42))
	require.NoError(t, err)
	assert.Equal(t, []metadata.ObjectID{1}, ids)
}

func TestDirectoryInsertPrimaryIndexKeyDuplicate(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(42), metadata.ObjectID(1)))

	err := d.InsertPrimaryIndexKey(ctx, int64(42), metadata.ObjectID(1))
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.DuplicateKey))
}

// Invariant 5: a partition key may live on more than one node.
func TestDirectoryPrimaryKeyOnMultipleNodes(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(42), metadata.ObjectID(1)))
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(42), metadata.ObjectID(2)))

	ids, err := d.GetNodeIdsOfPrimaryIndexKey(ctx, int64(42))
	require.NoError(t, err)
	assert.ElementsMatch(t, []metadata.ObjectID{1, 2}, ids)
}

// S2: read-only flag on a key blocks nothing by itself (lock logic lives in
// package lock/hive) but must be observable through the semaphore's status.
func TestDirectoryUpdatePrimaryIndexKeyReadOnly(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(42), metadata.ObjectID(1)))

	require.NoError(t, d.UpdatePrimaryIndexKeyReadOnly(ctx, int64(42), true))

	sems, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, int64(42))
	require.NoError(t, err)
	require.Len(t, sems, 1)
	assert.False(t, sems[0].Writable())
}

func TestDirectoryUpdatePrimaryIndexKeyReadOnlyNotFound(t *testing.T) {
	d := openTestDirectory(t)
	err := d.UpdatePrimaryIndexKeyReadOnly(context.Background(), int64(999), true)
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.NotFound))
}

// S3: secondary indexing through a non-partitioning resource.
func TestDirectorySecondaryIndexRouting(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.RegisterResource(ctx, "orders", "INTEGER", false))
	require.NoError(t, d.RegisterSecondaryIndex(ctx, "orders", "by_email", "TEXT"))
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(7), metadata.ObjectID(1)))
	require.NoError(t, d.InsertResourceId(ctx, "orders", int64(100), int64(7)))
	require.NoError(t, d.InsertSecondaryIndexKey(ctx, "orders", "by_email", "a@example.com", int64(100)))

	sems, err := d.GetKeySemaphoresOfSecondaryIndexKey(ctx, "orders", "by_email", "a@example.com")
	require.NoError(t, err)
	require.Len(t, sems, 1)
	assert.Equal(t, metadata.ObjectID(1), sems[0].NodeID)

	key, found, err := d.GetPrimaryIndexKeyOfResourceId(ctx, "orders", int64(100))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(7), key)
}

func TestDirectoryInsertResourceIdMissingParent(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.RegisterResource(ctx, "orders", "INTEGER", false))

	err := d.InsertResourceId(ctx, "orders", int64(100), int64(7))
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.MissingParent))
}

func TestDirectoryInsertSecondaryIndexKeyMissingParent(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.RegisterResource(ctx, "orders", "INTEGER", false))
	require.NoError(t, d.RegisterSecondaryIndex(ctx, "orders", "by_email", "TEXT"))

	err := d.InsertSecondaryIndexKey(ctx, "orders", "by_email", "a@example.com", int64(100))
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.MissingParent))
}

// S4: cascade delete — deleting a primary key removes the resource row and
// every secondary row hanging off it.
func TestDirectoryDeletePrimaryIndexKeyCascades(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.RegisterResource(ctx, "orders", "INTEGER", false))
	require.NoError(t, d.RegisterSecondaryIndex(ctx, "orders", "by_email", "TEXT"))
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(7), metadata.ObjectID(1)))
	require.NoError(t, d.InsertResourceId(ctx, "orders", int64(100), int64(7)))
	require.NoError(t, d.InsertSecondaryIndexKey(ctx, "orders", "by_email", "a@example.com", int64(100)))

	require.NoError(t, d.DeletePrimaryIndexKey(ctx, int64(7)))

	sems, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, int64(7))
	require.NoError(t, err)
	assert.Len(t, sems, 0)

	_, found, err := d.GetPrimaryIndexKeyOfResourceId(ctx, "orders", int64(100))
	require.NoError(t, err)
	assert.False(t, found)

	secSems, err := d.GetKeySemaphoresOfSecondaryIndexKey(ctx, "orders", "by_email", "a@example.com")
	require.NoError(t, err)
	assert.Len(t, secSems, 0)
}

func TestDirectoryDeleteResourceIdCascadesSecondaryRows(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.RegisterResource(ctx, "orders", "INTEGER", false))
	require.NoError(t, d.RegisterSecondaryIndex(ctx, "orders", "by_email", "TEXT"))
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(7), metadata.ObjectID(1)))
	require.NoError(t, d.InsertResourceId(ctx, "orders", int64(100), int64(7)))
	require.NoError(t, d.InsertSecondaryIndexKey(ctx, "orders", "by_email", "a@example.com", int64(100)))

	require.NoError(t, d.DeleteResourceId(ctx, "orders", int64(100)))

	secSems, err := d.GetKeySemaphoresOfSecondaryIndexKey(ctx, "orders", "by_email", "a@example.com")
	require.NoError(t, err)
	assert.Len(t, secSems, 0)

	// the primary key itself survives — only the resource row was deleted.
	sems, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, int64(7))
	require.NoError(t, err)
	assert.Len(t, sems, 1)
}

// S5: a partitioning resource's id IS the partition key — no resource row
// is ever created, and InsertResourceId/DeleteResourceId both degrade to
// no-ops (or NotFound, for delete) rather than touching a nonexistent table.
func TestDirectoryPartitioningResourceIdentity(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.RegisterResource(ctx, "accounts", "INTEGER", true))
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(55), metadata.ObjectID(1)))

	require.NoError(t, d.InsertResourceId(ctx, "accounts", int64(55), int64(55)))

	key, found, err := d.GetPrimaryIndexKeyOfResourceId(ctx, "accounts", int64(55))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(55), key)

	err = d.DeleteResourceId(ctx, "accounts", int64(55))
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.NotFound))
}

func TestDirectoryUpdatePrimaryIndexKeyOfResourceId(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.RegisterResource(ctx, "orders", "INTEGER", false))
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(7), metadata.ObjectID(1)))
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(8), metadata.ObjectID(2)))
	require.NoError(t, d.InsertResourceId(ctx, "orders", int64(100), int64(7)))

	require.NoError(t, d.UpdatePrimaryIndexKeyOfResourceId(ctx, "orders", int64(100), int64(8)))

	key, found, err := d.GetPrimaryIndexKeyOfResourceId(ctx, "orders", int64(100))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(8), key)
}

func TestDirectoryUnregisterResourceDropsSecondaryTables(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.RegisterResource(ctx, "orders", "INTEGER", false))
	require.NoError(t, d.RegisterSecondaryIndex(ctx, "orders", "by_email", "TEXT"))

	require.NoError(t, d.UnregisterResource(ctx, "orders"))

	err := d.UnregisterResource(ctx, "orders")
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.NotFound))
}

func TestDirectoryRegisterResourceRejectsUnsafeName(t *testing.T) {
	d := openTestDirectory(t)
	err := d.RegisterResource(context.Background(), "orders; DROP TABLE x", "INTEGER", false)
	require.Error(t, err)
}

func TestDirectoryCacheServesRepeatedLookups(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.InsertPrimaryIndexKey(ctx, int64(42), metadata.ObjectID(1)))

	first, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, int64(42))
	require.NoError(t, err)

	stats := d.cache.statsSnapshot()
	assert.Equal(t, 1, stats.Keys)

	second, err := d.GetKeySemaphoresOfPrimaryIndexKey(ctx, int64(42))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
