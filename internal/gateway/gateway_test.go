package gateway

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"

	"github.com/dreamware/hivedir/internal/metadata"
)

// openTestDB opens a fresh in-memory sqlite database with the metadata
// tables this package's gateways operate on. It duplicates
// internal/hive's installMetadataSchema rather than importing it, since
// internal/hive already imports internal/gateway and a back-import would
// cycle.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	statements := []string{
		`CREATE TABLE partition_dimension (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name VARCHAR(255) NOT NULL UNIQUE,
			key_type VARCHAR(64) NOT NULL,
			index_uri VARCHAR(1024) NOT NULL DEFAULT '',
			assigner VARCHAR(255) NOT NULL DEFAULT 'hash-mod'
		)`,
		`CREATE TABLE resource (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dimension_id INTEGER NOT NULL,
			name VARCHAR(255) NOT NULL,
			key_type VARCHAR(64) NOT NULL,
			is_partitioning BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (dimension_id, name)
		)`,
		`CREATE TABLE secondary_index (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource_id INTEGER NOT NULL,
			name VARCHAR(255) NOT NULL,
			column_type VARCHAR(64) NOT NULL,
			UNIQUE (resource_id, name)
		)`,
		`CREATE TABLE node (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dimension_id INTEGER NOT NULL,
			name VARCHAR(255) NOT NULL,
			uri VARCHAR(1024) NOT NULL,
			read_only BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (dimension_id, name)
		)`,
		`CREATE TABLE hive_semaphore (
			revision BIGINT NOT NULL,
			read_only BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}
	for _, stmt := range statements {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
	return db
}

func seedDimension(t *testing.T, db *sql.DB) metadata.ObjectID {
	t.Helper()
	g := NewDimensionGateway(db, SQLite)
	d, err := g.Create(context.Background(), metadata.PartitionDimension{
		Name: "customers", KeyType: "INTEGER", Assigner: "hash-mod",
	})
	require.NoError(t, err)
	return d.ID
}
