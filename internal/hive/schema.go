package hive

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreamware/hivedir/internal/gateway"
)

// installMetadataSchema creates the five hive-metadata-database tables named
// in spec.md §6, if they do not already exist. Column types are fixed (the
// metadata model's own attributes are simple scalars, unlike directory
// tables whose key columns vary by dimension), so unlike
// internal/directory's EnsureSchema this needs no caller-supplied key type.
func installMetadataSchema(ctx context.Context, db *sql.DB, dialect gateway.Dialect) error {
	autoIncrement := "SERIAL"
	if dialect != gateway.Postgres {
		autoIncrement = "INTEGER"
	}
	primaryKey := "id " + autoIncrement + " PRIMARY KEY"
	if dialect == gateway.MySQL {
		primaryKey = "id INTEGER PRIMARY KEY AUTO_INCREMENT"
	} else if dialect == gateway.SQLite {
		primaryKey = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS partition_dimension (
			%s,
			name VARCHAR(255) NOT NULL UNIQUE,
			key_type VARCHAR(64) NOT NULL,
			index_uri VARCHAR(1024) NOT NULL DEFAULT '',
			assigner VARCHAR(255) NOT NULL DEFAULT 'hash-mod'
		)`, primaryKey),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS resource (
			%s,
			dimension_id INTEGER NOT NULL,
			name VARCHAR(255) NOT NULL,
			key_type VARCHAR(64) NOT NULL,
			is_partitioning BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (dimension_id, name)
		)`, primaryKey),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS secondary_index (
			%s,
			resource_id INTEGER NOT NULL,
			name VARCHAR(255) NOT NULL,
			column_type VARCHAR(64) NOT NULL,
			UNIQUE (resource_id, name)
		)`, primaryKey),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS node (
			%s,
			dimension_id INTEGER NOT NULL,
			name VARCHAR(255) NOT NULL,
			uri VARCHAR(1024) NOT NULL,
			read_only BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (dimension_id, name)
		)`, primaryKey),
		`CREATE TABLE IF NOT EXISTS hive_semaphore (
			revision BIGINT NOT NULL,
			read_only BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("hive: install schema: %w", err)
		}
	}
	return nil
}
