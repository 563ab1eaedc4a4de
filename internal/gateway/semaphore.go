package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// HiveSemaphoreGateway owns the single-row hive_semaphore table. Per
// SPEC_FULL.md's resolution of spec.md §9's "two update paths" open
// question, this gateway deliberately has no exported read-only setter of
// its own: CompareAndSwapRevision is the only write path, and the hive
// façade's Hive.UpdateHiveStatus is the only caller allowed to flip
// read-only state (by reading, mutating the in-memory copy, and writing it
// back through CompareAndSwapRevision).
type HiveSemaphoreGateway struct {
	db      *sql.DB
	dialect Dialect
}

// NewHiveSemaphoreGateway builds a gateway over db using the given dialect.
func NewHiveSemaphoreGateway(db *sql.DB, dialect Dialect) *HiveSemaphoreGateway {
	return &HiveSemaphoreGateway{db: db, dialect: dialect}
}

// CreateSingleton inserts the one hive_semaphore row. Fails with
// PersistenceError (not DuplicateName — there is no name to collide on) if a
// row already exists; callers should Load first.
func (g *HiveSemaphoreGateway) CreateSingleton(ctx context.Context) (metadata.HiveSemaphore, error) {
	const op = "HiveSemaphoreGateway.CreateSingleton"
	query := fmt.Sprintf("INSERT INTO hive_semaphore (revision, read_only) VALUES (%s, %s)",
		g.dialect.placeholder(1), g.dialect.placeholder(2))
	if _, err := g.db.ExecContext(ctx, query, int64(0), false); err != nil {
		return metadata.HiveSemaphore{}, hiveerr.Wrap(hiveerr.PersistenceError, op, "hive_semaphore", err)
	}
	return metadata.HiveSemaphore{Revision: 0, Status: metadata.StatusWritable}, nil
}

// Load reads the current hive semaphore row. Fails MetadataMissing if the
// singleton row has never been created (schema not installed).
func (g *HiveSemaphoreGateway) Load(ctx context.Context) (metadata.HiveSemaphore, error) {
	const op = "HiveSemaphoreGateway.Load"
	row := g.db.QueryRowContext(ctx, "SELECT revision, read_only FROM hive_semaphore")
	var rev int64
	var readOnly bool
	if err := row.Scan(&rev, &readOnly); err != nil {
		if err == sql.ErrNoRows {
			return metadata.HiveSemaphore{}, hiveerr.New(hiveerr.MetadataMissing, op, "hive_semaphore", "hive schema not installed")
		}
		return metadata.HiveSemaphore{}, hiveerr.Wrap(hiveerr.PersistenceError, op, "hive_semaphore", err)
	}
	status := metadata.StatusWritable
	if readOnly {
		status = metadata.StatusReadOnly
	}
	return metadata.HiveSemaphore{Revision: rev, Status: status}, nil
}

// CompareAndSwapRevision writes next only if the persisted revision still
// equals expectedRevision, bumping the row atomically. Returns false (no
// error) if another process already advanced the revision — the caller
// should reload and retry. This is the single writer for both the revision
// counter and the read-only flag.
func (g *HiveSemaphoreGateway) CompareAndSwapRevision(ctx context.Context, expectedRevision int64, next metadata.HiveSemaphore) (bool, error) {
	const op = "HiveSemaphoreGateway.CompareAndSwapRevision"
	query := fmt.Sprintf("UPDATE hive_semaphore SET revision = %s, read_only = %s WHERE revision = %s",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3))
	res, err := g.db.ExecContext(ctx, query, next.Revision, !next.Status.Writable(), expectedRevision)
	if err != nil {
		return false, hiveerr.Wrap(hiveerr.PersistenceError, op, "hive_semaphore", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, hiveerr.Wrap(hiveerr.PersistenceError, op, "hive_semaphore", err)
	}
	return n == 1, nil
}
