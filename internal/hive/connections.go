package hive

import (
	"context"
	"database/sql"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// Intent tells GetConnection whether the caller wants to write or only read,
// which determines both the lock check applied and the read-only mode set
// on the returned connection (spec.md §4.6 "Connection acquisition").
type Intent int

const (
	// Read requests a read-only connection; no writability is enforced.
	Read Intent = iota
	// ReadWrite requests a writable connection; hive, node, and key must all
	// be writable or the call fails ReadOnly.
	ReadWrite
)

// GetConnectionForKey resolves key to one of its assigned nodes and opens a
// connection to it. When more than one semaphore exists for the key (spec.md
// invariant 5), ReadWrite intent requires every semaphore to be writable —
// hive, node, and key — and fails ReadOnly if any one of them is not; Read
// intent opens a connection to the first regardless of writability. The
// caller owns the returned connection and must close it.
func (h *Hive) GetConnectionForKey(ctx context.Context, dimensionName string, key any, intent Intent) (*sql.Conn, error) {
	const op = "Hive.GetConnectionForKey"
	semaphores, err := h.GetKeySemaphoresOfPrimaryIndexKey(ctx, dimensionName, key)
	if err != nil {
		h.metrics.ConnectionFailure()
		return nil, err
	}
	if len(semaphores) == 0 {
		h.metrics.ConnectionFailure()
		return nil, hiveerr.New(hiveerr.NotFound, op, "", "key has no assigned node")
	}
	return h.openConnectionForSemaphores(ctx, op, dimensionName, semaphores, intent)
}

// GetConnectionForSecondaryKey resolves secondaryKey through its resource to
// a primary key and opens a connection the same way GetConnectionForKey
// does.
func (h *Hive) GetConnectionForSecondaryKey(ctx context.Context, dimensionName, resourceName, indexName string, secondaryKey any, intent Intent) (*sql.Conn, error) {
	const op = "Hive.GetConnectionForSecondaryKey"
	semaphores, err := h.GetKeySemaphoresOfSecondaryIndexKey(ctx, dimensionName, resourceName, indexName, secondaryKey)
	if err != nil {
		h.metrics.ConnectionFailure()
		return nil, err
	}
	if len(semaphores) == 0 {
		h.metrics.ConnectionFailure()
		return nil, hiveerr.New(hiveerr.NotFound, op, "", "secondary key has no assigned node")
	}
	return h.openConnectionForSemaphores(ctx, op, dimensionName, semaphores, intent)
}

func (h *Hive) openConnectionForSemaphores(ctx context.Context, op, dimensionName string, semaphores []metadata.KeySemaphore, intent Intent) (*sql.Conn, error) {
	if intent == ReadWrite {
		if err := h.checkSemaphores(op, dimensionName, semaphores); err != nil {
			h.metrics.ConnectionFailure()
			return nil, err
		}
	}

	g := h.snapshot()
	node, ok := g.nodeByID(dimensionName, semaphores[0].NodeID)
	if !ok {
		h.metrics.ConnectionFailure()
		return nil, hiveerr.New(hiveerr.NotFound, op, "", "semaphore references unknown node")
	}

	conn, err := h.conns.Conn(ctx, node.URI, intent == Read)
	if err != nil {
		h.metrics.ConnectionFailure()
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, node.Name, err)
	}
	if intent == ReadWrite {
		h.metrics.NewWriteConnection()
	} else {
		h.metrics.NewReadConnection()
	}
	return conn, nil
}
