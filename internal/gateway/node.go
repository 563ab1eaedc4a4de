package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// NodeGateway owns the node table.
type NodeGateway struct {
	db      *sql.DB
	dialect Dialect
}

// NewNodeGateway builds a gateway over db using the given dialect.
func NewNodeGateway(db *sql.DB, dialect Dialect) *NodeGateway {
	return &NodeGateway{db: db, dialect: dialect}
}

type nodeRow struct {
	ID          metadata.ObjectID
	DimensionID metadata.ObjectID
	Name        string
	URI         string
	ReadOnly    bool
}

// Create inserts n (addressed by dimensionID) and returns the new row id.
// Fails DuplicateName if a node with this name already exists under the
// dimension.
func (g *NodeGateway) Create(ctx context.Context, dimensionID metadata.ObjectID, n metadata.Node) (nodeRow, error) {
	const op = "NodeGateway.Create"
	cols := fmt.Sprintf("(dimension_id, name, uri, read_only) VALUES (%s, %s, %s, %s)",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3), g.dialect.placeholder(4))
	id, err := insertReturningID(ctx, g.db, g.dialect, "node", cols, int64(dimensionID), n.Name, n.URI, !n.Status.Writable())
	if err != nil {
		return nodeRow{}, dupNameOr(err, op, n.Name, hiveerr.DuplicateName)
	}
	return nodeRow{ID: metadata.ObjectID(id), DimensionID: dimensionID, Name: n.Name, URI: n.URI, ReadOnly: !n.Status.Writable()}, nil
}

// Update persists changes to an already-created node.
func (g *NodeGateway) Update(ctx context.Context, id metadata.ObjectID, n metadata.Node) error {
	const op = "NodeGateway.Update"
	if id == metadata.NewObjectID {
		return hiveerr.New(hiveerr.PersistenceError, op, n.Name, "cannot update a transient node (id=0)")
	}
	query := fmt.Sprintf("UPDATE node SET name = %s, uri = %s, read_only = %s WHERE id = %s",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3), g.dialect.placeholder(4))
	res, err := g.db.ExecContext(ctx, query, n.Name, n.URI, !n.Status.Writable(), int64(id))
	if err != nil {
		return dupNameOr(err, op, n.Name, hiveerr.DuplicateName)
	}
	return requireRowAffected(res, op, n.Name)
}

// Delete removes the node with the given id.
func (g *NodeGateway) Delete(ctx context.Context, id metadata.ObjectID) error {
	const op = "NodeGateway.Delete"
	query := fmt.Sprintf("DELETE FROM node WHERE id = %s", g.dialect.placeholder(1))
	res, err := g.db.ExecContext(ctx, query, int64(id))
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(id), err)
	}
	return requireRowAffected(res, op, fmt.Sprint(id))
}

// LoadAll returns every node row across all dimensions.
func (g *NodeGateway) LoadAll(ctx context.Context) ([]nodeRow, error) {
	const op = "NodeGateway.LoadAll"
	rows, err := g.db.QueryContext(ctx, "SELECT id, dimension_id, name, uri, read_only FROM node")
	if err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
	}
	defer rows.Close()

	var out []nodeRow
	for rows.Next() {
		var row nodeRow
		var id, dimID int64
		if err := rows.Scan(&id, &dimID, &row.Name, &row.URI, &row.ReadOnly); err != nil {
			return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
		}
		row.ID, row.DimensionID = metadata.ObjectID(id), metadata.ObjectID(dimID)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
	}
	return out, nil
}

// Status converts the row's ReadOnly flag into a metadata.Status.
func (r nodeRow) Status() metadata.Status {
	if r.ReadOnly {
		return metadata.StatusReadOnly
	}
	return metadata.StatusWritable
}
