package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// IndexGateway owns the secondary_index table.
type IndexGateway struct {
	db      *sql.DB
	dialect Dialect
}

// NewIndexGateway builds a gateway over db using the given dialect.
func NewIndexGateway(db *sql.DB, dialect Dialect) *IndexGateway {
	return &IndexGateway{db: db, dialect: dialect}
}

type indexRow struct {
	ID         metadata.ObjectID
	ResourceID metadata.ObjectID
	Name       string
	ColumnType string
}

// Create inserts idx (addressed by resourceID) and returns the new row id.
// Fails DuplicateName if an index with this name already exists on the
// resource.
func (g *IndexGateway) Create(ctx context.Context, resourceID metadata.ObjectID, idx metadata.SecondaryIndex) (indexRow, error) {
	const op = "IndexGateway.Create"
	cols := fmt.Sprintf("(resource_id, name, column_type) VALUES (%s, %s, %s)",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3))
	id, err := insertReturningID(ctx, g.db, g.dialect, "secondary_index", cols, int64(resourceID), idx.Name, idx.ColumnType)
	if err != nil {
		return indexRow{}, dupNameOr(err, op, idx.Name, hiveerr.DuplicateName)
	}
	return indexRow{ID: metadata.ObjectID(id), ResourceID: resourceID, Name: idx.Name, ColumnType: idx.ColumnType}, nil
}

// Update persists changes to an already-created secondary index.
func (g *IndexGateway) Update(ctx context.Context, id metadata.ObjectID, idx metadata.SecondaryIndex) error {
	const op = "IndexGateway.Update"
	if id == metadata.NewObjectID {
		return hiveerr.New(hiveerr.PersistenceError, op, idx.Name, "cannot update a transient index (id=0)")
	}
	query := fmt.Sprintf("UPDATE secondary_index SET name = %s, column_type = %s WHERE id = %s",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3))
	res, err := g.db.ExecContext(ctx, query, idx.Name, idx.ColumnType, int64(id))
	if err != nil {
		return dupNameOr(err, op, idx.Name, hiveerr.DuplicateName)
	}
	return requireRowAffected(res, op, idx.Name)
}

// Delete removes the index with the given id.
func (g *IndexGateway) Delete(ctx context.Context, id metadata.ObjectID) error {
	const op = "IndexGateway.Delete"
	query := fmt.Sprintf("DELETE FROM secondary_index WHERE id = %s", g.dialect.placeholder(1))
	res, err := g.db.ExecContext(ctx, query, int64(id))
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(id), err)
	}
	return requireRowAffected(res, op, fmt.Sprint(id))
}

// LoadAll returns every secondary index row across all resources.
func (g *IndexGateway) LoadAll(ctx context.Context) ([]indexRow, error) {
	const op = "IndexGateway.LoadAll"
	rows, err := g.db.QueryContext(ctx, "SELECT id, resource_id, name, column_type FROM secondary_index")
	if err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
	}
	defer rows.Close()

	var out []indexRow
	for rows.Next() {
		var row indexRow
		var id, resID int64
		if err := rows.Scan(&id, &resID, &row.Name, &row.ColumnType); err != nil {
			return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
		}
		row.ID, row.ResourceID = metadata.ObjectID(id), metadata.ObjectID(resID)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
	}
	return out, nil
}
