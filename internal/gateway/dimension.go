package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// DimensionGateway owns the partition_dimension table.
type DimensionGateway struct {
	db      *sql.DB
	dialect Dialect
}

// NewDimensionGateway builds a gateway over db using the given dialect.
func NewDimensionGateway(db *sql.DB, dialect Dialect) *DimensionGateway {
	return &DimensionGateway{db: db, dialect: dialect}
}

// Create inserts d and returns a copy with ID populated. Fails DuplicateName
// if a dimension with this name already exists.
func (g *DimensionGateway) Create(ctx context.Context, d metadata.PartitionDimension) (metadata.PartitionDimension, error) {
	const op = "DimensionGateway.Create"
	cols := fmt.Sprintf("(name, key_type, index_uri, assigner) VALUES (%s, %s, %s, %s)",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3), g.dialect.placeholder(4))

	id, err := insertReturningID(ctx, g.db, g.dialect, "partition_dimension", cols, d.Name, d.KeyType, d.IndexURI, d.Assigner)
	if err != nil {
		return metadata.PartitionDimension{}, dupNameOr(err, op, d.Name, hiveerr.DuplicateName)
	}
	d.ID = metadata.ObjectID(id)
	return d, nil
}

// Update persists changes to an already-created dimension. Fails
// PersistenceError if d.ID is NewObjectID, NotFound if no row matches it.
func (g *DimensionGateway) Update(ctx context.Context, d metadata.PartitionDimension) error {
	const op = "DimensionGateway.Update"
	if d.ID == metadata.NewObjectID {
		return hiveerr.New(hiveerr.PersistenceError, op, d.Name, "cannot update a transient dimension (id=0)")
	}
	query := fmt.Sprintf(
		"UPDATE partition_dimension SET name = %s, key_type = %s, index_uri = %s, assigner = %s WHERE id = %s",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3), g.dialect.placeholder(4), g.dialect.placeholder(5))
	res, err := g.db.ExecContext(ctx, query, d.Name, d.KeyType, d.IndexURI, d.Assigner, int64(d.ID))
	if err != nil {
		if isUniqueViolation(err) {
			return hiveerr.New(hiveerr.DuplicateName, op, d.Name, "dimension name already exists")
		}
		return hiveerr.Wrap(hiveerr.PersistenceError, op, d.Name, err)
	}
	return requireRowAffected(res, op, d.Name)
}

// Delete removes the dimension with the given id. Fails NotFound if absent.
func (g *DimensionGateway) Delete(ctx context.Context, id metadata.ObjectID) error {
	const op = "DimensionGateway.Delete"
	query := fmt.Sprintf("DELETE FROM partition_dimension WHERE id = %s", g.dialect.placeholder(1))
	res, err := g.db.ExecContext(ctx, query, int64(id))
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(id), err)
	}
	return requireRowAffected(res, op, fmt.Sprint(id))
}

// LoadAll returns every dimension row.
func (g *DimensionGateway) LoadAll(ctx context.Context) ([]metadata.PartitionDimension, error) {
	const op = "DimensionGateway.LoadAll"
	rows, err := g.db.QueryContext(ctx, "SELECT id, name, key_type, index_uri, assigner FROM partition_dimension")
	if err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
	}
	defer rows.Close()

	var out []metadata.PartitionDimension
	for rows.Next() {
		var d metadata.PartitionDimension
		var id int64
		if err := rows.Scan(&id, &d.Name, &d.KeyType, &d.IndexURI, &d.Assigner); err != nil {
			return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
		}
		d.ID = metadata.ObjectID(id)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
	}
	return out, nil
}

// requireRowAffected turns a zero-rows-affected Exec result into NotFound.
func requireRowAffected(res sql.Result, op, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, entity, err)
	}
	if n == 0 {
		return hiveerr.New(hiveerr.NotFound, op, entity, "no matching row")
	}
	return nil
}
