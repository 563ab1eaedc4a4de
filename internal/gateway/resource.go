package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

// ResourceGateway owns the resource table. Rows reference their owning
// dimension by id (dimension_id); the gateway does not validate that the
// dimension exists — that invariant is the hive façade's job (spec.md §3
// invariant 2) before it ever calls Create.
type ResourceGateway struct {
	db      *sql.DB
	dialect Dialect
}

// NewResourceGateway builds a gateway over db using the given dialect.
func NewResourceGateway(db *sql.DB, dialect Dialect) *ResourceGateway {
	return &ResourceGateway{db: db, dialect: dialect}
}

type resourceRow struct {
	ID                     metadata.ObjectID
	DimensionID            metadata.ObjectID
	Name                   string
	KeyType                string
	IsPartitioningResource bool
}

// Create inserts r (addressed by dimensionID) and returns the new row id.
// Fails DuplicateName if a resource with this name already exists under the
// dimension.
func (g *ResourceGateway) Create(ctx context.Context, dimensionID metadata.ObjectID, r metadata.Resource) (resourceRow, error) {
	const op = "ResourceGateway.Create"
	cols := fmt.Sprintf("(dimension_id, name, key_type, is_partitioning) VALUES (%s, %s, %s, %s)",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3), g.dialect.placeholder(4))
	id, err := insertReturningID(ctx, g.db, g.dialect, "resource", cols, int64(dimensionID), r.Name, r.KeyType, r.IsPartitioningResource)
	if err != nil {
		return resourceRow{}, dupNameOr(err, op, r.Name, hiveerr.DuplicateName)
	}
	return resourceRow{ID: metadata.ObjectID(id), DimensionID: dimensionID, Name: r.Name, KeyType: r.KeyType, IsPartitioningResource: r.IsPartitioningResource}, nil
}

// Update persists changes to an already-created resource.
func (g *ResourceGateway) Update(ctx context.Context, id metadata.ObjectID, r metadata.Resource) error {
	const op = "ResourceGateway.Update"
	if id == metadata.NewObjectID {
		return hiveerr.New(hiveerr.PersistenceError, op, r.Name, "cannot update a transient resource (id=0)")
	}
	query := fmt.Sprintf("UPDATE resource SET name = %s, key_type = %s, is_partitioning = %s WHERE id = %s",
		g.dialect.placeholder(1), g.dialect.placeholder(2), g.dialect.placeholder(3), g.dialect.placeholder(4))
	res, err := g.db.ExecContext(ctx, query, r.Name, r.KeyType, r.IsPartitioningResource, int64(id))
	if err != nil {
		return dupNameOr(err, op, r.Name, hiveerr.DuplicateName)
	}
	return requireRowAffected(res, op, r.Name)
}

// Delete removes the resource with the given id.
func (g *ResourceGateway) Delete(ctx context.Context, id metadata.ObjectID) error {
	const op = "ResourceGateway.Delete"
	query := fmt.Sprintf("DELETE FROM resource WHERE id = %s", g.dialect.placeholder(1))
	res, err := g.db.ExecContext(ctx, query, int64(id))
	if err != nil {
		return hiveerr.Wrap(hiveerr.PersistenceError, op, fmt.Sprint(id), err)
	}
	return requireRowAffected(res, op, fmt.Sprint(id))
}

// LoadAll returns every resource row across all dimensions.
func (g *ResourceGateway) LoadAll(ctx context.Context) ([]resourceRow, error) {
	const op = "ResourceGateway.LoadAll"
	rows, err := g.db.QueryContext(ctx, "SELECT id, dimension_id, name, key_type, is_partitioning FROM resource")
	if err != nil {
		return nil, hiveerr.Wrap(hiveerr.PersistenceError, op, "", err)
	}
	defer rows.Close()

	var out []resourceRow
	for rows.Next() {
		var row resourceRow
		var id, dimID int64
		if err := rows.Scan(&id, &dimID, &row.Name, &row.KeyType, &row.IsPartitioningResource); err != nil {
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
