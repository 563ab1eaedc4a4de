package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

func TestNodeGatewayCreateAndLoadAll(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dimID := seedDimension(t, db)

	g := NewNodeGateway(db, SQLite)
	row, err := g.Create(ctx, dimID, metadata.Node{Name: "shard-a", URI: "sqlite://a.db", Status: metadata.StatusWritable})
	require.NoError(t, err)
	assert.False(t, row.ReadOnly)

	all, err := g.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "shard-a", all[0].Name)
	assert.Equal(t, metadata.StatusWritable, all[0].Status())
}

func TestNodeGatewayCreateDuplicateNameWithinDimension(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dimID := seedDimension(t, db)
	g := NewNodeGateway(db, SQLite)

	_, err := g.Create(ctx, dimID, metadata.Node{Name: "shard-a", URI: "sqlite://a.db"})
	require.NoError(t, err)
	_, err = g.Create(ctx, dimID, metadata.Node{Name: "shard-a", URI: "sqlite://b.db"})
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.DuplicateName))
}

func TestNodeGatewayUpdateStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dimID := seedDimension(t, db)
	g := NewNodeGateway(db, SQLite)

	row, err := g.Create(ctx, dimID, metadata.Node{Name: "shard-a", URI: "sqlite://a.db", Status: metadata.StatusWritable})
	require.NoError(t, err)

	require.NoError(t, g.Update(ctx, row.ID, metadata.Node{Name: "shard-a", URI: "sqlite://a.db", Status: metadata.StatusReadOnly}))

	all, err := g.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, metadata.StatusReadOnly, all[0].Status())
}

func TestNodeGatewayDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dimID := seedDimension(t, db)
	g := NewNodeGateway(db, SQLite)

	row, err := g.Create(ctx, dimID, metadata.Node{Name: "shard-a", URI: "sqlite://a.db"})
	require.NoError(t, err)

	require.NoError(t, g.Delete(ctx, row.ID))
	all, err := g.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 0)
}
