package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/metadata"
)

func writableHive() metadata.HiveSemaphore {
	return metadata.HiveSemaphore{Revision: 1, Status: metadata.StatusWritable}
}

func alwaysWritableNodeStatus(metadata.ObjectID) (metadata.Status, bool) {
	return metadata.StatusWritable, true
}

func TestRequireWritableHiveReadOnly(t *testing.T) {
	hive := metadata.HiveSemaphore{Status: metadata.StatusReadOnly}
	err := RequireWritable("op", hive, nil, alwaysWritableNodeStatus, "42")
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.ReadOnly))

	var herr *hiveerr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "hive", herr.Scope)
}

func TestRequireWritableNodeReadOnly(t *testing.T) {
	sems := []metadata.KeySemaphore{{NodeID: 1, Status: metadata.StatusWritable}}
	nodeStatus := func(id metadata.ObjectID) (metadata.Status, bool) {
		return metadata.StatusReadOnly, true
	}

	err := RequireWritable("op", writableHive(), sems, nodeStatus, "42")
	require.Error(t, err)

	var herr *hiveerr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "node", herr.Scope)
}

func TestRequireWritableKeyReadOnly(t *testing.T) {
	sems := []metadata.KeySemaphore{{NodeID: 1, Status: metadata.StatusReadOnly}}

	err := RequireWritable("op", writableHive(), sems, alwaysWritableNodeStatus, "42")
	require.Error(t, err)

	var herr *hiveerr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "key", herr.Scope)
}

func TestRequireWritableAllWritable(t *testing.T) {
	sems := []metadata.KeySemaphore{
		{NodeID: 1, Status: metadata.StatusWritable},
		{NodeID: 2, Status: metadata.StatusWritable},
	}
	err := RequireWritable("op", writableHive(), sems, alwaysWritableNodeStatus, "42")
	assert.NoError(t, err)
}

func TestRequireWritableUnknownNodeSkipsNodeCheck(t *testing.T) {
	sems := []metadata.KeySemaphore{{NodeID: 99, Status: metadata.StatusWritable}}
	nodeStatus := func(metadata.ObjectID) (metadata.Status, bool) { return "", false }

	err := RequireWritable("op", writableHive(), sems, nodeStatus, "42")
	assert.NoError(t, err)
}

func TestRequireHiveWritable(t *testing.T) {
	assert.NoError(t, RequireHiveWritable("op", writableHive(), "dim1"))

	err := RequireHiveWritable("op", metadata.HiveSemaphore{Status: metadata.StatusReadOnly}, "dim1")
	require.Error(t, err)
	assert.True(t, hiveerr.Is(err, hiveerr.ReadOnly))
}

func TestRequireNodeWritable(t *testing.T) {
	node := metadata.Node{Name: "n1", Status: metadata.StatusWritable}
	assert.NoError(t, RequireNodeWritable("op", writableHive(), node, "n1"))

	node.Status = metadata.StatusReadOnly
	err := RequireNodeWritable("op", writableHive(), node, "n1")
	require.Error(t, err)

	var herr *hiveerr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "node", herr.Scope)
}

func TestRequireNodeWritableHiveReadOnlyWins(t *testing.T) {
	node := metadata.Node{Name: "n1", Status: metadata.StatusWritable}
	hive := metadata.HiveSemaphore{Status: metadata.StatusReadOnly}

	err := RequireNodeWritable("op", hive, node, "n1")
	require.Error(t, err)

	var herr *hiveerr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "hive", herr.Scope)
}
