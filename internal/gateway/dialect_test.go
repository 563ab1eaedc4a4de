package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$1", Postgres.Placeholder(1))
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?", MySQL.Placeholder(1))
	assert.Equal(t, "?", SQLite.Placeholder(5))
}

func TestDialectForURI(t *testing.T) {
	cases := []struct {
		uri  string
		want Dialect
	}{
		{"postgres://localhost/db", Postgres},
		{"postgresql://localhost/db", Postgres},
		{"mysql://localhost/db", MySQL},
		{"sqlite:///tmp/hive.db", SQLite},
		{"sqlite3:///tmp/hive.db", SQLite},
	}
	for _, tt := range cases {
		d, err := DialectForURI(tt.uri)
		require.NoError(t, err, tt.uri)
		assert.Equal(t, tt.want, d, tt.uri)
	}
}

func TestDialectForURIUnsupportedScheme(t *testing.T) {
	_, err := DialectForURI("mongodb://localhost/db")
	assert.Error(t, err)
}

func TestDialectForURIInvalid(t *testing.T) {
	_, err := DialectForURI("://bad")
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(errors.New(`UNIQUE constraint failed: node.name`)))
	assert.True(t, IsUniqueViolation(errors.New("Error 1062: Duplicate entry 'x' for key 'name'")))
	assert.True(t, IsUniqueViolation(errors.New("pq: duplicate key value violates unique constraint \"node_name_key\"")))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
}
