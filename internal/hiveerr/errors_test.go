package hiveerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		NotFound:         "not_found",
		DuplicateName:    "duplicate_name",
		DuplicateKey:     "duplicate_key",
		MissingParent:    "missing_parent",
		ReadOnly:         "read_only",
		NoWritableNode:   "no_writable_node",
		PersistenceError: "persistence_error",
		MetadataMissing:  "metadata_missing",
		Unknown:          "unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestNewError(t *testing.T) {
	err := New(NotFound, "Hive.GetNode", "node-1", "no such node")
	assert.Equal(t, NotFound, err.Kind)
	assert.Contains(t, err.Error(), "node-1")
	assert.Contains(t, err.Error(), "no such node")
	assert.Nil(t, err.Unwrap())
}

func TestWrapError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(PersistenceError, "Gateway.Load", "nodes", cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "connection refused")
}

func TestReadOnlyErr(t *testing.T) {
	err := ReadOnlyErr("Hive.InsertPrimaryIndexKey", "42", "hive", "hive is read-only")
	assert.Equal(t, ReadOnly, err.Kind)
	assert.Equal(t, "hive", err.Scope)
}

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	base := New(DuplicateKey, "Directory.InsertPrimaryIndexKey", "7", "")
	wrapped := fmt.Errorf("insert failed: %w", base)

	assert.True(t, Is(wrapped, DuplicateKey))
	assert.False(t, Is(wrapped, NotFound))
	assert.False(t, Is(errors.New("plain"), NotFound))
}

func TestErrorMessageWithoutCauseOrMessage(t *testing.T) {
	err := &Error{Kind: NotFound, Op: "Hive.Get", Entity: "x"}
	assert.Equal(t, `Hive.Get: not_found "x"`, err.Error())
}
