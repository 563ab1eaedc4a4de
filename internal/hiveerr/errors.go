// Package hiveerr collapses the per-operation throws lists of the source
// system into one error type with a Kind discriminant, per spec.md §7.
// Gateway, directory, lock, and most façade errors are *hiveerr.Error values.
// Some façade paths (Load, Install, ForceSynchronize) wrap errors with
// fmt.Errorf, and Load and Install can return errors that carry no Kind at
// all; Is unwraps through such wrapping to find a Kind.
package hiveerr

import "fmt"

// Kind discriminates the handful of error categories the hive produces.
type Kind int

const (
	// Unknown is the zero value and should never be returned deliberately.
	Unknown Kind = iota
	// NotFound means a named entity or key is absent.
	NotFound
	// DuplicateName means a uniqueness violation on an entity name.
	DuplicateName
	// DuplicateKey means a uniqueness violation on a directory key.
	DuplicateKey
	// MissingParent means a row references a parent key that has no row.
	MissingParent
	// ReadOnly means the lock engine refused the operation.
	ReadOnly
	// NoWritableNode means the assigner was given an empty node set.
	NoWritableNode
	// PersistenceError means the storage driver failed.
	PersistenceError
	// MetadataMissing means the hive schema has not been installed.
	MetadataMissing
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case DuplicateName:
		return "duplicate_name"
	case DuplicateKey:
		return "duplicate_key"
	case MissingParent:
		return "missing_parent"
	case ReadOnly:
		return "read_only"
	case NoWritableNode:
		return "no_writable_node"
	case PersistenceError:
		return "persistence_error"
	case MetadataMissing:
		return "metadata_missing"
	default:
		return "unknown"
	}
}

// Error is the hive's single error type. Scope is an optional annotation of
// which lock scope (hive/node/key) produced a ReadOnly error; it is empty for
// every other kind.
type Error struct {
	Kind    Kind
	Op      string // operation name, e.g. "Hive.InsertPrimaryIndexKey"
	Entity  string // entity or key name involved
	Scope   string // "hive", "node", or "key" — only meaningful for ReadOnly
	Message string
	Err     error // wrapped low-level cause, e.g. a driver error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err == nil {
		return fmt.Sprintf("%s: %s %q", e.Op, e.Kind, e.Entity)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %q: %v", e.Op, e.Kind, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s: %s %q: %s", e.Op, e.Kind, e.Entity, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err carries the given Kind, unwrapping through any
// number of wrapping errors.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if he, ok := err.(*Error); ok {
			e = he
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}

// New builds an *Error with no wrapped cause.
func New(kind Kind, op, entity, message string) *Error {
	return &Error{Kind: kind, Op: op, Entity: entity, Message: message}
}

// Wrap builds an *Error carrying a lower-level cause, typically a driver
// error surfaced as PersistenceError.
func Wrap(kind Kind, op, entity string, err error) *Error {
	return &Error{Kind: kind, Op: op, Entity: entity, Err: err}
}

// ReadOnlyErr builds the ReadOnly error the lock engine returns, recording
// which scope refused the write.
func ReadOnlyErr(op, entity, scope, message string) *Error {
	return &Error{Kind: ReadOnly, Op: op, Entity: entity, Scope: scope, Message: message}
}
