package gateway

import (
	"context"
	"database/sql"

	"github.com/dreamware/hivedir/internal/hiveerr"
)

// insertReturningID runs an insert built from table/cols/placeholders and
// returns the new row's id, using RETURNING on Postgres and LastInsertId
// everywhere else. It centralizes the one real difference between the three
// supported dialects so each gateway's Create method stays a one-liner.
func insertReturningID(ctx context.Context, db *sql.DB, dialect Dialect, table, cols string, args ...any) (int64, error) {
	if dialect == Postgres {
		var id int64
		err := db.QueryRowContext(ctx, "INSERT INTO "+table+" "+cols+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := db.ExecContext(ctx, "INSERT INTO "+table+" "+cols, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// dupNameOr wraps err as DuplicateName if it looks like a unique violation,
// otherwise as PersistenceError.
func dupNameOr(err error, op, entity string, dupKind hiveerr.Kind) error {
	if isUniqueViolation(err) {
		return hiveerr.New(dupKind, op, entity, "name already exists")
	}
	return hiveerr.Wrap(hiveerr.PersistenceError, op, entity, err)
}
