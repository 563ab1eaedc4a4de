package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// Dialect names the placeholder convention of the backing driver. Gateways
// are driver-agnostic apart from this one detail.
type Dialect int

const (
	// Postgres uses $1, $2, ... placeholders.
	Postgres Dialect = iota
	// MySQL and SQLite both use ? placeholders.
	MySQL
	SQLite
)

// placeholder returns the nth (1-based) bind placeholder for the dialect.
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Placeholder is the exported form of placeholder, for packages outside
// gateway (such as directory) that build dialect-aware SQL of their own
// against dynamically-named tables the gateways don't own.
func (d Dialect) Placeholder(n int) string { return d.placeholder(n) }

// IsUniqueViolation is the exported form of isUniqueViolation.
func IsUniqueViolation(err error) bool { return isUniqueViolation(err) }

// DialectForURI infers the SQL dialect from a JDBC-style connection URI's
// scheme, mirroring connsource's own scheme dispatch so gateways and
// connections always agree on which placeholder convention a URI implies.
func DialectForURI(uri string) (Dialect, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return 0, fmt.Errorf("gateway: parse uri %q: %w", uri, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return 0, fmt.Errorf("gateway: unsupported scheme %q in uri %q", u.Scheme, uri)
	}
}

// isUniqueViolation reports whether err looks like a unique-constraint
// failure, independent of which of the three drivers produced it. Each
// driver surfaces constraint violations differently (pq.Error.Code,
// mysql.MySQLError.Number, sqlite's text message); this project only needs
// to distinguish "duplicate" from "other failure", so a substring check on
// the well-known markers is sufficient and avoids importing each driver's
// internal error type just to switch on it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"duplicate key value violates unique constraint", // postgres
		"Error 1062",        // mysql: Duplicate entry
		"UNIQUE constraint", // sqlite
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
