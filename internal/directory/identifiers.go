package directory

import (
	"fmt"
	"regexp"

	"github.com/dreamware/hivedir/internal/gateway"
)

// identPattern restricts resource and secondary index names to the charset
// safe to splice directly into a table name. Directory.RegisterResource and
// Directory.RegisterSecondaryIndex check names against it before creating a
// table.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to use as (part of) a SQL
// table name.
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// quoteIdent quotes a fully-formed table name for the given dialect.
func quoteIdent(dialect gateway.Dialect, ident string) string {
	if dialect == gateway.MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// resourceTable returns the resource_index_{R} table name for resource R.
func resourceTable(resourceName string) string {
	return fmt.Sprintf("resource_index_%s", resourceName)
}

// secondaryTable returns the secondary_index_{R}.{S} table name for
// resource R and secondary index S.
func secondaryTable(resourceName, indexName string) string {
	return fmt.Sprintf("secondary_index_%s.%s", resourceName, indexName)
}
