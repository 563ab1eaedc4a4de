package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/hivedir/internal/gateway"
)

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("orders"))
	assert.True(t, ValidIdentifier("_private"))
	assert.True(t, ValidIdentifier("orders_2"))

	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier("2orders"))
	assert.False(t, ValidIdentifier("orders; DROP TABLE x"))
	assert.False(t, ValidIdentifier("orders.secret"))
	assert.False(t, ValidIdentifier("orders-v2"))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`orders`", quoteIdent(gateway.MySQL, "orders"))
	assert.Equal(t, `"orders"`, quoteIdent(gateway.Postgres, "orders"))
	assert.Equal(t, `"orders"`, quoteIdent(gateway.SQLite, "orders"))
}

func TestResourceAndSecondaryTableNames(t *testing.T) {
	assert.Equal(t, "resource_index_orders", resourceTable("orders"))
	assert.Equal(t, "secondary_index_orders.by_email", secondaryTable("orders", "by_email"))
}
