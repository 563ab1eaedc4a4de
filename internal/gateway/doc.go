// Package gateway implements the narrow persistence gateways of spec.md
// §4.2: one gateway per hive-metadata table, each exposing Create, Update,
// Delete, and LoadAll and nothing else. No gateway knows about any other
// table; cross-entity invariants (e.g. "no orphan indexes") are enforced by
// the hive façade before it calls a gateway, not inside the gateway.
//
// Every gateway is grounded on the same shape evalgo-org-eve's
// db/repository package uses: hand-written SQL over *sql.DB, context-scoped,
// errors wrapped with %w. Gateways never use an ORM — spec.md places
// ORM/session-factory layers above the directory explicitly out of scope.
package gateway
