// Package dialect generates the product-specific SQL the version store
// needs. Each supported database implements the same small capability set;
// no other package embeds per-database SQL.
package dialect

// Dialect is the capability set a database product must provide for
// version tracking. Implementations are pure SQL generators and hold no
// connection state.
type Dialect interface {
	// Name identifies the dialect, e.g. "mysql" or "postgres".
	Name() string

	// Placeholder returns the bind-variable syntax for the nth parameter
	// (1-based), e.g. "?" for MySQL, "$1" for PostgreSQL.
	Placeholder(n int) string

	// CreateVersionTableSQL returns idempotent DDL for the history table.
	CreateVersionTableSQL(table string) string

	// LatestVersionSQL returns a query selecting the single highest
	// installed version, ordered by version_rank.
	LatestVersionSQL(table string) string

	// PreviousVersionSQL returns a query selecting the version with the
	// next-lower rank than currentRank.
	PreviousVersionSQL(table string, currentRank int) string

	// RollbackRangeSQL returns a query selecting all versions with
	// targetRank < rank <= currentRank, highest rank first.
	RollbackRangeSQL(table string, targetRank, currentRank int) string
}
