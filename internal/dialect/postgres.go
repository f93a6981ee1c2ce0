package dialect

import "fmt"

// Postgres generates SQL for PostgreSQL.
type Postgres struct{}

// Name implements Dialect.
func (Postgres) Name() string { return "postgres" }

// Placeholder implements Dialect. PostgreSQL uses numbered '$n' markers.
func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// CreateVersionTableSQL implements Dialect.
func (Postgres) CreateVersionTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version_rank   INTEGER NOT NULL,
    installed_rank INTEGER NOT NULL,
    version        TEXT NOT NULL,
    description    TEXT NOT NULL,
    type           TEXT NOT NULL,
    script         TEXT NOT NULL,
    checksum       TEXT,
    installed_by   TEXT NOT NULL,
    installed_on   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    execution_time INTEGER NOT NULL,
    success        BOOLEAN NOT NULL,
    CONSTRAINT %s_pk PRIMARY KEY (version)
)`, table, table)
}

// LatestVersionSQL implements Dialect.
func (Postgres) LatestVersionSQL(table string) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE ORDER BY version_rank DESC LIMIT 1",
		table,
	)
}

// PreviousVersionSQL implements Dialect.
func (Postgres) PreviousVersionSQL(table string, currentRank int) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE AND version_rank < %d ORDER BY version_rank DESC LIMIT 1",
		table, currentRank,
	)
}

// RollbackRangeSQL implements Dialect.
func (Postgres) RollbackRangeSQL(table string, targetRank, currentRank int) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE AND version_rank > %d AND version_rank <= %d ORDER BY version_rank DESC",
		table, targetRank, currentRank,
	)
}
