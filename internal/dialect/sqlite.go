package dialect

import "fmt"

// SQLite generates SQL for SQLite.
type SQLite struct{}

// Name implements Dialect.
func (SQLite) Name() string { return "sqlite" }

// Placeholder implements Dialect. SQLite uses positional '?' markers.
func (SQLite) Placeholder(_ int) string { return "?" }

// CreateVersionTableSQL implements Dialect.
func (SQLite) CreateVersionTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version_rank   INTEGER NOT NULL,
    installed_rank INTEGER NOT NULL,
    version        TEXT NOT NULL,
    description    TEXT NOT NULL,
    type           TEXT NOT NULL,
    script         TEXT NOT NULL,
    checksum       TEXT,
    installed_by   TEXT NOT NULL,
    installed_on   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    execution_time INTEGER NOT NULL,
    success        BOOLEAN NOT NULL,
    PRIMARY KEY (version)
)`, table)
}

// LatestVersionSQL implements Dialect.
func (SQLite) LatestVersionSQL(table string) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE ORDER BY version_rank DESC LIMIT 1",
		table,
	)
}

// PreviousVersionSQL implements Dialect.
func (SQLite) PreviousVersionSQL(table string, currentRank int) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE AND version_rank < %d ORDER BY version_rank DESC LIMIT 1",
		table, currentRank,
	)
}

// RollbackRangeSQL implements Dialect.
func (SQLite) RollbackRangeSQL(table string, targetRank, currentRank int) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE AND version_rank > %d AND version_rank <= %d ORDER BY version_rank DESC",
		table, targetRank, currentRank,
	)
}
