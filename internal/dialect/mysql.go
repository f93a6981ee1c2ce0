package dialect

import "fmt"

// MySQL is the baseline dialect. Unrecognized database products fall back
// to it, mirroring the broad compatibility of its SQL.
type MySQL struct{}

// Name implements Dialect.
func (MySQL) Name() string { return "mysql" }

// Placeholder implements Dialect. MySQL uses positional '?' markers.
func (MySQL) Placeholder(_ int) string { return "?" }

// CreateVersionTableSQL implements Dialect.
func (MySQL) CreateVersionTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version_rank   INT NOT NULL,
    installed_rank INT NOT NULL,
    version        VARCHAR(50) NOT NULL,
    description    VARCHAR(200) NOT NULL,
    type           VARCHAR(20) NOT NULL,
    script         VARCHAR(1000) NOT NULL,
    checksum       VARCHAR(64),
    installed_by   VARCHAR(100) NOT NULL,
    installed_on   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    execution_time INT NOT NULL,
    success        BOOLEAN NOT NULL,
    PRIMARY KEY (version)
)`, table)
}

// LatestVersionSQL implements Dialect.
func (MySQL) LatestVersionSQL(table string) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE ORDER BY version_rank DESC LIMIT 1",
		table,
	)
}

// PreviousVersionSQL implements Dialect.
func (MySQL) PreviousVersionSQL(table string, currentRank int) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE AND version_rank < %d ORDER BY version_rank DESC LIMIT 1",
		table, currentRank,
	)
}

// RollbackRangeSQL implements Dialect.
func (MySQL) RollbackRangeSQL(table string, targetRank, currentRank int) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = TRUE AND version_rank > %d AND version_rank <= %d ORDER BY version_rank DESC",
		table, targetRank, currentRank,
	)
}
