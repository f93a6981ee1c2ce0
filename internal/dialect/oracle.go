package dialect

import "fmt"

// Oracle generates SQL for Oracle Database. Oracle has no CREATE TABLE IF
// NOT EXISTS and no LIMIT clause, so the DDL is wrapped in a PL/SQL block
// that ignores ORA-00955 (name already used) and top-1 queries use the
// ROWNUM subquery idiom.
type Oracle struct{}

// Name implements Dialect.
func (Oracle) Name() string { return "oracle" }

// Placeholder implements Dialect. Oracle uses named ':n' markers.
func (Oracle) Placeholder(n int) string { return fmt.Sprintf(":%d", n) }

// CreateVersionTableSQL implements Dialect.
func (Oracle) CreateVersionTableSQL(table string) string {
	ddl := fmt.Sprintf(`CREATE TABLE %s (
    version_rank   NUMBER NOT NULL,
    installed_rank NUMBER NOT NULL,
    version        VARCHAR2(50) NOT NULL,
    description    VARCHAR2(200) NOT NULL,
    type           VARCHAR2(20) NOT NULL,
    script         VARCHAR2(1000) NOT NULL,
    checksum       VARCHAR2(64),
    installed_by   VARCHAR2(100) NOT NULL,
    installed_on   TIMESTAMP DEFAULT SYSTIMESTAMP,
    execution_time NUMBER NOT NULL,
    success        NUMBER(1) NOT NULL,
    CONSTRAINT pk_%s PRIMARY KEY (version)
)`, table, table)

	return fmt.Sprintf(`BEGIN
    EXECUTE IMMEDIATE '%s';
EXCEPTION
    WHEN OTHERS THEN
        IF SQLCODE != -955 THEN
            RAISE;
        END IF;
END;`, ddl)
}

// LatestVersionSQL implements Dialect.
func (Oracle) LatestVersionSQL(table string) string {
	return fmt.Sprintf(
		"SELECT version FROM (SELECT version FROM %s WHERE success = 1 ORDER BY version_rank DESC) WHERE ROWNUM = 1",
		table,
	)
}

// PreviousVersionSQL implements Dialect.
func (Oracle) PreviousVersionSQL(table string, currentRank int) string {
	return fmt.Sprintf(
		"SELECT version FROM (SELECT version FROM %s WHERE success = 1 AND version_rank < %d ORDER BY version_rank DESC) WHERE ROWNUM = 1",
		table, currentRank,
	)
}

// RollbackRangeSQL implements Dialect.
func (Oracle) RollbackRangeSQL(table string, targetRank, currentRank int) string {
	return fmt.Sprintf(
		"SELECT version FROM %s WHERE success = 1 AND version_rank > %d AND version_rank <= %d ORDER BY version_rank DESC",
		table, targetRank, currentRank,
	)
}
