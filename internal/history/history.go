// Package history owns the schema version history table: the persisted
// ledger of applied migrations, one row per installed version.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Table is the history table name, fixed across all dialects.
const Table = "schema_version_history"

// Dialect is the SQL-generation capability set the store depends on.
// Implemented by the dialect package.
type Dialect interface {
	Name() string
	Placeholder(n int) string
	CreateVersionTableSQL(table string) string
	LatestVersionSQL(table string) string
	PreviousVersionSQL(table string, currentRank int) string
	RollbackRangeSQL(table string, targetRank, currentRank int) string
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting store operations compose into a caller-owned transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Row is one history table entry.
type Row struct {
	VersionRank   int
	InstalledRank int
	Version       string
	Description   string
	Type          string
	Script        string
	Checksum      string
	InstalledBy   string
	InstalledOn   time.Time
	ExecutionTime int // milliseconds
	Success       bool
}

// Store reads and writes the history table through a dialect.
type Store struct {
	dialect Dialect
}

// New creates a Store generating SQL for the given dialect.
func New(d Dialect) *Store {
	return &Store{dialect: d}
}

// Init idempotently creates the history table. Safe to call repeatedly.
func (s *Store) Init(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, s.dialect.CreateVersionTableSQL(Table)); err != nil {
		return fmt.Errorf("%w: %w", ErrTableCreation, err)
	}

	return nil
}

// CurrentVersion returns the highest installed version by rank, or "0"
// when no version is installed.
func (s *Store) CurrentVersion(ctx context.Context, q Querier) (string, error) {
	var version string

	err := q.QueryRowContext(ctx, s.dialect.LatestVersionSQL(Table)).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "0", nil
	}

	if err != nil {
		return "", fmt.Errorf("querying current version: %w", err)
	}

	return version, nil
}

// PreviousVersion returns the version with the next-lower rank than
// current, or ErrNoPrevious if none exists.
func (s *Store) PreviousVersion(ctx context.Context, q Querier, current string) (string, error) {
	rank, err := parseRank(current)
	if err != nil {
		return "", err
	}

	var version string

	err = q.QueryRowContext(ctx, s.dialect.PreviousVersionSQL(Table, rank)).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("below version %s: %w", current, ErrNoPrevious)
	}

	if err != nil {
		return "", fmt.Errorf("querying previous version: %w", err)
	}

	return version, nil
}

// RollbackRange returns all installed versions with target < v <= current,
// ordered descending by rank — reverse install order.
func (s *Store) RollbackRange(ctx context.Context, q Querier, target, current string) ([]string, error) {
	targetRank, err := parseRank(target)
	if err != nil {
		return nil, err
	}

	currentRank, err := parseRank(current)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, s.dialect.RollbackRangeSQL(Table, targetRank, currentRank))
	if err != nil {
		return nil, fmt.Errorf("querying rollback range: %w", err)
	}
	defer rows.Close()

	var versions []string

	for rows.Next() {
		var v string
		if scanErr := rows.Scan(&v); scanErr != nil {
			return nil, fmt.Errorf("scanning rollback range: %w", scanErr)
		}

		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rollback range: %w", err)
	}

	return versions, nil
}

// Record inserts a history row. Success rows are the append-only ledger;
// failure rows are audit entries that never advance the current version.
func (s *Store) Record(ctx context.Context, q Querier, row Row) error {
	cols := []string{
		"version_rank", "installed_rank", "version", "description", "type",
		"script", "checksum", "installed_by", "execution_time", "success",
	}

	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = s.dialect.Placeholder(i + 1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		Table, strings.Join(cols, ", "), strings.Join(marks, ", "),
	)

	_, err := q.ExecContext(ctx, query,
		row.VersionRank, row.InstalledRank, row.Version, row.Description,
		row.Type, row.Script, row.Checksum, row.InstalledBy,
		row.ExecutionTime, row.Success,
	)
	if err != nil {
		return fmt.Errorf("recording version %s: %w", row.Version, err)
	}

	return nil
}

// DeleteFailed removes any failure audit row for the given version. Called
// before recording a successful retry so the version stays a unique key.
func (s *Store) DeleteFailed(ctx context.Context, q Querier, version string) error {
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE version = %s AND success = %s",
		Table, s.dialect.Placeholder(1), s.dialect.Placeholder(2),
	)

	if _, err := q.ExecContext(ctx, query, version, false); err != nil {
		return fmt.Errorf("clearing failed attempt for version %s: %w", version, err)
	}

	return nil
}

// DeleteAbove bulk-deletes all history rows with rank greater than the
// target version. Only rollback uses this, inside its transaction.
func (s *Store) DeleteAbove(ctx context.Context, q Querier, target string) error {
	rank, err := parseRank(target)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE version_rank > %d", Table, rank)

	if _, err := q.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("deleting history above version %s: %w", target, err)
	}

	return nil
}

// List returns every history row, failure audits included, ordered by
// rank ascending. Feeds the status command.
func (s *Store) List(ctx context.Context, q Querier) ([]Row, error) {
	query := fmt.Sprintf(
		`SELECT version_rank, installed_rank, version, description, type,
		        script, checksum, installed_by, installed_on, execution_time, success
		 FROM %s ORDER BY version_rank, installed_on`, Table,
	)

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Row

	for rows.Next() {
		var r Row
		if scanErr := rows.Scan(
			&r.VersionRank, &r.InstalledRank, &r.Version, &r.Description,
			&r.Type, &r.Script, &r.Checksum, &r.InstalledBy, &r.InstalledOn,
			&r.ExecutionTime, &r.Success,
		); scanErr != nil {
			return nil, fmt.Errorf("scanning history row: %w", scanErr)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return out, nil
}

func parseRank(version string) (int, error) {
	n, err := strconv.Atoi(version)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("version %q is not a non-negative integer", version)
	}

	return n, nil
}
