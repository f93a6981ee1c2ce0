package executor_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/glebarez/go-sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-fleet/internal/dialect"
	"github.com/aqasim81/schema-fleet/internal/executor"
	"github.com/aqasim81/schema-fleet/internal/history"
	"github.com/aqasim81/schema-fleet/internal/script"
)

func setup(t *testing.T) (*sql.DB, *history.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "exec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := history.New(dialect.SQLite{})
	require.NoError(t, store.Init(context.Background(), db))

	return db, store
}

func forwardScript(version, filename, sqlText string) *script.Script {
	return &script.Script{
		Version:  version,
		Filename: filename,
		SQL:      sqlText,
		Kind:     script.KindForward,
		Checksum: script.ComputeChecksum(sqlText),
	}
}

func TestApply_recordsSuccessRow(t *testing.T) {
	t.Parallel()

	db, store := setup(t)
	ctx := context.Background()

	var events []executor.ProgressEvent

	exec := executor.New(db, store,
		executor.WithInstalledBy("tester"),
		executor.WithProgressCallback(func(e executor.ProgressEvent) {
			events = append(events, e)
		}),
	)

	s := forwardScript("1", "V1__create_users.sql", "CREATE TABLE users (id INTEGER PRIMARY KEY);")
	require.NoError(t, exec.Apply(ctx, s))

	// Schema change took effect.
	_, err := db.ExecContext(ctx, "INSERT INTO users (id) VALUES (1)")
	require.NoError(t, err)

	rows, err := store.List(ctx, db)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].Version)
	assert.Equal(t, 1, rows[0].VersionRank)
	assert.Equal(t, 1, rows[0].InstalledRank)
	assert.Equal(t, "create_users", rows[0].Description)
	assert.Equal(t, "SQL", rows[0].Type)
	assert.Equal(t, "V1__create_users.sql", rows[0].Script)
	assert.Equal(t, s.Checksum, rows[0].Checksum)
	assert.Equal(t, "tester", rows[0].InstalledBy)
	assert.True(t, rows[0].Success)

	require.Len(t, events, 2)
	assert.Equal(t, executor.StatusStarting, events[0].Status)
	assert.Equal(t, executor.StatusCompleted, events[1].Status)
}

func TestApply_failureRollsBackAndAudits(t *testing.T) {
	t.Parallel()

	db, store := setup(t)
	ctx := context.Background()

	exec := executor.New(db, store, executor.WithInstalledBy("tester"))

	s := forwardScript("1", "V1__broken.sql", "CREATE TABLE broken (id INTEGER); INVALID SQL HERE;")

	err := exec.Apply(ctx, s)
	require.ErrorIs(t, err, executor.ErrExecutionFailed)

	// The transaction rolled back: no table, no success row.
	_, tableErr := db.ExecContext(ctx, "INSERT INTO broken (id) VALUES (1)")
	assert.Error(t, tableErr, "partial schema change must not survive")

	v, vErr := store.CurrentVersion(ctx, db)
	require.NoError(t, vErr)
	assert.Equal(t, "0", v)

	// The audit row survives the rollback: separate connection scope.
	rows, listErr := store.List(ctx, db)
	require.NoError(t, listErr)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Success)
	assert.Equal(t, 0, rows[0].ExecutionTime)
}

func TestApply_retryAfterFailureSucceeds(t *testing.T) {
	t.Parallel()

	db, store := setup(t)
	ctx := context.Background()

	exec := executor.New(db, store, executor.WithInstalledBy("tester"))

	broken := forwardScript("1", "V1__create_users.sql", "NOT SQL;")
	require.Error(t, exec.Apply(ctx, broken))

	fixed := forwardScript("1", "V1__create_users.sql", "CREATE TABLE users (id INTEGER);")
	require.NoError(t, exec.Apply(ctx, fixed))

	v, err := store.CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	rows, err := store.List(ctx, db)
	require.NoError(t, err)
	require.Len(t, rows, 1, "failure audit replaced by the success row")
	assert.True(t, rows[0].Success)
}

func TestApply_errorKeepsOriginalCause(t *testing.T) {
	t.Parallel()

	db, store := setup(t)

	exec := executor.New(db, store)

	s := forwardScript("1", "V1__broken.sql", "SELECT * FROM missing_table;")

	err := exec.Apply(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "V1__broken.sql")
}
