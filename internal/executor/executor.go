// Package executor applies a single migration script transactionally and
// records the outcome in the history table.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"time"

	"github.com/aqasim81/schema-fleet/internal/history"
	"github.com/aqasim81/schema-fleet/internal/script"
)

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ProgressEvent is emitted for each script the executor processes.
type ProgressEvent struct {
	Script   *script.Script
	Status   string
	Duration time.Duration
	Error    error
}

// Executor runs one script per transaction against a single database.
type Executor struct {
	db          *sql.DB
	store       *history.Store
	logger      *slog.Logger
	installedBy string
	onProgress  func(ProgressEvent)
}

// Option configures an Executor.
type Option func(*Executor)

// WithProgressCallback sets a function called for each script processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// WithInstalledBy overrides the principal recorded in history rows.
func WithInstalledBy(name string) Option {
	return func(e *Executor) { e.installedBy = name }
}

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// New creates an Executor writing history through the given store.
func New(db *sql.DB, store *history.Store, opts ...Option) *Executor {
	e := &Executor{
		db:    db,
		store: store,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.installedBy == "" {
		e.installedBy = currentPrincipal()
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	return e
}

// Apply executes the script's SQL and its history insert in one
// transaction. On failure the transaction is rolled back, a failure audit
// row is written in a separate connection scope so the original rollback
// cannot undo it, and the execution error is propagated.
func (e *Executor) Apply(ctx context.Context, s *script.Script) error {
	e.fireProgress(ProgressEvent{Script: s, Status: StatusStarting})

	start := time.Now()
	execErr := e.applyInTx(ctx, s, start)
	duration := time.Since(start)

	if execErr != nil {
		e.fireProgress(ProgressEvent{
			Script:   s,
			Status:   StatusFailed,
			Duration: duration,
			Error:    execErr,
		})
		e.recordFailure(ctx, s)

		return fmt.Errorf("%w: script %s: %w", ErrExecutionFailed, s.Filename, execErr)
	}

	e.fireProgress(ProgressEvent{
		Script:   s,
		Status:   StatusCompleted,
		Duration: duration,
	})

	return nil
}

// applyInTx runs the script and records success atomically.
func (e *Executor) applyInTx(ctx context.Context, s *script.Script, start time.Time) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // rollback on committed tx returns ErrTxDone

	if _, err := tx.ExecContext(ctx, s.SQL); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}

	// A failed earlier attempt may have left an audit row under the same
	// version key; clear it before recording success.
	if err := e.store.DeleteFailed(ctx, tx, s.Version); err != nil {
		return err
	}

	if err := e.store.Record(ctx, tx, e.historyRow(s, int(time.Since(start).Milliseconds()), true)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// recordFailure best-effort writes an audit row for a failed attempt,
// directly on the pool rather than the rolled-back transaction.
func (e *Executor) recordFailure(ctx context.Context, s *script.Script) {
	if err := e.store.Record(ctx, e.db, e.historyRow(s, 0, false)); err != nil {
		e.logger.Warn("failure audit row not written",
			"script", s.Filename, "error", err)
	}
}

func (e *Executor) historyRow(s *script.Script, executionMs int, success bool) history.Row {
	return history.Row{
		VersionRank:   s.Rank(),
		InstalledRank: s.Rank(),
		Version:       s.Version,
		Description:   s.Description(),
		Type:          "SQL",
		Script:        s.Filename,
		Checksum:      s.Checksum,
		InstalledBy:   e.installedBy,
		ExecutionTime: executionMs,
		Success:       success,
	}
}

func (e *Executor) fireProgress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}

func currentPrincipal() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}

	if name := os.Getenv("USER"); name != "" {
		return name
	}

	return "unknown"
}
