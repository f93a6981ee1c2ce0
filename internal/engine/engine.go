// Package engine drives schema version control for one database: history
// table initialization, forward migration, and rollback. One Engine owns
// one connection; the fleet orchestrator creates one per target.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/aqasim81/schema-fleet/internal/dialect"
	"github.com/aqasim81/schema-fleet/internal/executor"
	"github.com/aqasim81/schema-fleet/internal/history"
	"github.com/aqasim81/schema-fleet/internal/script"
)

// Engine binds a dialect, version store, script repository, and executor
// to a single database connection.
type Engine struct {
	db      *sql.DB
	dialect dialect.Dialect
	store   *history.Store
	repo    *script.Repository
	exec    *executor.Executor
	logger  *slog.Logger

	execOpts []executor.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithExecutorOptions forwards options to the underlying executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(e *Engine) { e.execOpts = opts }
}

// New creates an Engine for the given connection. The dialect is selected
// once, here, from the detected product string; the rest of the engine
// never branches on the database product.
func New(db *sql.DB, product string, repo *script.Repository, opts ...Option) *Engine {
	e := &Engine{
		db:      db,
		dialect: dialect.Detect(product),
		repo:    repo,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	e.store = history.New(e.dialect)
	e.exec = executor.New(db, e.store, append(e.execOpts, executor.WithLogger(e.logger))...)

	if dialect.Recognized(product) {
		e.logger.Debug("dialect selected", "product", product, "dialect", e.dialect.Name())
	} else {
		e.logger.Warn("unrecognized database product, using baseline dialect",
			"product", product, "dialect", e.dialect.Name())
	}

	return e
}

// Init idempotently creates the history table.
func (e *Engine) Init(ctx context.Context) error {
	return e.store.Init(ctx, e.db)
}

// CurrentVersion returns the highest installed version, "0" when none.
func (e *Engine) CurrentVersion(ctx context.Context) (string, error) {
	return e.store.CurrentVersion(ctx, e.db)
}

// History returns every history row, audit entries included.
func (e *Engine) History(ctx context.Context) ([]history.Row, error) {
	return e.store.List(ctx, e.db)
}

// Migrate applies all pending forward scripts with
// current < version <= target, ascending. An empty target means unbounded.
// The batch is deliberately non-atomic: the first failing script halts the
// run, but scripts already applied in the same run stay installed. Returns
// the version the database is at afterwards.
func (e *Engine) Migrate(ctx context.Context, targetVersion string) (string, error) {
	if err := e.Init(ctx); err != nil {
		return "", err
	}

	current, err := e.CurrentVersion(ctx)
	if err != nil {
		return "", err
	}

	currentRank, err := parseRank(current)
	if err != nil {
		return "", err
	}

	targetRank := math.MaxInt
	if targetVersion != "" {
		if targetRank, err = parseRank(targetVersion); err != nil {
			return "", err
		}
	}

	scripts, err := e.repo.Discover()
	if err != nil {
		return "", err
	}

	for i := range scripts {
		s := &scripts[i]

		rank := s.Rank()
		if rank <= currentRank || rank > targetRank {
			continue
		}

		e.logger.Info("applying migration", "version", s.Version, "script", s.Filename)

		if err := e.exec.Apply(ctx, s); err != nil {
			// Earlier scripts in this batch remain installed.
			return "", err
		}
	}

	return e.CurrentVersion(ctx)
}

// Rollback reverses migrations down to targetVersion. An empty target
// resolves to the version immediately below the current one. All rollback
// scripts plus the history delete run in one transaction: either the
// database lands exactly on the target version or nothing changes.
func (e *Engine) Rollback(ctx context.Context, targetVersion string) (string, error) {
	current, err := e.CurrentVersion(ctx)
	if err != nil {
		return "", err
	}

	if current == "0" {
		return "", ErrNothingInstalled
	}

	target := targetVersion
	if target == "" {
		target, err = e.store.PreviousVersion(ctx, e.db, current)

		switch {
		case errors.Is(err, history.ErrNoPrevious):
			// Only one version installed: rolling it back empties the schema.
			target = "0"
		case err != nil:
			return "", err
		}
	}

	targetRank, err := parseRank(target)
	if err != nil {
		return "", err
	}

	currentRank, err := parseRank(current)
	if err != nil {
		return "", err
	}

	if targetRank >= currentRank {
		return "", fmt.Errorf("target %s, current %s: %w", target, current, ErrBadRollbackTarget)
	}

	versions, err := e.store.RollbackRange(ctx, e.db, target, current)
	if err != nil {
		return "", err
	}

	if err := e.rollbackInTx(ctx, versions, target); err != nil {
		return "", err
	}

	return target, nil
}

// rollbackInTx executes each version's rollback script, highest first,
// then deletes the rolled-back history rows, all atomically.
func (e *Engine) rollbackInTx(ctx context.Context, versions []string, target string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rollback transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // rollback on committed tx returns ErrTxDone

	for _, version := range versions {
		s, found, err := e.repo.LoadRollback(version)
		if err != nil {
			return err
		}

		if !found {
			return fmt.Errorf("version %s: %w", version, ErrRollbackScriptMissing)
		}

		e.logger.Info("rolling back", "version", version, "script", s.Filename)

		if _, err := tx.ExecContext(ctx, s.SQL); err != nil {
			return fmt.Errorf("%w: script %s: %w", ErrRollbackFailed, s.Filename, err)
		}
	}

	if err := e.store.DeleteAbove(ctx, tx, target); err != nil {
		return fmt.Errorf("%w: %w", ErrRollbackFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %w", ErrRollbackFailed, err)
	}

	return nil
}

func parseRank(version string) (int, error) {
	n, err := strconv.Atoi(version)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("version %q is not a non-negative integer", version)
	}

	return n, nil
}
