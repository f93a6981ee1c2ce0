// Package fleet runs one logical operation — initialize, migrate,
// rollback, or version lookup — across one or many connection targets,
// aggregating per-target outcomes so a single failing database never
// aborts its siblings.
package fleet

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aqasim81/schema-fleet/internal/config"
	"github.com/aqasim81/schema-fleet/internal/database"
	"github.com/aqasim81/schema-fleet/internal/engine"
	"github.com/aqasim81/schema-fleet/internal/script"
)

// Kind selects the fleet operation.
type Kind int

// Fleet operations.
const (
	OpInit Kind = iota
	OpVersion
	OpMigrate
	OpRollback
)

// Operation describes one logical operation to run against the fleet.
type Operation struct {
	Kind          Kind
	TargetVersion string // migrate: empty means latest; rollback: empty means previous
}

// Opener connects to one target and returns a ready engine plus a close
// function. Injected so tests can substitute in-process databases.
type Opener func(ctx context.Context, t config.Target) (*engine.Engine, func(), error)

// Orchestrator fans one operation out over the configured targets.
// Configuration is read-only; each unit of work owns its own connection.
type Orchestrator struct {
	cfg    *config.Config
	logger *slog.Logger
	open   Opener
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithOpener replaces the default database-backed connection opener.
func WithOpener(open Opener) Option {
	return func(o *Orchestrator) { o.open = open }
}

// New creates an Orchestrator over the given configuration.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{cfg: cfg}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	if o.open == nil {
		o.open = o.defaultOpener
	}

	return o
}

// defaultOpener dials the target URL and binds an engine to the
// connection, selecting the dialect from the detected product.
func (o *Orchestrator) defaultOpener(ctx context.Context, t config.Target) (*engine.Engine, func(), error) {
	db, product, err := database.Open(ctx, t.URL, t.Username, t.Password)
	if err != nil {
		return nil, nil, err
	}

	repo := script.New(o.cfg.ScriptsDir)
	eng := engine.New(db, product, repo, engine.WithLogger(o.logger.With("target", t.Name)))

	return eng, func() { _ = db.Close() }, nil
}

// Run executes op against the named target, or against every configured
// target when targetName is empty. Per-target failures become that
// target's outcome; the returned error covers only run-level problems
// (no targets, unknown target name).
func (o *Orchestrator) Run(ctx context.Context, op Operation, targetName string) (Report, error) {
	targets, err := o.selectTargets(targetName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.OperationTimeout)
	defer cancel()

	concurrent, sequential := o.partition(targets)

	report := make(Report, 0, len(targets))
	report = append(report, o.runSequential(ctx, op, sequential)...)
	report = append(report, o.runConcurrent(ctx, op, concurrent)...)

	return report, nil
}

// selectTargets resolves the target set for a run.
func (o *Orchestrator) selectTargets(targetName string) ([]config.Target, error) {
	if targetName != "" {
		t, ok := o.cfg.Targets[targetName]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, targetName)
		}

		return []config.Target{t}, nil
	}

	if len(o.cfg.Targets) == 0 {
		return nil, ErrNoTargets
	}

	targets := make([]config.Target, 0, len(o.cfg.Targets))
	for _, name := range o.cfg.TargetNames() {
		targets = append(targets, o.cfg.Targets[name])
	}

	return targets, nil
}

// partition applies the two-level concurrency gate: the global switch must
// be on AND the target itself must opt in, and the concurrent path only
// engages when more than one target passes. Everything else runs
// sequentially.
func (o *Orchestrator) partition(targets []config.Target) (concurrent, sequential []config.Target) {
	if !o.cfg.ConcurrentExecution {
		return nil, targets
	}

	for _, t := range targets {
		if t.Concurrent {
			concurrent = append(concurrent, t)
		} else {
			sequential = append(sequential, t)
		}
	}

	if len(concurrent) < 2 {
		return nil, targets
	}

	return concurrent, sequential
}

// runSequential runs the operation inline, one target after another.
func (o *Orchestrator) runSequential(ctx context.Context, op Operation, targets []config.Target) Report {
	report := make(Report, 0, len(targets))

	for _, t := range targets {
		if ctx.Err() != nil {
			report = append(report, Result{Target: t.Name, Err: ErrTimedOut})
			continue
		}

		report = append(report, o.runOne(ctx, op, t))
	}

	return report
}

// runConcurrent launches one independent unit of work per target over a
// bounded worker pool. A unit's failure is captured as its result and
// never cancels siblings; units still unfinished when the deadline
// expires are reported as unresolved.
func (o *Orchestrator) runConcurrent(ctx context.Context, op Operation, targets []config.Target) Report {
	if len(targets) == 0 {
		return nil
	}

	workers := o.cfg.MaxWorkers
	if workers <= 0 || workers > len(targets) {
		workers = len(targets)
	}

	results := make(chan Result, len(targets))

	var g errgroup.Group

	g.SetLimit(workers)

	for _, t := range targets {
		g.Go(func() error {
			results <- o.runOne(ctx, op, t)

			return nil
		})
	}

	done := make(chan struct{})

	go func() {
		_ = g.Wait()
		close(done)
	}()

	report := make(Report, 0, len(targets))
	finished := make(map[string]bool, len(targets))

	collect := func() {
		for {
			select {
			case res := <-results:
				report = append(report, res)
				finished[res.Target] = true
			default:
				return
			}
		}
	}

	select {
	case <-done:
		collect()
	case <-ctx.Done():
		collect()

		for _, t := range targets {
			if !finished[t.Name] {
				o.logger.Warn("fleet deadline expired, outcome unknown", "target", t.Name)
				report = append(report, Result{Target: t.Name, Err: ErrTimedOut})
			}
		}
	}

	return report
}

// runOne opens the target's connection and executes the operation to
// completion, converting any error into the target's outcome.
func (o *Orchestrator) runOne(ctx context.Context, op Operation, t config.Target) Result {
	o.logger.Info("running fleet operation", "target", t.Name, "url", config.RedactURL(t.URL))

	eng, closeFn, err := o.open(ctx, t)
	if err != nil {
		return Result{Target: t.Name, Err: fmt.Errorf("connecting: %w", err)}
	}
	defer closeFn()

	switch op.Kind {
	case OpInit:
		if err := eng.Init(ctx); err != nil {
			return Result{Target: t.Name, Err: err}
		}

		return Result{Target: t.Name, Message: "initialized"}

	case OpVersion:
		version, err := eng.CurrentVersion(ctx)
		if err != nil {
			return Result{Target: t.Name, Err: err}
		}

		return Result{Target: t.Name, Message: version}

	case OpMigrate:
		version, err := eng.Migrate(ctx, op.TargetVersion)
		if err != nil {
			return Result{Target: t.Name, Err: err}
		}

		return Result{Target: t.Name, Message: "migrated to version " + version}

	case OpRollback:
		version, err := eng.Rollback(ctx, op.TargetVersion)
		if err != nil {
			return Result{Target: t.Name, Err: err}
		}

		return Result{Target: t.Name, Message: "rolled back to version " + version}

	default:
		return Result{Target: t.Name, Err: fmt.Errorf("unknown operation kind %d", op.Kind)}
	}
}
