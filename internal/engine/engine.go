// Package engine implements the driver of spec.md §4.7: the outer
// create_deme -> optimize_deme -> close_deme -> merge loop, best-record
// tracking, and per-cycle structured logging. Grounded on the teacher's
// Solve loop shape (flowShop's sa.Solve/ts.Solve: a for-loop bounded by a
// budget, checking ctx.Err() at each iteration, logging one line per
// iteration via the injected logger) generalized from a single local-search
// pass to repeated metapopulation expansion cycles.
package engine

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/opencog/metapop/internal/deme"
	"github.com/opencog/metapop/internal/merge"
	"github.com/opencog/metapop/internal/metapop"
	"github.com/opencog/metapop/internal/mperr"
	"github.com/opencog/metapop/internal/obslog"
	"github.com/opencog/metapop/internal/score"
	"github.com/opencog/metapop/internal/selector"
)

// Config bundles the driver's tunables.
type Config struct {
	Jobs           int
	SelectorConfig selector.Config
}

// Engine owns one run's store, pipeline, and merger, and drives the
// expand/merge cycle until termination.
type Engine struct {
	cfg      Config
	log      obslog.Logger
	store    *metapop.Store
	pipeline *deme.Pipeline
	merger   *merge.Merger
	rng      *rand.Rand

	cycle int
}

// New builds an Engine over an already-wired pipeline and merger sharing
// the same store.
func New(cfg Config, log obslog.Logger, store *metapop.Store, pipeline *deme.Pipeline, merger *merge.Merger, rng *rand.Rand) *Engine {
	if log == nil {
		log = obslog.NewNop()
	}
	return &Engine{cfg: cfg, log: log, store: store, pipeline: pipeline, merger: merger, rng: rng}
}

// Best returns the best-ever composite score and the trees achieving it.
func (e *Engine) Best() (score.Composite, []*metapop.Entry) {
	return e.store.Best()
}

// Run drives the engine until the termination flag is set, the store
// becomes empty, a fatal error occurs, or maxEvals total evaluations have
// been consumed — whichever comes first. It checks ctx at each cycle
// boundary (spec.md §5: "no mid-cycle cancellation").
func (e *Engine) Run(ctx context.Context, maxEvals int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.pipeline.TotalEvals() >= maxEvals {
			return nil
		}

		term, err := e.expand(ctx, maxEvals-e.pipeline.TotalEvals())
		if err != nil {
			e.log.Error("cycle aborted",
				zap.Int("cycle", e.cycle),
				zap.Int("total_evals", e.pipeline.TotalEvals()),
				zap.Error(err),
			)
			return err
		}
		if term {
			return nil
		}
	}
}

// expand implements spec.md §4.7's expand(max_evals): one full
// create_deme -> optimize_deme -> close_deme -> merge cycle.
func (e *Engine) expand(ctx context.Context, budget int) (terminate bool, err error) {
	if e.store.Len() == 0 {
		return true, mperr.ErrEmptyMetapop
	}

	bestBefore, _ := e.store.Best()

	inst, err := e.pipeline.CreateDeme(e.cfg.SelectorConfig, e.rng)
	if err != nil {
		// EmptyMetapop / NoExemplar (after an exhausted revisit, if enabled)
		// are fatal per spec.md §7's error table.
		return true, err
	}

	optErr := e.pipeline.OptimizeDeme(ctx, inst, budget)
	if optErr != nil {
		// OptimiserFailure: release R/D, count zero evals (OptimizeDeme
		// adds nothing to total_evals when the optimiser fails), and treat
		// the cycle as complete rather than fatal.
		if _, closeErr := e.pipeline.CloseDeme(inst); closeErr != nil {
			e.log.Warn("close_deme failed after optimiser error", zap.Error(closeErr))
		}
		e.log.Warn("optimiser failure, cycle treated as complete", zap.Error(optErr))
		e.cycle++
		return false, nil
	}

	candidates, err := e.pipeline.CloseDeme(inst)
	if err != nil {
		return true, err
	}

	term := e.merger.Merge(candidates, e.cfg.Jobs, e.cycle)
	e.cycle++

	bestAfter, _ := e.store.Best()
	improved := bestAfter.S > bestBefore.S

	e.log.Info("cycle complete",
		zap.Int("cycle", e.cycle),
		zap.Int("total_evals", e.pipeline.TotalEvals()),
		zap.Int("candidates", len(candidates)),
		zap.Int("pool_size", e.store.Len()),
		zap.Bool("new_best", improved),
	)

	return term, nil
}
