// Package deme implements the create/optimize/close pipeline of spec.md
// §4.4. The three-phase split (allocate, run external optimiser, harvest and
// release) mirrors the teacher's Solver lifecycle (flowShop's
// sa.Solve/ts.Solve each allocate working state, call into the neighbourhood
// search, then return a Result) generalized from one fixed cost function to
// an externally supplied contracts.Optimizer working over an externally
// supplied contracts.Representation.
package deme

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opencog/metapop/internal/contracts"
	"github.com/opencog/metapop/internal/metapop"
	"github.com/opencog/metapop/internal/mperr"
	"github.com/opencog/metapop/internal/obslog"
	"github.com/opencog/metapop/internal/pareto"
	"github.com/opencog/metapop/internal/score"
	"github.com/opencog/metapop/internal/selector"
)

// Config bundles the deme pipeline's tunables, drawn from internal/config's
// EngineConfig.
type Config struct {
	MinPool               int
	MaxCandidates         int // negative means unbounded
	ReduceAll             bool
	Revisit               bool
	IncludeDominated      bool
	UseDiversityPenalty   bool
	ComplexityTemperature float64
	ComplexityWeight      float64
	Jobs                  int
	// Arity is the number of argument slots a FeatureSelector's kept-index
	// set is drawn from; unused when FeatureSelector is nil.
	Arity int
}

// Pipeline wires the external collaborators (spec.md §6) into one
// create/optimize/close cycle over a shared candidate store.
type Pipeline struct {
	cfg Config
	log obslog.Logger

	store    *metapop.Store
	visited  *selector.VisitedSet
	rep      contracts.RepresentationBuilder
	features contracts.FeatureSelector
	composer contracts.CompositeScorer
	behavior contracts.BehavioralScorer
	opt      contracts.Optimizer

	ignoredOps  map[string]struct{}
	perceptions []string
	actions     []string

	prevExemplar *metapop.Entry
	totalEvals   int
}

// New builds a Pipeline. behavior may be nil if IncludeDominated is set and
// UseDiversityPenalty is not (CloseDeme then never calls it).
func New(
	cfg Config,
	log obslog.Logger,
	store *metapop.Store,
	visited *selector.VisitedSet,
	rep contracts.RepresentationBuilder,
	features contracts.FeatureSelector,
	composer contracts.CompositeScorer,
	behavior contracts.BehavioralScorer,
	opt contracts.Optimizer,
	ignoredOps map[string]struct{},
	perceptions, actions []string,
) *Pipeline {
	if ignoredOps == nil {
		ignoredOps = make(map[string]struct{})
	}
	if log == nil {
		log = obslog.NewNop()
	}
	return &Pipeline{
		cfg: cfg, log: log, store: store, visited: visited,
		rep: rep, features: features, composer: composer,
		behavior: behavior, opt: opt, ignoredOps: ignoredOps,
		perceptions: perceptions, actions: actions,
	}
}

// TotalEvals reports the cumulative evaluation count consumed so far.
func (p *Pipeline) TotalEvals() int { return p.totalEvals }

// demeEntry is one scored instance harvested during optimize_deme.
type demeEntry struct {
	tree      contracts.Tree
	composite score.Composite
}

// Instance is one create -> optimize -> close cycle's working state: the
// chosen exemplar, its representation, and the deme of scored instances
// produced by the optimiser. Transient — owned by a single cycle and
// released by Close.
type Instance struct {
	exemplar *metapop.Entry
	rep      contracts.Representation

	mu      sync.Mutex
	entries []demeEntry
}

// CreateDeme implements spec.md §4.4's create_deme: draw an exemplar, build
// its representation, retry on an empty knob set, and apply the "revisit"
// recovery policy once if the selector is exhausted.
func (p *Pipeline) CreateDeme(selCfg selector.Config, rng *rand.Rand) (*Instance, error) {
	revisited := false
	for {
		exemplar, err := selector.Select(p.store, p.visited, p.prevExemplar, selCfg, rng)
		if err != nil {
			if err != mperr.ErrNoExemplar && err != mperr.ErrEmptyMetapop {
				return nil, err
			}
			if p.cfg.Revisit && !revisited {
				p.visited.Clear()
				revisited = true
				continue
			}
			return nil, mperr.Wrap(err, "create_deme")
		}

		built, buildErr := p.buildRepresentation(exemplar)
		if buildErr != nil {
			return nil, mperr.Wrap(buildErr, "build representation")
		}
		if built == nil || len(built.Fields()) == 0 {
			p.visited.Mark(exemplar.Tree)
			continue
		}

		p.prevExemplar = exemplar
		return &Instance{exemplar: exemplar, rep: built}, nil
	}
}

func (p *Pipeline) buildRepresentation(exemplar *metapop.Entry) (contracts.Representation, error) {
	ignored := p.ignoredOps
	if p.features != nil {
		kept := p.features(exemplar.Tree)
		ignored = make(map[string]struct{}, len(p.ignoredOps))
		for k := range p.ignoredOps {
			ignored[k] = struct{}{}
		}
		for i := 0; i < p.cfg.Arity; i++ {
			if _, ok := kept[i]; !ok {
				ignored[fmt.Sprintf("arg%d", i)] = struct{}{}
			}
		}
	}
	return p.rep(exemplar.Tree, ignored, p.perceptions, p.actions)
}

// OptimizeDeme implements spec.md §4.4's optimize_deme: invoke the external
// optimiser against a scoring wrapper that applies composite scoring plus
// optional full-tree reduction, and records every evaluated instance into
// the deme as a side effect.
func (p *Pipeline) OptimizeDeme(ctx context.Context, inst *Instance, budget int) error {
	scorer := func(instance []byte) (score.Composite, error) {
		tree, err := inst.rep.GetCandidate(instance, p.cfg.ReduceAll)
		if err != nil {
			return score.Composite{}, err
		}
		c := p.composer.Score(tree)

		inst.mu.Lock()
		inst.entries = append(inst.entries, demeEntry{tree: tree, composite: c})
		inst.mu.Unlock()

		return c, nil
	}

	evalsUsed, err := p.opt.Optimise(ctx, inst.rep.Fields(), scorer, budget)
	if err != nil {
		return mperr.Wrap(err, "optimise_deme")
	}
	p.totalEvals += evalsUsed
	return nil
}

// CloseDeme implements spec.md §4.4's close_deme: mark the exemplar visited,
// trim the deme, harvest finite-and-novel candidates into pending (parallel
// subject to cfg.Jobs), conditionally behavioral-score them, optionally
// apply the non-dominated filter, and release the representation and deme.
// The returned candidates have not yet been merged into the store; the
// caller is expected to hand them to the merger.
func (p *Pipeline) CloseDeme(inst *Instance) (candidates []*metapop.Entry, err error) {
	defer func() {
		p.visited.Mark(inst.exemplar.Tree)
		inst.rep = nil
		inst.entries = nil
	}()

	sort.Slice(inst.entries, func(i, j int) bool {
		return score.Less(inst.entries[j].composite, inst.entries[i].composite, p.cfg.ComplexityWeight)
	})

	if len(inst.entries) > p.cfg.MinPool {
		sTop := inst.entries[0].composite.Weighted(p.cfg.ComplexityWeight)
		sFloor := sTop - 0.3*p.cfg.ComplexityTemperature
		cut := len(inst.entries)
		for i := 0; i < len(inst.entries); i++ {
			if inst.entries[i].composite.Weighted(p.cfg.ComplexityWeight) < sFloor {
				cut = i
				break
			}
		}
		inst.entries = inst.entries[:cut]
	}

	pending := make(map[uint64]*metapop.Entry)
	var mu sync.RWMutex
	count := 0

	g := new(errgroup.Group)
	g.SetLimit(max(1, p.cfg.Jobs))
	for _, de := range inst.entries {
		de := de
		g.Go(func() error {
			if !score.Valid(de.composite.S) || de.composite.S <= score.SWorst {
				return nil
			}
			if p.visited.Contains(de.tree) {
				return nil
			}

			h := de.tree.Hash()
			mu.RLock()
			_, dup := pending[h]
			mu.RUnlock()
			if dup {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if p.cfg.MaxCandidates >= 0 && count >= p.cfg.MaxCandidates {
				return nil
			}
			if _, ok := pending[h]; ok {
				return nil
			}
			pending[h] = metapop.NewEntry(de.tree, nil, de.composite)
			count++
			return nil
		})
	}
	_ = g.Wait()

	candidates = make([]*metapop.Entry, 0, len(pending))
	for _, e := range pending {
		candidates = append(candidates, e)
	}

	// "include_dominated" means dominated candidates are kept — i.e. the
	// Pareto filter is skipped. Behavioral scoring still runs whenever the
	// filter will run, or the diversity penalty needs B vectors to compare.
	applyFilter := !p.cfg.IncludeDominated
	if applyFilter || p.cfg.UseDiversityPenalty {
		g2 := new(errgroup.Group)
		g2.SetLimit(max(1, p.cfg.Jobs))
		for _, c := range candidates {
			c := c
			g2.Go(func() error {
				pen := p.behavior.Score(c.Tree)
				c.Behavioral = pen.B
				return nil
			})
		}
		_ = g2.Wait()
	}

	if applyFilter {
		candidates = pareto.NonDominated(candidates, p.cfg.Jobs)
	}

	p.log.Fine("deme closed",
		zap.Int("deme_size", len(inst.entries)),
		zap.Int("candidates", len(candidates)),
	)

	return candidates, nil
}
