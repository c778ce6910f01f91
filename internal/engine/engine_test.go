package engine_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencog/metapop/internal/contracts"
	"github.com/opencog/metapop/internal/deme"
	"github.com/opencog/metapop/internal/engine"
	"github.com/opencog/metapop/internal/merge"
	"github.com/opencog/metapop/internal/metapop"
	"github.com/opencog/metapop/internal/mperr"
	"github.com/opencog/metapop/internal/score"
	"github.com/opencog/metapop/internal/selector"
)

type fakeTree struct{ id int }

var _ contracts.Tree = fakeTree{}

func (f fakeTree) Hash() uint64 { return uint64(f.id) }
func (f fakeTree) Equal(other contracts.Tree) bool {
	o, ok := other.(fakeTree)
	return ok && o.id == f.id
}

// idScorer scores fakeTree by its id: higher id, higher score.
type idScorer struct{}

func (idScorer) Score(t contracts.Tree) score.Composite {
	id := t.(fakeTree).id
	return score.Composite{S: float64(id), C: 1}
}

func (idScorer) BScore(t contracts.Tree) score.Penalized {
	id := t.(fakeTree).id
	return score.Penalized{B: score.Behavioral{-float64(id)}}
}

type behavioralWrap struct{ idScorer }

func (b behavioralWrap) Score(t contracts.Tree) score.Penalized { return b.idScorer.BScore(t) }

// counterRep hands out a fresh, strictly-increasing tree id on every
// GetCandidate call so each cycle's optimiser run discovers new candidates.
type counterRep struct{ next *int }

func (counterRep) Fields() []contracts.Field { return []contracts.Field{{Name: "f0", Bits: 4}} }
func (r counterRep) GetCandidate(instance []byte, _ bool) (contracts.Tree, error) {
	*r.next++
	return fakeTree{id: *r.next}, nil
}

func counterBuilder(next *int) contracts.RepresentationBuilder {
	return func(contracts.Tree, map[string]struct{}, []string, []string) (contracts.Representation, error) {
		return counterRep{next: next}, nil
	}
}

type smallBudgetOptimizer struct{ n int }

func (o smallBudgetOptimizer) Optimise(ctx context.Context, fields []contracts.Field, scorer contracts.ScoringFunc, budget int) (int, error) {
	n := o.n
	if n > budget {
		n = budget
	}
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return i, ctx.Err()
		}
		if _, err := scorer([]byte{0}); err != nil {
			return i, err
		}
	}
	return n, nil
}

func buildEngine(t *testing.T, maxCycleEvals int, startID int) (*engine.Engine, *metapop.Store) {
	t.Helper()
	store := metapop.NewStore(0.0)
	seed := fakeTree{id: startID}
	store.Insert(metapop.NewEntry(seed, score.Behavioral{-float64(startID)}, idScorer{}.Score(seed)))

	visited := selector.NewVisitedSet()
	next := startID
	pipeline := deme.New(
		deme.Config{
			MinPool:               250,
			MaxCandidates:         -1,
			ReduceAll:             false,
			IncludeDominated:      true,
			ComplexityTemperature: 3,
			ComplexityWeight:      0.0,
			Jobs:                  1,
		},
		nil,
		store,
		visited,
		counterBuilder(&next),
		nil,
		idScorer{},
		behavioralWrap{},
		smallBudgetOptimizer{n: maxCycleEvals},
		nil, nil, nil,
	)

	merger := merge.New(merge.Config{
		MinPool:               250,
		Offset:                50,
		ComplexityTemperature: 3,
		IncludeDominated:      true,
	}, store, rand.New(rand.NewSource(1)), nil, nil)

	eng := engine.New(engine.Config{
		Jobs: 1,
		SelectorConfig: selector.Config{
			ComplexityWeight:      0.0,
			ComplexityTemperature: 3,
		},
	}, nil, store, pipeline, merger, rand.New(rand.NewSource(1)))

	return eng, store
}

// TestRunImprovesBestAndRespectsBudget is spec.md §8 invariant 3: after any
// cycle, best.s never regresses, and the driver stops once maxEvals total
// evaluations have been consumed.
func TestRunImprovesBestAndRespectsBudget(t *testing.T) {
	eng, store := buildEngine(t, 5, 1)

	bestBefore, _ := store.Best()
	err := eng.Run(context.Background(), 50)
	require.NoError(t, err)

	bestAfter, _ := eng.Best()
	assert.GreaterOrEqual(t, bestAfter.S, bestBefore.S)
}

// TestRunTerminatesOnEmptyRepresentation is spec.md §7: a representation
// builder that always returns an empty knob set marks every exemplar
// visited until the selector is exhausted, which is fatal without revisit.
func TestRunTerminatesOnEmptyRepresentation(t *testing.T) {
	store := metapop.NewStore(0.0)
	store.Insert(metapop.NewEntry(fakeTree{1}, nil, score.Composite{S: 1.0}))

	visited := selector.NewVisitedSet()
	emptyBuilder := func(contracts.Tree, map[string]struct{}, []string, []string) (contracts.Representation, error) {
		return nil, nil
	}
	pipeline := deme.New(
		deme.Config{MinPool: 250, MaxCandidates: -1, IncludeDominated: true, ComplexityTemperature: 3, Jobs: 1},
		nil, store, visited, emptyBuilder, nil, idScorer{}, behavioralWrap{}, nil, nil, nil, nil,
	)
	merger := merge.New(merge.Config{MinPool: 250, Offset: 50, ComplexityTemperature: 3, IncludeDominated: true}, store, rand.New(rand.NewSource(1)), nil, nil)
	eng := engine.New(engine.Config{Jobs: 1, SelectorConfig: selector.Config{ComplexityTemperature: 3}}, nil, store, pipeline, merger, rand.New(rand.NewSource(1)))

	err := eng.Run(context.Background(), 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, mperr.ErrNoExemplar)
}

// TestRunTerminatesOnEmptyStore is spec.md §4.7: the outer loop also
// terminates if the store becomes empty.
func TestRunTerminatesOnEmptyStore(t *testing.T) {
	store := metapop.NewStore(0.0)
	visited := selector.NewVisitedSet()
	pipeline := deme.New(
		deme.Config{MinPool: 250, MaxCandidates: -1, IncludeDominated: true, ComplexityTemperature: 3, Jobs: 1},
		nil, store, visited, nil, nil, idScorer{}, behavioralWrap{}, nil, nil, nil, nil,
	)
	merger := merge.New(merge.Config{MinPool: 250, Offset: 50, ComplexityTemperature: 3, IncludeDominated: true}, store, rand.New(rand.NewSource(1)), nil, nil)
	eng := engine.New(engine.Config{Jobs: 1, SelectorConfig: selector.Config{ComplexityTemperature: 3}}, nil, store, pipeline, merger, rand.New(rand.NewSource(1)))

	err := eng.Run(context.Background(), 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, mperr.ErrEmptyMetapop)
}
