package toyexpr

import (
	"math"

	"github.com/opencog/metapop/internal/contracts"
	"github.com/opencog/metapop/internal/score"
)

// TargetFunc is the function a fitted expression tree is scored against.
type TargetFunc func(x float64) float64

// Scorer implements both contracts.CompositeScorer and
// contracts.BehavioralScorer over a fixed sample grid, grounded on
// flowshop/evaluator.go's shape: a pure, re-entrant function of one
// candidate with no shared mutable state, safe under the parallel calls
// spec.md §6 requires of both scorer contracts.
type Scorer struct {
	Samples []float64
	Target  TargetFunc
	K       float64 // complexity weight threaded through for reference/logging only
}

var _ contracts.CompositeScorer = Scorer{}

// perSampleError returns the per-sample signed error used to build both the
// composite score (sum of squares) and the behavioral vector (absolute
// error, lower is better per spec.md §3).
func (s Scorer) perSampleError(t contracts.Tree) []float64 {
	tree := t.(Tree)
	errs := make([]float64, len(s.Samples))
	for i, x := range s.Samples {
		got := Eval(tree, x)
		want := s.Target(x)
		errs[i] = got - want
	}
	return errs
}

// Score implements contracts.CompositeScorer: raw score is the negated sum
// of squared errors (higher is better, per spec.md §3), complexity is node
// count, diversity penalty starts at zero (the selector fills it in).
func (s Scorer) Score(t contracts.Tree) score.Composite {
	errs := s.perSampleError(t)
	var sumSq float64
	for _, e := range errs {
		sumSq += e * e
	}
	raw := -sumSq
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = score.SWorst
	}
	return score.Composite{S: raw, C: Complexity(t.(Tree))}
}

// BScore implements contracts.BehavioralScorer: one entry per training
// sample, absolute error, lower is better.
func (s Scorer) BScore(t contracts.Tree) score.Penalized {
	errs := s.perSampleError(t)
	b := make(score.Behavioral, len(errs))
	for i, e := range errs {
		b[i] = math.Abs(e)
	}
	return score.Penalized{B: b}
}

// behavioralAdapter satisfies contracts.BehavioralScorer's "Score" method
// name over the same sample grid as Scorer, without colliding with
// CompositeScorer's own "Score" method on a single underlying type.
type behavioralAdapter Scorer

// Score implements contracts.BehavioralScorer.
func (s behavioralAdapter) Score(t contracts.Tree) score.Penalized { return Scorer(s).BScore(t) }

var _ contracts.BehavioralScorer = behavioralAdapter{}

// AsBehavioral returns a contracts.BehavioralScorer view of s.
func (s Scorer) AsBehavioral() contracts.BehavioralScorer { return behavioralAdapter(s) }
