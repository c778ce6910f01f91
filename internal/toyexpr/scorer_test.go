package toyexpr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencog/metapop/internal/score"
	"github.com/opencog/metapop/internal/toyexpr"
)

func samples() []float64 { return []float64{-2, -1, 0, 1, 2} }

func target(x float64) float64 { return x*x + 1 }

func TestScorerPerfectFitScoresZero(t *testing.T) {
	// x*x + 1, built directly, should have zero error against target.
	tree := toyexpr.NewTree(toyexpr.Branch(toyexpr.Add,
		toyexpr.Branch(toyexpr.Mul, toyexpr.VarLeaf(), toyexpr.VarLeaf()),
		toyexpr.Leaf(1),
	))
	s := toyexpr.Scorer{Samples: samples(), Target: target}
	got := s.Score(tree)
	assert.InDelta(t, 0.0, got.S, 1e-9)
	assert.Equal(t, toyexpr.Complexity(tree), got.C)
}

func TestScorerPenalizesError(t *testing.T) {
	good := toyexpr.NewTree(toyexpr.Branch(toyexpr.Add,
		toyexpr.Branch(toyexpr.Mul, toyexpr.VarLeaf(), toyexpr.VarLeaf()),
		toyexpr.Leaf(1),
	))
	bad := toyexpr.NewTree(toyexpr.Leaf(0))

	s := toyexpr.Scorer{Samples: samples(), Target: target}
	goodScore := s.Score(good)
	badScore := s.Score(bad)
	assert.Greater(t, goodScore.S, badScore.S, "a closer fit must score higher (less negative)")
}

func TestScorerInvalidFallsBackToSWorst(t *testing.T) {
	// 1/x evaluated at x=0 is +Inf, which must push S to score.SWorst rather
	// than propagating a NaN/Inf composite score.
	divByX := toyexpr.NewTree(toyexpr.Branch(toyexpr.Div, toyexpr.Leaf(1), toyexpr.VarLeaf()))
	s := toyexpr.Scorer{Samples: []float64{0}, Target: func(float64) float64 { return 0 }}
	got := s.Score(divByX)
	assert.Equal(t, score.SWorst, got.S)
}

func TestBScoreLengthMatchesSamples(t *testing.T) {
	tree := toyexpr.NewTree(toyexpr.Leaf(0))
	s := toyexpr.Scorer{Samples: samples(), Target: target}
	b := s.BScore(tree)
	require.Len(t, b.B, len(samples()))
	for i, x := range samples() {
		assert.InDelta(t, math.Abs(target(x)), b.B[i], 1e-9)
	}
}

func TestAsBehavioralDelegatesToBScore(t *testing.T) {
	tree := toyexpr.NewTree(toyexpr.Leaf(2))
	s := toyexpr.Scorer{Samples: samples(), Target: target}
	bs := s.AsBehavioral()
	got := bs.Score(tree)
	want := s.BScore(tree)
	assert.Equal(t, want.B, got.B)
}
