// Package score implements the composite/behavioral score algebra and the
// Pareto domination comparison the rest of the metapopulation engine builds
// on. Its only internal dependency is internal/mperr, for the
// mismatched-length error.
package score

import (
	"math"

	"github.com/opencog/metapop/internal/mperr"
)

// SWorst is the sentinel raw score representing "invalid/uninitialised".
// It compares strictly less than any finite score a scorer can legitimately
// produce, while remaining an ordinary finite float so arithmetic involving
// it (weighted-score projection, tie-breaks) stays well-defined.
const SWorst = -math.MaxFloat64 / 2

// Composite is the ranking tuple (raw score, complexity, diversity penalty).
type Composite struct {
	S float64 // raw score, higher is better
	C int     // complexity, lower is better
	D float64 // diversity penalty, >= 0
}

// Weighted returns s - d - k*c, the scalar used for ordering and softmax
// selection.
func (c Composite) Weighted(k float64) float64 {
	return c.S - c.D - k*float64(c.C)
}

// Less orders composites by weighted score ascending, breaking ties by
// higher S then lower C, matching spec's "ties in w are broken by higher s,
// then lower c."
func Less(a, b Composite, k float64) bool {
	wa, wb := a.Weighted(k), b.Weighted(k)
	if wa != wb {
		return wa < wb
	}
	if a.S != b.S {
		return a.S < b.S
	}
	return a.C > b.C
}

// Valid reports whether a raw score is usable: finite and strictly greater
// than SWorst. Invalid candidates are dropped silently (mperr.ErrScoreInvalid).
func Valid(s float64) bool {
	return !math.IsNaN(s) && !math.IsInf(s, 0) && s > SWorst
}

// Behavioral is a finite ordered sequence of reals, one entry per training
// example (plus optionally a trailing complexity-penalty entry). Lower
// entries are better.
type Behavioral []float64

// Penalized pairs a behavioral score with a scalar penalty applied
// uniformly; produced externally by the behavioral scorer.
type Penalized struct {
	B       Behavioral
	Penalty float64
}

// Domination is the tri-valued result of comparing two behavioral scores.
type Domination int

const (
	Incomparable Domination = iota
	StrictlyBetter
	StrictlyWorse
)

// Dominates implements spec.md §4.1's domination rule. It returns an error
// only when both sequences are nonempty and of differing length (programmer
// error — mismatched bscore length).
func Dominates(a, b Behavioral) (Domination, error) {
	if len(a) == 0 && len(b) == 0 {
		return Incomparable, nil
	}
	if len(a) == 0 {
		return StrictlyWorse, nil // b is non-empty: b strictly dominates a
	}
	if len(b) == 0 {
		return StrictlyBetter, nil // a is non-empty: a strictly dominates b
	}
	if len(a) != len(b) {
		return Incomparable, mperr.Wrapf(mperr.ErrMismatchedBscoreLength, "len(a)=%d len(b)=%d", len(a), len(b))
	}

	anyGT, anyLT := false, false
	for i := range a {
		if a[i] < b[i] {
			anyGT = true // a is better at i (lower is better)
		} else if a[i] > b[i] {
			anyLT = true // a is worse at i
		}
	}
	switch {
	case anyGT && !anyLT:
		return StrictlyBetter, nil
	case anyLT && !anyGT:
		return StrictlyWorse, nil
	default:
		return Incomparable, nil
	}
}

// L1Distance is the diversity-penalty distance metric between two behavioral
// vectors (spec.md §4.3 step 2). Vectors of unequal length are truncated to
// the shorter one; callers only ever compare vectors produced by the same
// behavioral scorer, so this never legitimately happens in practice.
func L1Distance(a, b Behavioral) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var d float64
	for i := 0; i < n; i++ {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		d += diff
	}
	return d
}
