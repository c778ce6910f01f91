// Package selector implements the softmax exemplar selector of spec.md
// §4.3: a weighted-random pick over the store's entries, driven by an
// injected *rand.Rand the way the teacher's tournamentSelect and
// constructPermutation (ga/operators.go, aco/aco.go) are — accumulate
// weights, then sample — generalized here with the exp(β·Δ) softmax
// transform and a visited-set exclusion mask.
package selector

import (
	"math"
	"math/rand"

	"github.com/opencog/metapop/internal/contracts"
	"github.com/opencog/metapop/internal/metapop"
	"github.com/opencog/metapop/internal/mperr"
	"github.com/opencog/metapop/internal/score"
)

// skipFactor is how far above the achievable score range the SKIP sentinel
// sits, per spec.md §4.3 step 3 ("any value strictly larger than any
// achievable score by at least a factor of 10").
const skipFactor = 10.0

// VisitedSet tracks trees already used as exemplars this run (spec.md §3).
// Write-only during a cycle; Clear implements the revisit policy.
type VisitedSet struct {
	m map[uint64]struct{}
}

// NewVisitedSet returns an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{m: make(map[uint64]struct{})}
}

// Mark records t as visited.
func (v *VisitedSet) Mark(t contracts.Tree) {
	v.m[t.Hash()] = struct{}{}
}

// Contains reports whether t has been visited.
func (v *VisitedSet) Contains(t contracts.Tree) bool {
	_, ok := v.m[t.Hash()]
	return ok
}

// Clear empties the visited set, implementing the "revisit" policy of
// spec.md §4.4/§9.
func (v *VisitedSet) Clear() {
	v.m = make(map[uint64]struct{})
}

// Config bundles the selector's tunables.
type Config struct {
	ComplexityWeight      float64 // k
	ComplexityTemperature float64 // τ, > 0
	UseDiversityPenalty   bool
}

// Select implements spec.md §4.3's six-step algorithm.
func Select(store *metapop.Store, visited *VisitedSet, prev *metapop.Entry, cfg Config, rnd *rand.Rand) (*metapop.Entry, error) {
	n := store.Len()
	if n == 0 {
		return nil, mperr.ErrEmptyMetapop
	}

	// Step 1: single-survivor shortcut.
	if n == 1 {
		only := store.At(0)
		if !visited.Contains(only.Tree) {
			return only, nil
		}
	}

	// Step 2: diversity-penalty re-weighting.
	if cfg.UseDiversityPenalty && prev != nil {
		applyDiversityPenalty(store, prev)
	}

	// Step 3: build the parallel weighted-score / SKIP vector.
	skipValue := skipThreshold(store, cfg.ComplexityWeight)
	p := make([]float64, n)
	allSkip := true
	store.Each(func(i int, e *metapop.Entry) bool {
		if visited.Contains(e.Tree) {
			p[i] = skipValue
		} else {
			p[i] = store.Weighted(e)
			allSkip = false
		}
		return true
	})

	// Step 4.
	if allSkip {
		return nil, mperr.ErrNoExemplar
	}

	// Step 5: softmax transform.
	sMax := math.Inf(-1)
	for i := range p {
		if p[i] < skipValue/skipFactor && p[i] > sMax {
			sMax = p[i]
		}
	}
	beta := 100.0 / cfg.ComplexityTemperature
	for i := range p {
		if p[i] >= skipValue/skipFactor {
			p[i] = 0
		} else {
			p[i] = math.Exp(beta * (p[i] - sMax))
		}
	}

	// Step 6: weighted sample.
	var z float64
	for _, v := range p {
		z += v
	}
	if z <= 0 {
		return nil, mperr.ErrNoExemplar
	}

	r := rnd.Float64() * z
	acc := 0.0
	chosen := n - 1
	for i, v := range p {
		acc += v
		if r <= acc {
			chosen = i
			break
		}
	}
	return store.At(chosen), nil
}

// skipThreshold picks a SKIP sentinel at least skipFactor times larger in
// magnitude than any achievable weighted score currently in the store.
func skipThreshold(store *metapop.Store, k float64) float64 {
	maxAbs := 1.0
	store.Each(func(_ int, e *metapop.Entry) bool {
		w := e.Composite.Weighted(k)
		if a := math.Abs(w); a > maxAbs {
			maxAbs = a
		}
		return true
	})
	return maxAbs * skipFactor * 2
}

// applyDiversityPenalty implements spec.md §4.3 step 2: for every entry with
// nonempty behavioral score, set d = 1 / (1 + L1(B_prev, B)); entries with
// empty B retain d = 0. Each penalised entry is moved to its new sorted
// position with Store.Reweight, which removes and re-inserts it.
func applyDiversityPenalty(store *metapop.Store, prev *metapop.Entry) {
	type update struct {
		e *metapop.Entry
		d float64
	}
	var updates []update
	store.Each(func(_ int, e *metapop.Entry) bool {
		if len(e.Behavioral) == 0 {
			return true
		}
		d := 1.0 / (1.0 + score.L1Distance(prev.Behavioral, e.Behavioral))
		updates = append(updates, update{e, d})
		return true
	})
	for _, u := range updates {
		store.Reweight(u.e, u.d)
	}
}
