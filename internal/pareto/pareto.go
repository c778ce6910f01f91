// Package pareto implements the divide-and-conquer non-dominated filter of
// spec.md §4.5 — the spec's own "hardest part," and the one subsystem with
// no direct analogue in the teacher pack (flowShop never needed a Pareto
// front). The base-case pairwise dominance check is grounded on the pack's
// skyline ranker (other_examples/.../skyline_ranker.go), generalized from
// two fixed axes to an arbitrary-length behavioral vector via
// internal/score.Dominates. The fork-join recursion uses
// golang.org/x/sync/errgroup the way the pack's hybrid search engine
// (amanmcp/internal/search) forks bounded concurrent work and joins at
// g.Wait(), rather than stackful coroutines (spec.md §9).
package pareto

import (
	"golang.org/x/sync/errgroup"

	"github.com/opencog/metapop/internal/metapop"
	"github.com/opencog/metapop/internal/score"
)

// NonDominated returns the subset of entries not dominated by any other
// member, using up to jobBudget concurrent goroutines (jobBudget <= 1 runs
// serially).
func NonDominated(entries []*metapop.Entry, jobBudget int) []*metapop.Entry {
	if len(entries) < 2 {
		out := make([]*metapop.Entry, len(entries))
		copy(out, entries)
		return out
	}

	mid := len(entries) / 2
	left := entries[:mid]
	right := entries[mid:]

	var leftND, rightND []*metapop.Entry

	if jobBudget > 1 {
		g := new(errgroup.Group)
		g.Go(func() error {
			leftND = NonDominated(left, jobBudget/2)
			return nil
		})
		rightND = NonDominated(right, jobBudget/2)
		_ = g.Wait() // the goroutine never returns an error
	} else {
		leftND = NonDominated(left, 1)
		rightND = NonDominated(right, 1)
	}

	a, b := mergeDisjoint(leftND, rightND)
	return append(a, b...)
}

// mergeDisjoint implements spec.md §4.5's merge_disjoint: given two
// internally non-dominated sets, returns the subset of each still not
// dominated by any member of the other.
func mergeDisjoint(a, b []*metapop.Entry) ([]*metapop.Entry, []*metapop.Entry) {
	if len(a) == 0 || len(b) == 0 {
		return a, b
	}
	if len(a) == 1 {
		return mergeSingle(a[0], b)
	}

	mid := len(a) / 2
	a1out, bAfter1 := mergeDisjoint(a[:mid], b)
	a2out, bAfter2 := mergeDisjoint(a[mid:], bAfter1)
	return append(a1out, a2out...), bAfter2
}

// mergeSingle compares the sole element a against every element of b in
// order, per spec.md §4.5's base case: a is dropped outright the first time
// some b strictly dominates it (the rest of b is then kept unconditionally);
// otherwise each b is kept unless a strictly dominates it.
func mergeSingle(a *metapop.Entry, b []*metapop.Entry) ([]*metapop.Entry, []*metapop.Entry) {
	keptB := make([]*metapop.Entry, 0, len(b))
	for i, bi := range b {
		d, err := score.Dominates(a.Behavioral, bi.Behavioral)
		if err != nil {
			// Programmer error (mismatched lengths): surface by panicking —
			// the caller is expected to have validated conformant behavioral
			// vectors before invoking the filter (spec.md §7's
			// MismatchedBscoreLength aborts the run).
			panic(err)
		}
		switch d {
		case score.StrictlyWorse:
			// b[i] dominates a: drop a, keep every remaining b including
			// this one.
			keptB = append(keptB, b[i:]...)
			return nil, keptB
		case score.StrictlyBetter:
			// a dominates b[i]: drop b[i].
		default: // Incomparable
			keptB = append(keptB, bi)
		}
	}
	return []*metapop.Entry{a}, keptB
}

// MergeNonDominated computes the non-dominated set of newEntries ∪ the
// entries currently in store, and reports which existing store entries are
// now dominated (to be erased) and which new entries survive (to be
// inserted), per spec.md §4.5's "merge_nondominated."
func MergeNonDominated(newEntries []*metapop.Entry, store *metapop.Store, jobBudget int) (toInsert, toErase []*metapop.Entry) {
	current := make([]*metapop.Entry, 0, store.Len())
	store.Each(func(_ int, e *metapop.Entry) bool {
		if len(e.Behavioral) > 0 {
			current = append(current, e)
		}
		return true
	})

	union := make([]*metapop.Entry, 0, len(current)+len(newEntries))
	union = append(union, current...)
	union = append(union, newEntries...)

	survivors := NonDominated(union, jobBudget)
	survivorSet := make(map[*metapop.Entry]struct{}, len(survivors))
	for _, s := range survivors {
		survivorSet[s] = struct{}{}
	}

	for _, e := range current {
		if _, ok := survivorSet[e]; !ok {
			toErase = append(toErase, e)
		}
	}
	for _, e := range newEntries {
		if _, ok := survivorSet[e]; ok {
			toInsert = append(toInsert, e)
		}
	}
	return toInsert, toErase
}
