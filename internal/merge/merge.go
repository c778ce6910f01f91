// Package merge implements the merger of spec.md §4.6: optional dominated-
// filter merge-in via internal/pareto, insertion into the candidate store,
// best-record update, and size-cap eviction under score and age pressure.
// Grounded on the teacher's single-threaded post-join mutation discipline
// (flowShop never parallelises its tabu/SA bookkeeping loop either) — every
// function here assumes it runs on the one driver goroutine, after any
// parallel phase has already joined, exactly as spec.md §5 requires.
package merge

import (
	"math"
	"math/rand"

	"github.com/opencog/metapop/internal/contracts"
	"github.com/opencog/metapop/internal/metapop"
	"github.com/opencog/metapop/internal/pareto"
)

// Config bundles the merger's tunables.
type Config struct {
	MinPool int // MIN_POOL, default 250
	Offset  int // elite-protection offset, default 50
	// ComplexityTemperature is τ, used here for the w-descending cut's
	// useful_range = 0.3·τ (spec.md §4.6).
	ComplexityTemperature float64
	IncludeDominated      bool
}

// Merger owns the candidate store and applies spec.md §4.6's merge
// procedure on every call to Merge.
type Merger struct {
	cfg      Config
	store    *metapop.Store
	rnd      *rand.Rand
	onMerge  contracts.MergeCallback
	userData any
}

// New builds a Merger over store using cfg and rnd for the eviction step's
// uniform random index draws. callback may be nil.
func New(cfg Config, store *metapop.Store, rnd *rand.Rand, callback contracts.MergeCallback, userData any) *Merger {
	return &Merger{cfg: cfg, store: store, rnd: rnd, onMerge: callback, userData: userData}
}

// Merge implements spec.md §4.4's "Merge" step and §4.6's eviction rule.
// jobBudget controls the Pareto filter's fork-join parallelism when the
// filter runs (IncludeDominated false — "include_dominated" keeps dominated
// candidates, i.e. skips the filter); nExpansions is the driver's current
// expansion count, used by the absolute size cap. Returns true if the merge
// callback requests termination.
func (m *Merger) Merge(candidates []*metapop.Entry, jobBudget, nExpansions int) (terminate bool) {
	var toInsert []*metapop.Entry
	var toErase []*metapop.Entry

	if !m.cfg.IncludeDominated {
		toInsert, toErase = pareto.MergeNonDominated(candidates, m.store, jobBudget)
	} else {
		toInsert = candidates
	}

	for _, e := range toErase {
		m.store.EraseAt(indexOf(m.store, e))
	}
	for _, e := range toInsert {
		m.store.Insert(e)
	}

	m.store.UpdateBest(toInsert)

	m.evict(nExpansions)

	if m.onMerge == nil {
		return false
	}
	trees := make([]contracts.Tree, 0, len(toInsert))
	for _, e := range toInsert {
		trees = append(trees, e.Tree)
	}
	return m.onMerge(trees, m.userData)
}

// indexOf linear-scans for e's current position. The store does not expose
// a pointer->index map; merge-time erasure of dominated entries is the only
// caller (eviction erases by position directly).
func indexOf(store *metapop.Store, target *metapop.Entry) int {
	found := -1
	store.Each(func(i int, e *metapop.Entry) bool {
		if e == target {
			found = i
			return false
		}
		return true
	})
	return found
}

// evict implements spec.md §4.6 steps 1-4: a weighted-score bulk trim of the
// softmax tail, followed by a uniform-random trim down to the absolute cap,
// with the leading Offset entries protected.
func (m *Merger) evict(nExpansions int) {
	if m.store.Len() <= m.cfg.MinPool {
		return
	}

	top := m.store.At(0)
	sTop := m.store.Weighted(top)
	usefulRange := 0.3 * m.cfg.ComplexityTemperature
	worst := sTop - usefulRange

	cut := m.store.Len()
	for i := m.cfg.MinPool; i < m.store.Len(); i++ {
		if m.store.Weighted(m.store.At(i)) < worst {
			cut = i
			break
		}
	}
	if cut < m.store.Len() {
		m.store.EraseRange(cut, m.store.Len())
	}

	cap := int(math.Floor(50.0 * float64(nExpansions+250) * (1 + 2*math.Exp(-float64(nExpansions)/500.0))))
	for m.store.Len() > cap {
		lo := m.cfg.Offset
		if lo >= m.store.Len() {
			return
		}
		idx := lo + m.rnd.Intn(m.store.Len()-lo)
		m.store.EraseAt(idx)
	}
}

// Store exposes the underlying candidate store, e.g. for driver-level best-
// record reads.
func (m *Merger) Store() *metapop.Store { return m.store }
