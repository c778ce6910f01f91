// Package metapop implements the candidate store of spec.md §4.2: an ordered
// multiset of scored trees, sorted by weighted score descending, with an
// auxiliary hash index for O(1) average find-by-tree. Modeled on the pack's
// graph library pairing a slice with a map index over a logically ordered
// structure (lvlath/core's adjacency list), rather than container/heap —
// a heap only gives partial order and cannot serve §4.2's "in-order
// traversal" requirement without an extra sort.
package metapop

import (
	"sort"

	"github.com/opencog/metapop/internal/contracts"
	"github.com/opencog/metapop/internal/score"
)

// Store is the metapopulation M: a w-descending ordered multiset of Entry,
// single-writer (spec.md §5 — the driver thread is the only mutator during a
// cycle).
type Store struct {
	k       float64 // complexity weight used for Weighted()
	entries []*Entry
	index   map[uint64][]*Entry // Tree.Hash() -> entries with that hash

	best    score.Composite
	bestSet []*Entry
}

// NewStore returns an empty store using complexity weight k for ordering.
func NewStore(k float64) *Store {
	return &Store{
		k:     k,
		index: make(map[uint64][]*Entry),
		best:  score.Composite{S: score.SWorst},
	}
}

// Len returns the number of entries currently in the store.
func (s *Store) Len() int { return len(s.entries) }

// Weighted returns e.Composite.Weighted using the store's configured k.
func (s *Store) Weighted(e *Entry) float64 {
	return e.Composite.Weighted(s.k)
}

// sortsBefore reports whether a belongs strictly before b in the store's
// descending-weighted-score order (a has the higher weighted score, or wins
// the tie-break).
func (s *Store) sortsBefore(a, b *Entry) bool {
	return score.Less(b.Composite, a.Composite, s.k)
}

// position returns the insertion index that keeps entries sorted descending
// by weighted score: the first position whose current occupant no longer
// sorts strictly before e.
func (s *Store) position(e *Entry) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return !s.sortsBefore(s.entries[i], e)
	})
}

func (s *Store) findEntry(t contracts.Tree) (*Entry, bool) {
	for _, cand := range s.index[t.Hash()] {
		if cand.Tree.Equal(t) {
			return cand, true
		}
	}
	return nil, false
}

// FindByTree returns the entry structurally equal to t, if any, in O(1)
// average time.
func (s *Store) FindByTree(t contracts.Tree) (*Entry, bool) {
	return s.findEntry(t)
}

// Insert adds e to the store. If an entry with a structurally equal tree
// already exists, the incoming entry replaces it iff its weighted score is
// strictly greater (spec.md §4.2's insertion-conflict rule); otherwise the
// existing entry is left untouched and Insert reports false.
func (s *Store) Insert(e *Entry) (inserted bool) {
	if existing, ok := s.findEntry(e.Tree); ok {
		if e.Composite.Weighted(s.k) <= existing.Composite.Weighted(s.k) {
			return false
		}
		s.removeEntry(existing)
	}

	pos := s.position(e)
	s.entries = append(s.entries, nil)
	copy(s.entries[pos+1:], s.entries[pos:])
	s.entries[pos] = e
	s.index[e.Tree.Hash()] = append(s.index[e.Tree.Hash()], e)
	return true
}

// removeEntry deletes e from both the ordered slice and the hash index.
func (s *Store) removeEntry(e *Entry) {
	for i, cand := range s.entries {
		if cand == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	h := e.Tree.Hash()
	bucket := s.index[h]
	for i, cand := range bucket {
		if cand == e {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(s.index, h)
	} else {
		s.index[h] = bucket
	}
}

// Reweight updates e's diversity penalty and re-sorts the store to keep it
// consistent with the new weighted score. Used by the selector's diversity-
// penalty step (spec.md §4.3 step 2); e must already be a member of s.
func (s *Store) Reweight(e *Entry, d float64) {
	s.removeEntry(e)
	e.Composite.D = d
	pos := s.position(e)
	s.entries = append(s.entries, nil)
	copy(s.entries[pos+1:], s.entries[pos:])
	s.entries[pos] = e
	s.index[e.Tree.Hash()] = append(s.index[e.Tree.Hash()], e)
}

// EraseAt removes the entry at position i.
func (s *Store) EraseAt(i int) {
	if i < 0 || i >= len(s.entries) {
		return
	}
	s.removeEntry(s.entries[i])
}

// EraseRange removes entries in [from, to).
func (s *Store) EraseRange(from, to int) {
	if from < 0 {
		from = 0
	}
	if to > len(s.entries) {
		to = len(s.entries)
	}
	if from >= to {
		return
	}
	victims := make([]*Entry, to-from)
	copy(victims, s.entries[from:to])
	for _, e := range victims {
		s.removeEntry(e)
	}
}

// Each calls fn for every entry in descending weighted-score order, stopping
// early if fn returns false.
func (s *Store) Each(fn func(i int, e *Entry) bool) {
	for i, e := range s.entries {
		if !fn(i, e) {
			return
		}
	}
}

// At returns the entry at position i (0 = head, highest weighted score).
func (s *Store) At(i int) *Entry {
	if i < 0 || i >= len(s.entries) {
		return nil
	}
	return s.entries[i]
}

// Best returns the best-ever composite score observed (spec.md §3's best
// record) and the set of trees achieving it.
func (s *Store) Best() (score.Composite, []*Entry) {
	return s.best, s.bestSet
}

// UpdateBest implements spec.md §4.7's update_best rule: a strictly better
// raw score (higher s) replaces the record and clears the best-set; an equal
// raw score with no worse complexity appends to the best-set.
func (s *Store) UpdateBest(candidates []*Entry) {
	for _, e := range candidates {
		switch {
		case e.Composite.S > s.best.S:
			s.best = e.Composite
			s.bestSet = []*Entry{e}
		case e.Composite.S == s.best.S && e.Composite.C <= s.best.C:
			s.bestSet = append(s.bestSet, e)
		}
	}
}
