package metapop

import (
	"github.com/opencog/metapop/internal/contracts"
	"github.com/opencog/metapop/internal/score"
)

// Entry is a single metapopulation member (spec.md §3's scored tree E).
// Its own *Entry pointer is the stable handle independent of the store's
// current sort position: the Pareto filter (internal/pareto) classifies and
// compares entries by pointer without the store reshuffling underneath it
// mid-filter (spec.md §9's "stable indices or entry IDs" note), so no
// separate identity field is needed.
type Entry struct {
	Tree       contracts.Tree
	Behavioral score.Behavioral
	Composite  score.Composite
}

// NewEntry builds an Entry.
func NewEntry(t contracts.Tree, b score.Behavioral, c score.Composite) *Entry {
	return &Entry{Tree: t, Behavioral: b, Composite: c}
}
