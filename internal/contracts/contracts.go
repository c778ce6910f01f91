// Package contracts defines the external capability interfaces the
// metapopulation core consumes (spec.md §6). Following the teacher's own
// idiom in internal/opt (a single-method interface per external
// collaborator), every one of these is the *only* point where tree,
// representation, or optimiser logic enters the engine — the core never
// knows a concrete tree type, reduction rule, or optimiser implementation.
package contracts

import (
	"context"

	"github.com/opencog/metapop/internal/score"
)

// Tree is a rooted, ordered expression tree: opaque to the core, comparable
// and hashable. Concrete implementations live entirely outside this module.
type Tree interface {
	Hash() uint64
	Equal(other Tree) bool
}

// Reducer normalises a tree to its canonical reduced form.
type Reducer interface {
	Reduce(t Tree) Tree
}

// ComplexityFn computes a tree's non-negative integer complexity.
type ComplexityFn func(t Tree) int

// CompositeScorer computes a pure composite score for a tree. Implementations
// must be re-entrant: same tree in, same score out, safe for concurrent
// calls.
type CompositeScorer interface {
	Score(t Tree) score.Composite
}

// BehavioralScorer computes a pure, potentially expensive per-example
// behavioral score for a tree. Must tolerate parallel calls.
type BehavioralScorer interface {
	Score(t Tree) score.Penalized
}

// Field describes one knob in a Representation's bit-field.
type Field struct {
	Name string
	Bits int
}

// Representation maps a typed bit-field of knobs onto trees derived from the
// exemplar it was built from. Transient: owned by one deme-pipeline cycle.
type Representation interface {
	Fields() []Field
	GetCandidate(instance []byte, reduce bool) (Tree, error)
}

// RepresentationBuilder constructs a Representation around tree, honoring
// ignoredOps (names of operators to exclude from the knob set) and an
// optional set of perception/action operator names. Returns a nil
// Representation (not an error) when the builder legitimately has nothing to
// offer for this tree — callers treat that as EmptyRepresentation, not as a
// hard failure.
type RepresentationBuilder func(
	tree Tree,
	ignoredOps map[string]struct{},
	perceptions, actions []string,
) (Representation, error)

// FeatureSelector returns the column indices a behavioral scorer should keep
// for tree; the core converts the complement into argument-index operator
// names added to the ignored-ops set.
type FeatureSelector func(t Tree) map[int]struct{}

// ScoringFunc is the wrapper an optimiser calls to score one instance; it
// applies composite scoring plus (optionally) full-tree reduction, exactly
// as spec.md §4.4's optimize_deme describes.
type ScoringFunc func(instance []byte) (score.Composite, error)

// Optimizer is the inner local-search loop run once per deme. It must
// consume ctx for cancellation and return the number of evaluations it
// actually performed even when it returns a non-nil error.
type Optimizer interface {
	Optimise(ctx context.Context, fields []Field, scorer ScoringFunc, budget int) (evalsUsed int, err error)
}

// MergeCallback runs after each merge; returning true signals the driver to
// terminate after the current cycle.
type MergeCallback func(candidates []Tree, userData any) bool
