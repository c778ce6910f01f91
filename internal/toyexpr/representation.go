package toyexpr

import (
	"fmt"

	"github.com/opencog/metapop/internal/contracts"
)

// knobKind distinguishes the two kinds of mutable site a Representation
// exposes over an exemplar tree.
type knobKind int

const (
	knobLeaf knobKind = iota // rewrite a leaf's value (constant or variable)
	knobOp                   // rewrite an operator node's operator
)

// leafAlternatives is the fixed candidate set a leaf knob selects from: the
// variable, plus a spread of constants. 3 bits (8 values) covers it exactly.
var leafAlternatives = []struct {
	isVar bool
	v     float64
}{
	{isVar: true}, {v: -2}, {v: -1}, {v: -0.5}, {v: 0.5}, {v: 1}, {v: 2}, {v: 3},
}

// opAlternatives is the fixed candidate set an operator knob selects from.
// 2 bits (4 values) covers it exactly.
var opAlternatives = []Op{Add, Sub, Mul, Div}

const (
	leafBits = 3
	opBits   = 2
)

// knob is one addressable mutation site, located by its path from the root
// (a sequence of Left/Right descents) so GetCandidate can re-locate it on a
// freshly cloned tree.
type knob struct {
	kind knobKind
	path []bool // false = Left, true = Right, walked from the root
}

// Representation implements contracts.Representation: a bit-field of knobs
// addressing every eligible leaf and operator node in one exemplar tree,
// the toy domain's stand-in for spec.md §3's "mapping from a bit-field of
// knobs onto trees derived from the current exemplar."
type Representation struct {
	base  Tree
	knobs []knob
}

var _ contracts.Representation = Representation{}

// Fields implements contracts.Representation.
func (r Representation) Fields() []contracts.Field {
	fields := make([]contracts.Field, len(r.knobs))
	for i, k := range r.knobs {
		if k.kind == knobLeaf {
			fields[i] = contracts.Field{Name: fmt.Sprintf("leaf%d", i), Bits: leafBits}
		} else {
			fields[i] = contracts.Field{Name: fmt.Sprintf("op%d", i), Bits: opBits}
		}
	}
	return fields
}

// GetCandidate implements contracts.Representation: apply instance[i] to the
// i-th knob of a fresh clone of the base tree, then optionally reduce.
func (r Representation) GetCandidate(instance []byte, reduce bool) (contracts.Tree, error) {
	if len(instance) != len(r.knobs) {
		return nil, fmt.Errorf("toyexpr: instance length %d != knob count %d", len(instance), len(r.knobs))
	}
	root := r.base.Root.Clone()
	for i, k := range r.knobs {
		target := locate(root, k.path)
		if target == nil {
			return nil, fmt.Errorf("toyexpr: knob %d path no longer resolves", i)
		}
		switch k.kind {
		case knobLeaf:
			alt := leafAlternatives[int(instance[i])%len(leafAlternatives)]
			target.Var = alt.isVar
			target.Const = alt.v
		case knobOp:
			target.Op = opAlternatives[int(instance[i])%len(opAlternatives)]
		}
	}
	t := Tree{Root: root}
	if reduce {
		t = Reduce(t)
	}
	return t, nil
}

func locate(n *Node, path []bool) *Node {
	for _, right := range path {
		if n == nil {
			return nil
		}
		if right {
			n = n.Right
		} else {
			n = n.Left
		}
	}
	return n
}

// Build implements contracts.RepresentationBuilder: walk tree and collect
// one knob per leaf and per operator node, honoring ignoredOps (operator
// symbols and the sentinel "var" name may be excluded). perceptions/actions
// are accepted for interface conformance but unused — this toy domain has
// no perception/action operator distinction.
func Build(tree contracts.Tree, ignoredOps map[string]struct{}, _, _ []string) (contracts.Representation, error) {
	base, ok := tree.(Tree)
	if !ok {
		return nil, fmt.Errorf("toyexpr: Build called with a non-toyexpr.Tree")
	}
	var knobs []knob
	var walk func(n *Node, path []bool)
	walk = func(n *Node, path []bool) {
		if n == nil {
			return
		}
		if n.Op == NoOp {
			if n.Var {
				if _, skip := ignoredOps["var"]; skip {
					return
				}
			} else if _, skip := ignoredOps["const"]; skip {
				return
			}
			p := make([]bool, len(path))
			copy(p, path)
			knobs = append(knobs, knob{kind: knobLeaf, path: p})
			return
		}
		if _, skip := ignoredOps[string(rune(n.Op))]; !skip {
			p := make([]bool, len(path))
			copy(p, path)
			knobs = append(knobs, knob{kind: knobOp, path: p})
		}
		walk(n.Left, append(path, false))
		walk(n.Right, append(path, true))
	}
	walk(base.Root, nil)

	if len(knobs) == 0 {
		return nil, nil // EmptyRepresentation: contracts.RepresentationBuilder's documented nil case.
	}
	return Representation{base: base, knobs: knobs}, nil
}
