package metapop_test

import "github.com/opencog/metapop/internal/contracts"

// fakeTree is a minimal contracts.Tree for tests that only care about
// identity, not real expression semantics.
type fakeTree struct{ id int }

var _ contracts.Tree = fakeTree{}

func (f fakeTree) Hash() uint64 { return uint64(f.id) }
func (f fakeTree) Equal(other contracts.Tree) bool {
	o, ok := other.(fakeTree)
	return ok && o.id == f.id
}
