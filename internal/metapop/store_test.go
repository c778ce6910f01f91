package metapop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencog/metapop/internal/metapop"
	"github.com/opencog/metapop/internal/score"
)

func TestInsertOrdersDescending(t *testing.T) {
	s := metapop.NewStore(0.01)
	s.Insert(metapop.NewEntry(fakeTree{1}, nil, score.Composite{S: 1.0, C: 0}))
	s.Insert(metapop.NewEntry(fakeTree{2}, nil, score.Composite{S: 3.0, C: 0}))
	s.Insert(metapop.NewEntry(fakeTree{3}, nil, score.Composite{S: 2.0, C: 0}))

	require.Equal(t, 3, s.Len())
	prev := s.At(0).Composite.Weighted(0.01)
	for i := 1; i < s.Len(); i++ {
		w := s.At(i).Composite.Weighted(0.01)
		assert.LessOrEqual(t, w, prev, "store must be weighted-score descending")
		prev = w
	}
	assert.Equal(t, fakeTree{2}, s.At(0).Tree)
}

func TestInsertConflictReplacesOnlyIfStrictlyGreater(t *testing.T) {
	s := metapop.NewStore(0.0)
	e1 := metapop.NewEntry(fakeTree{1}, nil, score.Composite{S: 5.0})
	ok := s.Insert(e1)
	require.True(t, ok)

	worse := metapop.NewEntry(fakeTree{1}, nil, score.Composite{S: 4.0})
	ok = s.Insert(worse)
	assert.False(t, ok, "a worse entry with the same tree must not replace the existing one")
	got, found := s.FindByTree(fakeTree{1})
	require.True(t, found)
	assert.Equal(t, 5.0, got.Composite.S)

	better := metapop.NewEntry(fakeTree{1}, nil, score.Composite{S: 6.0})
	ok = s.Insert(better)
	assert.True(t, ok, "a strictly better entry with the same tree must replace the existing one")
	got, found = s.FindByTree(fakeTree{1})
	require.True(t, found)
	assert.Equal(t, 6.0, got.Composite.S)
	assert.Equal(t, 1, s.Len(), "no duplicate tree entries")
}

func TestFindByTreeMiss(t *testing.T) {
	s := metapop.NewStore(0.0)
	_, found := s.FindByTree(fakeTree{42})
	assert.False(t, found)
}

func TestEraseAtAndRange(t *testing.T) {
	s := metapop.NewStore(0.0)
	for i := 0; i < 5; i++ {
		s.Insert(metapop.NewEntry(fakeTree{i}, nil, score.Composite{S: float64(i)}))
	}
	require.Equal(t, 5, s.Len())

	s.EraseAt(0) // removes the current head (highest S = 4)
	require.Equal(t, 4, s.Len())
	_, found := s.FindByTree(fakeTree{4})
	assert.False(t, found)

	s.EraseRange(0, 2)
	assert.Equal(t, 2, s.Len())
}

func TestUpdateBest(t *testing.T) {
	s := metapop.NewStore(0.0)
	e1 := metapop.NewEntry(fakeTree{1}, nil, score.Composite{S: 3.0, C: 5})
	e2 := metapop.NewEntry(fakeTree{2}, nil, score.Composite{S: 3.0, C: 2})
	e3 := metapop.NewEntry(fakeTree{3}, nil, score.Composite{S: 5.0, C: 9})

	s.UpdateBest([]*metapop.Entry{e1})
	best, set := s.Best()
	assert.Equal(t, 3.0, best.S)
	assert.Len(t, set, 1)

	// Equal S, no worse C: appended to the best-set.
	s.UpdateBest([]*metapop.Entry{e2})
	best, set = s.Best()
	assert.Equal(t, 3.0, best.S)
	assert.Len(t, set, 2)

	// Strictly better S: replaces and clears the best-set.
	s.UpdateBest([]*metapop.Entry{e3})
	best, set = s.Best()
	assert.Equal(t, 5.0, best.S)
	require.Len(t, set, 1)
	assert.Equal(t, fakeTree{3}, set[0].Tree)
}

func TestReweightResorts(t *testing.T) {
	s := metapop.NewStore(0.0)
	e1 := metapop.NewEntry(fakeTree{1}, score.Behavioral{1}, score.Composite{S: 5.0})
	e2 := metapop.NewEntry(fakeTree{2}, score.Behavioral{1}, score.Composite{S: 4.0})
	s.Insert(e1)
	s.Insert(e2)
	require.Equal(t, fakeTree{1}, s.At(0).Tree)

	s.Reweight(e1, 10.0) // w(e1) = 5 - 10 = -5, now below e2's w = 4
	assert.Equal(t, fakeTree{2}, s.At(0).Tree)
}
