package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/fp"
)

func TestTakeConstructsWhenEmpty(t *testing.T) {
	p := NewPool(
		func() *[]int { s := make([]int, 0, 4); return &s },
		func(s *[]int) { *s = (*s)[:0] },
	)
	got := p.Take()
	require.NotNil(t, got)
	assert.Empty(t, *got)
}

func TestGiveBackClearsBeforeReuse(t *testing.T) {
	p := NewPool(
		func() *[]int { s := make([]int, 0, 4); return &s },
		func(s *[]int) { *s = (*s)[:0] },
	)
	s := p.Take()
	*s = append(*s, 1, 2, 3)
	p.GiveBack(s)

	// Whatever Take returns next must be logically empty
	next := p.Take()
	assert.Empty(t, *next, "instance must be cleared before the next Take")
}

func TestRegistryPoolsClear(t *testing.T) {
	r := NewRegistry()

	ints := r.IntLists.Take()
	*ints = append(*ints, 7)
	r.IntLists.GiveBack(ints)
	assert.Empty(t, *r.IntLists.Take())

	set := r.IntSets.Take()
	set[42] = struct{}{}
	r.IntSets.GiveBack(set)
	assert.Empty(t, r.IntSets.Take())

	scalars := r.ScalarLists.Take()
	*scalars = append(*scalars, fp.One)
	r.ScalarLists.GiveBack(scalars)
	assert.Empty(t, *r.ScalarLists.Take())

	vecs := r.Vec3Lists.Take()
	*vecs = append(*vecs, fp.V3(fp.One, 0, 0))
	r.Vec3Lists.GiveBack(vecs)
	assert.Empty(t, *r.Vec3Lists.Take())

	hits := r.RayHitLists.Take()
	*hits = append(*hits, core.RayHit{T: fp.One})
	r.RayHitLists.GiveBack(hits)
	assert.Empty(t, *r.RayHitLists.Take())
}

func TestSharedRegistryReset(t *testing.T) {
	before := Shared()
	require.NotNil(t, before)
	Reset()
	after := Shared()
	require.NotNil(t, after)
	assert.NotSame(t, before, after, "Reset must discard the previous registry")
}
