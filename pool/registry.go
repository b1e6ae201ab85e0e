package pool

import (
	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/fp"
)

// defaultListCap keeps first-use slices out of the growth path for
// typical manifold and query sizes
const defaultListCap = 16

// Registry bundles the pooled scratch collections the collision pipeline
// and solver share. A process-wide instance is available through Shared;
// tests or hosts running multiple isolated simulations can construct
// their own and pass it explicitly.
//
// Reset (and NewRegistry for the shared instance) must not be called
// while any goroutine is concurrently taking from or giving back to the
// registry; serializing that is the caller's responsibility
type Registry struct {
	IntLists    *Pool[*[]int]
	IntSets     *Pool[map[int]struct{}]
	ScalarLists *Pool[*[]fp.Scalar]
	Vec3Lists   *Pool[*[]fp.Vec3]
	RayHitLists *Pool[*[]core.RayHit]
}

// NewRegistry constructs a registry with empty pools
func NewRegistry() *Registry {
	return &Registry{
		IntLists: NewPool(
			func() *[]int { s := make([]int, 0, defaultListCap); return &s },
			func(s *[]int) { *s = (*s)[:0] },
		),
		IntSets: NewPool(
			func() map[int]struct{} { return make(map[int]struct{}, defaultListCap) },
			func(m map[int]struct{}) { clear(m) },
		),
		ScalarLists: NewPool(
			func() *[]fp.Scalar { s := make([]fp.Scalar, 0, defaultListCap); return &s },
			func(s *[]fp.Scalar) { *s = (*s)[:0] },
		),
		Vec3Lists: NewPool(
			func() *[]fp.Vec3 { s := make([]fp.Vec3, 0, defaultListCap); return &s },
			func(s *[]fp.Vec3) { *s = (*s)[:0] },
		),
		RayHitLists: NewPool(
			func() *[]core.RayHit { s := make([]core.RayHit, 0, defaultListCap); return &s },
			func(s *[]core.RayHit) { *s = (*s)[:0] },
		),
	}
}

var shared = NewRegistry()

// Shared returns the process-wide registry
func Shared() *Registry {
	return shared
}

// Reset replaces the process-wide registry with a fresh one, discarding
// all cached instances. Call before first concurrent use or between
// independent simulation runs; never concurrently with Take/GiveBack
func Reset() {
	shared = NewRegistry()
}
