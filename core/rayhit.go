package core

import "github.com/fixstep/rigid/fp"

// RayHit is one ray-cast result from the external collision pipeline.
// Lists of these are recycled through the pool registry
type RayHit struct {
	Location fp.Vec3
	Normal   fp.Vec3
	T        fp.Scalar
}
