package constraint

import (
	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/fp"
)

// SlidingFrictionConstraint is the single two-dimensional friction
// constraint a manifold shares across all of its contacts. It acts in the
// tangent plane at the mean contact position and is limited by the
// Coulomb disc derived from the manifold's accumulated normal impulse
type SlidingFrictionConstraint struct {
	manifold     *ContactManifoldConstraint
	bodyA, bodyB *core.Body

	center   fp.Vec3
	normal   fp.Vec3
	t1, t2   fp.Vec3
	friction fp.Scalar

	// inverted 2x2 effective mass; degenerate when the determinant
	// collapses
	m11, m12, m22 fp.Scalar
	degenerate    bool

	accumulated1, accumulated2 fp.Scalar
	relativeVelocity           fp.Scalar
	active                     bool
}

func (sf *SlidingFrictionConstraint) setup(m *ContactManifoldConstraint) {
	sf.manifold = m
	sf.bodyA = m.bodyA
	sf.bodyB = m.bodyB
	sf.accumulated1 = 0
	sf.accumulated2 = 0
	sf.relativeVelocity = 0
	sf.active = true
}

// RelativeVelocity returns the last measured tangent-plane speed
func (sf *SlidingFrictionConstraint) RelativeVelocity() fp.Scalar {
	return sf.relativeVelocity
}

// TotalImpulse returns the accumulated tangent impulse magnitude
func (sf *SlidingFrictionConstraint) TotalImpulse() fp.Scalar {
	return fp.Sqrt(fp.Mul(sf.accumulated1, sf.accumulated1) + fp.Mul(sf.accumulated2, sf.accumulated2))
}

// Active reports whether the constraint participates in solving
func (sf *SlidingFrictionConstraint) Active() bool {
	return sf.active
}

// tangentBasis builds a deterministic orthonormal basis for the plane
// orthogonal to n. The branch point keeps the first tangent well
// conditioned for any unit normal
func tangentBasis(n fp.Vec3) (t1, t2 fp.Vec3) {
	if fp.Abs(n.X) > fp.FromFloat(0.57) {
		t1 = fp.V3Normalize(fp.V3(n.Y, -n.X, 0))
	} else {
		t1 = fp.V3Normalize(fp.V3(0, n.Z, -n.Y))
	}
	t2 = fp.V3Cross(n, t1)
	return t1, t2
}

// Update rebuilds the tangent basis and the 2x2 effective mass at the
// manifold's mean contact position
func (sf *SlidingFrictionConstraint) Update(dt fp.Scalar) {
	sf.center = sf.manifold.contactCenter()
	sf.normal = sf.manifold.contactNormal()
	sf.t1, sf.t2 = tangentBasis(sf.normal)
	sf.friction = core.CombineFriction(sf.bodyA, sf.bodyB)

	ra := fp.V3Sub(sf.center, sf.bodyA.Position)
	rb := fp.V3Sub(sf.center, sf.bodyB.Position)

	raT1 := fp.V3Cross(ra, sf.t1)
	raT2 := fp.V3Cross(ra, sf.t2)
	rbT1 := fp.V3Cross(rb, sf.t1)
	rbT2 := fp.V3Cross(rb, sf.t2)

	invMassSum := sf.bodyA.InverseMass + sf.bodyB.InverseMass
	iA := sf.bodyA.InverseInertiaWorld
	iB := sf.bodyB.InverseInertiaWorld

	k11 := invMassSum +
		fp.V3Dot(fp.M3MulV3(iA, raT1), raT1) +
		fp.V3Dot(fp.M3MulV3(iB, rbT1), rbT1)
	k22 := invMassSum +
		fp.V3Dot(fp.M3MulV3(iA, raT2), raT2) +
		fp.V3Dot(fp.M3MulV3(iB, rbT2), rbT2)
	k12 := fp.V3Dot(fp.M3MulV3(iA, raT1), raT2) +
		fp.V3Dot(fp.M3MulV3(iB, rbT1), rbT2)

	det := fp.Mul(k11, k22) - fp.Mul(k12, k12)
	if det <= effectiveMassEpsilon {
		sf.degenerate = true
		return
	}
	sf.degenerate = false
	sf.m11 = fp.Div(k22, det)
	sf.m22 = fp.Div(k11, det)
	sf.m12 = -fp.Div(k12, det)
}

// ExclusiveUpdate warm-starts with the previous step's tangent impulse
func (sf *SlidingFrictionConstraint) ExclusiveUpdate() {
	if sf.accumulated1 == 0 && sf.accumulated2 == 0 {
		return
	}
	impulse := fp.V3Add(
		fp.V3Scale(sf.t1, sf.accumulated1),
		fp.V3Scale(sf.t2, sf.accumulated2),
	)
	sf.bodyA.ApplyImpulse(sf.center, fp.V3Neg(impulse))
	sf.bodyB.ApplyImpulse(sf.center, impulse)
}

// SolveIteration applies one tangent impulse, clamping the accumulated
// impulse to the Coulomb disc, and returns the applied magnitude
func (sf *SlidingFrictionConstraint) SolveIteration() fp.Scalar {
	if !sf.active || sf.degenerate {
		return 0
	}

	dv := fp.V3Sub(
		sf.bodyB.VelocityAtPoint(sf.center),
		sf.bodyA.VelocityAtPoint(sf.center),
	)
	v1 := fp.V3Dot(dv, sf.t1)
	v2 := fp.V3Dot(dv, sf.t2)
	sf.relativeVelocity = fp.Sqrt(fp.Mul(v1, v1) + fp.Mul(v2, v2))

	lambda1 := -(fp.Mul(sf.m11, v1) + fp.Mul(sf.m12, v2))
	lambda2 := -(fp.Mul(sf.m12, v1) + fp.Mul(sf.m22, v2))

	new1 := sf.accumulated1 + lambda1
	new2 := sf.accumulated2 + lambda2

	maxForce := fp.Mul(sf.friction, sf.manifold.totalNormalImpulse())
	magSq := fp.Mul(new1, new1) + fp.Mul(new2, new2)
	maxSq := fp.Mul(maxForce, maxForce)
	if magSq > maxSq {
		mag := fp.Sqrt(magSq)
		if mag == 0 {
			new1, new2 = 0, 0
		} else {
			scale := fp.Div(maxForce, mag)
			new1 = fp.Mul(new1, scale)
			new2 = fp.Mul(new2, scale)
		}
	}

	delta1 := new1 - sf.accumulated1
	delta2 := new2 - sf.accumulated2
	sf.accumulated1 = new1
	sf.accumulated2 = new2

	if delta1 != 0 || delta2 != 0 {
		impulse := fp.V3Add(fp.V3Scale(sf.t1, delta1), fp.V3Scale(sf.t2, delta2))
		sf.bodyA.ApplyImpulse(sf.center, fp.V3Neg(impulse))
		sf.bodyB.ApplyImpulse(sf.center, impulse)
	}
	return fp.Abs(delta1) + fp.Abs(delta2)
}

// CleanUp deactivates the constraint and drops cached references
func (sf *SlidingFrictionConstraint) CleanUp() {
	sf.manifold = nil
	sf.bodyA = nil
	sf.bodyB = nil
	sf.center = fp.Vec3{}
	sf.normal = fp.Vec3{}
	sf.t1 = fp.Vec3{}
	sf.t2 = fp.Vec3{}
	sf.m11, sf.m12, sf.m22 = 0, 0, 0
	sf.degenerate = false
	sf.accumulated1 = 0
	sf.accumulated2 = 0
	sf.relativeVelocity = 0
	sf.active = false
}
