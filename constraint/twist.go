package constraint

import (
	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/fp"
)

// TwistFrictionConstraint is the single one-dimensional angular friction
// constraint a manifold shares across its contacts: it resists relative
// spin about the shared contact normal. Its limit scales with the
// manifold's normal impulse and the mean contact lever arm, so a single
// point of contact produces no twist resistance
type TwistFrictionConstraint struct {
	manifold     *ContactManifoldConstraint
	bodyA, bodyB *core.Body

	normal        fp.Vec3
	effectiveMass fp.Scalar
	friction      fp.Scalar
	leverArm      fp.Scalar

	accumulated      fp.Scalar
	relativeVelocity fp.Scalar
	active           bool
}

func (tf *TwistFrictionConstraint) setup(m *ContactManifoldConstraint) {
	tf.manifold = m
	tf.bodyA = m.bodyA
	tf.bodyB = m.bodyB
	tf.accumulated = 0
	tf.relativeVelocity = 0
	tf.active = true
}

// RelativeVelocity returns the last measured angular velocity about the
// normal
func (tf *TwistFrictionConstraint) RelativeVelocity() fp.Scalar {
	return tf.relativeVelocity
}

// TotalImpulse returns the accumulated twist impulse
func (tf *TwistFrictionConstraint) TotalImpulse() fp.Scalar {
	return tf.accumulated
}

// Active reports whether the constraint participates in solving
func (tf *TwistFrictionConstraint) Active() bool {
	return tf.active
}

// Update recomputes the angular effective mass about the manifold normal
// and the mean lever arm of the contacts
func (tf *TwistFrictionConstraint) Update(dt fp.Scalar) {
	tf.normal = tf.manifold.contactNormal()
	tf.friction = core.CombineFriction(tf.bodyA, tf.bodyB)
	tf.leverArm = tf.manifold.contactLeverArm()

	k := fp.V3Dot(fp.M3MulV3(tf.bodyA.InverseInertiaWorld, tf.normal), tf.normal) +
		fp.V3Dot(fp.M3MulV3(tf.bodyB.InverseInertiaWorld, tf.normal), tf.normal)
	if k <= effectiveMassEpsilon {
		tf.effectiveMass = 0
	} else {
		tf.effectiveMass = fp.Div(fp.One, k)
	}
}

// ExclusiveUpdate warm-starts with the previous step's twist impulse
func (tf *TwistFrictionConstraint) ExclusiveUpdate() {
	if tf.accumulated == 0 {
		return
	}
	impulse := fp.V3Scale(tf.normal, tf.accumulated)
	tf.bodyA.ApplyAngularImpulse(fp.V3Neg(impulse))
	tf.bodyB.ApplyAngularImpulse(impulse)
}

// SolveIteration applies one angular impulse about the normal, clamped by
// the Coulomb limit, and returns the applied magnitude
func (tf *TwistFrictionConstraint) SolveIteration() fp.Scalar {
	if !tf.active || tf.effectiveMass == 0 {
		return 0
	}

	w := fp.V3Dot(
		fp.V3Sub(tf.bodyB.AngularVelocity, tf.bodyA.AngularVelocity),
		tf.normal,
	)
	tf.relativeVelocity = w

	lambda := -fp.Mul(tf.effectiveMass, w)
	limit := fp.Mul(fp.Mul(tf.friction, tf.manifold.totalNormalImpulse()), tf.leverArm)
	newAccumulated := fp.Clamp(tf.accumulated+lambda, -limit, limit)
	delta := newAccumulated - tf.accumulated
	tf.accumulated = newAccumulated

	if delta != 0 {
		impulse := fp.V3Scale(tf.normal, delta)
		tf.bodyA.ApplyAngularImpulse(fp.V3Neg(impulse))
		tf.bodyB.ApplyAngularImpulse(impulse)
	}
	return fp.Abs(delta)
}

// CleanUp deactivates the constraint and drops cached references
func (tf *TwistFrictionConstraint) CleanUp() {
	tf.manifold = nil
	tf.bodyA = nil
	tf.bodyB = nil
	tf.normal = fp.Vec3{}
	tf.effectiveMass = 0
	tf.friction = 0
	tf.leverArm = 0
	tf.accumulated = 0
	tf.relativeVelocity = 0
	tf.active = false
}
