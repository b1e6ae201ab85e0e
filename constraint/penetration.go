package constraint

import (
	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/fp"
)

// PenetrationConstraint is a one-dimensional impulse constraint along a
// single contact's normal. Accumulated impulse is clamped non-negative:
// bodies may only push apart. Instances are owned by the manifold that
// configured them and recycled through its local stack
type PenetrationConstraint struct {
	bodyA, bodyB *core.Body
	contact      core.Contact

	// jacobian state, rebuilt each Update
	normal             fp.Vec3
	angularA, angularB fp.Vec3 // rA x n, rB x n
	effectiveMass      fp.Scalar
	bias               fp.Scalar

	accumulated      fp.Scalar
	relativeVelocity fp.Scalar
	active           bool
}

// configure binds the constraint to a fresh contact. Prior impulse state
// never carries across contacts
func (pc *PenetrationConstraint) configure(a, b *core.Body, c core.Contact) {
	pc.bodyA = a
	pc.bodyB = b
	pc.contact = c
	pc.accumulated = 0
	pc.relativeVelocity = 0
	pc.active = true
}

// refresh replaces the contact geometry while keeping warm-start state;
// used when the narrow phase updates a persistent contact in place
func (pc *PenetrationConstraint) refresh(c core.Contact) {
	pc.contact = c
}

// Contact returns the contact this constraint resolves
func (pc *PenetrationConstraint) Contact() core.Contact {
	return pc.contact
}

// RelativeVelocity returns the last measured velocity along the normal
// (negative = approaching). Telemetry only
func (pc *PenetrationConstraint) RelativeVelocity() fp.Scalar {
	return pc.relativeVelocity
}

// TotalImpulse returns the accumulated normal impulse
func (pc *PenetrationConstraint) TotalImpulse() fp.Scalar {
	return pc.accumulated
}

// Error returns the current constraint error: penetration beyond slop
func (pc *PenetrationConstraint) Error() fp.Scalar {
	return fp.Max(0, pc.contact.PenetrationDepth-PenetrationSlop)
}

// Update recomputes the jacobian, effective mass, and bias from current
// geometry. Degenerate configurations zero the effective mass so the
// constraint contributes nothing this step instead of corrupting state
func (pc *PenetrationConstraint) Update(dt fp.Scalar) {
	n := pc.contact.Normal
	ra := fp.V3Sub(pc.contact.Position, pc.bodyA.Position)
	rb := fp.V3Sub(pc.contact.Position, pc.bodyB.Position)
	pc.normal = n
	pc.angularA = fp.V3Cross(ra, n)
	pc.angularB = fp.V3Cross(rb, n)

	k := pc.bodyA.InverseMass + pc.bodyB.InverseMass
	k += fp.V3Dot(fp.M3MulV3(pc.bodyA.InverseInertiaWorld, pc.angularA), pc.angularA)
	k += fp.V3Dot(fp.M3MulV3(pc.bodyB.InverseInertiaWorld, pc.angularB), pc.angularB)
	if k <= effectiveMassEpsilon {
		pc.effectiveMass = 0
	} else {
		pc.effectiveMass = fp.Div(fp.One, k)
	}

	excess := pc.contact.PenetrationDepth - PenetrationSlop
	if excess > 0 && dt > 0 {
		bias := fp.Mul(fp.Div(PenetrationRecoveryFactor, dt), excess)
		pc.bias = fp.Min(bias, MaxPenetrationCorrectionSpeed)
	} else {
		pc.bias = 0
	}
}

// ExclusiveUpdate warm-starts by reapplying the stored impulse from the
// previous step. Contact geometry changes little between steps, so the
// prior solution is a near-converged starting point
func (pc *PenetrationConstraint) ExclusiveUpdate() {
	if pc.accumulated == 0 {
		return
	}
	impulse := fp.V3Scale(pc.normal, pc.accumulated)
	pc.bodyA.ApplyImpulse(pc.contact.Position, fp.V3Neg(impulse))
	pc.bodyB.ApplyImpulse(pc.contact.Position, impulse)
}

// SolveIteration applies one incremental impulse and returns its
// magnitude. The accumulated impulse is clamped at zero from below
func (pc *PenetrationConstraint) SolveIteration() fp.Scalar {
	if !pc.active || pc.effectiveMass == 0 {
		return 0
	}

	dv := fp.V3Sub(
		pc.bodyB.VelocityAtPoint(pc.contact.Position),
		pc.bodyA.VelocityAtPoint(pc.contact.Position),
	)
	vn := fp.V3Dot(dv, pc.normal)
	pc.relativeVelocity = vn

	lambda := fp.Mul(pc.effectiveMass, pc.bias-vn)
	newAccumulated := fp.Max(0, pc.accumulated+lambda)
	delta := newAccumulated - pc.accumulated
	pc.accumulated = newAccumulated

	if delta != 0 {
		impulse := fp.V3Scale(pc.normal, delta)
		pc.bodyA.ApplyImpulse(pc.contact.Position, fp.V3Neg(impulse))
		pc.bodyB.ApplyImpulse(pc.contact.Position, impulse)
	}
	return fp.Abs(delta)
}

// CleanUp releases cached reference state so the instance can be pooled
func (pc *PenetrationConstraint) CleanUp() {
	pc.bodyA = nil
	pc.bodyB = nil
	pc.contact = core.Contact{}
	pc.normal = fp.Vec3{}
	pc.angularA = fp.Vec3{}
	pc.angularB = fp.Vec3{}
	pc.effectiveMass = 0
	pc.bias = 0
	pc.accumulated = 0
	pc.relativeVelocity = 0
	pc.active = false
}
