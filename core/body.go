package core

import (
	"github.com/fixstep/rigid/fp"
)

// Body is the motion state the contact solver reads and writes.
// Position and orientation integration belong to the host integrator;
// the solver only ever adjusts velocities through impulses.
// InverseMass zero (with a zero inverse inertia) marks a kinematic or
// static body: impulses have no effect on it
type Body struct {
	Position            fp.Vec3
	LinearVelocity      fp.Vec3
	AngularVelocity     fp.Vec3
	InverseMass         fp.Scalar
	InverseInertiaWorld fp.Mat3
	Friction            fp.Scalar
}

// NewDynamicBody builds a body from mass and a diagonal world inertia.
// Zero mass yields a kinematic body
func NewDynamicBody(mass fp.Scalar, inertiaDiag fp.Vec3) *Body {
	b := &Body{Friction: DefaultFriction}
	if mass > 0 {
		b.InverseMass = fp.Div(fp.One, mass)
	}
	b.InverseInertiaWorld = fp.M3Diag(
		invOrZero(inertiaDiag.X),
		invOrZero(inertiaDiag.Y),
		invOrZero(inertiaDiag.Z),
	)
	if mass <= 0 {
		b.InverseInertiaWorld = fp.Mat3{}
	}
	return b
}

// NewKinematicBody builds an infinite-mass body unaffected by impulses
func NewKinematicBody() *Body {
	return &Body{Friction: DefaultFriction}
}

// DefaultFriction is the material coefficient used when none is set
var DefaultFriction = fp.FromFloat(0.5)

func invOrZero(x fp.Scalar) fp.Scalar {
	if x <= 0 {
		return 0
	}
	return fp.Div(fp.One, x)
}

// IsDynamic reports whether impulses move this body
func (b *Body) IsDynamic() bool {
	return b.InverseMass > 0
}

// VelocityAtPoint returns the body's velocity at a world point:
// v + w x r, with r the offset from the body position
func (b *Body) VelocityAtPoint(point fp.Vec3) fp.Vec3 {
	r := fp.V3Sub(point, b.Position)
	return fp.V3Add(b.LinearVelocity, fp.V3Cross(b.AngularVelocity, r))
}

// ApplyImpulse applies an impulse at a world point, adjusting linear and
// angular velocity. No-op on non-dynamic bodies
func (b *Body) ApplyImpulse(point, impulse fp.Vec3) {
	if !b.IsDynamic() {
		return
	}
	r := fp.V3Sub(point, b.Position)
	b.LinearVelocity = fp.V3Add(b.LinearVelocity, fp.V3Scale(impulse, b.InverseMass))
	b.AngularVelocity = fp.V3Add(b.AngularVelocity,
		fp.M3MulV3(b.InverseInertiaWorld, fp.V3Cross(r, impulse)))
}

// ApplyAngularImpulse applies a pure angular impulse
func (b *Body) ApplyAngularImpulse(impulse fp.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.AngularVelocity = fp.V3Add(b.AngularVelocity,
		fp.M3MulV3(b.InverseInertiaWorld, impulse))
}

// CombineFriction blends two material coefficients by geometric mean
func CombineFriction(a, b *Body) fp.Scalar {
	return fp.Sqrt(fp.Mul(a.Friction, b.Friction))
}
