// Package core holds the shared records exchanged between the external
// collision pipeline and the constraint solver: contact points, rigid body
// motion state, and pair identity.
package core

import (
	"errors"

	"github.com/fixstep/rigid/fp"
)

// ErrInvalidContact reports a contact whose geometry is degenerate.
// Presenting one to the solver is a caller bug, not a runtime state
var ErrInvalidContact = errors.New("contact has a degenerate normal")

// normalUnitTolerance bounds how far a contact normal's squared magnitude
// may drift from one before the contact is considered degenerate
var normalUnitTolerance = fp.FromFloat(0.01)

// Contact is one point of a narrow-phase manifold: immutable per step.
// ID must be stable across the contact's lifetime so add/remove diffing
// by the narrow phase does not churn
type Contact struct {
	Position         fp.Vec3
	Normal           fp.Vec3 // unit length
	PenetrationDepth fp.Scalar
	ID               uint64
}

// Validate checks the contact before it may touch solver state
func (c *Contact) Validate() error {
	magSq := fp.V3MagSq(c.Normal)
	if fp.Abs(magSq-fp.One) > normalUnitTolerance {
		return ErrInvalidContact
	}
	return nil
}
