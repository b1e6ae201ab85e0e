package constraint

import (
	"testing"

	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/fp"
)

// Resting contact scenario: one contact, normal (0,1,0), penetration 0.1,
// approaching at 1 unit/s. Iterating must never increase the approach
// speed: impulses may only push the bodies apart
func TestPenetrationApproachSpeedNonIncreasing(t *testing.T) {
	ground, box := testPair()
	box.LinearVelocity = fp.V3(0, -fp.One, 0)
	m := NewContactManifoldConstraint(ground, box, core.PairID(1, 2))

	if err := m.AddContact(testContact(1, 0.1)); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	if m.ContactCount() != 1 {
		t.Fatalf("Expected one penetration constraint, got %d", m.ContactCount())
	}

	dt := fp.Div(fp.One, fp.FromInt(60))
	m.Update(dt)
	m.ExclusiveUpdate()

	pc := m.Penetration(0)
	prevApproach := fp.Scalar(1) << 62
	for i := 0; i < 10; i++ {
		pc.SolveIteration()
		approach := -pc.RelativeVelocity()
		if approach > prevApproach {
			t.Fatalf("Iteration %d increased approach speed: %v -> %v",
				i, fp.ToFloat(prevApproach), fp.ToFloat(approach))
		}
		prevApproach = approach
	}

	if pc.TotalImpulse() < 0 {
		t.Errorf("Expected non-negative accumulated impulse, got %v", fp.ToFloat(pc.TotalImpulse()))
	}
	if pc.TotalImpulse() == 0 {
		t.Error("Expected a positive impulse for an approaching contact")
	}
}

func TestPenetrationImpulseNeverPulls(t *testing.T) {
	ground, box := testPair()
	// Separating fast: constraint must not pull the bodies together
	box.LinearVelocity = fp.V3(0, fp.FromInt(5), 0)
	m := NewContactManifoldConstraint(ground, box, core.PairID(1, 2))

	if err := m.AddContact(testContact(1, 0.1)); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	dt := fp.Div(fp.One, fp.FromInt(60))
	m.Update(dt)
	m.ExclusiveUpdate()

	pc := m.Penetration(0)
	for i := 0; i < 10; i++ {
		pc.SolveIteration()
	}
	if pc.TotalImpulse() != 0 {
		t.Errorf("Expected zero impulse on separating contact, got %v", fp.ToFloat(pc.TotalImpulse()))
	}
	if box.LinearVelocity.Y < fp.FromInt(5) {
		t.Error("Expected separating velocity untouched")
	}
}

// Two non-dynamic bodies produce a degenerate effective mass; the
// constraint must contribute zero impulse instead of corrupting state
func TestPenetrationDegenerateContributesZero(t *testing.T) {
	a := core.NewKinematicBody()
	b := core.NewKinematicBody()
	m := NewContactManifoldConstraint(a, b, core.PairID(1, 2))

	if err := m.AddContact(testContact(1, 0.5)); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	dt := fp.Div(fp.One, fp.FromInt(60))
	m.Update(dt)
	m.ExclusiveUpdate()

	applied := m.Penetration(0).SolveIteration()
	if applied != 0 {
		t.Errorf("Expected zero applied impulse for degenerate constraint, got %v", fp.ToFloat(applied))
	}
	if !fp.V3IsZero(a.LinearVelocity) || !fp.V3IsZero(b.LinearVelocity) {
		t.Error("Expected kinematic bodies unmoved")
	}
}

func TestPenetrationBiasRespectsSlopAndCap(t *testing.T) {
	ground, box := testPair()
	m := NewContactManifoldConstraint(ground, box, core.PairID(1, 2))

	// Within slop: no positional correction
	if err := m.AddContact(testContact(1, 0.001)); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	dt := fp.Div(fp.One, fp.FromInt(60))
	m.Update(dt)
	if m.Penetration(0).bias != 0 {
		t.Errorf("Expected zero bias within slop, got %v", fp.ToFloat(m.Penetration(0).bias))
	}

	// Deep overlap: bias capped
	if err := m.RefreshContact(testContact(1, 100)); err != nil {
		t.Fatalf("RefreshContact failed: %v", err)
	}
	m.Update(dt)
	if m.Penetration(0).bias > MaxPenetrationCorrectionSpeed {
		t.Errorf("Expected bias capped at %v, got %v",
			fp.ToFloat(MaxPenetrationCorrectionSpeed), fp.ToFloat(m.Penetration(0).bias))
	}
}

func TestSlidingFrictionOpposesTangentMotion(t *testing.T) {
	ground, box := testPair()
	box.LinearVelocity = fp.V3(fp.FromInt(2), -fp.One, 0)
	m := NewContactManifoldConstraint(ground, box, core.PairID(1, 2))

	if err := m.AddContact(testContact(1, 0.05)); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	dt := fp.Div(fp.One, fp.FromInt(60))
	m.Update(dt)
	m.ExclusiveUpdate()

	before := box.LinearVelocity.X
	for i := 0; i < 10; i++ {
		m.SolveIteration()
	}
	after := box.LinearVelocity.X
	if after >= before {
		t.Errorf("Expected friction to reduce tangent speed: %v -> %v",
			fp.ToFloat(before), fp.ToFloat(after))
	}
	if after < 0 {
		t.Errorf("Expected friction to not reverse motion, got %v", fp.ToFloat(after))
	}
}

func TestTwistFrictionResistsSpinAboutNormal(t *testing.T) {
	ground, box := testPair()
	box.LinearVelocity = fp.V3(0, -fp.One, 0)
	box.AngularVelocity = fp.V3(0, fp.FromInt(3), 0)
	m := NewContactManifoldConstraint(ground, box, core.PairID(1, 2))

	// Two offset contacts give the twist constraint a lever arm
	c1 := testContact(1, 0.05)
	c1.Position = fp.V3(fp.FromFloat(0.5), 0, 0)
	c2 := testContact(2, 0.05)
	c2.Position = fp.V3(fp.FromFloat(-0.5), 0, 0)
	if err := m.AddContact(c1); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	if err := m.AddContact(c2); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}

	dt := fp.Div(fp.One, fp.FromInt(60))
	m.Update(dt)
	m.ExclusiveUpdate()

	before := box.AngularVelocity.Y
	for i := 0; i < 10; i++ {
		m.SolveIteration()
	}
	after := box.AngularVelocity.Y
	if after >= before {
		t.Errorf("Expected twist friction to reduce spin: %v -> %v",
			fp.ToFloat(before), fp.ToFloat(after))
	}
	if after < 0 {
		t.Errorf("Expected twist friction to not reverse spin, got %v", fp.ToFloat(after))
	}
}
