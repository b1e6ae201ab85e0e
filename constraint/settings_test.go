package constraint

import (
	"testing"

	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/fp"
)

func TestEffectiveMaxIterations(t *testing.T) {
	cases := []struct {
		groupMax, budget, want int
	}{
		{0, 10, 10},
		{5, 10, 5},
		{20, 10, 10},
		{5, 0, 5},
		{0, 0, 0},
	}
	for _, c := range cases {
		s := &SolverSettings{MaxIterations: c.groupMax}
		if got := s.EffectiveMaxIterations(c.budget); got != c.want {
			t.Errorf("EffectiveMaxIterations(group %d, budget %d) = %d, want %d",
				c.groupMax, c.budget, got, c.want)
		}
	}
}

func TestEarlyOutRequiresMinIterations(t *testing.T) {
	s := NewSolverSettings()
	s.MinIterations = 3
	s.BeginStep()

	// Low-impulse iterations: early-out only once the streak exceeds the floor
	for i := 1; i <= 3; i++ {
		s.RecordIteration(true)
		if s.EarlyOutAllowed() {
			t.Fatalf("Early-out allowed after %d low-impulse iterations, floor is 3", i)
		}
	}
	s.RecordIteration(true)
	if !s.EarlyOutAllowed() {
		t.Error("Expected early-out after streak exceeded the floor")
	}
}

func TestHighImpulseResetsStreak(t *testing.T) {
	s := NewSolverSettings()
	s.BeginStep()
	s.RecordIteration(true)
	s.RecordIteration(true)
	s.RecordIteration(false)
	if s.EarlyOutAllowed() {
		t.Error("Expected streak reset by a high-impulse iteration")
	}
}

// The manifold records convergence on its settings: a resting contact
// stops producing impulses and the early-out streak builds
func TestManifoldConvergenceFeedsEarlyOut(t *testing.T) {
	ground, box := testPair()
	box.LinearVelocity = fp.V3(0, -fp.One, 0)
	m := NewContactManifoldConstraint(ground, box, core.PairID(1, 2))

	if err := m.AddContact(testContact(1, 0.1)); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	dt := fp.Div(fp.One, fp.FromInt(60))
	m.Update(dt)
	m.ExclusiveUpdate()
	m.Settings.BeginStep()

	iterations := 0
	maxIterations := 50
	for i := 0; i < maxIterations; i++ {
		m.SolveIteration()
		iterations++
		if m.Settings.EarlyOutAllowed() {
			break
		}
	}
	if iterations >= maxIterations {
		t.Error("Expected early-out on a converged resting contact")
	}
	if iterations < m.Settings.MinIterations {
		t.Errorf("Early-out after %d iterations, below floor %d", iterations, m.Settings.MinIterations)
	}
}

// SolveIteration must report a non-zero aggregate even when every
// sub-constraint is quiet, so an owning group never deactivates the
// manifold from this value
func TestSolveIterationReturnsNonZeroSentinel(t *testing.T) {
	ground, box := testPair()
	m := NewContactManifoldConstraint(ground, box, core.PairID(1, 2))

	if err := m.AddContact(testContact(1, 0.001)); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	dt := fp.Div(fp.One, fp.FromInt(60))
	m.Update(dt)
	m.ExclusiveUpdate()

	// Converge fully, then confirm the floor
	for i := 0; i < 20; i++ {
		if got := m.SolveIteration(); got <= 0 {
			t.Fatalf("Expected positive aggregate, got %d", got)
		}
	}
}

// Replaying an identical call sequence from identical fixed-point state
// must yield bit-identical velocities
func TestManifoldSolveReplayIsBitIdentical(t *testing.T) {
	run := func() (fp.Vec3, fp.Vec3) {
		ground, box := testPair()
		box.LinearVelocity = fp.V3(fp.FromFloat(1.5), -fp.FromFloat(2.5), fp.FromFloat(0.25))
		box.AngularVelocity = fp.V3(0, fp.FromFloat(1.25), fp.FromFloat(-0.5))
		m := NewContactManifoldConstraint(ground, box, core.PairID(1, 2))

		c1 := testContact(1, 0.1)
		c1.Position = fp.V3(fp.FromFloat(0.3), 0, fp.FromFloat(0.1))
		c2 := testContact(2, 0.07)
		c2.Position = fp.V3(fp.FromFloat(-0.3), 0, fp.FromFloat(-0.2))
		if err := m.AddContact(c1); err != nil {
			t.Fatalf("AddContact failed: %v", err)
		}
		if err := m.AddContact(c2); err != nil {
			t.Fatalf("AddContact failed: %v", err)
		}

		dt := fp.Div(fp.One, fp.FromInt(60))
		for step := 0; step < 5; step++ {
			m.Update(dt)
			m.ExclusiveUpdate()
			for i := 0; i < 10; i++ {
				m.SolveIteration()
			}
		}
		return box.LinearVelocity, box.AngularVelocity
	}

	firstLinear, firstAngular := run()
	for i := 0; i < 3; i++ {
		linear, angular := run()
		if linear != firstLinear || angular != firstAngular {
			t.Fatalf("Replay diverged: run %d linear %+v angular %+v, want %+v %+v",
				i, linear, angular, firstLinear, firstAngular)
		}
	}
}
