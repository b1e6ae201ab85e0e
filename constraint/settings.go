// Package constraint implements the sequential-impulse contact solver:
// per-contact penetration constraints, manifold-wide sliding and twist
// friction, and the manifold solver group that drives them in a fixed,
// reproducible order.
package constraint

import "github.com/fixstep/rigid/fp"

// SolverSettings is the per-solver-group iteration and early-out policy.
// One instance is owned by each manifold (never shared as a write target
// across concurrently solved groups)
type SolverSettings struct {
	// MaxIterations is the hard ceiling for solve iterations on this
	// group; zero means unbounded, leaving only the Space budget
	MaxIterations int
	// MinIterations is the floor below which early-out is disallowed
	MinIterations int
	// MinimumImpulse is the magnitude at or below which an iteration's
	// applied impulses count toward the early-out streak
	MinimumImpulse fp.Scalar

	lowImpulseStreak int
}

// DefaultMinimumImpulse is small enough that early-out only triggers on
// effectively converged groups
var DefaultMinimumImpulse = fp.FromFloat(0.001)

// NewSolverSettings returns the default policy: at least one iteration,
// no group-level ceiling
func NewSolverSettings() *SolverSettings {
	return &SolverSettings{
		MinIterations:  1,
		MinimumImpulse: DefaultMinimumImpulse,
	}
}

// EffectiveMaxIterations combines the group ceiling with the owning
// Space's global budget: min of the two, zero meaning unbounded
func (s *SolverSettings) EffectiveMaxIterations(spaceBudget int) int {
	if s.MaxIterations == 0 {
		return spaceBudget
	}
	if spaceBudget == 0 || s.MaxIterations < spaceBudget {
		return s.MaxIterations
	}
	return spaceBudget
}

// BeginStep resets the early-out streak at the start of a step's solve
func (s *SolverSettings) BeginStep() {
	s.lowImpulseStreak = 0
}

// RecordIteration accounts one completed iteration; lowImpulse reports
// whether every active sub-constraint applied at or below the threshold
func (s *SolverSettings) RecordIteration(lowImpulse bool) {
	if lowImpulse {
		s.lowImpulseStreak++
	} else {
		s.lowImpulseStreak = 0
	}
}

// EarlyOutAllowed reports whether the owning loop may stop iterating this
// group: the low-impulse streak must exceed the iteration floor
func (s *SolverSettings) EarlyOutAllowed() bool {
	return s.lowImpulseStreak > s.MinIterations
}
