// Package space owns the fixed-timestep simulation loop: object
// admission and eviction, the per-step solver passes over registered
// constraint groups, and the deferred event flush that ends a step.
package space

import (
	"errors"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"

	"github.com/fixstep/rigid/constraint"
	"github.com/fixstep/rigid/event"
	"github.com/fixstep/rigid/fp"
)

var (
	// ErrAlreadyInSpace reports adding an object that belongs to a Space
	ErrAlreadyInSpace = errors.New("object already belongs to a space")
	// ErrNotInSpace reports removing an object this Space does not own
	ErrNotInSpace = errors.New("object does not belong to this space")
)

// DefaultIterationBudget is the global per-step solve iteration cap
const DefaultIterationBudget = 10

// SolverGroup is the contract a constraint bundle exposes to the Space's
// solve loop. ContactManifoldConstraint implements it; the narrow phase
// (external) registers and unregisters groups as pairs collide and
// separate
type SolverGroup interface {
	Update(dt fp.Scalar)
	ExclusiveUpdate()
	SolveIteration() fp.Scalar
	SolverSettings() *constraint.SolverSettings
}

// Space owns the live set of simulated objects and drives the solver.
// Each object belongs to at most one Space at a time. The per-step
// determinism guarantee holds when callers drive the Space one fixed
// step at a time; accumulating wall-clock time into steps is a host
// concern
type Space struct {
	// ID identifies this Space instance in admission errors and telemetry
	ID uuid.UUID

	// TimeStep is the fixed step duration; defaults to 1/60
	TimeStep fp.Scalar
	// IterationBudget caps solve iterations per group per step; zero
	// means unbounded
	IterationBudget int

	objects     *orderedmap.OrderedMap[Object, struct{}]
	groups      []SolverGroup
	dispatchers []*event.Dispatcher

	accumulated fp.Scalar
	stepCount   uint64
}

// NewSpace creates an empty Space with default stepping policy
func NewSpace() *Space {
	return &Space{
		ID:              uuid.New(),
		TimeStep:        fp.Div(fp.One, fp.FromInt(60)),
		IterationBudget: DefaultIterationBudget,
		objects:         orderedmap.NewOrderedMap[Object, struct{}](),
	}
}

// Add admits an object; it fails if the object already belongs to any
// Space. The admission hook runs after registration
func (s *Space) Add(o Object) error {
	if owner := o.SpaceOwner(); owner != nil {
		return fmt.Errorf("%w: object owned by space %s, add to %s rejected",
			ErrAlreadyInSpace, owner.ID, s.ID)
	}
	o.setOwner(s)
	s.objects.Set(o, struct{}{})
	o.OnAdded(s)
	return nil
}

// Remove evicts an object; it fails if this Space does not own it. The
// eviction hook runs after deregistration
func (s *Space) Remove(o Object) error {
	if o.SpaceOwner() != s {
		return fmt.Errorf("%w: space %s", ErrNotInSpace, s.ID)
	}
	s.objects.Delete(o)
	o.setOwner(nil)
	o.OnRemoved(s)
	return nil
}

// ObjectCount returns the number of admitted objects
func (s *Space) ObjectCount() int {
	return s.objects.Len()
}

// ForEachObject visits objects in admission order
func (s *Space) ForEachObject(visit func(Object) bool) {
	for el := s.objects.Front(); el != nil; el = el.Next() {
		if !visit(el.Key) {
			return
		}
	}
}

// AddSolverGroup registers a constraint group for solving. Groups solve
// in registration order, which the caller must keep reproducible
func (s *Space) AddSolverGroup(g SolverGroup) {
	s.groups = append(s.groups, g)
}

// RemoveSolverGroup unregisters a constraint group by identity
func (s *Space) RemoveSolverGroup(g SolverGroup) {
	for i, existing := range s.groups {
		if existing == g {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return
		}
	}
}

// SolverGroupCount returns the number of registered groups
func (s *Space) SolverGroupCount() int {
	return len(s.groups)
}

// RegisterDispatcher adds an event dispatcher to the end-of-step flush.
// Composite dispatchers flush their whole constituent tree
func (s *Space) RegisterDispatcher(d *event.Dispatcher) {
	s.dispatchers = append(s.dispatchers, d)
}

// StepCount returns the number of completed fixed steps
func (s *Space) StepCount() uint64 {
	return s.stepCount
}

// Update advances the simulation by exactly one fixed step
func (s *Space) Update() {
	s.step(s.TimeStep)
}

// UpdateElapsed accumulates an elapsed duration and runs however many
// fixed steps fit, returning the count. The remainder carries over
func (s *Space) UpdateElapsed(elapsed fp.Scalar) int {
	s.accumulated += elapsed
	steps := 0
	for s.accumulated >= s.TimeStep {
		s.step(s.TimeStep)
		s.accumulated -= s.TimeStep
		steps++
	}
	return steps
}

// step runs one fixed step's solver phases in order: configuration pass,
// warm-start pass, per-group iteration under the group's settings capped
// by the Space budget, then the deferred event flush
func (s *Space) step(dt fp.Scalar) {
	for _, g := range s.groups {
		g.Update(dt)
	}
	for _, g := range s.groups {
		g.ExclusiveUpdate()
	}

	for _, g := range s.groups {
		settings := g.SolverSettings()
		maxIterations := settings.EffectiveMaxIterations(s.IterationBudget)
		settings.BeginStep()
		for i := 0; maxIterations == 0 || i < maxIterations; i++ {
			g.SolveIteration()
			if settings.EarlyOutAllowed() {
				break
			}
		}
	}

	for _, d := range s.dispatchers {
		if d.IsComposite() {
			// composite flush failures cannot occur for dispatchers
			// built with a child source
			_ = d.DispatchEvents()
			continue
		}
		d.Flush()
	}

	s.stepCount++
}
