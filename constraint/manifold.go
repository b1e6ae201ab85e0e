package constraint

import (
	"errors"
	"fmt"

	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/event"
	"github.com/fixstep/rigid/fp"
)

// MaxContactsPerManifold bounds a convex-convex manifold
const MaxContactsPerManifold = 4

var (
	// ErrManifoldFull reports a 5th contact that lost the replacement
	// tie-break against the existing four
	ErrManifoldFull = errors.New("manifold already holds the maximum contacts")
	// ErrDuplicateContact reports an AddContact whose ID is already present
	ErrDuplicateContact = errors.New("contact already present in manifold")
	// ErrUnknownContact reports a Remove/Refresh for an ID not present
	ErrUnknownContact = errors.New("contact not present in manifold")
)

// solverActivityFloor is added to the manifold's aggregate impulse report
// so an owning solver group never deactivates the manifold from this
// aggregate alone; convergence is decided per sub-constraint through the
// solver settings
const solverActivityFloor = fp.Scalar(1)

// penetrationStack is the manifold-local free list of penetration
// constraints. The bound is known, so slots are a fixed array and the
// solve path never touches the heap. Stack order is not significant;
// the manifold's ordered contact list carries the reproducible iteration
// order
type penetrationStack struct {
	items [MaxContactsPerManifold]*PenetrationConstraint
	count int
}

func (s *penetrationStack) take() *PenetrationConstraint {
	if s.count > 0 {
		s.count--
		pc := s.items[s.count]
		s.items[s.count] = nil
		return pc
	}
	return &PenetrationConstraint{}
}

func (s *penetrationStack) giveBack(pc *PenetrationConstraint) {
	if s.count < len(s.items) {
		s.items[s.count] = pc
		s.count++
	}
}

// ContactManifoldConstraint is the solver group for one colliding body
// pair: up to four penetration constraints in contact-addition order plus
// one sliding and one twist friction constraint shared by the manifold.
// All passes run the same fixed order (penetrations in list order, then
// sliding, then twist) so results replay bit-identically
type ContactManifoldConstraint struct {
	bodyA, bodyB *core.Body
	pairID       uint64

	// Settings governs this group's iteration/early-out policy; owned,
	// never shared as a write target across concurrently solved groups
	Settings *SolverSettings
	// Events, when set, receives deferred contact lifecycle events
	Events *event.Dispatcher

	penetrations   []*PenetrationConstraint
	stack          penetrationStack
	sliding        SlidingFrictionConstraint
	twist          TwistFrictionConstraint
	frictionActive bool
}

// NewContactManifoldConstraint creates an empty manifold for a body pair
func NewContactManifoldConstraint(a, b *core.Body, pairID uint64) *ContactManifoldConstraint {
	return &ContactManifoldConstraint{
		bodyA:        a,
		bodyB:        b,
		pairID:       pairID,
		Settings:     NewSolverSettings(),
		penetrations: make([]*PenetrationConstraint, 0, MaxContactsPerManifold),
	}
}

// PairID returns the manifold's pair identity
func (m *ContactManifoldConstraint) PairID() uint64 {
	return m.pairID
}

// BodyA returns the first body of the pair
func (m *ContactManifoldConstraint) BodyA() *core.Body { return m.bodyA }

// BodyB returns the second body of the pair
func (m *ContactManifoldConstraint) BodyB() *core.Body { return m.bodyB }

// ContactCount returns the number of active contacts
func (m *ContactManifoldConstraint) ContactCount() int {
	return len(m.penetrations)
}

// Contacts returns the active contacts in addition order
func (m *ContactManifoldConstraint) Contacts() []core.Contact {
	out := make([]core.Contact, len(m.penetrations))
	for i, pc := range m.penetrations {
		out[i] = pc.contact
	}
	return out
}

// Penetration returns the i-th penetration constraint in list order for
// host telemetry
func (m *ContactManifoldConstraint) Penetration(i int) *PenetrationConstraint {
	return m.penetrations[i]
}

// Sliding returns the shared sliding friction constraint
func (m *ContactManifoldConstraint) Sliding() *SlidingFrictionConstraint {
	return &m.sliding
}

// Twist returns the shared twist friction constraint
func (m *ContactManifoldConstraint) Twist() *TwistFrictionConstraint {
	return &m.twist
}

// FrictionActive reports whether the shared friction constraints are
// configured; true iff the manifold holds at least one contact
func (m *ContactManifoldConstraint) FrictionActive() bool {
	return m.frictionActive
}

// AddContact validates the contact and appends a penetration constraint
// for it, drawing the constraint from the manifold-local stack. The first
// contact activates the shared friction constraints. When the manifold is
// full, the shallowest existing contact (first in list order on ties) is
// replaced iff the candidate penetrates deeper; otherwise the add fails
// with ErrManifoldFull. Validation completes before any state mutation
func (m *ContactManifoldConstraint) AddContact(c core.Contact) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if m.indexOf(c.ID) >= 0 {
		return fmt.Errorf("%w: id %d", ErrDuplicateContact, c.ID)
	}
	if len(m.penetrations) == MaxContactsPerManifold {
		shallowest := 0
		for i := 1; i < len(m.penetrations); i++ {
			if m.penetrations[i].contact.PenetrationDepth <
				m.penetrations[shallowest].contact.PenetrationDepth {
				shallowest = i
			}
		}
		if c.PenetrationDepth <= m.penetrations[shallowest].contact.PenetrationDepth {
			return fmt.Errorf("%w: id %d", ErrManifoldFull, c.ID)
		}
		m.removeAt(shallowest)
	}

	pc := m.stack.take()
	pc.configure(m.bodyA, m.bodyB, c)
	m.penetrations = append(m.penetrations, pc)
	if m.Events != nil {
		m.Events.EnqueueCreated(m.pairID, c)
	}

	if !m.frictionActive {
		m.sliding.setup(m)
		m.twist.setup(m)
		m.frictionActive = true
	}
	return nil
}

// RemoveContact locates the matching penetration constraint by contact
// identity, cleans it up, and returns it to the local stack. Removing the
// last contact deactivates the shared friction constraints
func (m *ContactManifoldConstraint) RemoveContact(c core.Contact) error {
	idx := m.indexOf(c.ID)
	if idx < 0 {
		return fmt.Errorf("%w: id %d", ErrUnknownContact, c.ID)
	}
	m.removeAt(idx)
	return nil
}

// RefreshContact replaces the stored geometry for a persistent contact,
// keeping its warm-start state. Used by the narrow phase when a contact
// survives into a new step with updated position and depth
func (m *ContactManifoldConstraint) RefreshContact(c core.Contact) error {
	if err := c.Validate(); err != nil {
		return err
	}
	idx := m.indexOf(c.ID)
	if idx < 0 {
		return fmt.Errorf("%w: id %d", ErrUnknownContact, c.ID)
	}
	m.penetrations[idx].refresh(c)
	return nil
}

func (m *ContactManifoldConstraint) indexOf(id uint64) int {
	for i, pc := range m.penetrations {
		if pc.contact.ID == id {
			return i
		}
	}
	return -1
}

func (m *ContactManifoldConstraint) removeAt(idx int) {
	pc := m.penetrations[idx]
	removed := pc.contact
	pc.CleanUp()
	m.stack.giveBack(pc)
	m.penetrations = append(m.penetrations[:idx], m.penetrations[idx+1:]...)

	if m.Events != nil {
		m.Events.EnqueueRemoved(m.pairID, removed)
	}
	if len(m.penetrations) == 0 && m.frictionActive {
		m.sliding.CleanUp()
		m.twist.CleanUp()
		m.frictionActive = false
	}
}

// Update runs the per-step configuration pass over every active
// sub-constraint: penetrations in list order, then sliding, then twist.
// The order is part of the reproducibility contract
func (m *ContactManifoldConstraint) Update(dt fp.Scalar) {
	for _, pc := range m.penetrations {
		pc.Update(dt)
		if m.Events != nil {
			m.Events.EnqueueUpdated(m.pairID, pc.contact)
		}
	}
	if m.frictionActive {
		m.sliding.Update(dt)
		m.twist.Update(dt)
	}
}

// ExclusiveUpdate runs the warm-start pass in the same fixed order
func (m *ContactManifoldConstraint) ExclusiveUpdate() {
	for _, pc := range m.penetrations {
		pc.ExclusiveUpdate()
	}
	if m.frictionActive {
		m.sliding.ExclusiveUpdate()
		m.twist.ExclusiveUpdate()
	}
}

// SolveIteration runs one Gauss-Seidel pass over all active
// sub-constraints in the fixed order and reports a rough aggregate of the
// applied impulse magnitudes, floored above zero so an owning group never
// deactivates the manifold from this value. Convergence accounting is
// recorded on the manifold's solver settings: an iteration where every
// active sub-constraint applied at or below the minimum impulse extends
// the early-out streak
func (m *ContactManifoldConstraint) SolveIteration() fp.Scalar {
	total := fp.Scalar(0)
	lowImpulse := true

	for _, pc := range m.penetrations {
		applied := pc.SolveIteration()
		total += applied
		if applied > m.Settings.MinimumImpulse {
			lowImpulse = false
		}
	}
	if m.frictionActive {
		applied := m.sliding.SolveIteration()
		total += applied
		if applied > m.Settings.MinimumImpulse {
			lowImpulse = false
		}
		applied = m.twist.SolveIteration()
		total += applied
		if applied > m.Settings.MinimumImpulse {
			lowImpulse = false
		}
	}

	m.Settings.RecordIteration(lowImpulse)
	return total + solverActivityFloor
}

// SolverSettings returns the group's iteration policy
func (m *ContactManifoldConstraint) SolverSettings() *SolverSettings {
	return m.Settings
}

// CleanUp tears the manifold down: every remaining penetration constraint
// is cleaned up and returned to the local stack and the friction
// constraints are deactivated. Safe to call on an already-empty manifold
func (m *ContactManifoldConstraint) CleanUp() {
	for _, pc := range m.penetrations {
		pc.CleanUp()
		m.stack.giveBack(pc)
	}
	m.penetrations = m.penetrations[:0]
	if m.frictionActive {
		m.sliding.CleanUp()
		m.twist.CleanUp()
		m.frictionActive = false
	}
}

// contactCenter returns the mean contact position; the shared friction
// constraints act there
func (m *ContactManifoldConstraint) contactCenter() fp.Vec3 {
	if len(m.penetrations) == 0 {
		return fp.Vec3{}
	}
	sum := fp.Vec3{}
	for _, pc := range m.penetrations {
		sum = fp.V3Add(sum, pc.contact.Position)
	}
	return fp.V3Scale(sum, fp.Div(fp.One, fp.FromInt(len(m.penetrations))))
}

// contactNormal returns the manifold's shared normal: the first contact's
// in list order, which is reproducible by construction
func (m *ContactManifoldConstraint) contactNormal() fp.Vec3 {
	if len(m.penetrations) == 0 {
		return fp.Vec3{}
	}
	return m.penetrations[0].contact.Normal
}

// contactLeverArm returns the mean distance from the contact center,
// scaling the twist friction limit
func (m *ContactManifoldConstraint) contactLeverArm() fp.Scalar {
	n := len(m.penetrations)
	if n == 0 {
		return 0
	}
	center := m.contactCenter()
	sum := fp.Scalar(0)
	for _, pc := range m.penetrations {
		sum += fp.V3Distance(pc.contact.Position, center)
	}
	return fp.Div(sum, fp.FromInt(n))
}

// totalNormalImpulse sums the accumulated normal impulses; the Coulomb
// limits of both friction constraints derive from it
func (m *ContactManifoldConstraint) totalNormalImpulse() fp.Scalar {
	sum := fp.Scalar(0)
	for _, pc := range m.penetrations {
		sum += pc.accumulated
	}
	return sum
}
