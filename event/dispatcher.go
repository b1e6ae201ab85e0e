// Package event defers contact lifecycle notifications so external
// listeners never run mid-solve: events are queued while a step executes
// and flushed once at the step's defined flush point.
package event

import (
	"errors"
	"sync"

	"github.com/fixstep/rigid/core"
)

// ErrNotComposite reports a DispatchEvents call on a dispatcher that was
// not built over a composite child source
var ErrNotComposite = errors.New("dispatcher owner has no child collection")

// Kind classifies a contact lifecycle event
type Kind int

const (
	ContactCreated Kind = iota
	ContactUpdated
	ContactRemoved
)

// ContactEvent is one queued lifecycle notification
type ContactEvent struct {
	Kind    Kind
	PairID  uint64
	Contact core.Contact
}

// Handler consumes flushed events in queue order
type Handler func(ContactEvent)

// ChildSource is the capability a composite body exposes so its
// constituents' dispatchers can be reached. Absence of the capability is
// the normal non-composite case
type ChildSource interface {
	ConstituentDispatchers() []*Dispatcher
}

// Dispatcher collects contact events during a step and flushes them to
// handlers afterward. Enqueue is safe from concurrent solver workers;
// flushing is single-consumer
type Dispatcher struct {
	mu       sync.Mutex
	queued   []ContactEvent
	handlers []Handler
	children ChildSource
}

// NewDispatcher creates a leaf dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// NewCompositeDispatcher creates a dispatcher for a composite body whose
// constituents' events must be flushed recursively
func NewCompositeDispatcher(children ChildSource) *Dispatcher {
	return &Dispatcher{children: children}
}

// AddHandler registers a listener invoked at flush time
func (d *Dispatcher) AddHandler(h Handler) {
	d.mu.Lock()
	d.handlers = append(d.handlers, h)
	d.mu.Unlock()
}

// IsComposite reports whether this dispatcher carries the child capability
func (d *Dispatcher) IsComposite() bool {
	return d.children != nil
}

func (d *Dispatcher) enqueue(kind Kind, pairID uint64, c core.Contact) {
	d.mu.Lock()
	d.queued = append(d.queued, ContactEvent{Kind: kind, PairID: pairID, Contact: c})
	d.mu.Unlock()
}

func (d *Dispatcher) EnqueueCreated(pairID uint64, c core.Contact) {
	d.enqueue(ContactCreated, pairID, c)
}

func (d *Dispatcher) EnqueueUpdated(pairID uint64, c core.Contact) {
	d.enqueue(ContactUpdated, pairID, c)
}

func (d *Dispatcher) EnqueueRemoved(pairID uint64, c core.Contact) {
	d.enqueue(ContactRemoved, pairID, c)
}

// Pending returns the number of queued events
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queued)
}

// Flush drains this dispatcher's own queue, invoking handlers in enqueue
// order. Handlers run outside the lock so they may enqueue fresh events
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	batch := d.queued
	d.queued = nil
	handlers := d.handlers
	d.mu.Unlock()

	for _, ev := range batch {
		for _, h := range handlers {
			h(ev)
		}
	}
}

// DispatchEvents flushes a composite body's event tree: every
// constituent's dispatcher first (recursing through nested composites),
// then this dispatcher's own queue. Only a dispatcher built with a child
// source may be driven through this entry point; a leaf dispatcher fails
// with ErrNotComposite
func (d *Dispatcher) DispatchEvents() error {
	if d.children == nil {
		return ErrNotComposite
	}
	for _, child := range d.children.ConstituentDispatchers() {
		if child == nil {
			continue
		}
		if child.IsComposite() {
			if err := child.DispatchEvents(); err != nil {
				return err
			}
			continue
		}
		child.Flush()
	}
	d.Flush()
	return nil
}
