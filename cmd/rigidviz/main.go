// rigidviz drops a handful of balls onto a ground plane and renders the
// solve in the terminal. It plays the host-collaborator roles the core
// leaves external: a toy sphere/plane narrow phase, gravity and position
// integration, and rendering.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"

	"github.com/fixstep/rigid/constraint"
	"github.com/fixstep/rigid/core"
	"github.com/fixstep/rigid/event"
	"github.com/fixstep/rigid/fp"
	"github.com/fixstep/rigid/space"
)

var gravity = fp.V3(0, fp.FromFloat(-9.81), 0)

type ball struct {
	space.ObjectBase
	id       uint64
	body     *core.Body
	radius   fp.Scalar
	manifold *constraint.ContactManifoldConstraint
	touching bool
}

var nextBallID uint64

func newBall(x, y float64, radius float64) *ball {
	mass := fp.Scalar(fp.One)
	r := fp.FromFloat(radius)
	// Solid sphere inertia: 2/5 m r^2
	inertia := fp.Mul(fp.Mul(fp.FromFloat(0.4), mass), fp.Mul(r, r))
	nextBallID++
	b := &ball{
		id:     nextBallID,
		body:   core.NewDynamicBody(mass, fp.V3(inertia, inertia, inertia)),
		radius: r,
	}
	b.body.Position = fp.V3(fp.FromFloat(x), fp.FromFloat(y), 0)
	return b
}

// updateContact is the demo's narrow phase: one contact per ball while it
// overlaps the ground plane at y=0
func (b *ball) updateContact(s *space.Space, ground *core.Body, contactEvents *event.Dispatcher) {
	depth := b.radius - b.body.Position.Y
	overlapping := depth > 0

	contact := core.Contact{
		Position:         fp.V3(b.body.Position.X, 0, b.body.Position.Z),
		Normal:           fp.V3(0, fp.One, 0),
		PenetrationDepth: depth,
		ID:               1,
	}

	switch {
	case overlapping && !b.touching:
		m := constraint.NewContactManifoldConstraint(ground, b.body, core.PairID(0, b.id))
		m.Events = contactEvents
		if err := m.AddContact(contact); err != nil {
			return
		}
		b.manifold = m
		s.AddSolverGroup(m)
		b.touching = true
	case overlapping && b.touching:
		_ = b.manifold.RefreshContact(contact)
	case !overlapping && b.touching:
		s.RemoveSolverGroup(b.manifold)
		b.manifold.CleanUp()
		b.manifold = nil
		b.touching = false
	}
}

func (b *ball) integrate(dt fp.Scalar) {
	b.body.LinearVelocity = fp.V3Add(b.body.LinearVelocity, fp.V3Scale(gravity, dt))
	b.body.Position = fp.V3Add(b.body.Position, fp.V3Scale(b.body.LinearVelocity, dt))
}

func main() {
	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("failed to init screen: %v", err)
	}
	defer screen.Fini()

	sim := space.NewSpace()
	ground := core.NewKinematicBody()

	contactEvents := event.NewDispatcher()
	touches := 0
	contactEvents.AddHandler(func(ev event.ContactEvent) {
		if ev.Kind == event.ContactCreated {
			touches++
		}
	})
	sim.RegisterDispatcher(contactEvents)

	balls := []*ball{
		newBall(-3, 6, 0.5),
		newBall(0, 9, 0.7),
		newBall(2.5, 12, 0.4),
		newBall(-1, 15, 0.6),
	}
	for _, b := range balls {
		if err := sim.Add(b); err != nil {
			log.Fatalf("failed to add ball: %v", err)
		}
	}

	eventCh := make(chan tcell.Event, 16)
	go func() {
		for {
			eventCh <- screen.PollEvent()
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev := <-eventCh:
			if key, ok := ev.(*tcell.EventKey); ok {
				if key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC || key.Rune() == 'q' {
					return
				}
			}
		case <-ticker.C:
			for _, b := range balls {
				b.updateContact(sim, ground, contactEvents)
			}
			sim.Update()
			for _, b := range balls {
				b.integrate(sim.TimeStep)
			}
			render(screen, sim, balls, touches)
		}
	}
}

// render projects the scene side-on: x across the screen, y up
func render(screen tcell.Screen, sim *space.Space, balls []*ball, touches int) {
	screen.Clear()
	width, height := screen.Size()
	if width < 10 || height < 10 {
		screen.Show()
		return
	}

	groundRow := height - 3
	cellsPerUnit := float32(4)
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for x := 0; x < width; x++ {
		screen.SetContent(x, groundRow, '=', nil, style)
	}

	ballStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for _, b := range balls {
		p := fp.ToMgl32(b.body.Position)
		col := width/2 + int(math32.Round(p.X()*cellsPerUnit))
		row := groundRow - int(math32.Round(p.Y()*cellsPerUnit))
		if col < 0 || col >= width || row < 0 || row >= height {
			continue
		}
		screen.SetContent(col, row, 'O', nil, ballStyle)
	}

	status := fmt.Sprintf("step %d  contacts created %d  groups %d  q to quit",
		sim.StepCount(), touches, sim.SolverGroupCount())
	textStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, r := range status {
		if i >= width {
			break
		}
		screen.SetContent(i, height-1, r, nil, textStyle)
	}
	screen.Show()
}

func init() {
	// tcell writes straight to the tty; route stray log output to stderr
	log.SetOutput(os.Stderr)
}
