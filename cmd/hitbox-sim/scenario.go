package main

import (
	"fmt"
	"math/rand"

	"github.com/zeusync/hitbox/internal/core/collision"
	"github.com/zeusync/hitbox/internal/core/collision/capability"
	"github.com/zeusync/hitbox/internal/core/collision/shape"
	"github.com/zeusync/hitbox/internal/core/events/bus"
)

// entity is a minimal level element.
type entity struct {
	name   string
	active bool
	caps   capability.Set
}

func (e *entity) Active() bool                 { return e.active }
func (e *entity) Capabilities() capability.Set { return e.caps }

type arena struct {
	width, height int
	solid, pickup capability.ID
	collected     int
	bounces       int
}

// buildArena walls in a width x height box and scatters bodies and coins.
func buildArena(w *collision.World, width, height, bodies, coins int, rng *rand.Rand) (*arena, error) {
	solid, err := w.Capability("solid")
	if err != nil {
		return nil, err
	}
	pickup, err := w.Capability("pickup")
	if err != nil {
		return nil, err
	}
	a := &arena{width: width, height: height, solid: solid, pickup: pickup}
	w.Events().Subscribe(bus.KindContact, func(e bus.Event) error {
		if c, ok := e.Data.(collision.Contact); ok && c.Capability == solid {
			a.bounces++
		}
		return nil
	})

	walls := []shape.Rect{
		shape.RectWH(0, 0, width, 8),
		shape.RectWH(0, height-8, width, 8),
		shape.RectWH(0, 0, 8, height),
		shape.RectWH(width-8, 0, 8, height),
	}
	for i, r := range walls {
		owner := &entity{name: fmt.Sprintf("wall-%d", i), active: true, caps: capability.Of(solid)}
		if _, err := w.NewCollider(owner, r.MinX, r.MinY, shape.NewRectangle(0, 0, r.Width(), r.Height())); err != nil {
			return nil, err
		}
	}

	for i := 0; i < coins; i++ {
		owner := &entity{name: fmt.Sprintf("coin-%d", i), active: true, caps: capability.Of(pickup)}
		x, y := 16+rng.Intn(width-40), 16+rng.Intn(height-40)
		if _, err := w.NewCollider(owner, x, y, shape.NewCircle(0, 0, 3)); err != nil {
			return nil, err
		}
	}

	for i := 0; i < bodies; i++ {
		owner := &entity{name: fmt.Sprintf("body-%d", i), active: true, caps: capability.Of(solid)}
		x, y := 16+rng.Intn(width-48), 16+rng.Intn(height-48)
		var s shape.Shape = shape.NewRectangle(0, 0, 8, 8)
		if i%3 == 1 {
			s = shape.NewCircle(4, 4, 4)
		} else if i%3 == 2 {
			s = shape.NewTriangle(4, 4, shape.Point{X: 0, Y: -4}, shape.Point{X: 4, Y: 4}, shape.Point{X: -4, Y: 4})
		}
		c, err := w.NewCollider(owner, x, y, s)
		if err != nil {
			return nil, err
		}
		c.SetVelocity(rng.Float64()*6-3, rng.Float64()*6-3)
		c.Handle(solid, bounce)
		c.Handle(pickup, a.collect)
	}
	return a, nil
}

// bounce stops the blocked axis and reverses its velocity for the next tick.
func bounce(self, _ *collision.Collider) error {
	vx, vy := self.Velocity()
	switch self.Direction() {
	case collision.DirectionLeft, collision.DirectionRight:
		self.SetVelocity(-vx, vy)
		return self.StopX()
	case collision.DirectionUp, collision.DirectionDown:
		self.SetVelocity(vx, -vy)
		return self.StopY()
	}
	// overlapping at rest: nothing to undo
	return nil
}

func (a *arena) collect(_, coin *collision.Collider) error {
	a.collected++
	coin.Dispose()
	return nil
}
