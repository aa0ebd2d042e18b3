package collision

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/hitbox/internal/core/collision/capability"
	"github.com/zeusync/hitbox/internal/core/collision/shape"
	"github.com/zeusync/hitbox/internal/core/collision/spatial"
	"github.com/zeusync/hitbox/internal/core/events/bus"
)

// Owner is the level element a collider belongs to.
type Owner interface {
	// Active reports whether the owner takes part in queries at all.
	Active() bool
	// Capabilities lists what the owner can be found as.
	Capabilities() capability.Set
}

// Direction is the cardinal direction of the substep being attempted.
type Direction uint8

const (
	DirectionNone Direction = iota
	DirectionLeft
	DirectionRight
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

func horizontal(sign int) Direction {
	switch {
	case sign < 0:
		return DirectionLeft
	case sign > 0:
		return DirectionRight
	}
	return DirectionNone
}

func vertical(sign int) Direction {
	switch {
	case sign < 0:
		return DirectionUp
	case sign > 0:
		return DirectionDown
	}
	return DirectionNone
}

// Handler responds to contact with other for one capability. It may call
// StopX, StopY or Stop on self.
type Handler func(self, other *Collider) error

// SubstepFunc runs before each unit step with the prospective cell (x, y).
// Returning an error aborts the move.
type SubstepFunc func(c *Collider, x, y int) error

// Collider owns a set of shapes at a shared anchor and moves them one pixel
// at a time. Not safe for concurrent use.
type Collider struct {
	id     uuid.UUID
	world  *World
	owner  Owner
	shapes []shape.Shape

	x, y       int
	remX, remY float64
	velX, velY float64

	direction Direction
	continueX bool
	continueY bool
	moving    bool
	inSubstep bool
	stageX    int
	stageY    int
	disposed  bool

	handlers     map[capability.ID]Handler
	handlerOrder []capability.ID
	onSubstep    SubstepFunc
	afterSubstep func(c *Collider)
}

var _ spatial.Entry = (*Collider)(nil)

func (c *Collider) ID() uuid.UUID { return c.id }
func (c *Collider) Owner() Owner  { return c.owner }
func (c *Collider) World() *World { return c.world }

// Active is false once disposed or while the owner is inactive.
func (c *Collider) Active() bool {
	return !c.disposed && c.owner.Active()
}

func (c *Collider) Capabilities() capability.Set { return c.owner.Capabilities() }

// Shapes returns the owned shapes. The slice must not be modified.
func (c *Collider) Shapes() []shape.Shape { return c.shapes }

// Bounds is the union of the shape bounds, or the position cell when the
// collider has no shapes.
func (c *Collider) Bounds() shape.Rect {
	if len(c.shapes) == 0 {
		return shape.Rect{MinX: c.x, MinY: c.y, MaxX: c.x, MaxY: c.y}
	}
	b := c.shapes[0].Bounds()
	for _, s := range c.shapes[1:] {
		b = b.Union(s.Bounds())
	}
	return b
}

func (c *Collider) Position() (x, y int) { return c.x, c.y }

// Remainder returns the fractional movement carried into the next call.
func (c *Collider) Remainder() (x, y float64) { return c.remX, c.remY }

// Direction is the direction of the substep in progress, or DirectionNone
// outside a move.
func (c *Collider) Direction() Direction { return c.direction }

// Moving reports whether a MoveAndCollide call is in progress.
func (c *Collider) Moving() bool { return c.moving }

// Staged returns the coordinates the current substep is testing. Outside a
// substep it is the current position.
func (c *Collider) Staged() (x, y int) {
	if c.inSubstep {
		return c.stageX, c.stageY
	}
	return c.x, c.y
}

func (c *Collider) Disposed() bool { return c.disposed }

// AddShape anchors s at the collider position and takes ownership of it.
func (c *Collider) AddShape(s shape.Shape) error {
	if err := shape.Validate(s); err != nil {
		return err
	}
	s.SetAnchor(c.x, c.y)
	c.shapes = append(c.shapes, s)
	c.world.track(c)
	return nil
}

// RemoveShape drops s, reporting whether it was owned.
func (c *Collider) RemoveShape(s shape.Shape) bool {
	i := slices.Index(c.shapes, s)
	if i < 0 {
		return false
	}
	c.shapes = slices.Delete(c.shapes, i, i+1)
	c.world.track(c)
	return true
}

// ShapesChanged re-syncs the index after a shape was mutated in place, for
// example by Rotate, Resize or a mask swap.
func (c *Collider) ShapesChanged() { c.world.track(c) }

// SetFlip flips every owned shape.
func (c *Collider) SetFlip(x, y bool) {
	for _, s := range c.shapes {
		s.SetFlip(x, y)
	}
	c.world.track(c)
}

// SetPosition moves the collider without collision checks.
func (c *Collider) SetPosition(x, y int) {
	c.x, c.y = x, y
	for _, s := range c.shapes {
		s.SetAnchor(x, y)
	}
	c.world.track(c)
}

func (c *Collider) SetVelocity(vx, vy float64) { c.velX, c.velY = vx, vy }
func (c *Collider) Velocity() (vx, vy float64) { return c.velX, c.velY }

// Handle registers the response for capability id, replacing any previous
// one. A nil handler removes it.
func (c *Collider) Handle(id capability.ID, h Handler) {
	if h == nil {
		delete(c.handlers, id)
		c.handlerOrder = slices.DeleteFunc(c.handlerOrder, func(o capability.ID) bool { return o == id })
		return
	}
	if _, exists := c.handlers[id]; !exists {
		c.handlerOrder = append(c.handlerOrder, id)
		slices.Sort(c.handlerOrder)
	}
	c.handlers[id] = h
}

// OnSubstep replaces the substep callback. Without one, every substep runs
// CheckAndRun for each registered handler in ascending capability order.
func (c *Collider) OnSubstep(fn SubstepFunc) { c.onSubstep = fn }

// AfterSubstep sets a hook run after every solver iteration.
func (c *Collider) AfterSubstep(fn func(c *Collider)) { c.afterSubstep = fn }

// StopX halts horizontal motion for the rest of the current move.
func (c *Collider) StopX() error {
	if !c.inSubstep {
		return fmt.Errorf("%w: StopX outside a substep", ErrInvalidOperation)
	}
	c.continueX = false
	return nil
}

// StopY halts vertical motion for the rest of the current move.
func (c *Collider) StopY() error {
	if !c.inSubstep {
		return fmt.Errorf("%w: StopY outside a substep", ErrInvalidOperation)
	}
	c.continueY = false
	return nil
}

// Stop halts both axes.
func (c *Collider) Stop() error {
	if !c.inSubstep {
		return fmt.Errorf("%w: Stop outside a substep", ErrInvalidOperation)
	}
	c.continueX, c.continueY = false, false
	return nil
}

// CheckAndRun looks for the first other collider supporting id that
// overlaps this one at the staged coordinates and, if found, runs the
// handler registered for id once.
func (c *Collider) CheckAndRun(id capability.ID) (bool, error) {
	other, found, err := c.firstAt(id)
	if err != nil || !found {
		return false, err
	}
	if h := c.handlers[id]; h != nil {
		if err := h(c, other); err != nil {
			return true, err
		}
	}
	x, y := c.Staged()
	err = c.world.events.Publish(bus.Event{
		Kind:   bus.KindContact,
		Tick:   c.world.tick,
		Source: c.id,
		Target: other.id,
		Data:   Contact{Capability: id, Direction: c.direction, X: x, Y: y},
	})
	return true, err
}

// Contact is the payload of a contact event: the capability that matched,
// the direction of travel and the cell being tested.
type Contact struct {
	Capability capability.ID
	Direction  Direction
	X, Y       int
}

// Colliding returns the first other collider supporting id that overlaps
// this one where it stands. No handler runs.
func (c *Collider) Colliding(id capability.ID) (*Collider, bool, error) {
	if c.disposed {
		return nil, false, ErrDisposed
	}
	e, found, err := c.world.index.FirstShapes(c.shapes, id, c.id)
	if err != nil || !found {
		return nil, false, err
	}
	return e.(*Collider), true, nil
}

// firstAt queries with the shapes temporarily re-anchored at the staged
// coordinates. They are restored before any handler runs.
func (c *Collider) firstAt(id capability.ID) (*Collider, bool, error) {
	if c.disposed {
		return nil, false, ErrDisposed
	}
	sx, sy := c.Staged()
	if sx == c.x && sy == c.y {
		return c.Colliding(id)
	}
	for _, s := range c.shapes {
		s.SetAnchor(sx, sy)
	}
	e, found, err := c.world.index.FirstShapes(c.shapes, id, c.id)
	for _, s := range c.shapes {
		s.SetAnchor(c.x, c.y)
	}
	if err != nil || !found {
		return nil, false, err
	}
	return e.(*Collider), true, nil
}

// Tick moves by the per-tick velocity.
func (c *Collider) Tick() error {
	return c.MoveAndCollide(c.velX, c.velY)
}

// MoveAndCollide moves by (dx, dy), one pixel per substep.
//
// The fractional part of the displacement is carried to the next call. The
// dominant axis, the larger of the two with ties going to X, advances every
// iteration; the subordinate advances whenever sub*i/dom changes, or every
// iteration once the dominant axis is halted. Each step first runs the
// substep callback on the prospective cell and only commits if that axis
// is still allowed to continue.
func (c *Collider) MoveAndCollide(dx, dy float64) error {
	if c.disposed {
		return ErrDisposed
	}
	if c.moving {
		return fmt.Errorf("%w: MoveAndCollide re-entered from a substep", ErrInvalidOperation)
	}

	c.remX += dx
	c.remY += dy
	stepX, stepY := int(c.remX), int(c.remY)
	c.remX -= float64(stepX)
	c.remY -= float64(stepY)

	c.moving = true
	c.continueX, c.continueY = true, true
	defer c.finish()

	if stepX == 0 && stepY == 0 {
		if err := c.substep(c.x, c.y); err != nil {
			return err
		}
		c.after()
		return nil
	}

	domX := abs(stepX) >= abs(stepY)
	dom, sub := stepX, stepY
	if !domX {
		dom, sub = stepY, stepX
	}
	domTotal, subTotal := abs(dom), abs(sub)
	domSign, subSign := sign(dom), sign(sub)

	subDone, subProp := 0, 0
	for i := 1; i <= domTotal; i++ {
		if c.allowed(domX) {
			if err := c.advance(domX, domSign); err != nil {
				return err
			}
		}

		prop := subTotal * i / domTotal
		due := prop != subProp || !c.allowed(domX)
		subProp = prop
		if due && subDone < subTotal && c.allowed(!domX) {
			if err := c.advance(!domX, subSign); err != nil {
				return err
			}
			subDone++
		}

		c.after()
		if c.disposed || (!c.continueX && !c.continueY) {
			break
		}
	}
	return nil
}

func (c *Collider) allowed(xAxis bool) bool {
	if xAxis {
		return c.continueX
	}
	return c.continueY
}

// advance runs the substep callback for one unit along the axis and commits
// the step if the axis is still allowed afterwards.
func (c *Collider) advance(xAxis bool, dir int) error {
	nx, ny := c.x, c.y
	if xAxis {
		c.direction = horizontal(dir)
		nx += dir
	} else {
		c.direction = vertical(dir)
		ny += dir
	}
	if err := c.substep(nx, ny); err != nil {
		return err
	}
	if c.disposed || !c.allowed(xAxis) {
		return nil
	}
	c.SetPosition(nx, ny)
	return nil
}

func (c *Collider) substep(x, y int) error {
	c.stageX, c.stageY = x, y
	c.inSubstep = true
	defer func() { c.inSubstep = false }()

	if c.onSubstep != nil {
		return c.onSubstep(c, x, y)
	}
	for _, id := range c.handlerOrder {
		if _, err := c.CheckAndRun(id); err != nil {
			return err
		}
		if c.disposed {
			return nil
		}
	}
	return nil
}

func (c *Collider) after() {
	if c.afterSubstep != nil {
		c.afterSubstep(c)
	}
}

func (c *Collider) finish() {
	c.direction = DirectionNone
	c.continueX, c.continueY = true, true
	c.moving = false
}

// Dispose removes the collider from its world. It is safe to call twice.
func (c *Collider) Dispose() {
	if c.disposed {
		return
	}
	c.world.forget(c)
	c.disposed = true
	clear(c.handlers)
	c.handlerOrder = nil
	c.onSubstep, c.afterSubstep = nil, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
