package collision

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/hitbox/internal/core/collision/capability"
	"github.com/zeusync/hitbox/internal/core/collision/shape"
	"github.com/zeusync/hitbox/internal/core/observability/log"
)

const (
	capSolid capability.ID = iota
	capHurt
)

type testOwner struct {
	active bool
	caps   capability.Set
}

func (o *testOwner) Active() bool                 { return o.active }
func (o *testOwner) Capabilities() capability.Set { return o.caps }

func owner(ids ...capability.ID) *testOwner {
	return &testOwner{active: true, caps: capability.Of(ids...)}
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(Config{Capabilities: []string{"solid", "hurt"}}, log.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func addBox(t *testing.T, w *World, o Owner, x, y, width, height int) *Collider {
	t.Helper()
	c, err := w.NewCollider(o, x, y, shape.NewRectangle(0, 0, width, height))
	require.NoError(t, err)
	return c
}

type step struct {
	X, Y int
	Dir  Direction
}

// recordSubsteps makes c log every substep and run the solid check.
func recordSubsteps(c *Collider, out *[]step) {
	c.OnSubstep(func(c *Collider, x, y int) error {
		*out = append(*out, step{x, y, c.Direction()})
		_, err := c.CheckAndRun(capSolid)
		return err
	})
}

func TestMoveAndCollide_CarriesRemainderAcrossSignChanges(t *testing.T) {
	w := newTestWorld(t)
	c := addBox(t, w, owner(), 0, 0, 1, 1)

	dx := []float64{0.5, 0.75, -1.25, 2.5, -0.25, 1.75}
	dy := []float64{-0.5, -0.75, 2.0, 0.25, -3.5, 0.25}
	wantX := []int{0, 1, 0, 2, 2, 4}
	wantY := []int{0, -1, 0, 1, -2, -2}
	for i := range dx {
		require.NoError(t, c.MoveAndCollide(dx[i], dy[i]))
		x, y := c.Position()
		assert.Equal(t, wantX[i], x, "call %d", i)
		assert.Equal(t, wantY[i], y, "call %d", i)
	}
	rx, ry := c.Remainder()
	assert.Equal(t, 0.0, rx)
	assert.Equal(t, -0.25, ry)

	b, ok := w.Index().Bounds(c.ID())
	require.True(t, ok)
	assert.Equal(t, shape.Rect{MinX: 4, MinY: -2, MaxX: 4, MaxY: -2}, b, "index follows every commit")
}

func TestMoveAndCollide_SubstepOrder(t *testing.T) {
	w := newTestWorld(t)
	c := addBox(t, w, owner(), 0, 0, 1, 1)

	var got []step
	recordSubsteps(c, &got)
	require.NoError(t, c.MoveAndCollide(4, 2))
	assert.Equal(t, []step{
		{1, 0, DirectionRight},
		{2, 0, DirectionRight},
		{2, 1, DirectionDown},
		{3, 1, DirectionRight},
		{4, 1, DirectionRight},
		{4, 2, DirectionDown},
	}, got)

	got = nil
	c.SetPosition(0, 0)
	require.NoError(t, c.MoveAndCollide(-2, -5))
	assert.Equal(t, []step{
		{0, -1, DirectionUp},
		{0, -2, DirectionUp},
		{0, -3, DirectionUp},
		{-1, -3, DirectionLeft},
		{-1, -4, DirectionUp},
		{-1, -5, DirectionUp},
		{-2, -5, DirectionLeft},
	}, got)
	assert.Equal(t, DirectionNone, c.Direction())
	assert.False(t, c.Moving())
}

// stopOnContact halts the axis of the step that made contact.
func stopOnContact(self, _ *Collider) error {
	switch self.Direction() {
	case DirectionLeft, DirectionRight:
		return self.StopX()
	default:
		return self.StopY()
	}
}

func TestMoveAndCollide_DiagonalSlidesAlongWall(t *testing.T) {
	w := newTestWorld(t)
	addBox(t, w, owner(capSolid), 1, -10, 1, 30)
	c := addBox(t, w, owner(), 0, 0, 1, 1)
	c.Handle(capSolid, stopOnContact)

	var got []step
	recordSubsteps(c, &got)
	iterations := 0
	c.AfterSubstep(func(*Collider) { iterations++ })

	require.NoError(t, c.MoveAndCollide(3, 3))
	x, y := c.Position()
	assert.Equal(t, 0, x, "x stops at contact")
	assert.Equal(t, 3, y, "full y displacement applies")
	assert.Equal(t, 3, iterations)
	assert.Equal(t, []step{
		{1, 0, DirectionRight},
		{0, 1, DirectionDown},
		{0, 2, DirectionDown},
		{0, 3, DirectionDown},
	}, got)

	// flags are reset for the next call
	got = nil
	require.NoError(t, c.MoveAndCollide(1, 0))
	assert.Equal(t, []step{{1, 3, DirectionRight}}, got)
	x, _ = c.Position()
	assert.Zero(t, x)
}

func TestMoveAndCollide_DominantHaltedSubordinateCatchesUp(t *testing.T) {
	w := newTestWorld(t)
	addBox(t, w, owner(capSolid), 2, -20, 1, 40)
	c := addBox(t, w, owner(), 0, 0, 1, 1)
	c.Handle(capSolid, stopOnContact)

	require.NoError(t, c.MoveAndCollide(10, 3))
	x, y := c.Position()
	assert.Equal(t, 1, x)
	assert.Equal(t, 3, y)
}

func TestMoveAndCollide_StopBothEndsEarly(t *testing.T) {
	w := newTestWorld(t)
	addBox(t, w, owner(capSolid), 3, 3, 5, 5)
	c := addBox(t, w, owner(), 0, 0, 1, 1)
	c.Handle(capSolid, func(self, _ *Collider) error { return self.Stop() })

	iterations := 0
	c.AfterSubstep(func(*Collider) { iterations++ })
	require.NoError(t, c.MoveAndCollide(10, 10))

	x, y := c.Position()
	assert.Equal(t, 3, x)
	assert.Equal(t, 2, y)
	assert.Equal(t, 3, iterations)
}

func TestStop_OutsideSubstepIsInvalid(t *testing.T) {
	w := newTestWorld(t)
	c := addBox(t, w, owner(), 0, 0, 1, 1)

	assert.ErrorIs(t, c.StopX(), ErrInvalidOperation)
	assert.ErrorIs(t, c.StopY(), ErrInvalidOperation)
	assert.ErrorIs(t, c.Stop(), ErrInvalidOperation)

	// a handler run outside a move is not in a substep either
	addBox(t, w, owner(capSolid), 0, 0, 1, 1)
	c.Handle(capSolid, stopOnContact)
	found, err := c.CheckAndRun(capSolid)
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestCheckAndRun_DispatchesAtMostOnce(t *testing.T) {
	w := newTestWorld(t)
	first := addBox(t, w, owner(capSolid), 1, 0, 2, 2)
	addBox(t, w, owner(capSolid), 1, 0, 3, 3)
	c := addBox(t, w, owner(), 0, 0, 1, 1)

	var hits []*Collider
	c.Handle(capSolid, func(_, other *Collider) error {
		hits = append(hits, other)
		return nil
	})
	require.NoError(t, c.MoveAndCollide(1, 0))

	require.Len(t, hits, 1)
	assert.Same(t, first, hits[0], "first in index order")
	x, _ := c.Position()
	assert.Equal(t, 1, x, "handler did not stop, so the step commits")
}

func TestMoveAndCollide_StaticCheckStillRunsCallbacks(t *testing.T) {
	w := newTestWorld(t)
	addBox(t, w, owner(capHurt), 0, 0, 4, 4)
	c := addBox(t, w, owner(), 1, 1, 1, 1)

	calls := 0
	c.Handle(capHurt, func(self, _ *Collider) error {
		calls++
		assert.Equal(t, DirectionNone, self.Direction())
		return self.Stop()
	})
	require.NoError(t, c.MoveAndCollide(0.25, -0.5))
	assert.Equal(t, 1, calls)
	x, y := c.Position()
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
}

func TestMoveAndCollide_FiltersIneligibleColliders(t *testing.T) {
	w := newTestWorld(t)
	inactive := owner(capSolid)
	inactive.active = false
	addBox(t, w, inactive, 1, 0, 1, 1)
	addBox(t, w, owner(capHurt), 2, 0, 1, 1)

	hurtOnly := shape.NewRectangle(0, 0, 1, 1)
	hurtOnly.SetBoundTo(capability.Of(capHurt))
	_, err := w.NewCollider(owner(capSolid, capHurt), 3, 0, hurtOnly)
	require.NoError(t, err)

	c := addBox(t, w, owner(), 0, 0, 1, 1)
	c.Handle(capSolid, stopOnContact)
	require.NoError(t, c.MoveAndCollide(5, 0))
	x, _ := c.Position()
	assert.Equal(t, 5, x)

	// a shape not targeting solid never tests against walls
	wall := addBox(t, w, owner(capSolid), 6, 0, 1, 1)
	c.Shapes()[0].SetTargeting(capability.Of(capHurt))
	require.NoError(t, c.MoveAndCollide(1, 0))
	x, _ = c.Position()
	assert.Equal(t, 6, x)

	c.Shapes()[0].SetTargeting(capability.Any)
	other, found, err := c.Colliding(capSolid)
	require.NoError(t, err)
	require.True(t, found)
	assert.Same(t, wall, other)
}

func TestMoveAndCollide_ErrorsAbortTheMove(t *testing.T) {
	w := newTestWorld(t)
	addBox(t, w, owner(capSolid), 2, 0, 1, 1)
	c := addBox(t, w, owner(), 0, 0, 1, 1)
	boom := errors.New("boom")
	c.Handle(capSolid, func(*Collider, *Collider) error { return boom })

	assert.ErrorIs(t, c.MoveAndCollide(5, 0), boom)
	x, _ := c.Position()
	assert.Equal(t, 1, x)
	assert.False(t, c.Moving())

	c.OnSubstep(func(c *Collider, _, _ int) error { return c.MoveAndCollide(1, 0) })
	assert.ErrorIs(t, c.MoveAndCollide(-1, 0), ErrInvalidOperation)
}

func TestCollider_PositionSyncsShapes(t *testing.T) {
	w := newTestWorld(t)
	circle := shape.NewCircle(2, 0, 3)
	c, err := w.NewCollider(owner(), 10, 10, shape.NewRectangle(0, 0, 2, 2), circle)
	require.NoError(t, err)
	assert.Equal(t, shape.Rect{MinX: 9, MinY: 7, MaxX: 15, MaxY: 13}, c.Bounds())

	c.SetPosition(-5, 0)
	cx, cy := circle.Center()
	assert.Equal(t, -3, cx)
	assert.Equal(t, 0, cy)
	b, _ := w.Index().Bounds(c.ID())
	assert.Equal(t, c.Bounds(), b)

	c.SetFlip(true, false)
	cx, _ = circle.Center()
	assert.Equal(t, -7, cx)
	b, _ = w.Index().Bounds(c.ID())
	assert.Equal(t, c.Bounds(), b)

	tri := shape.NewTriangle(0, 0, shape.Point{X: 0, Y: 0}, shape.Point{X: 4, Y: 0}, shape.Point{X: 0, Y: 4})
	require.NoError(t, c.AddShape(tri))
	assert.Equal(t, []shape.Point{{X: -5, Y: 0}, {X: -1, Y: 0}, {X: -5, Y: 4}}, tri.Points())
	assert.True(t, c.RemoveShape(tri))
	assert.False(t, c.RemoveShape(tri))
}

func TestCollider_DisposeLeavesIndex(t *testing.T) {
	w := newTestWorld(t)
	c := addBox(t, w, owner(capSolid), 0, 0, 1, 1)
	id := c.ID()

	require.NoError(t, w.Remove(c))
	assert.False(t, w.Index().Contains(id))
	assert.False(t, c.Active())
	assert.ErrorIs(t, c.MoveAndCollide(1, 0), ErrDisposed)
	assert.ErrorIs(t, w.Remove(c), ErrUnknownCollider)
	c.Dispose()

	_, found := w.Index().FirstAt(0, 0, capSolid)
	assert.False(t, found)
}

func TestCollider_DisposedMidMoveStops(t *testing.T) {
	w := newTestWorld(t)
	addBox(t, w, owner(capHurt), 2, 0, 1, 1)
	c := addBox(t, w, owner(), 0, 0, 1, 1)
	c.Handle(capHurt, func(self, _ *Collider) error {
		self.Dispose()
		return nil
	})

	require.NoError(t, c.MoveAndCollide(5, 0))
	x, _ := c.Position()
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, w.Len(), "only the hazard remains")
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "left", horizontal(-3).String())
	assert.Equal(t, "none", horizontal(0).String())
	assert.Equal(t, "right", horizontal(1).String())
	assert.Equal(t, "up", vertical(-1).String())
	assert.Equal(t, "down", vertical(2).String())
}
