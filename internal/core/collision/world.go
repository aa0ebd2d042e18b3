// Package collision ties shapes, the spatial index and the movement solver
// together. A World owns every structure a simulation needs; nothing here is
// global, so tests and servers can run several worlds side by side.
package collision

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/hitbox/internal/core/collision/capability"
	"github.com/zeusync/hitbox/internal/core/collision/grid"
	"github.com/zeusync/hitbox/internal/core/collision/mask"
	"github.com/zeusync/hitbox/internal/core/collision/shape"
	"github.com/zeusync/hitbox/internal/core/collision/spatial"
	"github.com/zeusync/hitbox/internal/core/events/bus"
	"github.com/zeusync/hitbox/internal/core/observability/log"
)

// World is the simulation-owned collision context. Like everything it owns,
// it belongs to a single simulation goroutine.
type World struct {
	cfg    Config
	logger log.Log

	caps  *capability.Registry
	index *spatial.Index
	masks *mask.Cache
	grid  *grid.Grid

	events *bus.Bus

	colliders map[uuid.UUID]*Collider
	tick      uint64
	closed    bool
}

// NewWorld builds a world from cfg after applying defaults. A nil logger
// discards output.
func NewWorld(cfg Config, logger log.Log) (*World, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.Named("collision")

	w := &World{
		cfg:       cfg,
		logger:    logger,
		caps:      capability.NewRegistry(),
		index:     spatial.NewIndex(cfg.Index.CellSize),
		masks:     mask.NewCache(*cfg.Mask.AlphaThreshold, logger),
		events:    bus.New(),
		colliders: make(map[uuid.UUID]*Collider),
	}
	for _, name := range cfg.Capabilities {
		w.caps.Register(name)
	}
	if cfg.Grid.Enabled {
		w.grid = grid.New(cfg.Grid.CellsWide, cfg.Grid.CellsHigh, cfg.Grid.CellSize)
	}

	logger.Info("world created",
		log.Int("index_cell_size", cfg.Index.CellSize),
		log.Bool("grid", cfg.Grid.Enabled),
		log.Int("capabilities", len(cfg.Capabilities)),
	)
	return w, nil
}

func (w *World) Config() Config { return w.cfg }
func (w *World) Logger() log.Log { return w.logger }

// Capabilities is the name registry seeded from Config.Capabilities.
func (w *World) Capabilities() *capability.Registry { return w.caps }

// Capability registers or looks up a capability by name.
func (w *World) Capability(name string) (capability.ID, error) {
	id, ok := w.caps.Register(name)
	if !ok {
		return 0, fmt.Errorf("%w: capability registry is full", ErrInvalidOperation)
	}
	return id, nil
}

func (w *World) Index() *spatial.Index { return w.index }
func (w *World) Masks() *mask.Cache    { return w.masks }

// Grid returns the loose/tight grid, or nil when it is disabled. The grid
// only mirrors collider bounds; queries go through the spatial index.
func (w *World) Grid() *grid.Grid { return w.grid }

func (w *World) Tick() uint64 { return w.tick }

// Events delivers collider lifecycle and contact events. Contact payloads
// are Contact values.
func (w *World) Events() *bus.Bus { return w.events }

// NewCollider creates a collider for owner at (x, y) holding shapes.
func (w *World) NewCollider(owner Owner, x, y int, shapes ...shape.Shape) (*Collider, error) {
	if w.closed {
		return nil, ErrWorldClosed
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: nil owner", shape.ErrInvalidArgument)
	}
	for _, s := range shapes {
		if err := shape.Validate(s); err != nil {
			return nil, err
		}
		s.SetAnchor(x, y)
	}

	c := &Collider{
		id:        uuid.New(),
		world:     w,
		owner:     owner,
		shapes:    shapes,
		x:         x,
		y:         y,
		continueX: true,
		continueY: true,
		handlers:  make(map[capability.ID]Handler),
	}
	if err := w.index.Insert(c); err != nil {
		return nil, err
	}
	if w.grid != nil {
		if err := w.grid.Insert(c.id, c.Bounds()); err != nil {
			w.index.Remove(c.id)
			return nil, err
		}
	}
	w.colliders[c.id] = c

	w.logger.Debug("collider added",
		log.String("id", c.id.String()),
		log.Int("x", x),
		log.Int("y", y),
		log.Int("shapes", len(shapes)),
	)
	w.notify(bus.Event{Kind: bus.KindColliderAdded, Tick: w.tick, Source: c.id})
	return c, nil
}

// Collider looks a collider up by id.
func (w *World) Collider(id uuid.UUID) (*Collider, bool) {
	c, ok := w.colliders[id]
	return c, ok
}

// Remove disposes c.
func (w *World) Remove(c *Collider) error {
	if c == nil || w.colliders[c.id] != c {
		return ErrUnknownCollider
	}
	c.Dispose()
	return nil
}

// Colliders returns every live collider in index order.
func (w *World) Colliders() []*Collider {
	out := make([]*Collider, 0, w.index.Len())
	w.index.Each(func(e spatial.Entry) bool {
		out = append(out, e.(*Collider))
		return true
	})
	return out
}

func (w *World) Len() int { return len(w.colliders) }

// Step advances the world one tick, moving every active collider by its
// velocity in index order. Errors are collected and the step continues.
func (w *World) Step() error {
	if w.closed {
		return ErrWorldClosed
	}
	w.tick++
	var all error
	for _, c := range w.Colliders() {
		if !c.Active() {
			continue
		}
		if err := c.Tick(); err != nil {
			all = errors.Join(all, fmt.Errorf("collider %s: %w", c.id, err))
		}
	}
	return all
}

// Close disposes every collider and drops cached masks.
func (w *World) Close() error {
	if w.closed {
		return nil
	}
	for _, c := range w.Colliders() {
		c.Dispose()
	}
	w.masks.Clear()
	w.closed = true

	stats := w.index.Stats()
	w.logger.Info("world closed",
		log.Uint64("ticks", w.tick),
		log.Uint64("queries", stats.Queries),
		log.Uint64("updates", stats.Updates),
	)
	return nil
}

// track re-syncs the broad phases with the collider's bounds.
func (w *World) track(c *Collider) {
	if c.disposed {
		return
	}
	if err := w.index.Update(c); err != nil {
		w.logger.Error("index update failed", log.String("id", c.id.String()), log.Error(err))
		return
	}
	if w.grid != nil {
		if err := w.grid.Update(c.id, c.Bounds()); err != nil {
			w.logger.Error("grid update failed", log.String("id", c.id.String()), log.Error(err))
		}
	}
}

func (w *World) forget(c *Collider) {
	w.index.Remove(c.id)
	if w.grid != nil {
		w.grid.Remove(c.id)
	}
	delete(w.colliders, c.id)
	w.logger.Debug("collider removed", log.String("id", c.id.String()))
	w.notify(bus.Event{Kind: bus.KindColliderRemoved, Tick: w.tick, Source: c.id})
}

// notify publishes a lifecycle event. Subscriber errors cannot undo the
// change, so they are only logged.
func (w *World) notify(e bus.Event) {
	if err := w.events.Publish(e); err != nil {
		w.logger.Warn("event subscriber failed",
			log.Stringer("kind", e.Kind),
			log.String("id", e.Source.String()),
			log.Error(err),
		)
	}
}
