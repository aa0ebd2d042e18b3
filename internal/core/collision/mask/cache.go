package mask

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/hitbox/internal/core/observability/log"
)

var (
	ErrFrameOutOfRange = errors.New("sprite frame out of range")
	ErrNilSprite       = errors.New("nil sprite")
)

// Sprite is the asset-layer view of an animated sprite. The cache never
// invents occupancy: masks come only from the frames it returns.
type Sprite interface {
	Key() string
	FrameCount() int
	Frame(i int) (image.Image, error)
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
	Builds  uint64
}

// Cache memoizes masks per (sprite, frame). Safe for concurrent use so that
// Preload can build frames in parallel.
type Cache struct {
	mu        sync.RWMutex
	entries   map[uint64]*Mask
	bySprite  map[string][]uint64
	threshold uint8
	logger    log.Log

	hits   atomic.Uint64
	misses atomic.Uint64
	builds atomic.Uint64
}

// NewCache creates a cache that thresholds frame alpha at threshold.
func NewCache(threshold uint8, logger log.Log) *Cache {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Cache{
		entries:   make(map[uint64]*Mask),
		bySprite:  make(map[string][]uint64),
		threshold: threshold,
		logger:    logger.Named("mask"),
	}
}

// frameKey hashes the sprite key and frame index.
func frameKey(sprite string, frame int) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(sprite)
	var buf [9]byte // leading zero byte separates key from frame
	binary.LittleEndian.PutUint64(buf[1:], uint64(frame))
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

// Get returns the mask for frame of s, building it on first request.
func (c *Cache) Get(s Sprite, frame int) (*Mask, error) {
	if s == nil {
		return nil, ErrNilSprite
	}
	if frame < 0 || frame >= s.FrameCount() {
		return nil, fmt.Errorf("%w: %s[%d] of %d", ErrFrameOutOfRange, s.Key(), frame, s.FrameCount())
	}

	k := frameKey(s.Key(), frame)
	c.mu.RLock()
	m, ok := c.entries[k]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return m, nil
	}
	c.misses.Add(1)

	m, err := c.build(s, frame)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[k]; ok {
		return existing, nil
	}
	c.entries[k] = m
	c.bySprite[s.Key()] = append(c.bySprite[s.Key()], k)
	return m, nil
}

func (c *Cache) build(s Sprite, frame int) (*Mask, error) {
	img, err := s.Frame(frame)
	if err != nil {
		return nil, fmt.Errorf("load frame %s[%d]: %w", s.Key(), frame, err)
	}
	m := FromImage(img, c.threshold)
	c.builds.Add(1)
	c.logger.Debug("mask built",
		log.String("sprite", s.Key()),
		log.Int("frame", frame),
		log.Int("width", m.Width()),
		log.Int("height", m.Height()),
		log.Int("occupied", m.Count()),
	)
	return m, nil
}

// Preload builds every frame of s concurrently.
func (c *Cache) Preload(ctx context.Context, s Sprite) error {
	if s == nil {
		return ErrNilSprite
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.FrameCount(); i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := c.Get(s, i)
			return err
		})
	}
	return g.Wait()
}

// Invalidate drops every cached frame of the sprite with the given key.
func (c *Cache) Invalidate(spriteKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.bySprite[spriteKey] {
		delete(c.entries, k)
	}
	delete(c.bySprite, spriteKey)
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*Mask)
	c.bySprite = make(map[string][]uint64)
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Entries: n,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Builds:  c.builds.Load(),
	}
}
