package mask

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/hitbox/internal/core/observability/log"
)

type testSprite struct {
	key    string
	frames []image.Image
	loads  atomic.Int32
	fail   error
}

func (s *testSprite) Key() string     { return s.key }
func (s *testSprite) FrameCount() int { return len(s.frames) }

func (s *testSprite) Frame(i int) (image.Image, error) {
	s.loads.Add(1)
	if s.fail != nil {
		return nil, s.fail
	}
	return s.frames[i], nil
}

// frame paints the cells marked in rows with the given alpha.
func frame(alpha uint8, rows ...string) image.Image {
	m := FromRows(rows...)
	img := image.NewNRGBA(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.At(x, y) {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, A: alpha})
			}
		}
	}
	return img
}

func TestFromRows(t *testing.T) {
	m := FromRows("#.X", "..", "#")
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 3, m.Height())
	assert.Equal(t, 3, m.Count())
	assert.True(t, m.At(2, 0))
	assert.False(t, m.At(2, 1), "short rows are padded")
	assert.Equal(t, "#.#\n...\n#..", m.String())
}

func TestFromImage_Threshold(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 127})
	img.SetNRGBA(1, 0, color.NRGBA{A: 128})
	img.SetNRGBA(2, 0, color.NRGBA{A: 255})

	m := FromImage(img, DefaultAlphaThreshold)
	assert.Equal(t, ".##", m.String())

	assert.Equal(t, "..#", FromImage(img, 200).String())
	assert.Equal(t, "###", FromImage(img, 0).String())
}

func TestFromImage_OffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 12, 22))
	img.SetNRGBA(11, 21, color.NRGBA{A: 255})

	m := FromImage(img, DefaultAlphaThreshold)
	assert.Equal(t, "..\n.#", m.String())
}

func TestCache_MemoizesPerFrame(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := NewCache(DefaultAlphaThreshold, log.Wrap(zap.New(core), log.LevelDebug))
	s := &testSprite{key: "hero", frames: []image.Image{
		frame(255, "#.", ".#"),
		frame(255, "##"),
	}}

	m0, err := c.Get(s, 0)
	require.NoError(t, err)
	again, err := c.Get(s, 0)
	require.NoError(t, err)
	assert.Same(t, m0, again)
	assert.Equal(t, "#.\n.#", m0.String())

	m1, err := c.Get(s, 1)
	require.NoError(t, err)
	assert.NotSame(t, m0, m1)

	assert.EqualValues(t, 2, s.loads.Load())
	assert.Equal(t, Stats{Entries: 2, Hits: 1, Misses: 2, Builds: 2}, c.Stats())

	built := logs.FilterMessage("mask built").All()
	require.Len(t, built, 2)
	assert.Equal(t, "mask", built[0].LoggerName)
	assert.Equal(t, "hero", built[0].ContextMap()["sprite"])
}

func TestCache_SameFrameDifferentSprites(t *testing.T) {
	c := NewCache(DefaultAlphaThreshold, nil)
	a := &testSprite{key: "a", frames: []image.Image{frame(255, "#")}}
	b := &testSprite{key: "b", frames: []image.Image{frame(255, ".")}}

	ma, err := c.Get(a, 0)
	require.NoError(t, err)
	mb, err := c.Get(b, 0)
	require.NoError(t, err)
	assert.NotSame(t, ma, mb)
	assert.Equal(t, 1, ma.Count())
	assert.Zero(t, mb.Count())
}

func TestCache_FrameOutOfRange(t *testing.T) {
	c := NewCache(DefaultAlphaThreshold, nil)
	s := &testSprite{key: "coin", frames: []image.Image{frame(255, "#")}}

	_, err := c.Get(s, 1)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)
	_, err = c.Get(s, -1)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)
	assert.Zero(t, s.loads.Load(), "no mask is invented for a missing frame")

	_, err = c.Get(nil, 0)
	assert.ErrorIs(t, err, ErrNilSprite)
}

func TestCache_FrameLoadError(t *testing.T) {
	c := NewCache(DefaultAlphaThreshold, nil)
	boom := errors.New("decode failed")
	s := &testSprite{key: "broken", frames: []image.Image{nil}, fail: boom}

	_, err := c.Get(s, 0)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Stats().Entries)
}

func TestCache_PreloadAndInvalidate(t *testing.T) {
	c := NewCache(DefaultAlphaThreshold, nil)
	frames := make([]image.Image, 8)
	for i := range frames {
		frames[i] = frame(255, "#.#", ".#.")
	}
	s := &testSprite{key: "walk", frames: frames}
	other := &testSprite{key: "idle", frames: frames[:1]}

	require.NoError(t, c.Preload(context.Background(), s))
	_, err := c.Get(other, 0)
	require.NoError(t, err)
	assert.Equal(t, 9, c.Stats().Entries)

	_, err = c.Get(s, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 8, s.loads.Load(), "preloaded frames are hits")

	c.Invalidate("walk")
	assert.Equal(t, 1, c.Stats().Entries)
	_, err = c.Get(s, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 9, s.loads.Load())

	c.Clear()
	assert.Zero(t, c.Stats().Entries)
}

func TestCache_PreloadStopsOnError(t *testing.T) {
	c := NewCache(DefaultAlphaThreshold, nil)
	boom := errors.New("missing asset")
	s := &testSprite{key: "gone", frames: make([]image.Image, 4), fail: boom}

	assert.ErrorIs(t, c.Preload(context.Background(), s), boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := &testSprite{key: "ok", frames: []image.Image{frame(255, "#")}}
	assert.ErrorIs(t, c.Preload(ctx, ok), context.Canceled)
}
