package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetPool_ClearsOnPut(t *testing.T) {
	p := NewResetPool(
		func() *[]int { s := make([]int, 0, 8); return &s },
		func(s *[]int) *[]int { *s = (*s)[:0]; return s },
	)

	buf := p.Get()
	*buf = append(*buf, 1, 2, 3)
	p.Put(buf)

	again := p.Get()
	assert.Empty(t, *again)
}

func TestHotPool(t *testing.T) {
	calls := 0
	p := NewHotPool(func() int { calls++; return 7 }, 3)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 7, p.Get())
}
