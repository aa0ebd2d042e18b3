package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AbsentMatchesEverything(t *testing.T) {
	assert.True(t, Any.Has(0))
	assert.True(t, Any.Has(MaxID))
}

func TestSet_Membership(t *testing.T) {
	s := Of(1, 3)
	assert.True(t, s.Has(1))
	assert.True(t, s.Has(3))
	assert.False(t, s.Has(2))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []ID{1, 3}, s.IDs())

	s = s.Without(1)
	assert.False(t, s.Has(1))
	assert.Equal(t, Of(3), s)
	assert.Equal(t, Of(3, 5), s.With(5))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	solid, ok := r.Register("solid")
	require.True(t, ok)
	hurt, ok := r.Register("hurt")
	require.True(t, ok)

	again, _ := r.Register("solid")
	assert.Equal(t, solid, again)
	assert.NotEqual(t, solid, hurt)

	id, ok := r.Lookup("hurt")
	assert.True(t, ok)
	assert.Equal(t, hurt, id)

	assert.Equal(t, "solid,hurt", r.Format(Of(solid, hurt)))
	assert.Equal(t, "*", r.Format(Any))
}

func TestRegistry_Exhausted(t *testing.T) {
	r := NewRegistry()
	for i := 0; i <= int(MaxID); i++ {
		_, ok := r.Register(string(rune('A' + i)))
		require.True(t, ok)
	}
	_, ok := r.Register("overflow")
	assert.False(t, ok)
}
