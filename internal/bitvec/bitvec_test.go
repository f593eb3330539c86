package bitvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dictcol/resource"
)

func TestNewAllValid(t *testing.T) {
	a := resource.NewAllocator(resource.Config{})

	v, err := New(a, 70, true)
	require.NoError(t, err)
	assert.Equal(t, 70, v.Len())
	assert.Equal(t, 70, v.SetCount())
	assert.True(t, v.IsSet(0))
	assert.True(t, v.IsSet(69))

	v.Clear(69)
	assert.False(t, v.IsSet(69))
	assert.Equal(t, 69, v.SetCount())
	v.Set(69)
	assert.Equal(t, 70, v.SetCount())

	v.Release()
	assert.Zero(t, a.MemoryUsage())
}

func TestFromBools(t *testing.T) {
	v := FromBools([]bool{true, false, true})

	assert.Equal(t, 3, v.Len())
	assert.True(t, v.IsSet(0))
	assert.False(t, v.IsSet(1))
	assert.True(t, v.IsSet(2))
	assert.Equal(t, 2, v.SetCount())

	v.Release() // view, no-op
}

func TestNilMeansAllValid(t *testing.T) {
	var v *Vector

	assert.True(t, v.IsSet(0))
	assert.True(t, v.IsSet(123456))
	assert.Zero(t, v.Len())
	v.Release()
}

func TestClone(t *testing.T) {
	a := resource.NewAllocator(resource.Config{})

	src := FromBools([]bool{true, false, true, true})
	dup, err := src.Clone(a)
	require.NoError(t, err)

	src.Set(1) // clone must not alias
	assert.False(t, dup.IsSet(1))
	assert.Equal(t, 3, dup.SetCount())

	dup.Release()
	assert.Zero(t, a.MemoryUsage())

	var nilVec *Vector
	dup, err = nilVec.Clone(a)
	require.NoError(t, err)
	assert.Nil(t, dup)
}
