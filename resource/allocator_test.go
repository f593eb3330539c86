package resource

import (
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateTracksUsage(t *testing.T) {
	a := NewAllocator(Config{})

	buf, err := a.Allocate(128)
	require.NoError(t, err)
	assert.Len(t, buf, 128)
	assert.Equal(t, int64(128), a.MemoryUsage())

	a.Free(buf)
	assert.Zero(t, a.MemoryUsage())
}

func TestAllocateZeroBytes(t *testing.T) {
	a := NewAllocator(Config{})

	buf, err := a.Allocate(0)
	require.NoError(t, err)
	assert.Nil(t, buf)
	assert.Zero(t, a.MemoryUsage())

	a.Free(nil)
}

func TestMemoryLimit(t *testing.T) {
	a := NewAllocator(Config{MemoryLimitBytes: 100})

	buf, err := a.Allocate(80)
	require.NoError(t, err)

	// The remaining budget is too small; the failure is synchronous.
	_, err = a.Allocate(40)
	assert.ErrorIs(t, err, ErrMemoryLimit)

	a.Free(buf)

	buf, err = a.Allocate(100)
	require.NoError(t, err)
	a.Free(buf)
	assert.Zero(t, a.MemoryUsage())
}

func TestCheckedAllocatorBalance(t *testing.T) {
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	a := NewAllocator(Config{Mem: checked})

	buf, err := a.Allocate(64)
	require.NoError(t, err)
	a.Free(buf)

	checked.AssertSize(t, 0)
}

func TestNilAllocatorUsesDefault(t *testing.T) {
	var a *Allocator

	buf, err := a.Allocate(16)
	require.NoError(t, err)
	assert.Len(t, buf, 16)
	a.Free(buf)
}
