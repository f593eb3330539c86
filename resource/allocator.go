// Package resource provides the allocator abstraction used by the engine.
//
// Every buffer the engine creates (key storage, index arrays, validity
// bitmaps) is requested from an Allocator. An Allocator wraps an
// arrow/memory.Allocator and adds usage tracking plus an optional hard
// memory limit. Exceeding the limit is reported synchronously as
// ErrMemoryLimit; allocation never blocks.
package resource

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimit is returned when an allocation would exceed the configured
// hard memory limit.
var ErrMemoryLimit = errors.New("resource: memory limit exceeded")

// Config holds allocator settings.
type Config struct {
	// Mem is the underlying allocator. If nil, memory.DefaultAllocator is used.
	Mem memory.Allocator

	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64
}

// Allocator hands out byte buffers and tracks their total size.
//
// It is safe for concurrent use. A nil *Allocator behaves like Default().
type Allocator struct {
	mem memory.Allocator

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64
}

// NewAllocator creates a new Allocator.
func NewAllocator(cfg Config) *Allocator {
	a := &Allocator{mem: cfg.Mem}
	if a.mem == nil {
		a.mem = memory.DefaultAllocator
	}
	if cfg.MemoryLimitBytes > 0 {
		a.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return a
}

var (
	defaultOnce  sync.Once
	defaultAlloc *Allocator
)

// Default returns the process-wide default allocator (no limit, backed by
// memory.DefaultAllocator). It is used when a caller supplies none.
func Default() *Allocator {
	defaultOnce.Do(func() {
		defaultAlloc = NewAllocator(Config{})
	})
	return defaultAlloc
}

// Allocate reserves a buffer of the given size.
//
// If a hard limit is configured and the request would exceed it, Allocate
// returns ErrMemoryLimit without blocking.
func (a *Allocator) Allocate(size int) ([]byte, error) {
	if a == nil {
		return Default().Allocate(size)
	}
	if size <= 0 {
		return nil, nil
	}

	if a.memSem != nil {
		if !a.memSem.TryAcquire(int64(size)) {
			return nil, ErrMemoryLimit
		}
	}

	buf := a.mem.Allocate(size)
	a.memUsed.Add(int64(size))
	return buf, nil
}

// Free returns a buffer previously obtained from Allocate.
// Freeing a nil buffer is a no-op.
func (a *Allocator) Free(buf []byte) {
	if a == nil {
		Default().Free(buf)
		return
	}
	if len(buf) == 0 {
		return
	}

	size := int64(len(buf))
	a.mem.Free(buf)
	if a.memSem != nil {
		a.memSem.Release(size)
	}
	a.memUsed.Add(-size)
}

// MemoryUsage returns the total size of live buffers in bytes.
func (a *Allocator) MemoryUsage() int64 {
	if a == nil {
		return Default().MemoryUsage()
	}
	return a.memUsed.Load()
}
