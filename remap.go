package dictcol

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dictcol/internal/bitvec"
	"github.com/hupe1980/dictcol/internal/mem"
	"github.com/hupe1980/dictcol/keyset"
	"github.com/hupe1980/dictcol/resource"
)

// Columns below this row count are remapped on the calling goroutine.
const remapParallelThreshold = 1 << 14

// applyRelation is the index remapper: given a relation from src's key
// positions into a target key set (keyset.Absent marking keys with no
// target position), it gathers new per-row indices and validity.
//
// Policy: a null row stays null and its output index is 0; a valid row
// whose key maps to Absent becomes null; a valid row whose key maps to
// position p gets index p and stays valid. One row-parallel pass, no
// merging.
//
// invalidates must be true when the relation can contain Absent for a key
// referenced by a valid row; when false the old validity is reused as-is.
func applyRelation(a *resource.Allocator, src *Column, rel []int, invalidates bool) ([]uint32, []byte, *bitvec.Vector, error) {
	rows := src.NumRows()

	idxBuf, err := a.Allocate(mem.BytesFor[uint32](rows))
	if err != nil {
		return nil, nil, nil, err
	}
	indices := mem.View[uint32](idxBuf)

	var validity *bitvec.Vector
	if invalidates {
		validity, err = bitvec.New(a, rows, true)
	} else {
		validity, err = src.validity.Clone(a)
	}
	if err != nil {
		a.Free(idxBuf)
		return nil, nil, nil, err
	}

	gather := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if !src.IsValid(i) {
				indices[i] = 0
				if invalidates {
					validity.Clear(i)
				}
				continue
			}
			p := rel[src.indices[i]]
			if p == keyset.Absent {
				indices[i] = 0
				validity.Clear(i)
				continue
			}
			indices[i] = uint32(p)
		}
	}

	if rows < remapParallelThreshold {
		gather(0, rows)
		return indices, idxBuf, validity, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (rows + workers - 1) / workers
	// Round chunks to 64-row boundaries so no two workers touch the same
	// validity byte.
	chunk = (chunk + 63) &^ 63

	g := new(errgroup.Group)
	for lo := 0; lo < rows; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > rows {
			hi = rows
		}
		g.Go(func() error {
			gather(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // workers cannot fail

	return indices, idxBuf, validity, nil
}
