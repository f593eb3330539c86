package dictcol

import (
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/internal/conv"
	"github.com/hupe1980/dictcol/internal/mem"
	"github.com/hupe1980/dictcol/keyset"
)

// Encode dictionary-encodes a plain column: the key set is the sorted,
// distinct, non-null values of arr, and each valid row's index is its
// value's rank in that set. Null rows stay null.
func Encode(arr *Array, optFns ...Option) (*Column, error) {
	o := newOptions(optFns...)
	if arr == nil || (arr.alloc == nil && arr.values == nil) {
		return nil, fmt.Errorf("%w: missing input column", ErrInvalidArgument)
	}

	out := &Column{alloc: o.alloc}
	compute := func() error {
		if arr.values == nil {
			return fmt.Errorf("%w: missing input column", ErrInvalidArgument)
		}
		rows := arr.NumRows()

		valid := make([]int, 0, rows)
		for i := 0; i < rows; i++ {
			if arr.IsValid(i) {
				valid = append(valid, i)
			}
		}
		sort.Slice(valid, func(x, y int) bool {
			return arr.values.Compare(valid[x], arr.values, valid[y]) < 0
		})

		ranks := make([]uint32, rows)
		distinct := make([]int, 0, len(valid))
		for _, row := range valid {
			if len(distinct) == 0 || arr.values.Compare(distinct[len(distinct)-1], arr.values, row) != 0 {
				distinct = append(distinct, row)
			}
			ranks[row] = uint32(len(distinct) - 1)
		}
		if _, err := conv.IntToUint32(len(distinct)); err != nil {
			return fmt.Errorf("%w: key set too large: %w", ErrInvalidArgument, err)
		}

		values, err := arr.values.Gather(o.alloc, distinct)
		if err != nil {
			return err
		}
		keys := keyset.FromSorted(values)

		idxBuf, err := o.alloc.Allocate(mem.BytesFor[uint32](rows))
		if err != nil {
			keys.Release()
			return err
		}
		indices := mem.View[uint32](idxBuf)
		copy(indices, ranks)

		validity, err := arr.validity.Clone(o.alloc)
		if err != nil {
			keys.Release()
			o.alloc.Free(idxBuf)
			return err
		}

		out.fill(keys, indices, idxBuf, validity)
		return nil
	}

	task := func() error {
		start := time.Now()
		err := translateError(compute())
		o.metrics.RecordEncode(arr.NumRows(), time.Since(start), err)
		o.logger.WithQueue(o.queue.ID()).LogEncode(arr.NumRows(), out.keys.Len(), err)
		return err
	}
	if err := translateError(o.queue.Submit(task)); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode materializes a dictionary column back into a plain column by
// gathering each valid row's key. Null rows stay null.
func Decode(d *Column, optFns ...Option) (*Array, error) {
	o := newOptions(optFns...)
	if err := validateDictionary(d); err != nil {
		return nil, err
	}

	out := &Array{alloc: o.alloc}
	compute := func() error {
		rows := d.NumRows()

		var values datum.Values
		var err error
		if d.keys.Len() == 0 {
			// All rows are null; back them with zero values.
			values, err = d.keys.Values().Zero(o.alloc, rows)
		} else {
			gatherRows := make([]int, rows)
			for i := 0; i < rows; i++ {
				if d.IsValid(i) {
					gatherRows[i] = int(d.indices[i])
				}
			}
			values, err = d.keys.Values().Gather(o.alloc, gatherRows)
		}
		if err != nil {
			return err
		}

		validity, err := d.validity.Clone(o.alloc)
		if err != nil {
			values.Release()
			return err
		}

		out.fill(values, validity)
		return nil
	}

	task := func() error {
		start := time.Now()
		err := translateError(compute())
		o.metrics.RecordDecode(d.NumRows(), time.Since(start), err)
		o.logger.WithQueue(o.queue.ID()).LogDecode(d.NumRows(), err)
		return err
	}
	if err := translateError(o.queue.Submit(task)); err != nil {
		return nil, err
	}
	return out, nil
}

// GetIndex returns the key-set position of a scalar key (a one-element
// value sequence in the dictionary's key domain) and whether it is
// present. Runs synchronously: a single-scalar probe uses binary search
// over the sorted key set rather than a merge walk. A column still
// pending on a queue must be synchronized with Wait before probing.
func GetIndex(d *Column, key datum.Values) (int, bool, error) {
	if d == nil || d.keys.Values() == nil {
		return 0, false, ErrNotDictionary
	}
	if key == nil || key.Len() != 1 {
		return 0, false, fmt.Errorf("%w: key must be a single value", ErrInvalidArgument)
	}
	if !datum.SameDomain(d.keys.Values(), key) {
		return 0, false, &ErrTypeMismatch{Expected: d.KeyType(), Actual: key.Type()}
	}

	values := d.keys.Values()
	pos := sort.Search(d.keys.Len(), func(i int) bool {
		return values.Compare(i, key, 0) >= 0
	})
	found := pos < d.keys.Len() && values.Compare(pos, key, 0) == 0
	return pos, found, nil
}
