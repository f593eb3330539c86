package dictcol

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/keyset"
)

// validateDictionary rejects inputs that are not dictionary-encoded
// columns. An engine-owned column whose producing task has not run yet
// passes; its key domain is checked again when the consuming task runs.
func validateDictionary(d *Column) error {
	if d == nil || (d.alloc == nil && d.keys.Values() == nil) {
		return ErrNotDictionary
	}
	return nil
}

// validateKeyList rejects key-list arguments that are missing. The domain
// check runs here only when both sides are caller-built views: an
// engine-owned input may still be pending on its queue, and its fields
// must not be read from the submitting goroutine. The operation's task
// runs checkKeyList instead, once the input is materialized.
func validateKeyList(d *Column, keys *Array) error {
	if keys == nil || (keys.alloc == nil && keys.values == nil) {
		return fmt.Errorf("%w: missing key list", ErrInvalidArgument)
	}
	if d.alloc != nil || keys.alloc != nil {
		return nil
	}
	return checkKeyList(d, keys)
}

// checkKeyList verifies a materialized key list against the dictionary's
// key domain.
func checkKeyList(d *Column, keys *Array) error {
	if keys.values == nil {
		return fmt.Errorf("%w: missing key list", ErrInvalidArgument)
	}
	if !datum.SameDomain(d.keys.Values(), keys.values) {
		return &ErrTypeMismatch{Expected: d.KeyType(), Actual: keys.values.Type()}
	}
	return nil
}

// sortedValidRows collects the valid row positions of a key list and
// verifies their values are strictly increasing under the domain order.
func sortedValidRows(keys *Array) ([]int, error) {
	rows := make([]int, 0, keys.NumRows())
	for i := 0; i < keys.NumRows(); i++ {
		if keys.IsValid(i) {
			rows = append(rows, i)
		}
	}
	for k := 0; k+1 < len(rows); k++ {
		if keys.values.Compare(rows[k], keys.values, rows[k+1]) >= 0 {
			return nil, ErrKeysNotSorted
		}
	}
	return rows, nil
}

// runKeyUpdate executes compute inline or on the configured queue, with
// metrics and logging recorded at execution time.
func (o *options) runKeyUpdate(op string, d *Column, out *Column, compute func() error) error {
	task := func() error {
		keysBefore := d.keys.Len()
		start := time.Now()
		err := translateError(compute())
		o.metrics.RecordKeyUpdate(op, d.NumRows(), time.Since(start), err)
		o.logger.WithQueue(o.queue.ID()).LogKeyUpdate(op, d.NumRows(), keysBefore, out.keys.Len(), err)
		return err
	}
	return translateError(o.queue.Submit(task))
}

// AddKeys returns a copy of d whose key set is the union of d's keys and
// the distinct, non-null values of newKeys. Null entries in newKeys are
// ignored and never become keys. No row is invalidated: the union only
// adds keys, so every old key keeps a position.
func AddKeys(d *Column, newKeys *Array, optFns ...Option) (*Column, error) {
	o := newOptions(optFns...)
	if err := validateDictionary(d); err != nil {
		return nil, err
	}
	if err := validateKeyList(d, newKeys); err != nil {
		return nil, err
	}

	out := &Column{alloc: o.alloc}
	compute := func() error {
		if err := checkKeyList(d, newKeys); err != nil {
			return err
		}

		added, err := keyset.Build(o.alloc, newKeys.values, newKeys.validity)
		if err != nil {
			return err
		}
		defer added.Release()

		merged, err := keyset.Union(o.alloc, d.keys, added)
		if err != nil {
			return err
		}

		rel := keyset.PositionsOf(d.keys, merged)
		indices, idxBuf, validity, err := applyRelation(o.alloc, d, rel, false)
		if err != nil {
			merged.Release()
			return err
		}

		out.fill(merged, indices, idxBuf, validity)
		return nil
	}

	if err := o.runKeyUpdate("add_keys", d, out, compute); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveKeys returns a copy of d whose key set no longer contains any of
// keysToRemove. Rows whose value was removed become null; other rows keep
// their logical value under remapped indices.
//
// keysToRemove is assumed free of nulls and duplicates; as a documented
// assumption (not a confirmed contract), duplicates are treated as
// idempotent and null entries are ignored.
func RemoveKeys(d *Column, keysToRemove *Array, optFns ...Option) (*Column, error) {
	o := newOptions(optFns...)
	if err := validateDictionary(d); err != nil {
		return nil, err
	}
	if err := validateKeyList(d, keysToRemove); err != nil {
		return nil, err
	}

	out := &Column{alloc: o.alloc}
	compute := func() error {
		if err := checkKeyList(d, keysToRemove); err != nil {
			return err
		}

		remove, err := keyset.Build(o.alloc, keysToRemove.values, keysToRemove.validity)
		if err != nil {
			return err
		}
		defer remove.Release()

		kept, err := keyset.Difference(o.alloc, d.keys, remove)
		if err != nil {
			return err
		}

		rel := keyset.PositionsOf(d.keys, kept)
		indices, idxBuf, validity, err := applyRelation(o.alloc, d, rel, true)
		if err != nil {
			kept.Release()
			return err
		}

		out.fill(kept, indices, idxBuf, validity)
		return nil
	}

	if err := o.runKeyUpdate("remove_keys", d, out, compute); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveUnusedKeys returns a copy of d whose key set contains only keys
// referenced by at least one valid row. No row changes logical value or
// validity; the operation is idempotent.
func RemoveUnusedKeys(d *Column, optFns ...Option) (*Column, error) {
	o := newOptions(optFns...)
	if err := validateDictionary(d); err != nil {
		return nil, err
	}

	out := &Column{alloc: o.alloc}
	compute := func() error {
		used := roaring.New()
		for i := 0; i < d.NumRows(); i++ {
			if d.IsValid(i) {
				used.Add(d.indices[i])
			}
		}

		keptPositions := used.ToArray() // ascending key positions
		rel := make([]int, d.keys.Len())
		for i := range rel {
			rel[i] = keyset.Absent
		}
		rows := make([]int, len(keptPositions))
		for newPos, oldPos := range keptPositions {
			rel[oldPos] = newPos
			rows[newPos] = int(oldPos)
		}

		values, err := d.keys.Values().Gather(o.alloc, rows)
		if err != nil {
			return err
		}
		kept := keyset.FromSorted(values)

		indices, idxBuf, validity, err := applyRelation(o.alloc, d, rel, false)
		if err != nil {
			kept.Release()
			return err
		}

		out.fill(kept, indices, idxBuf, validity)
		return nil
	}

	if err := o.runKeyUpdate("remove_unused_keys", d, out, compute); err != nil {
		return nil, err
	}
	return out, nil
}

// SetKeys returns a copy of d re-keyed against newKeys. Rows whose value
// is absent from newKeys become null.
//
// The non-null values of newKeys must already be sorted and unique; this
// precondition is checked defensively and reported as ErrKeysNotSorted.
// The check runs at the call boundary for caller-built key lists and
// inside the task for an engine-owned key list still pending on a queue.
// Null entries in newKeys are ignored and never become keys.
func SetKeys(d *Column, newKeys *Array, optFns ...Option) (*Column, error) {
	o := newOptions(optFns...)
	if err := validateDictionary(d); err != nil {
		return nil, err
	}
	if err := validateKeyList(d, newKeys); err != nil {
		return nil, err
	}

	var rows []int
	if newKeys.alloc == nil {
		var err error
		if rows, err = sortedValidRows(newKeys); err != nil {
			return nil, err
		}
	}

	out := &Column{alloc: o.alloc}
	compute := func() error {
		if err := checkKeyList(d, newKeys); err != nil {
			return err
		}
		if rows == nil {
			var err error
			if rows, err = sortedValidRows(newKeys); err != nil {
				return err
			}
		}

		values, err := newKeys.values.Gather(o.alloc, rows)
		if err != nil {
			return err
		}
		keys := keyset.FromSorted(values)

		rel := keyset.PositionsOf(d.keys, keys)
		indices, idxBuf, validity, err := applyRelation(o.alloc, d, rel, true)
		if err != nil {
			keys.Release()
			return err
		}

		out.fill(keys, indices, idxBuf, validity)
		return nil
	}

	if err := o.runKeyUpdate("set_keys", d, out, compute); err != nil {
		return nil, err
	}
	return out, nil
}
