// Package keyset implements the key-set algebra behind dictionary columns.
//
// A KeySet is a sorted, duplicate-free value sequence. Union, Difference
// and PositionsOf are single merge walks over two sorted inputs, keeping
// every set-to-set operation at O(n+m) comparisons.
package keyset

import (
	"errors"
	"sort"

	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/internal/bitvec"
	"github.com/hupe1980/dictcol/resource"
)

// Absent marks a value with no position in the target key set.
const Absent = -1

// ErrNotSorted is returned by New when the values are not strictly increasing.
var ErrNotSorted = errors.New("keyset: values are not sorted and unique")

// KeySet is a sorted, duplicate-free sequence of non-null values.
// The zero KeySet is empty and has no domain.
type KeySet struct {
	values datum.Values
}

// New wraps values after verifying they are strictly increasing.
func New(values datum.Values) (KeySet, error) {
	if !datum.IsSortedUnique(values) {
		return KeySet{}, ErrNotSorted
	}
	return KeySet{values: values}, nil
}

// FromSorted wraps values the caller certifies are strictly increasing.
// Used on sequences produced by the algebra itself, where sortedness holds
// by construction.
func FromSorted(values datum.Values) KeySet {
	return KeySet{values: values}
}

// Values returns the backing sequence.
func (k KeySet) Values() datum.Values { return k.values }

// Len returns the number of keys.
func (k KeySet) Len() int {
	if k.values == nil {
		return 0
	}
	return k.values.Len()
}

// Type returns the key domain tag.
func (k KeySet) Type() datum.Type {
	if k.values == nil {
		return datum.Invalid
	}
	return k.values.Type()
}

// Release returns the backing buffers to their allocator (no-op on views).
func (k KeySet) Release() {
	if k.values != nil {
		k.values.Release()
	}
}

// Build creates a KeySet from an arbitrary value sequence: null entries
// (per validity; nil means all valid) are dropped, the remainder is sorted
// under the domain order and deduplicated. The result owns buffers from a.
func Build(a *resource.Allocator, values datum.Values, validity *bitvec.Vector) (KeySet, error) {
	rows := make([]int, 0, values.Len())
	for i := 0; i < values.Len(); i++ {
		if validity.IsSet(i) {
			rows = append(rows, i)
		}
	}

	sort.Slice(rows, func(x, y int) bool {
		return values.Compare(rows[x], values, rows[y]) < 0
	})

	distinct := rows[:0]
	for i, row := range rows {
		if i == 0 || values.Compare(distinct[len(distinct)-1], values, row) != 0 {
			distinct = append(distinct, row)
		}
	}

	out, err := values.Gather(a, distinct)
	if err != nil {
		return KeySet{}, err
	}
	return KeySet{values: out}, nil
}

// Union merges two key sets into a sorted, duplicate-free superset owned
// by a. Values equal under the domain order are taken from x.
func Union(a *resource.Allocator, x, y KeySet) (KeySet, error) {
	if x.Len() == 0 && y.Len() == 0 {
		return emptyLike(a, x, y)
	}

	picks := make([]datum.Pick, 0, x.Len()+y.Len())
	i, j := 0, 0
	for i < x.Len() && j < y.Len() {
		switch c := x.values.Compare(i, y.values, j); {
		case c < 0:
			picks = append(picks, datum.Pick{Index: i})
			i++
		case c > 0:
			picks = append(picks, datum.Pick{FromB: true, Index: j})
			j++
		default:
			// Tie: keep the instance from x.
			picks = append(picks, datum.Pick{Index: i})
			i++
			j++
		}
	}
	for ; i < x.Len(); i++ {
		picks = append(picks, datum.Pick{Index: i})
	}
	for ; j < y.Len(); j++ {
		picks = append(picks, datum.Pick{FromB: true, Index: j})
	}

	merged, err := interleave(a, x, y, picks)
	if err != nil {
		return KeySet{}, err
	}
	return KeySet{values: merged}, nil
}

// Difference returns the keys of x not present in y, in order, owned by a.
func Difference(a *resource.Allocator, x, y KeySet) (KeySet, error) {
	rows := make([]int, 0, x.Len())
	i, j := 0, 0
	for i < x.Len() && j < y.Len() {
		switch c := x.values.Compare(i, y.values, j); {
		case c < 0:
			rows = append(rows, i)
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}
	for ; i < x.Len(); i++ {
		rows = append(rows, i)
	}

	kept, err := x.values.Gather(a, rows)
	if err != nil {
		return KeySet{}, err
	}
	return KeySet{values: kept}, nil
}

// PositionsOf returns, for each key of x, its position in y or Absent.
// One merge walk; the returned slice is transient scratch and is not
// allocator-backed.
func PositionsOf(x, y KeySet) []int {
	rel := make([]int, x.Len())
	i, j := 0, 0
	for i < x.Len() && j < y.Len() {
		switch c := x.values.Compare(i, y.values, j); {
		case c < 0:
			rel[i] = Absent
			i++
		case c > 0:
			j++
		default:
			rel[i] = j
			i++
			j++
		}
	}
	for ; i < x.Len(); i++ {
		rel[i] = Absent
	}
	return rel
}

// interleave dispatches to whichever side carries a domain, so merges with
// one empty zero-value side still work.
func interleave(a *resource.Allocator, x, y KeySet, picks []datum.Pick) (datum.Values, error) {
	if x.values != nil && y.values != nil {
		return x.values.Interleave(a, y.values, picks)
	}
	if x.values != nil {
		return x.values.Interleave(a, x.values, picks)
	}
	return y.values.Interleave(a, y.values, picks)
}

func emptyLike(a *resource.Allocator, x, y KeySet) (KeySet, error) {
	src := x.values
	if src == nil {
		src = y.values
	}
	if src == nil {
		return KeySet{}, nil
	}
	out, err := src.Zero(a, 0)
	if err != nil {
		return KeySet{}, err
	}
	return KeySet{values: out}, nil
}
