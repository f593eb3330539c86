package dictcol

import (
	"fmt"

	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/internal/bitvec"
	"github.com/hupe1980/dictcol/internal/conv"
	"github.com/hupe1980/dictcol/keyset"
	"github.com/hupe1980/dictcol/resource"
)

// Column is a dictionary-encoded column: a sorted key set, one key-set
// position per row, and a per-row validity bit. The three parts are
// co-owned as one unit.
//
// Invariants: for every valid row i, indices[i] < keys.Len(); the index of
// a null row carries no meaning and is never dereferenced. The logical
// value at row i is null if the row is invalid, otherwise the key at
// indices[i].
//
// Engine operations treat their input columns as read-only views and
// return freshly allocated columns. A column returned by the engine owns
// its buffers; releasing it is the caller's responsibility from the moment
// it is returned.
type Column struct {
	keys     keyset.KeySet
	indices  []uint32
	idxBuf   []byte
	validity *bitvec.Vector
	alloc    *resource.Allocator // non-nil when the engine owns the buffers
}

// NewColumn builds a dictionary column view over caller storage.
//
// keys must be a valid key set for the value domain; valid marks per-row
// validity (nil means every row is valid) and must match indices in
// length. Every valid row's index is checked against the key-set size.
func NewColumn(keys keyset.KeySet, indices []uint32, valid []bool) (*Column, error) {
	if keys.Values() == nil {
		return nil, fmt.Errorf("%w: key set has no value domain", ErrInvalidArgument)
	}
	if _, err := conv.IntToUint32(keys.Len()); err != nil {
		return nil, fmt.Errorf("%w: key set too large: %w", ErrInvalidArgument, err)
	}
	if valid != nil && len(valid) != len(indices) {
		return nil, fmt.Errorf("%w: validity length %d does not match %d rows", ErrInvalidArgument, len(valid), len(indices))
	}

	var validity *bitvec.Vector
	if valid != nil {
		validity = bitvec.FromBools(valid)
	}

	for i, idx := range indices {
		if validity.IsSet(i) && int(idx) >= keys.Len() {
			return nil, fmt.Errorf("%w: row %d references key %d of %d", ErrInvalidArgument, i, idx, keys.Len())
		}
	}

	return &Column{keys: keys, indices: indices, validity: validity}, nil
}

func (c *Column) fill(keys keyset.KeySet, indices []uint32, idxBuf []byte, validity *bitvec.Vector) {
	c.keys = keys
	c.indices = indices
	c.idxBuf = idxBuf
	c.validity = validity
}

// NumRows returns the row count.
func (c *Column) NumRows() int { return len(c.indices) }

// Keys returns the column's key set.
func (c *Column) Keys() keyset.KeySet { return c.keys }

// KeyType returns the key value domain tag.
func (c *Column) KeyType() datum.Type { return c.keys.Type() }

// Indices returns the per-row key positions. Entries of null rows are
// meaningless and must not be dereferenced.
func (c *Column) Indices() []uint32 { return c.indices }

// IsValid reports whether row i holds a value (true) or null (false).
func (c *Column) IsValid(i int) bool { return c.validity.IsSet(i) }

// NullCount returns the number of null rows.
func (c *Column) NullCount() int {
	if c.validity == nil {
		return 0
	}
	return c.NumRows() - c.validity.SetCount()
}

// Value materializes the logical value at row i; nil for null rows.
// Intended for tests and debugging, not hot paths.
func (c *Column) Value(i int) any {
	if !c.IsValid(i) {
		return nil
	}
	return c.keys.Values().Value(int(c.indices[i]))
}

// Release returns the column's buffers to the allocator that created them.
// No-op on views built with NewColumn.
func (c *Column) Release() {
	if c == nil || c.alloc == nil {
		return
	}
	c.keys.Release()
	c.alloc.Free(c.idxBuf)
	c.idxBuf = nil
	c.indices = nil
	c.validity.Release()
}

// TableColumn is one member of a ColumnGroup: either a dictionary-encoded
// *Column or any other column representation (carried as an opaque
// pass-through, typically *Array).
type TableColumn interface {
	NumRows() int
}

// ColumnGroup is an ordered sequence of columns sharing a row count
// ("table"). Groups compared by MatchTables must share a schema: the same
// column count and, per position, the same dictionary-ness and key domain.
type ColumnGroup []TableColumn
