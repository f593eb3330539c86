package datum

import (
	"github.com/hupe1980/dictcol/resource"
)

// Pick selects one element of a two-source merge: either element Index of
// the receiver (source A) or element Index of the other sequence (source B).
type Pick struct {
	FromB bool
	Index int
}

// Values is a read-only, typed element sequence.
//
// Compare, Gather and Interleave assume the other sequence (when present)
// belongs to the same domain; callers must check with SameDomain first.
// The method set is intentionally unimplementable outside this package to
// keep the domain set closed.
type Values interface {
	// Type returns the domain tag.
	Type() Type

	// Len returns the number of elements.
	Len() int

	// Compare orders element i of the receiver against element j of other
	// under the domain's total order, returning <0, 0 or >0.
	Compare(i int, other Values, j int) int

	// Value materializes element i as a Go value. Intended for decoding
	// and tests, not for hot paths.
	Value(i int) any

	// Gather builds a new sequence containing, for each k, the element at
	// rows[k]. The result owns buffers from a.
	Gather(a *resource.Allocator, rows []int) (Values, error)

	// Interleave builds a new sequence by taking each pick from the
	// receiver (source A) or other (source B). The result owns buffers
	// from a.
	Interleave(a *resource.Allocator, other Values, picks []Pick) (Values, error)

	// Zero builds a sequence of n zero-valued elements of this domain,
	// owned by a. Used to back rows whose content is never read.
	Zero(a *resource.Allocator, n int) (Values, error)

	// Release returns owned buffers to their allocator. No-op on views.
	Release()

	sameDomain(other Values) bool
}

// SameDomain reports whether two sequences belong to the same value domain,
// including element domains of lists.
func SameDomain(a, b Values) bool {
	if a == nil || b == nil {
		return false
	}
	return a.sameDomain(b)
}

// Equal reports whether element i of a equals element j of b.
func Equal(a Values, i int, b Values, j int) bool {
	return a.Compare(i, b, j) == 0
}

// IsSortedUnique reports whether v is strictly increasing.
func IsSortedUnique(v Values) bool {
	for i := 0; i+1 < v.Len(); i++ {
		if v.Compare(i, v, i+1) >= 0 {
			return false
		}
	}
	return true
}

// Copy duplicates v into buffers owned by a.
func Copy(a *resource.Allocator, v Values) (Values, error) {
	rows := make([]int, v.Len())
	for i := range rows {
		rows[i] = i
	}
	return v.Gather(a, rows)
}
