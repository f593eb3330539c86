package datum

import (
	"github.com/hupe1980/dictcol/internal/mem"
	"github.com/hupe1980/dictcol/resource"
)

// numericElem is the set of fixed-width element types sharing one
// implementation. Timestamp and Duration reuse int64 storage under their
// own tags.
type numericElem interface {
	~int32 | ~int64 | ~uint32 | ~uint64 | ~float32 | ~float64
}

type numericValues[T numericElem] struct {
	typ   Type
	data  []T
	buf   []byte
	alloc *resource.Allocator
}

// Int32Values returns a view over v in the Int32 domain.
func Int32Values(v []int32) Values { return &numericValues[int32]{typ: Int32, data: v} }

// Int64Values returns a view over v in the Int64 domain.
func Int64Values(v []int64) Values { return &numericValues[int64]{typ: Int64, data: v} }

// Uint32Values returns a view over v in the Uint32 domain.
func Uint32Values(v []uint32) Values { return &numericValues[uint32]{typ: Uint32, data: v} }

// Uint64Values returns a view over v in the Uint64 domain.
func Uint64Values(v []uint64) Values { return &numericValues[uint64]{typ: Uint64, data: v} }

// Float32Values returns a view over v in the Float32 domain.
func Float32Values(v []float32) Values { return &numericValues[float32]{typ: Float32, data: v} }

// Float64Values returns a view over v in the Float64 domain.
func Float64Values(v []float64) Values { return &numericValues[float64]{typ: Float64, data: v} }

// TimestampValues returns a view over epoch-offset instants.
func TimestampValues(v []int64) Values { return &numericValues[int64]{typ: Timestamp, data: v} }

// DurationValues returns a view over elapsed-time values.
func DurationValues(v []int64) Values { return &numericValues[int64]{typ: Duration, data: v} }

func (n *numericValues[T]) Type() Type { return n.typ }

func (n *numericValues[T]) Len() int { return len(n.data) }

func (n *numericValues[T]) Compare(i int, other Values, j int) int {
	o := other.(*numericValues[T])
	a, b := n.data[i], o.data[j]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (n *numericValues[T]) Value(i int) any { return n.data[i] }

func (n *numericValues[T]) Gather(a *resource.Allocator, rows []int) (Values, error) {
	buf, err := a.Allocate(mem.BytesFor[T](len(rows)))
	if err != nil {
		return nil, err
	}
	out := mem.View[T](buf)
	for k, row := range rows {
		out[k] = n.data[row]
	}
	return &numericValues[T]{typ: n.typ, data: out, buf: buf, alloc: a}, nil
}

func (n *numericValues[T]) Interleave(a *resource.Allocator, other Values, picks []Pick) (Values, error) {
	o := other.(*numericValues[T])
	buf, err := a.Allocate(mem.BytesFor[T](len(picks)))
	if err != nil {
		return nil, err
	}
	out := mem.View[T](buf)
	for k, p := range picks {
		if p.FromB {
			out[k] = o.data[p.Index]
		} else {
			out[k] = n.data[p.Index]
		}
	}
	return &numericValues[T]{typ: n.typ, data: out, buf: buf, alloc: a}, nil
}

func (n *numericValues[T]) Zero(a *resource.Allocator, count int) (Values, error) {
	buf, err := a.Allocate(mem.BytesFor[T](count))
	if err != nil {
		return nil, err
	}
	out := mem.View[T](buf)
	var zero T
	for i := range out {
		out[i] = zero
	}
	return &numericValues[T]{typ: n.typ, data: out, buf: buf, alloc: a}, nil
}

func (n *numericValues[T]) Release() {
	if n.alloc == nil {
		return
	}
	n.alloc.Free(n.buf)
	n.buf = nil
	n.data = nil
}

func (n *numericValues[T]) sameDomain(other Values) bool {
	o, ok := other.(*numericValues[T])
	return ok && o.typ == n.typ
}
