package datum

import (
	"github.com/hupe1980/dictcol/internal/mem"
	"github.com/hupe1980/dictcol/resource"
)

// listValues stores n lists as n+1 offsets into one flat element sequence.
// Ordering is lexicographic under the element domain's order, with a
// shorter list sorting before any list it prefixes.
type listValues struct {
	elem    Values
	offsets []int32

	offBuf []byte
	alloc  *resource.Allocator
}

// ListValues returns a view over lists of elem delimited by offsets.
// offsets must hold len+1 monotonically non-decreasing entries, with
// offsets[0] == 0 and offsets[len] == elem.Len(); this is a caller
// contract, not validated here.
func ListValues(elem Values, offsets []int32) Values {
	return &listValues{elem: elem, offsets: offsets}
}

func (l *listValues) bounds(i int) (int, int) {
	return int(l.offsets[i]), int(l.offsets[i+1])
}

func (l *listValues) Type() Type { return List }

func (l *listValues) Len() int { return len(l.offsets) - 1 }

func (l *listValues) Compare(i int, other Values, j int) int {
	o := other.(*listValues)
	as, ae := l.bounds(i)
	bs, be := o.bounds(j)
	for as < ae && bs < be {
		if c := l.elem.Compare(as, o.elem, bs); c != 0 {
			return c
		}
		as++
		bs++
	}
	switch {
	case as < ae:
		return 1
	case bs < be:
		return -1
	default:
		return 0
	}
}

func (l *listValues) Value(i int) any {
	s, e := l.bounds(i)
	out := make([]any, 0, e-s)
	for k := s; k < e; k++ {
		out = append(out, l.elem.Value(k))
	}
	return out
}

func (l *listValues) Gather(a *resource.Allocator, rows []int) (Values, error) {
	var elemRows []int
	for _, row := range rows {
		s, e := l.bounds(row)
		for k := s; k < e; k++ {
			elemRows = append(elemRows, k)
		}
	}

	elem, err := l.elem.Gather(a, elemRows)
	if err != nil {
		return nil, err
	}

	return l.buildOffsets(a, elem, len(rows), func(k int) int {
		s, e := l.bounds(rows[k])
		return e - s
	})
}

func (l *listValues) Interleave(a *resource.Allocator, other Values, picks []Pick) (Values, error) {
	o := other.(*listValues)

	length := func(k int) (int, int, int) {
		p := picks[k]
		if p.FromB {
			s, e := o.bounds(p.Index)
			return s, e, e - s
		}
		s, e := l.bounds(p.Index)
		return s, e, e - s
	}

	var elemPicks []Pick
	for k := range picks {
		s, e, _ := length(k)
		for pos := s; pos < e; pos++ {
			elemPicks = append(elemPicks, Pick{FromB: picks[k].FromB, Index: pos})
		}
	}

	elem, err := l.elem.Interleave(a, o.elem, elemPicks)
	if err != nil {
		return nil, err
	}

	return l.buildOffsets(a, elem, len(picks), func(k int) int {
		_, _, n := length(k)
		return n
	})
}

func (l *listValues) Zero(a *resource.Allocator, count int) (Values, error) {
	elem, err := l.elem.Zero(a, 0)
	if err != nil {
		return nil, err
	}
	return l.buildOffsets(a, elem, count, func(int) int { return 0 })
}

func (l *listValues) buildOffsets(a *resource.Allocator, elem Values, count int, lengthOf func(k int) int) (Values, error) {
	offBuf, err := a.Allocate(mem.BytesFor[int32](count + 1))
	if err != nil {
		elem.Release()
		return nil, err
	}
	offsets := mem.View[int32](offBuf)
	offsets[0] = 0
	for k := 0; k < count; k++ {
		offsets[k+1] = offsets[k] + int32(lengthOf(k))
	}
	return &listValues{elem: elem, offsets: offsets, offBuf: offBuf, alloc: a}, nil
}

func (l *listValues) Release() {
	l.elem.Release()
	if l.alloc == nil {
		return
	}
	l.alloc.Free(l.offBuf)
	l.offBuf = nil
	l.offsets = nil
}

func (l *listValues) sameDomain(other Values) bool {
	o, ok := other.(*listValues)
	return ok && l.elem.sameDomain(o.elem)
}
