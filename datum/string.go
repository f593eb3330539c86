package datum

import (
	"bytes"

	"github.com/hupe1980/dictcol/internal/mem"
	"github.com/hupe1980/dictcol/resource"
)

// stringValues stores n strings as n+1 offsets into one contiguous byte
// buffer, ordered byte-wise. This matches the columnar layout used by the
// rest of the system and keeps Gather/Interleave allocation-exact.
type stringValues struct {
	offsets []int32
	data    []byte

	offBuf  []byte
	dataBuf []byte
	alloc   *resource.Allocator
}

// StringValues returns a view over ss in the String domain.
func StringValues(ss []string) Values {
	offsets := make([]int32, len(ss)+1)
	size := 0
	for _, s := range ss {
		size += len(s)
	}
	data := make([]byte, 0, size)
	for i, s := range ss {
		data = append(data, s...)
		offsets[i+1] = int32(len(data))
	}
	return &stringValues{offsets: offsets, data: data}
}

func (s *stringValues) at(i int) []byte { return s.data[s.offsets[i]:s.offsets[i+1]] }

func (s *stringValues) Type() Type { return String }

func (s *stringValues) Len() int { return len(s.offsets) - 1 }

func (s *stringValues) Compare(i int, other Values, j int) int {
	o := other.(*stringValues)
	return bytes.Compare(s.at(i), o.at(j))
}

func (s *stringValues) Value(i int) any { return string(s.at(i)) }

func (s *stringValues) Gather(a *resource.Allocator, rows []int) (Values, error) {
	size := 0
	for _, row := range rows {
		size += len(s.at(row))
	}
	return buildStrings(a, len(rows), size, func(k int) []byte { return s.at(rows[k]) })
}

func (s *stringValues) Interleave(a *resource.Allocator, other Values, picks []Pick) (Values, error) {
	o := other.(*stringValues)
	pick := func(k int) []byte {
		if picks[k].FromB {
			return o.at(picks[k].Index)
		}
		return s.at(picks[k].Index)
	}
	size := 0
	for k := range picks {
		size += len(pick(k))
	}
	return buildStrings(a, len(picks), size, pick)
}

func (s *stringValues) Zero(a *resource.Allocator, count int) (Values, error) {
	return buildStrings(a, count, 0, func(int) []byte { return nil })
}

func buildStrings(a *resource.Allocator, count, size int, at func(k int) []byte) (Values, error) {
	offBuf, err := a.Allocate(mem.BytesFor[int32](count + 1))
	if err != nil {
		return nil, err
	}
	dataBuf, err := a.Allocate(size)
	if err != nil {
		a.Free(offBuf)
		return nil, err
	}

	offsets := mem.View[int32](offBuf)
	offsets[0] = 0
	pos := 0
	for k := 0; k < count; k++ {
		pos += copy(dataBuf[pos:], at(k))
		offsets[k+1] = int32(pos)
	}

	return &stringValues{
		offsets: offsets,
		data:    dataBuf,
		offBuf:  offBuf,
		dataBuf: dataBuf,
		alloc:   a,
	}, nil
}

func (s *stringValues) Release() {
	if s.alloc == nil {
		return
	}
	s.alloc.Free(s.offBuf)
	s.alloc.Free(s.dataBuf)
	s.offBuf, s.dataBuf = nil, nil
	s.offsets, s.data = nil, nil
}

func (s *stringValues) sameDomain(other Values) bool {
	_, ok := other.(*stringValues)
	return ok
}
