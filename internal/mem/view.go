package mem

import (
	"unsafe"
)

// SizeOf returns the size of T in bytes.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// BytesFor returns the number of buffer bytes needed to hold n elements of T.
func BytesFor[T any](n int) int {
	return n * SizeOf[T]()
}

// View reinterprets a byte buffer as a slice of T. The returned slice shares
// the buffer's storage; the buffer must stay alive as long as the view is used.
//
// The element count is len(b)/sizeof(T); trailing bytes that do not fill a
// whole element are ignored.
func View[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	n := len(b) / SizeOf[T]()
	if n == 0 {
		return nil
	}
	ptr := unsafe.Pointer(&b[0])      //nolint:gosec // unsafe is required to retype the buffer
	return unsafe.Slice((*T)(ptr), n) //nolint:gosec // unsafe is required to retype the buffer
}
