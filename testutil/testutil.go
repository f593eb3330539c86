package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/hupe1980/dictcol"
	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/keyset"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Int64s generates num random int64s in [0, max).
func (r *RNG) Int64s(num int, max int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, num)
	for i := range out {
		out[i] = r.rand.Int63n(max)
	}
	return out
}

// Strings generates num random lowercase strings of the given length.
func (r *RNG) Strings(num, length int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, num)
	buf := make([]byte, length)
	for i := range out {
		for j := range buf {
			buf[j] = byte('a' + r.rand.Intn(26))
		}
		out[i] = string(buf)
	}
	return out
}

// Indices generates num random key positions in [0, keys).
func (r *RNG) Indices(num, keys int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint32, num)
	for i := range out {
		out[i] = uint32(r.rand.Intn(keys))
	}
	return out
}

// MustKeySet builds a KeySet from values, failing the test on invalid input.
func MustKeySet(t *testing.T, values datum.Values) keyset.KeySet {
	t.Helper()
	ks, err := keyset.New(values)
	if err != nil {
		t.Fatalf("build key set: %v", err)
	}
	return ks
}

// MustStringColumn builds a string-keyed dictionary column view.
func MustStringColumn(t *testing.T, keys []string, indices []uint32, valid []bool) *dictcol.Column {
	t.Helper()
	return MustColumn(t, datum.StringValues(keys), indices, valid)
}

// MustInt64Column builds an int64-keyed dictionary column view.
func MustInt64Column(t *testing.T, keys []int64, indices []uint32, valid []bool) *dictcol.Column {
	t.Helper()
	return MustColumn(t, datum.Int64Values(keys), indices, valid)
}

// MustColumn builds a dictionary column view over the given key values.
func MustColumn(t *testing.T, keys datum.Values, indices []uint32, valid []bool) *dictcol.Column {
	t.Helper()
	col, err := dictcol.NewColumn(MustKeySet(t, keys), indices, valid)
	if err != nil {
		t.Fatalf("build column: %v", err)
	}
	return col
}

// MustArray builds a plain column view.
func MustArray(t *testing.T, values datum.Values, valid []bool) *dictcol.Array {
	t.Helper()
	arr, err := dictcol.NewArray(values, valid)
	if err != nil {
		t.Fatalf("build array: %v", err)
	}
	return arr
}

// LogicalValues materializes a dictionary column's rows, nil for nulls.
func LogicalValues(c *dictcol.Column) []any {
	out := make([]any, c.NumRows())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}
