package dictcol_test

import (
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dictcol"
	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/keyset"
	"github.com/hupe1980/dictcol/queue"
	"github.com/hupe1980/dictcol/resource"
	"github.com/hupe1980/dictcol/testutil"
)

func keyStrings(ks keyset.KeySet) []string {
	out := make([]string, ks.Len())
	for i := range out {
		out[i] = ks.Values().Value(i).(string)
	}
	return out
}

func TestRemoveKeys(t *testing.T) {
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	a := resource.NewAllocator(resource.Config{Mem: checked})

	// Rows: a, c, b, a.
	col := testutil.MustStringColumn(t, []string{"a", "b", "c"}, []uint32{0, 2, 1, 0}, nil)
	remove := testutil.MustArray(t, datum.StringValues([]string{"b"}), nil)

	out, err := dictcol.RemoveKeys(col, remove, dictcol.WithAllocator(a))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, keyStrings(out.Keys()))
	assert.Equal(t, []any{"a", "c", nil, "a"}, testutil.LogicalValues(out))
	assert.False(t, out.IsValid(2), "row holding a removed key becomes null")
	assert.Equal(t, 1, out.NullCount())
	assert.Equal(t, uint32(0), out.Indices()[0])
	assert.Equal(t, uint32(1), out.Indices()[1])

	// The input view is untouched.
	assert.Equal(t, []any{"a", "c", "b", "a"}, testutil.LogicalValues(col))

	out.Release()
	assert.Zero(t, a.MemoryUsage())
	checked.AssertSize(t, 0)
}

func TestRemoveKeysDuplicatesAndNullsInRemoveList(t *testing.T) {
	col := testutil.MustStringColumn(t, []string{"a", "b", "c"}, []uint32{0, 2, 1, 0}, nil)
	remove := testutil.MustArray(t,
		datum.StringValues([]string{"b", "b", "IGNORED"}),
		[]bool{true, true, false})

	out, err := dictcol.RemoveKeys(col, remove)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []string{"a", "c"}, keyStrings(out.Keys()))
	assert.Equal(t, []any{"a", "c", nil, "a"}, testutil.LogicalValues(out))
}

func TestRemoveAbsentKeysIsANoOp(t *testing.T) {
	col := testutil.MustStringColumn(t, []string{"a", "c"}, []uint32{1, 0}, nil)
	remove := testutil.MustArray(t, datum.StringValues([]string{"b", "z"}), nil)

	out, err := dictcol.RemoveKeys(col, remove)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []string{"a", "c"}, keyStrings(out.Keys()))
	assert.Equal(t, []any{"c", "a"}, testutil.LogicalValues(out))
	assert.Zero(t, out.NullCount())
}

func TestAddKeys(t *testing.T) {
	col := testutil.MustStringColumn(t, []string{"b", "d"}, []uint32{0, 1, 0}, nil)
	add := testutil.MustArray(t,
		datum.StringValues([]string{"c", "a", "c", "IGNORED"}),
		[]bool{true, true, true, false})

	out, err := dictcol.AddKeys(col, add)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []string{"a", "b", "c", "d"}, keyStrings(out.Keys()))
	// Logical values and validity are unchanged; only indices move.
	assert.Equal(t, []any{"b", "d", "b"}, testutil.LogicalValues(out))
	assert.Equal(t, []uint32{1, 3, 1}, out.Indices())
	assert.Zero(t, out.NullCount())
}

func TestAddExistingKeysKeepsTheKeySet(t *testing.T) {
	col := testutil.MustStringColumn(t, []string{"a", "b"}, []uint32{1, 0}, nil)
	add := testutil.MustArray(t, datum.StringValues([]string{"a"}), nil)

	out, err := dictcol.AddKeys(col, add)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []string{"a", "b"}, keyStrings(out.Keys()))
	assert.Equal(t, []uint32{1, 0}, out.Indices())
}

func TestRemoveUnusedKeys(t *testing.T) {
	// Keys b and d are never referenced by a valid row; row 3's index 1
	// is masked by its null bit and must not count as a use.
	col := testutil.MustStringColumn(t,
		[]string{"a", "b", "c", "d"},
		[]uint32{2, 0, 2, 1},
		[]bool{true, true, true, false})

	out, err := dictcol.RemoveUnusedKeys(col)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []string{"a", "c"}, keyStrings(out.Keys()))
	assert.Equal(t, []any{"c", "a", "c", nil}, testutil.LogicalValues(out))
	assert.Equal(t, 1, out.NullCount())

	// Idempotent: a second pass changes nothing.
	again, err := dictcol.RemoveUnusedKeys(out)
	require.NoError(t, err)
	defer again.Release()
	assert.Equal(t, keyStrings(out.Keys()), keyStrings(again.Keys()))
	assert.Equal(t, out.Indices(), again.Indices())
}

func TestSetKeys(t *testing.T) {
	// Rows: b, a, c.
	col := testutil.MustStringColumn(t, []string{"a", "b", "c"}, []uint32{1, 0, 2}, nil)
	keys := testutil.MustArray(t,
		datum.StringValues([]string{"b", "c", "IGNORED", "e"}),
		[]bool{true, true, false, true})

	out, err := dictcol.SetKeys(col, keys)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []string{"b", "c", "e"}, keyStrings(out.Keys()))
	assert.Equal(t, []any{"b", nil, "c"}, testutil.LogicalValues(out))
	assert.False(t, out.IsValid(1), "a is absent from the new key set")
}

func TestSetKeysRejectsUnsortedKeyList(t *testing.T) {
	col := testutil.MustStringColumn(t, []string{"a", "b"}, []uint32{0, 1}, nil)

	for _, bad := range [][]string{{"b", "a"}, {"a", "a"}} {
		keys := testutil.MustArray(t, datum.StringValues(bad), nil)
		_, err := dictcol.SetKeys(col, keys)
		assert.ErrorIs(t, err, dictcol.ErrKeysNotSorted)
		assert.ErrorIs(t, err, dictcol.ErrInvalidArgument)
	}
}

func TestKeyUpdateArgumentErrors(t *testing.T) {
	col := testutil.MustStringColumn(t, []string{"a"}, []uint32{0}, nil)

	_, err := dictcol.AddKeys(nil, testutil.MustArray(t, datum.StringValues([]string{"b"}), nil))
	assert.ErrorIs(t, err, dictcol.ErrNotDictionary)
	assert.ErrorIs(t, err, dictcol.ErrInvalidArgument)

	_, err = dictcol.AddKeys(col, nil)
	assert.ErrorIs(t, err, dictcol.ErrInvalidArgument)

	_, err = dictcol.AddKeys(col, testutil.MustArray(t, datum.Int64Values([]int64{1}), nil))
	var mismatch *dictcol.ErrTypeMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, datum.String, mismatch.Expected)
	assert.Equal(t, datum.Int64, mismatch.Actual)
	assert.ErrorIs(t, err, dictcol.ErrInvalidArgument)
}

func TestKeyUpdateAllocationFailure(t *testing.T) {
	tiny := resource.NewAllocator(resource.Config{MemoryLimitBytes: 1})

	col := testutil.MustStringColumn(t, []string{"a"}, []uint32{0}, nil)
	add := testutil.MustArray(t, datum.StringValues([]string{"b"}), nil)

	_, err := dictcol.AddKeys(col, add, dictcol.WithAllocator(tiny))
	assert.ErrorIs(t, err, dictcol.ErrAllocationFailure)
	assert.NotErrorIs(t, err, dictcol.ErrInvalidArgument)
	assert.Zero(t, tiny.MemoryUsage(), "a failed operation leaks nothing")
}

func TestKeyUpdatesChainOnOneQueue(t *testing.T) {
	q := queue.New()
	defer q.Close() //nolint:errcheck

	col := testutil.MustStringColumn(t, []string{"b", "d"}, []uint32{0, 1, 0}, nil)
	add := testutil.MustArray(t, datum.StringValues([]string{"a", "c"}), nil)

	// The first result feeds the second call before it has materialized;
	// ordering on the shared queue makes that safe.
	widened, err := dictcol.AddKeys(col, add, dictcol.WithQueue(q))
	require.NoError(t, err)
	pruned, err := dictcol.RemoveUnusedKeys(widened, dictcol.WithQueue(q))
	require.NoError(t, err)

	require.NoError(t, q.Wait())
	defer widened.Release()
	defer pruned.Release()

	assert.Equal(t, []string{"a", "b", "c", "d"}, keyStrings(widened.Keys()))
	assert.Equal(t, []string{"b", "d"}, keyStrings(pruned.Keys()))
	assert.Equal(t, []any{"b", "d", "b"}, testutil.LogicalValues(pruned))
}

func TestDecodedKeyListChainsOnOneQueue(t *testing.T) {
	q := queue.New()
	defer q.Close() //nolint:errcheck

	col := testutil.MustStringColumn(t, []string{"a"}, []uint32{0}, nil)
	src := testutil.MustStringColumn(t, []string{"b", "c"}, []uint32{0, 1}, nil)

	// The decoded array feeds AddKeys before it has materialized.
	decoded, err := dictcol.Decode(src, dictcol.WithQueue(q))
	require.NoError(t, err)
	out, err := dictcol.AddKeys(col, decoded, dictcol.WithQueue(q))
	require.NoError(t, err)

	require.NoError(t, q.Wait())
	defer decoded.Release()
	defer out.Release()

	assert.Equal(t, []string{"a", "b", "c"}, keyStrings(out.Keys()))
	assert.Equal(t, []any{"a"}, testutil.LogicalValues(out))
}

func TestChainedDomainMismatchSurfacesFromWait(t *testing.T) {
	q := queue.New()
	defer q.Close() //nolint:errcheck

	col := testutil.MustStringColumn(t, []string{"a"}, []uint32{0}, nil)
	add := testutil.MustArray(t, datum.StringValues([]string{"b"}), nil)

	pending, err := dictcol.AddKeys(col, add, dictcol.WithQueue(q))
	require.NoError(t, err)

	// The pending column's domain cannot be checked at submission; the
	// mismatch is detected when the task runs.
	_, err = dictcol.AddKeys(pending, testutil.MustArray(t, datum.Int64Values([]int64{1}), nil), dictcol.WithQueue(q))
	require.NoError(t, err)

	err = q.Wait()
	assert.ErrorIs(t, err, dictcol.ErrAsyncExecution)
	assert.ErrorIs(t, err, dictcol.ErrInvalidArgument)
	pending.Release()
}

func TestSetKeysPendingKeyList(t *testing.T) {
	q := queue.New()
	defer q.Close() //nolint:errcheck

	col := testutil.MustStringColumn(t, []string{"a", "b"}, []uint32{1, 0}, nil)

	// Decoding keys [a,b] through rows [a,b] yields a sorted pending list.
	sortedSrc := testutil.MustStringColumn(t, []string{"a", "b"}, []uint32{0, 1}, nil)
	sortedList, err := dictcol.Decode(sortedSrc, dictcol.WithQueue(q))
	require.NoError(t, err)
	out, err := dictcol.SetKeys(col, sortedList, dictcol.WithQueue(q))
	require.NoError(t, err)
	require.NoError(t, q.Wait())
	assert.Equal(t, []any{"b", "a"}, testutil.LogicalValues(out))
	sortedList.Release()
	out.Release()

	// Rows [b,a] decode to an unsorted list; the sortedness check runs in
	// the task and surfaces from Wait.
	unsortedSrc := testutil.MustStringColumn(t, []string{"a", "b"}, []uint32{1, 0}, nil)
	unsortedList, err := dictcol.Decode(unsortedSrc, dictcol.WithQueue(q))
	require.NoError(t, err)
	_, err = dictcol.SetKeys(col, unsortedList, dictcol.WithQueue(q))
	require.NoError(t, err)

	err = q.Wait()
	assert.ErrorIs(t, err, dictcol.ErrAsyncExecution)
	assert.ErrorIs(t, err, dictcol.ErrKeysNotSorted)
	unsortedList.Release()
}

func TestAsyncFailureSurfacesFromWait(t *testing.T) {
	tiny := resource.NewAllocator(resource.Config{MemoryLimitBytes: 1})
	q := queue.New()
	defer q.Close() //nolint:errcheck

	col := testutil.MustStringColumn(t, []string{"a"}, []uint32{0}, nil)
	add := testutil.MustArray(t, datum.StringValues([]string{"b"}), nil)

	// Submission succeeds; the allocation fails when the task runs.
	_, err := dictcol.AddKeys(col, add, dictcol.WithQueue(q), dictcol.WithAllocator(tiny))
	require.NoError(t, err)

	err = q.Wait()
	assert.ErrorIs(t, err, dictcol.ErrAsyncExecution)
	assert.ErrorIs(t, err, dictcol.ErrAllocationFailure)

	// The failure is sticky until the queue goes away.
	assert.ErrorIs(t, q.Wait(), dictcol.ErrAsyncExecution)
}

func TestKeyUpdateRecordsMetrics(t *testing.T) {
	metrics := &dictcol.BasicMetricsCollector{}

	col := testutil.MustStringColumn(t, []string{"a", "b"}, []uint32{0, 1}, nil)
	add := testutil.MustArray(t, datum.StringValues([]string{"c"}), nil)

	out, err := dictcol.AddKeys(col, add, dictcol.WithMetrics(metrics))
	require.NoError(t, err)
	out.Release()

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.KeyUpdateCount)
	assert.Equal(t, int64(2), stats.KeyUpdateRows)
	assert.Zero(t, stats.KeyUpdateErrors)
}
