package hashindex

import (
	"encoding/binary"
	"testing"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/stretchr/testify/require"
)

func int32Bytes(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func TestInsertThenLookupExactKey(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)

	idx := New([]coltype.Type{coltype.New(coltype.Int32)}, 10)
	require.NoError(t, idx.Finish(a))

	rows := map[int64][]byte{
		1: int32Bytes(42),
		2: int32Bytes(99),
	}
	require.NoError(t, idx.Insert([][]byte{rows[1]}, 1))
	require.NoError(t, idx.Insert([][]byte{rows[2]}, 2))

	verify := func(key []byte) func(ptr int64) bool {
		return func(ptr int64) bool {
			return coltype.New(coltype.Int32).Compare(rows[ptr], key) == 0
		}
	}

	it := idx.Lookup([][]byte{int32Bytes(42)})
	ptr, ok := it.Next(verify(int32Bytes(42)))
	require.True(t, ok)
	require.Equal(t, int64(1), ptr)

	_, ok = it.Next(verify(int32Bytes(42)))
	require.False(t, ok)
}

func TestLookupDifferingKeyColumnReturnsFalse(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	idx := New([]coltype.Type{coltype.New(coltype.Int32)}, 10)
	require.NoError(t, idx.Finish(a))

	require.NoError(t, idx.Insert([][]byte{int32Bytes(1)}, 1))

	it := idx.Lookup([][]byte{int32Bytes(2)})
	_, ok := it.Next(func(ptr int64) bool { return true })
	require.False(t, ok)
}

func TestCompositeKeyLookupYieldsAllMatches(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	idx := New([]coltype.Type{coltype.New(coltype.Int32), coltype.New(coltype.Int32)}, 16)
	require.NoError(t, idx.Finish(a))

	type row struct{ a, b int32 }
	rows := map[int64]row{
		1: {1, 1},
		2: {1, 1},
		3: {1, 2},
	}
	for ptr, r := range rows {
		require.NoError(t, idx.Insert([][]byte{int32Bytes(r.a), int32Bytes(r.b)}, ptr))
	}

	verify := func(ptr int64) bool {
		r := rows[ptr]
		return r.a == 1 && r.b == 1
	}

	it := idx.Lookup([][]byte{int32Bytes(1), int32Bytes(1)})
	var found []int64
	for {
		p, ok := it.Next(verify)
		if !ok {
			break
		}
		found = append(found, p)
	}
	require.ElementsMatch(t, []int64{1, 2}, found)
}
