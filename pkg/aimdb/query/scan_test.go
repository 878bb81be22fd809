package query

import (
	"strconv"
	"testing"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
	"github.com/stretchr/testify/require"
)

func TestScanSkipsTombstonesInOrdinalOrder(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	idType := coltype.New(coltype.Int32)
	nameType := coltype.NewCharN(8)
	tbl := mustTable(t, a, "t", []coltype.Type{idType, nameType})

	for i, name := range []string{"alice", "bob", "carol"} {
		_, err := tbl.InsertColumns([][]byte{intBytes(t, idType, int64(i)), charBytes(t, nameType, name)})
		require.NoError(t, err)
	}
	require.NoError(t, tbl.Delete(1))

	s := NewScan(tbl, []string{"id", "name"})
	out := drainAll(t, a, s)
	require.Equal(t, int64(2), out.RowCount())

	name0, err := nameType.FormatText(out.ColumnBytes(0, 1))
	require.NoError(t, err)
	require.Equal(t, "alice", name0)
	name1, err := nameType.FormatText(out.ColumnBytes(1, 1))
	require.NoError(t, err)
	require.Equal(t, "carol", name1)
}

func TestScanResumesAcrossPagesWithoutLosingRows(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	idType := coltype.New(coltype.Int32)
	tbl := mustTable(t, a, "t", []coltype.Type{idType})
	for i := 0; i < 5; i++ {
		_, err := tbl.InsertColumns([][]byte{intBytes(t, idType, int64(i))})
		require.NoError(t, err)
	}

	s := NewScan(tbl, []string{"id"})
	require.NoError(t, s.Init())

	var seen []int64
	for !s.IsEnd() {
		// A tiny buffer forces a fresh page per loop iteration, exercising
		// the same resume path a real pagination caller relies on.
		pageBuf, err := result.New(a, []coltype.Type{idType}, 8)
		require.NoError(t, err)
		for {
			produced, err := s.Next(pageBuf)
			require.NoError(t, err)
			if !produced {
				break
			}
		}
		for r := int64(0); r < pageBuf.RowCount(); r++ {
			v, err := idType.FormatText(pageBuf.ColumnBytes(r, 0))
			require.NoError(t, err)
			n, err := strconv.Atoi(v)
			require.NoError(t, err)
			seen = append(seen, int64(n))
		}
	}
	require.Equal(t, []int64{0, 1, 2, 3, 4}, seen)
}
