package result

import (
	"bytes"
	"testing"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// decodedRows renders every row of tbl as its FormatText values, for
// structural comparison against an expected fixture.
func decodedRows(t *testing.T, tbl *Table) [][]string {
	t.Helper()
	rows := make([][]string, 0, tbl.RowCount())
	for r := int64(0); r < tbl.RowCount(); r++ {
		row := make([]string, len(tbl.colTypes))
		for col, typ := range tbl.colTypes {
			text, err := typ.FormatText(tbl.ColumnBytes(r, col))
			require.NoError(t, err)
			row[col] = text
		}
		rows = append(rows, row)
	}
	return rows
}

func TestWriteAndDump(t *testing.T) {
	a, err := arena.New(1<<16, 8)
	require.NoError(t, err)

	cols := []coltype.Type{coltype.New(coltype.Int32), coltype.NewCharN(8)}
	tbl, err := New(a, cols, 2048)
	require.NoError(t, err)

	row, ok := tbl.AppendRow()
	require.True(t, ok)

	idBuf := make([]byte, 4)
	require.NoError(t, cols[0].FormatBinary(idBuf, "7"))
	tbl.WriteColumn(row, 0, idBuf)

	nameBuf := make([]byte, 8)
	require.NoError(t, cols[1].FormatBinary(nameBuf, "alice"))
	tbl.WriteColumn(row, 1, nameBuf)

	var buf bytes.Buffer
	require.NoError(t, tbl.Dump(&buf))
	require.Equal(t, "7\talice\n", buf.String())
}

func TestDumpMatchesDecodedRowsStructurally(t *testing.T) {
	a, err := arena.New(1<<16, 8)
	require.NoError(t, err)

	cols := []coltype.Type{coltype.New(coltype.Int32), coltype.NewCharN(8)}
	tbl, err := New(a, cols, 2048)
	require.NoError(t, err)

	data := [][2]string{{"7", "alice"}, {"9", "bob"}}
	for _, d := range data {
		row, ok := tbl.AppendRow()
		require.True(t, ok)

		idBuf := make([]byte, 4)
		require.NoError(t, cols[0].FormatBinary(idBuf, d[0]))
		tbl.WriteColumn(row, 0, idBuf)

		nameBuf := make([]byte, 8)
		require.NoError(t, cols[1].FormatBinary(nameBuf, d[1]))
		tbl.WriteColumn(row, 1, nameBuf)
	}

	want := [][]string{{"7", "alice"}, {"9", "bob"}}
	got := decodedRows(t, tbl)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendRowRespectsCapacity(t *testing.T) {
	a, err := arena.New(1<<16, 8)
	require.NoError(t, err)
	cols := []coltype.Type{coltype.New(coltype.Int64)}
	tbl, err := New(a, cols, 16)
	require.NoError(t, err)
	require.Equal(t, int64(2), tbl.RowCapacity())

	_, ok := tbl.AppendRow()
	require.True(t, ok)
	_, ok = tbl.AppendRow()
	require.True(t, ok)
	_, ok = tbl.AppendRow()
	require.False(t, ok)
}
