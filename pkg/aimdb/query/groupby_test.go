package query

import (
	"testing"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/stretchr/testify/require"
)

// The GROUP BY step of TQ16 (SELECT ps_partkey, SUM(ps_availqty) ...
// GROUP BY ps_partkey), run directly over a scan with no WHERE filters.
func TestGroupBySumPerGroupInFirstSeenOrder(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	partType := coltype.New(coltype.Int32)
	qtyType := coltype.New(coltype.Int32)

	tbl := mustTable(t, a, "partsupp", []coltype.Type{partType, qtyType})
	rows := []struct{ part, qty int64 }{
		{100, 10}, {200, 5}, {100, 7}, {200, 3}, {100, 2},
	}
	for _, r := range rows {
		_, err := tbl.InsertColumns([][]byte{intBytes(t, partType, r.part), intBytes(t, qtyType, r.qty)})
		require.NoError(t, err)
	}

	scan := NewScan(tbl, []string{"ps_partkey", "ps_availqty"})
	g, err := NewGroupBy(a, scan, []int{0}, []GroupSelect{
		{Rank: 0, Agg: AggNone},
		{Rank: 1, Agg: AggSum},
	}, []string{"ps_partkey", "ps_availqty"})
	require.NoError(t, err)

	out := drainAll(t, a, g)
	require.Equal(t, int64(2), out.RowCount())

	part0, err := partType.FormatText(out.ColumnBytes(0, 0))
	require.NoError(t, err)
	require.Equal(t, "100", part0)
	sum0, err := qtyType.FormatText(out.ColumnBytes(0, 1))
	require.NoError(t, err)
	require.Equal(t, "19", sum0)

	part1, err := partType.FormatText(out.ColumnBytes(1, 0))
	require.NoError(t, err)
	require.Equal(t, "200", part1)
	sum1, err := qtyType.FormatText(out.ColumnBytes(1, 1))
	require.NoError(t, err)
	require.Equal(t, "8", sum1)
}

func TestGroupByAvgIsSumOverCount(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	keyType := coltype.New(coltype.Int32)
	valType := coltype.New(coltype.Int32)

	tbl := mustTable(t, a, "t", []coltype.Type{keyType, valType})
	for _, v := range []int64{10, 20, 30} {
		_, err := tbl.InsertColumns([][]byte{intBytes(t, keyType, 1), intBytes(t, valType, v)})
		require.NoError(t, err)
	}

	scan := NewScan(tbl, []string{"k", "v"})
	g, err := NewGroupBy(a, scan, []int{0}, []GroupSelect{
		{Rank: 0, Agg: AggNone},
		{Rank: 1, Agg: AggAvg},
	}, []string{"k", "v"})
	require.NoError(t, err)

	out := drainAll(t, a, g)
	require.Equal(t, int64(1), out.RowCount())
	avg, err := valType.FormatText(out.ColumnBytes(0, 1))
	require.NoError(t, err)
	require.Equal(t, "20", avg)
}
