package query

import (
	"testing"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/stretchr/testify/require"
)

// TQ6: two-table equi-join, row count equal to the larger (probe) side,
// each probe row matching exactly one build row.
func TestHashJoinTwoTableEquiJoin(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	keyType := coltype.New(coltype.Int32)
	nameType := coltype.NewCharN(8)
	priceType := coltype.New(coltype.Float64)

	customer := mustTable(t, a, "customer", []coltype.Type{keyType, nameType})
	for i, name := range []string{"alice", "bob"} {
		_, err := customer.InsertColumns([][]byte{intBytes(t, keyType, int64(i)), charBytes(t, nameType, name)})
		require.NoError(t, err)
	}

	orders := mustTable(t, a, "orders", []coltype.Type{keyType, priceType})
	orderRows := []struct {
		cust  int64
		price float64
	}{{0, 10}, {0, 20}, {1, 30}}
	for _, o := range orderRows {
		_, err := orders.InsertColumns([][]byte{intBytes(t, keyType, o.cust), floatBytes(t, priceType, o.price)})
		require.NoError(t, err)
	}

	custScan := NewScan(customer, []string{"c_custkey", "c_name"})
	orderScan := NewScan(orders, []string{"o_custkey", "o_totalprice"})

	// orders is the larger side, so it is the probe (child 0).
	join, err := NewHashJoin(a, orderScan, custScan, 0, 0)
	require.NoError(t, err)

	out := drainAll(t, a, join)
	require.Equal(t, int64(len(orderRows)), out.RowCount())
}

func TestHashJoinEmitsAllMatchingBuildRows(t *testing.T) {
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	keyType := coltype.New(coltype.Int32)

	probeTbl := mustTable(t, a, "probe", []coltype.Type{keyType})
	_, err = probeTbl.InsertColumns([][]byte{intBytes(t, keyType, 7)})
	require.NoError(t, err)

	buildTbl := mustTable(t, a, "build", []coltype.Type{keyType})
	for i := 0; i < 3; i++ {
		_, err := buildTbl.InsertColumns([][]byte{intBytes(t, keyType, 7)})
		require.NoError(t, err)
	}

	probe := NewScan(probeTbl, []string{"k"})
	build := NewScan(buildTbl, []string{"k"})
	join, err := NewHashJoin(a, probe, build, 0, 0)
	require.NoError(t, err)

	out := drainAll(t, a, join)
	require.Equal(t, int64(3), out.RowCount())
}
