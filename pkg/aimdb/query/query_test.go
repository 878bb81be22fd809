package query

import (
	"strconv"
	"testing"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
	"github.com/aimdb/aimdb/pkg/aimdb/rowstore"
	"github.com/stretchr/testify/require"
)

// memTables is a minimal TableSource over in-memory row tables, standing
// in for the catalog in these operator-tree tests.
type memTables struct {
	handles map[string]TableHandle
}

func newMemTables() *memTables {
	return &memTables{handles: make(map[string]TableHandle)}
}

func (m *memTables) add(name string, handle TableHandle) {
	m.handles[name] = handle
}

func (m *memTables) Table(name string) (TableHandle, error) {
	h, ok := m.handles[name]
	if !ok {
		return TableHandle{}, ErrUnknownTable
	}
	return h, nil
}

func mustTable(t *testing.T, a *arena.Arena, name string, cols []coltype.Type) *rowstore.RowTable {
	t.Helper()
	pattern := rowstore.NewRowPattern()
	for _, c := range cols {
		pattern.AddColumn(c)
	}
	pattern.Seal()
	tbl, err := rowstore.NewRowTable(name, a, pattern)
	require.NoError(t, err)
	return tbl
}

func intBytes(t *testing.T, typ coltype.Type, v int64) []byte {
	t.Helper()
	buf := make([]byte, typ.Size)
	require.NoError(t, typ.FormatBinary(buf, strconv.FormatInt(v, 10)))
	return buf
}

func floatBytes(t *testing.T, typ coltype.Type, v float64) []byte {
	t.Helper()
	buf := make([]byte, typ.Size)
	require.NoError(t, typ.FormatBinary(buf, strconv.FormatFloat(v, 'f', -1, 64)))
	return buf
}

func charBytes(t *testing.T, typ coltype.Type, s string) []byte {
	t.Helper()
	buf := make([]byte, typ.Size)
	require.NoError(t, typ.FormatBinary(buf, s))
	return buf
}

func drainAll(t *testing.T, a *arena.Arena, op Operator) *result.Table {
	t.Helper()
	require.NoError(t, op.Init())
	out, err := result.New(a, op.Schema().Columns, 8192)
	require.NoError(t, err)
	for {
		produced, err := op.Next(out)
		require.NoError(t, err)
		if !produced {
			break
		}
	}
	require.NoError(t, op.Close())
	return out
}
