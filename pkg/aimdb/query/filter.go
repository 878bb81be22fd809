package query

import (
	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
)

// scratchCapacityBytes is the buffer size requested for every operator's
// one-row pull scratch. A single row never approaches this; it only needs
// to be large enough for the widest row the engine produces.
const scratchCapacityBytes = 2048

// Filter wraps a child, comparing one column against a constant (already
// formatted to binary via the column's type) and emitting child rows for
// which the comparison holds.
type Filter struct {
	child   Operator
	colRank int
	colType coltype.Type
	op      coltype.CompareOp
	value   []byte
	scratch *result.Table
	pending bool // scratch holds a matched row not yet appended to out
}

// NewFilter builds a Filter over child, comparing the column at colRank
// against value using op.
func NewFilter(a *arena.Arena, child Operator, colRank int, op coltype.CompareOp, value []byte) (*Filter, error) {
	scratch, err := result.New(a, child.Schema().Columns, scratchCapacityBytes)
	if err != nil {
		return nil, err
	}
	return &Filter{
		child:   child,
		colRank: colRank,
		colType: child.Schema().Columns[colRank],
		op:      op,
		value:   value,
		scratch: scratch,
	}, nil
}

func (f *Filter) Init() error {
	return f.child.Init()
}

func (f *Filter) Next(out *result.Table) (bool, error) {
	if !f.pending {
		for {
			f.scratch.Reset()
			produced, err := f.child.Next(f.scratch)
			if err != nil {
				return false, err
			}
			if !produced {
				return false, nil
			}
			data := f.scratch.ColumnBytes(0, f.colRank)
			if coltype.Matches(f.op, f.colType.Compare(data, f.value)) {
				f.pending = true
				break
			}
		}
	}
	row, ok := out.AppendRow()
	if !ok {
		// scratch still holds the matched row; retried on the next call.
		return false, nil
	}
	for col := range f.child.Schema().Columns {
		out.WriteColumn(row, col, f.scratch.ColumnBytes(0, col))
	}
	f.pending = false
	return true, nil
}

func (f *Filter) IsEnd() bool {
	return f.child.IsEnd()
}

func (f *Filter) Close() error {
	return f.child.Close()
}

func (f *Filter) Schema() Schema {
	return f.child.Schema()
}
