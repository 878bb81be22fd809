package query

import (
	"sort"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
)

// OrderBy drains its child fully in Init, sorts the buffered rows
// lexicographically over the given ranks, and emits them in that order.
//
// Go's sort.Slice is not guaranteed stable, matching the source's
// non-stable quicksort: rows that compare equal on every order column
// may come out in either relative order (spec.md §9's ordering note;
// DESIGN.md records this as a deliberate open-question resolution).
type OrderBy struct {
	child    Operator
	ranks    []int
	colTypes []coltype.Type

	scratch *result.Table
	rows    [][][]byte
	cursor  int
}

// NewOrderBy builds an OrderBy over child, sorting by ranks (child
// schema ranks) in the given priority order, ascending.
func NewOrderBy(a *arena.Arena, child Operator, ranks []int) (*OrderBy, error) {
	scratch, err := result.New(a, child.Schema().Columns, scratchCapacityBytes)
	if err != nil {
		return nil, err
	}
	return &OrderBy{
		child:    child,
		ranks:    ranks,
		colTypes: child.Schema().Columns,
		scratch:  scratch,
	}, nil
}

func (o *OrderBy) Init() error {
	if err := o.child.Init(); err != nil {
		return err
	}
	o.rows = nil
	o.cursor = 0
	cols := o.colTypes
	for {
		o.scratch.Reset()
		produced, err := o.child.Next(o.scratch)
		if err != nil {
			return err
		}
		if !produced {
			break
		}
		row := make([][]byte, len(cols))
		for c := range cols {
			row[c] = cloneBytes(o.scratch.ColumnBytes(0, c))
		}
		o.rows = append(o.rows, row)
	}
	sort.Slice(o.rows, func(i, j int) bool {
		a, b := o.rows[i], o.rows[j]
		for _, rank := range o.ranks {
			cmp := cols[rank].Compare(a[rank], b[rank])
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return nil
}

func (o *OrderBy) Next(out *result.Table) (bool, error) {
	if o.cursor >= len(o.rows) {
		return false, nil
	}
	row := o.rows[o.cursor]
	outRow, ok := out.AppendRow()
	if !ok {
		return false, nil
	}
	o.cursor++
	for c, data := range row {
		out.WriteColumn(outRow, c, data)
	}
	return true, nil
}

func (o *OrderBy) IsEnd() bool {
	return o.cursor >= len(o.rows)
}

func (o *OrderBy) Close() error {
	return o.child.Close()
}

func (o *OrderBy) Schema() Schema {
	return o.child.Schema()
}
