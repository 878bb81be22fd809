package query

import (
	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
)

// groupKeySeparator joins the text forms of group-key columns before
// hashing/map-keying a composite key. It never appears in a formatted
// scalar value.
const groupKeySeparator = "\x1f"

// GroupSelect is one output column of a GroupBy: either a passthrough of
// a group-key column (AggNone) or an aggregate over a child column.
type GroupSelect struct {
	Rank int
	Agg  AggMethod
}

// groupAccum is the running state for one distinct group.
type groupAccum struct {
	values [][]byte // per select column: AggNone/Max/Min winning bytes
	sums   []float64
	count  int64
}

// GroupBy wraps a child and a list of output columns, each either a
// group-key passthrough or an aggregate. It drains the child fully in
// Init, hashing each row's group-key columns into a map keyed by their
// concatenated text form, and emits one row per distinct group, in
// first-seen order.
type GroupBy struct {
	child    Operator
	keyRanks []int
	selects  []GroupSelect
	schema   Schema

	scratch *result.Table
	groups  map[string]*groupAccum
	order   []string
	cursor  int
}

// NewGroupBy builds a GroupBy over child, grouping by keyRanks (child
// schema ranks) and producing selects in order. names supplies the
// output column name for each select (typically the source column's
// name, regardless of aggregate method).
func NewGroupBy(a *arena.Arena, child Operator, keyRanks []int, selects []GroupSelect, names []string) (*GroupBy, error) {
	childCols := child.Schema().Columns
	outCols := make([]coltype.Type, len(selects))
	for i, sel := range selects {
		if sel.Agg == AggCount {
			outCols[i] = coltype.New(coltype.Int64)
		} else {
			outCols[i] = childCols[sel.Rank]
		}
	}
	scratch, err := result.New(a, childCols, scratchCapacityBytes)
	if err != nil {
		return nil, err
	}
	return &GroupBy{
		child:    child,
		keyRanks: keyRanks,
		selects:  selects,
		schema:   Schema{Columns: outCols, Names: append([]string{}, names...)},
		scratch:  scratch,
	}, nil
}

func (g *GroupBy) Init() error {
	if err := g.child.Init(); err != nil {
		return err
	}
	g.groups = make(map[string]*groupAccum)
	g.order = nil
	g.cursor = 0
	childCols := g.child.Schema().Columns

	for {
		g.scratch.Reset()
		produced, err := g.child.Next(g.scratch)
		if err != nil {
			return err
		}
		if !produced {
			break
		}

		key, err := g.groupKey(childCols)
		if err != nil {
			return err
		}
		acc, exists := g.groups[key]
		if !exists {
			acc = &groupAccum{
				values: make([][]byte, len(g.selects)),
				sums:   make([]float64, len(g.selects)),
			}
			g.groups[key] = acc
			g.order = append(g.order, key)
		}
		acc.count++

		for i, sel := range g.selects {
			data := g.scratch.ColumnBytes(0, sel.Rank)
			t := childCols[sel.Rank]
			switch sel.Agg {
			case AggNone:
				if !exists {
					acc.values[i] = cloneBytes(data)
				}
			case AggCount:
				// value materialized from acc.count at read time.
			case AggSum, AggAvg:
				acc.sums[i] += t.AsFloat64(data)
			case AggMax:
				if !exists || t.Compare(data, acc.values[i]) > 0 {
					acc.values[i] = cloneBytes(data)
				}
			case AggMin:
				if !exists || t.Compare(data, acc.values[i]) < 0 {
					acc.values[i] = cloneBytes(data)
				}
			}
		}
	}
	return nil
}

func (g *GroupBy) groupKey(childCols []coltype.Type) (string, error) {
	key := ""
	for i, rank := range g.keyRanks {
		if i > 0 {
			key += groupKeySeparator
		}
		text, err := childCols[rank].FormatText(g.scratch.ColumnBytes(0, rank))
		if err != nil {
			return "", err
		}
		key += text
	}
	return key, nil
}

func (g *GroupBy) Next(out *result.Table) (bool, error) {
	if g.cursor >= len(g.order) {
		return false, nil
	}
	acc := g.groups[g.order[g.cursor]]
	g.cursor++

	row, ok := out.AppendRow()
	if !ok {
		g.cursor--
		return false, nil
	}
	for i, sel := range g.selects {
		outType := g.schema.Columns[i]
		buf := make([]byte, outType.Size)
		switch sel.Agg {
		case AggCount:
			outType.PutFloat64(buf, float64(acc.count))
		case AggSum:
			outType.PutFloat64(buf, acc.sums[i])
		case AggAvg:
			outType.PutFloat64(buf, acc.sums[i]/float64(acc.count))
		default: // AggNone, AggMax, AggMin
			copy(buf, acc.values[i])
		}
		out.WriteColumn(row, i, buf)
	}
	return true, nil
}

func (g *GroupBy) IsEnd() bool {
	return g.cursor >= len(g.order)
}

func (g *GroupBy) Close() error {
	return g.child.Close()
}

func (g *GroupBy) Schema() Schema { return g.schema }

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
