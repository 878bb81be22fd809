package query

import (
	"fmt"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
	"github.com/aimdb/aimdb/pkg/aimdb/rowstore"
)

// TableHandle names a row table and the column names the executor should
// expose in its scans, in table-pattern order.
type TableHandle struct {
	Table   *rowstore.RowTable
	Columns []string
}

// TableSource resolves a table name to the row table it should be
// scanned from. The catalog satisfies this.
type TableSource interface {
	Table(name string) (TableHandle, error)
}

// Executor builds an operator tree from a Query and drains it into
// caller-supplied result tables, one page at a time.
//
// Exec(query, out) with a non-nil query builds and inits a fresh
// operator tree, discarding any tree from a previous call. Exec(nil,
// out) resumes pulling from the tree built by the most recent non-nil
// call, into a new out. A page never holds more rows than out's own
// capacity; the caller controls page size by sizing out (spec.md's
// ⌊1024/row_length⌋ bound is enforced by allocating out with a 1024-byte
// capacity).
type Executor struct {
	a      *arena.Arena
	tables TableSource
	root   Operator
}

// NewExecutor builds an Executor resolving table names through tables
// and allocating operator scratch buffers from a.
func NewExecutor(a *arena.Arena, tables TableSource) *Executor {
	return &Executor{a: a, tables: tables}
}

// Exec runs query (building a new operator tree) or, if query is nil,
// resumes the previous one. It appends rows to out until out is full or
// the tree is exhausted, returning false once nothing more remains (and
// closing the tree at that point).
func (e *Executor) Exec(query *Query, out *result.Table) (bool, error) {
	if query != nil {
		if e.root != nil {
			_ = e.root.Close()
		}
		root, err := e.build(query)
		if err != nil {
			return false, err
		}
		if err := root.Init(); err != nil {
			return false, err
		}
		e.root = root
	}
	if e.root == nil {
		return false, ErrNoActiveQuery
	}

	produced := false
	for {
		ok, err := e.root.Next(out)
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		produced = true
	}
	if !produced {
		err := e.root.Close()
		e.root = nil
		return false, err
	}
	return true, nil
}

func (e *Executor) build(q *Query) (Operator, error) {
	filters := make(map[string][]Condition)
	var links []Condition
	for _, c := range q.Where {
		if c.Op == OpLink {
			links = append(links, c)
		} else {
			filters[c.Column.Table] = append(filters[c.Column.Table], c)
		}
	}

	handles := make(map[string]TableHandle, len(q.From))
	ops := make(map[string]Operator, len(q.From))
	for _, name := range q.From {
		handle, err := e.tables.Table(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
		}
		handles[name] = handle

		var op Operator = NewScan(handle.Table, handle.Columns)
		for _, cond := range filters[name] {
			filtered, err := e.applyFilter(op, cond)
			if err != nil {
				return nil, err
			}
			op = filtered
		}
		ops[name] = op
	}

	for _, link := range links {
		leftName, rightName := link.Column.Table, link.Link.Table
		leftOp, rightOp := ops[leftName], ops[rightName]

		leftRank, ok := leftOp.Schema().RankOf(link.Column.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, leftName, link.Column.Column)
		}
		rightRank, ok := rightOp.Schema().RankOf(link.Link.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, rightName, link.Link.Column)
		}

		probe, build, probeRank, buildRank := leftOp, rightOp, leftRank, rightRank
		if handles[leftName].Table.RecordCount() < handles[rightName].Table.RecordCount() {
			probe, build, probeRank, buildRank = rightOp, leftOp, rightRank, leftRank
		}

		joined, err := NewHashJoin(e.a, probe, build, probeRank, buildRank)
		if err != nil {
			return nil, err
		}
		ops[leftName] = joined
		ops[rightName] = joined
	}

	var root Operator
	if len(q.From) > 0 {
		root = ops[q.From[0]]
	}
	if root == nil {
		return nil, fmt.Errorf("%w: query declares no FROM tables", ErrUnknownTable)
	}

	if len(q.GroupBy) > 0 {
		grouped, err := e.applyGroupBy(root, q)
		if err != nil {
			return nil, err
		}
		root = grouped
		for _, having := range q.Having {
			filtered, err := e.applyFilter(root, having)
			if err != nil {
				return nil, err
			}
			root = filtered
		}
	} else if len(q.Select) > 0 {
		projected, err := e.applyProject(root, q.Select)
		if err != nil {
			return nil, err
		}
		root = projected
	}

	if len(q.OrderBy) > 0 {
		ordered, err := e.applyOrderBy(root, q.OrderBy)
		if err != nil {
			return nil, err
		}
		root = ordered
	}

	return root, nil
}

func (e *Executor) applyFilter(child Operator, cond Condition) (Operator, error) {
	rank, ok := child.Schema().RankOf(cond.Column.Column)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, cond.Column.Table, cond.Column.Column)
	}
	colType := child.Schema().Columns[rank]
	value := make([]byte, colType.Size)
	if err := colType.FormatBinary(value, cond.Literal); err != nil {
		return nil, fmt.Errorf("query: parsing literal %q for %s.%s: %w", cond.Literal, cond.Column.Table, cond.Column.Column, err)
	}
	return NewFilter(e.a, child, rank, cond.Op.ToColType(), value)
}

func (e *Executor) applyProject(child Operator, selects []SelectColumn) (Operator, error) {
	ranks := make([]int, len(selects))
	for i, sel := range selects {
		rank, ok := child.Schema().RankOf(sel.Column.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, sel.Column.Table, sel.Column.Column)
		}
		ranks[i] = rank
	}
	return NewProject(e.a, child, ranks)
}

func (e *Executor) applyGroupBy(child Operator, q *Query) (Operator, error) {
	keyRanks := make([]int, len(q.GroupBy))
	for i, key := range q.GroupBy {
		rank, ok := child.Schema().RankOf(key.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, key.Table, key.Column)
		}
		keyRanks[i] = rank
	}
	selects := make([]GroupSelect, len(q.Select))
	names := make([]string, len(q.Select))
	for i, sel := range q.Select {
		rank, ok := child.Schema().RankOf(sel.Column.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, sel.Column.Table, sel.Column.Column)
		}
		selects[i] = GroupSelect{Rank: rank, Agg: sel.Agg}
		names[i] = sel.Column.Column
	}
	return NewGroupBy(e.a, child, keyRanks, selects, names)
}

func (e *Executor) applyOrderBy(child Operator, cols []ColumnRef) (Operator, error) {
	ranks := make([]int, len(cols))
	for i, col := range cols {
		rank, ok := child.Schema().RankOf(col.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, col.Table, col.Column)
		}
		ranks[i] = rank
	}
	return NewOrderBy(e.a, child, ranks)
}
