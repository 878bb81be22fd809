// Package query implements the plan descriptor, the pull-based Operator
// tree (Scan, Filter, Project, HashJoin, GroupBy, OrderBy), and the
// Executor driver that builds a tree from a plan and pages results.
package query

import "github.com/aimdb/aimdb/pkg/aimdb/coltype"

// CompareOp is one of the ordering relations a WHERE/HAVING condition can
// apply, plus Link, which marks a join predicate rather than a filter.
type CompareOp int

const (
	OpLT CompareOp = iota
	OpLE
	OpEQ
	OpNE
	OpGT
	OpGE
	OpLink
)

// ToColType maps a non-Link CompareOp to its coltype.CompareOp equivalent.
func (op CompareOp) ToColType() coltype.CompareOp {
	switch op {
	case OpLT:
		return coltype.LT
	case OpLE:
		return coltype.LE
	case OpEQ:
		return coltype.EQ
	case OpNE:
		return coltype.NE
	case OpGT:
		return coltype.GT
	case OpGE:
		return coltype.GE
	default:
		panic("query: OpLink has no coltype.CompareOp equivalent")
	}
}

// AggMethod is the aggregate function applied to a selected column under
// GROUP BY. None marks a plain (non-aggregate) selected or group-key
// column.
type AggMethod int

const (
	AggNone AggMethod = iota
	AggCount
	AggSum
	AggAvg
	AggMax
	AggMin
)

// ColumnRef names a column by its owning table and its own name.
type ColumnRef struct {
	Table  string
	Column string
}

// SelectColumn is one output column: a reference plus the aggregate
// method to apply to it (AggNone for a plain projected or group-key
// column).
type SelectColumn struct {
	Column ColumnRef
	Agg    AggMethod
}

// Condition is one WHERE/HAVING clause: a column compared against either
// a literal (parsed through the column's type) or, when Op is OpLink,
// another column (marking a join edge between the two columns' tables).
type Condition struct {
	Column  ColumnRef
	Op      CompareOp
	Literal string
	Link    ColumnRef
}

// Query is a structured plan descriptor — the only form queries arrive
// in; there is no SQL parser.
type Query struct {
	DatabaseID int64
	Select     []SelectColumn
	From       []string
	Where      []Condition
	GroupBy    []ColumnRef
	Having     []Condition
	OrderBy    []ColumnRef
}
