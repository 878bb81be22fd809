package query

import (
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
)

// Schema describes an operator's output: one type and one name per
// column, in emission order. Computed aggregate columns keep the name of
// the column they aggregate.
type Schema struct {
	Columns []coltype.Type
	Names   []string
}

// RankOf returns the rank of the named column in this schema, or false if
// absent.
func (s Schema) RankOf(name string) (int, bool) {
	for i, n := range s.Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Operator is the uniform pull interface every node in the operator tree
// implements: init reserves resources, next materializes one row at a
// time, isEnd reflects the child's exhaustion state, and close releases
// the subtree rooted at this operator.
type Operator interface {
	Init() error
	// Next writes exactly one row to out (appending a row) and reports
	// whether a row was produced. false with a nil error means no row was
	// appended: either the operator is exhausted or out is already full
	// (in which case the pending row is produced by the next call); a
	// non-nil error ends the stream early.
	Next(out *result.Table) (bool, error)
	IsEnd() bool
	Close() error
	Schema() Schema
}
