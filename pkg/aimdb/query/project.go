package query

import (
	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
)

// Project wraps a child, selecting k columns by rank in the given order.
// Its output schema is built once at construction from the chosen ranks
// of the child schema.
type Project struct {
	child   Operator
	ranks   []int
	schema  Schema
	scratch *result.Table
	pending bool // scratch holds a pulled row not yet appended to out
}

// NewProject builds a Project emitting child's columns at ranks, in the
// given order.
func NewProject(a *arena.Arena, child Operator, ranks []int) (*Project, error) {
	childSchema := child.Schema()
	schema := Schema{
		Columns: make([]coltype.Type, len(ranks)),
		Names:   make([]string, len(ranks)),
	}
	for i, r := range ranks {
		schema.Columns[i] = childSchema.Columns[r]
		schema.Names[i] = childSchema.Names[r]
	}
	scratch, err := result.New(a, childSchema.Columns, scratchCapacityBytes)
	if err != nil {
		return nil, err
	}
	return &Project{child: child, ranks: ranks, schema: schema, scratch: scratch}, nil
}

func (p *Project) Init() error { return p.child.Init() }

func (p *Project) Next(out *result.Table) (bool, error) {
	if !p.pending {
		p.scratch.Reset()
		produced, err := p.child.Next(p.scratch)
		if err != nil {
			return false, err
		}
		if !produced {
			return false, nil
		}
		p.pending = true
	}
	row, ok := out.AppendRow()
	if !ok {
		// scratch still holds the pulled row; retried on the next call.
		return false, nil
	}
	for outCol, inCol := range p.ranks {
		out.WriteColumn(row, outCol, p.scratch.ColumnBytes(0, inCol))
	}
	p.pending = false
	return true, nil
}

func (p *Project) IsEnd() bool { return p.child.IsEnd() }

func (p *Project) Close() error { return p.child.Close() }

func (p *Project) Schema() Schema { return p.schema }
