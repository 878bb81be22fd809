package query

import (
	"github.com/aimdb/aimdb/pkg/aimdb/result"
	"github.com/aimdb/aimdb/pkg/aimdb/rowstore"
)

// Scan reads rows sequentially from a row table starting at ordinal 0,
// skipping tombstoned rows, producing every column.
type Scan struct {
	table   *rowstore.RowTable
	schema  Schema
	cursor  int64
	scratch [][]byte
}

// NewScan builds a Scan over table, emitting all of its data columns
// under the given names (in table column order).
func NewScan(table *rowstore.RowTable, columnNames []string) *Scan {
	return &Scan{
		table:  table,
		schema: Schema{Columns: table.ColumnTypes(), Names: columnNames},
	}
}

func (s *Scan) Init() error {
	s.cursor = 0
	cols := s.schema.Columns
	s.scratch = make([][]byte, len(cols))
	for i, t := range cols {
		s.scratch[i] = make([]byte, t.Size)
	}
	return nil
}

func (s *Scan) Next(out *result.Table) (bool, error) {
	for s.cursor < s.table.RecordCount() {
		ordinal := s.cursor
		valid, err := s.table.IsValidAt(ordinal)
		if err != nil {
			return false, err
		}
		if !valid {
			s.cursor++
			continue
		}
		for rank := range s.schema.Columns {
			if err := s.table.SelectCol(ordinal, rank, s.scratch[rank]); err != nil {
				return false, err
			}
		}
		// Ordinals are stable addresses (rowstore never reuses or moves
		// them), so a full out leaves the cursor here and re-reads the
		// same row on the next call instead of losing it.
		row, ok := out.AppendRow()
		if !ok {
			return false, nil
		}
		for rank, data := range s.scratch {
			out.WriteColumn(row, rank, data)
		}
		s.cursor++
		return true, nil
	}
	return false, nil
}

func (s *Scan) IsEnd() bool {
	return s.cursor >= s.table.RecordCount()
}

func (s *Scan) Close() error { return nil }

func (s *Scan) Schema() Schema { return s.schema }
