// Package rowstore implements fixed-width row layout (RowPattern), a
// two-level paged slot array over an arena (PagedStorage), and the
// RowTable that combines the two with insert/select/update/delete and a
// trailing validity byte.
package rowstore

import (
	"fmt"

	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
)

// validityType is the internal CHARN(1) column the table appends after all
// declared data columns. Its value is 'Y' for a live row, 'N' for a
// tombstone; it is never visible to a query plan.
var validityType = coltype.NewCharN(1)

const (
	validityLive      = 'Y'
	validityTombstone = 'N'
)

// RowPattern derives, from an ordered sequence of column types, a
// byte offset for every column and a fixed total row size. Sum of column
// sizes + 1 (the validity byte) always equals RowSize() once sealed.
type RowPattern struct {
	columns        []coltype.Type // data columns only, in declaration order
	offsets        []int64        // offsets[i] is the byte offset of columns[i]
	rowSize        int64
	validityOffset int64
	sealed         bool
}

// NewRowPattern returns an empty, unsealed pattern.
func NewRowPattern() *RowPattern {
	return &RowPattern{}
}

// AddColumn appends a data column to the pattern and returns its rank
// (0-based). It panics if called after Seal.
func (p *RowPattern) AddColumn(t coltype.Type) int {
	if p.sealed {
		panic("rowstore: AddColumn called on a sealed RowPattern")
	}
	rank := len(p.columns)
	p.offsets = append(p.offsets, p.rowSize)
	p.columns = append(p.columns, t)
	p.rowSize += t.Size
	return rank
}

// Seal appends the internal validity column and fixes the row size. A
// pattern must be sealed before it backs a RowTable.
func (p *RowPattern) Seal() {
	if p.sealed {
		return
	}
	p.validityOffset = p.rowSize
	p.rowSize += validityType.Size
	p.sealed = true
}

// validityOffset is the byte offset of the trailing validity byte, valid
// once Seal has run.
func (p *RowPattern) ValidityOffset() int64 {
	return p.validityOffset
}

// NumColumns returns the number of declared data columns (excluding the
// validity byte).
func (p *RowPattern) NumColumns() int {
	return len(p.columns)
}

// ColumnOffset returns the byte offset of the column at rank, or an error
// if rank is out of bounds.
func (p *RowPattern) ColumnOffset(rank int) (int64, error) {
	if rank < 0 || rank >= len(p.columns) {
		return 0, fmt.Errorf("%w: column rank %d out of range [0,%d)", ErrInvalidColumn, rank, len(p.columns))
	}
	return p.offsets[rank], nil
}

// ColumnType returns the type of the column at rank, or an error if rank is
// out of bounds.
func (p *RowPattern) ColumnType(rank int) (coltype.Type, error) {
	if rank < 0 || rank >= len(p.columns) {
		return coltype.Type{}, fmt.Errorf("%w: column rank %d out of range [0,%d)", ErrInvalidColumn, rank, len(p.columns))
	}
	return p.columns[rank], nil
}

// Columns returns the data column types in declaration order. The returned
// slice must not be mutated.
func (p *RowPattern) Columns() []coltype.Type {
	return p.columns
}

// RowSize returns the fixed total byte size of a row, including the
// trailing validity byte once sealed.
func (p *RowPattern) RowSize() int64 {
	return p.rowSize
}
