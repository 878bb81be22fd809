// Package result implements ResultTable, the fixed-width row buffer every
// operator materializes into and out of: an operator pulls one row from
// its child into a one-row ResultTable, transforms it, and writes one row
// to its own output ResultTable.
package result

import (
	"fmt"
	"io"
	"strings"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
)

// Table is a fixed-width row buffer for per-operator materialization: a
// column-type array, a fixed buffer carved from an arena, a row length,
// and a live row count bounded by capacity.
type Table struct {
	colTypes  []coltype.Type
	offsets   []int64
	rowLength int64
	buffer    []byte
	rowCap    int64
	rowNumber int64
}

// New allocates a Table able to hold rows of colTypes, backed by a buffer
// of at least capacityBytes (rounded up to a power of two, as the arena
// requires).
func New(a *arena.Arena, colTypes []coltype.Type, capacityBytes int64) (*Table, error) {
	rowLength := int64(0)
	offsets := make([]int64, len(colTypes))
	for i, t := range colTypes {
		offsets[i] = rowLength
		rowLength += t.Size
	}
	size := roundUpPow2(capacityBytes)
	p, err := a.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("%w: allocating result buffer of %d bytes: %v", ErrCapacity, size, err)
	}
	rowCap := int64(0)
	if rowLength > 0 {
		rowCap = size / rowLength
	}
	return &Table{
		colTypes:  colTypes,
		offsets:   offsets,
		rowLength: rowLength,
		buffer:    a.Bytes(p, size),
		rowCap:    rowCap,
	}, nil
}

func roundUpPow2(n int64) int64 {
	p := int64(8)
	for p < n {
		p <<= 1
	}
	return p
}

// ColumnTypes returns the row's column types in order.
func (r *Table) ColumnTypes() []coltype.Type { return r.colTypes }

// RowLength returns the fixed byte width of one row.
func (r *Table) RowLength() int64 { return r.rowLength }

// RowCapacity returns the maximum number of rows the buffer can hold.
func (r *Table) RowCapacity() int64 { return r.rowCap }

// RowCount returns the number of rows currently written.
func (r *Table) RowCount() int64 { return r.rowNumber }

// Reset clears the row count without reallocating the buffer.
func (r *Table) Reset() { r.rowNumber = 0 }

// RowBytes returns the full row slice at row, for bulk copy between
// result tables.
func (r *Table) RowBytes(row int64) []byte {
	return r.buffer[row*r.rowLength : (row+1)*r.rowLength]
}

// ColumnBytes returns the slice for (row, col), matching ResultTable::get_RC.
func (r *Table) ColumnBytes(row int64, col int) []byte {
	off := r.offsets[col]
	size := r.colTypes[col].Size
	base := row * r.rowLength
	return r.buffer[base+off : base+off+size]
}

// WriteColumn copies data into (row, col) through the column's type,
// matching ResultTable::write_RC.
func (r *Table) WriteColumn(row int64, col int, data []byte) {
	r.colTypes[col].Copy(r.ColumnBytes(row, col), data)
}

// AppendRow reserves the next row slot and returns true, or returns false
// if the buffer is already at capacity.
func (r *Table) AppendRow() (row int64, ok bool) {
	if r.rowNumber >= r.rowCap {
		return 0, false
	}
	row = r.rowNumber
	r.rowNumber++
	return row, true
}

// Dump writes every row as tab-separated printable text terminated by a
// newline, matching ResultTable::dump.
func (r *Table) Dump(w io.Writer) error {
	for row := int64(0); row < r.rowNumber; row++ {
		var fields []string
		for col, t := range r.colTypes {
			txt, err := t.FormatText(r.ColumnBytes(row, col))
			if err != nil {
				return err
			}
			fields = append(fields, txt)
		}
		if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
