package rowstore

import (
	"fmt"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
)

// RowTable combines a sealed RowPattern with PagedStorage, exposing typed
// record operations. Records are addressed by a monotonically increasing
// ordinal; insertion is append-only, deletion flips the validity byte,
// update overwrites in place. Ordinals of deleted rows are never reused.
type RowTable struct {
	name    string
	pattern *RowPattern
	storage *PagedStorage
	arena   *arena.Arena
}

// NewRowTable builds a RowTable over an already-sealed pattern. Callers
// must finish declaring columns and call pattern.Seal() before
// constructing the table.
func NewRowTable(name string, a *arena.Arena, pattern *RowPattern) (*RowTable, error) {
	if !pattern.sealed {
		return nil, fmt.Errorf("%w: pattern for table %q was not sealed before use", ErrInvalidColumn, name)
	}
	return &RowTable{
		name:    name,
		pattern: pattern,
		storage: NewPagedStorage(a, pattern.RowSize()),
		arena:   a,
	}, nil
}

// Name returns the table's name.
func (t *RowTable) Name() string { return t.name }

// Pattern returns the table's sealed row pattern.
func (t *RowTable) Pattern() *RowPattern { return t.pattern }

// RecordCount returns the highwater ordinal (visible-or-not); callers must
// recheck visibility per row while iterating.
func (t *RowTable) RecordCount() int64 {
	return t.storage.RecordCount()
}

// Insert appends one row from a flat buffer holding every data column back
// to back (no validity byte). The row is marked live.
func (t *RowTable) Insert(row []byte) (arena.Addr, error) {
	p, err := t.storage.AllocRow()
	if err != nil {
		return 0, err
	}
	buf := t.arena.Bytes(p, t.pattern.RowSize())
	copy(buf[:t.pattern.ValidityOffset()], row)
	buf[t.pattern.ValidityOffset()] = validityLive
	return p, nil
}

// InsertColumns appends one row assembled from per-column source slices,
// one per data column in pattern order.
func (t *RowTable) InsertColumns(cols [][]byte) (arena.Addr, error) {
	if len(cols) != t.pattern.NumColumns() {
		return 0, fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidColumn, t.pattern.NumColumns(), len(cols))
	}
	p, err := t.storage.AllocRow()
	if err != nil {
		return 0, err
	}
	buf := t.arena.Bytes(p, t.pattern.RowSize())
	for rank, col := range cols {
		off := t.pattern.offsets[rank]
		typ := t.pattern.columns[rank]
		typ.Copy(buf[off:off+typ.Size], col)
	}
	buf[t.pattern.ValidityOffset()] = validityLive
	return p, nil
}

// RecordPtr returns the stable address of the row at ordinal, without
// checking visibility.
func (t *RowTable) RecordPtr(ordinal int64) (arena.Addr, error) {
	return t.storage.RowAddr(ordinal)
}

// isValid reports whether the row at addr carries a live validity byte.
func (t *RowTable) isValid(p arena.Addr) bool {
	return t.arena.Bytes(p, t.pattern.RowSize())[t.pattern.ValidityOffset()] == validityLive
}

// IsValidAt reports whether the row at ordinal is live (not tombstoned).
// Returns an error if the ordinal was never allocated.
func (t *RowTable) IsValidAt(ordinal int64) (bool, error) {
	p, err := t.storage.RowAddr(ordinal)
	if err != nil {
		return false, err
	}
	return t.isValid(p), nil
}

func (t *RowTable) rowBytes(ordinal int64) ([]byte, arena.Addr, error) {
	p, err := t.storage.RowAddr(ordinal)
	if err != nil {
		return nil, 0, err
	}
	if !t.isValid(p) {
		return nil, 0, fmt.Errorf("%w: ordinal %d", ErrTombstoned, ordinal)
	}
	return t.arena.Bytes(p, t.pattern.RowSize()), p, nil
}

// Select copies all data columns of the row at ordinal into dest. Fails if
// the ordinal is out of range or the row is tombstoned.
func (t *RowTable) Select(ordinal int64, dest []byte) error {
	buf, _, err := t.rowBytes(ordinal)
	if err != nil {
		return err
	}
	copy(dest[:t.pattern.ValidityOffset()], buf[:t.pattern.ValidityOffset()])
	return nil
}

// SelectCol copies the single column at rank for the row at ordinal into
// dest.
func (t *RowTable) SelectCol(ordinal int64, rank int, dest []byte) error {
	buf, _, err := t.rowBytes(ordinal)
	if err != nil {
		return err
	}
	typ, err := t.pattern.ColumnType(rank)
	if err != nil {
		return err
	}
	off, _ := t.pattern.ColumnOffset(rank)
	typ.Copy(dest, buf[off:off+typ.Size])
	return nil
}

// SelectCols copies several columns at ranks for the row at ordinal into
// dest slices, one per requested rank.
func (t *RowTable) SelectCols(ordinal int64, ranks []int, dests [][]byte) error {
	buf, _, err := t.rowBytes(ordinal)
	if err != nil {
		return err
	}
	for i, rank := range ranks {
		typ, err := t.pattern.ColumnType(rank)
		if err != nil {
			return err
		}
		off, _ := t.pattern.ColumnOffset(rank)
		typ.Copy(dests[i], buf[off:off+typ.Size])
	}
	return nil
}

// SelectAtPtr is the row-pointer-keyed counterpart of Select, for
// callers that hold a row address directly rather than an ordinal.
func (t *RowTable) SelectAtPtr(p arena.Addr, dest []byte) error {
	if !t.isValid(p) {
		return fmt.Errorf("%w: row at %d", ErrTombstoned, p)
	}
	buf := t.arena.Bytes(p, t.pattern.RowSize())
	copy(dest[:t.pattern.ValidityOffset()], buf[:t.pattern.ValidityOffset()])
	return nil
}

// SelectColAtPtr reads a single column directly from a row address.
func (t *RowTable) SelectColAtPtr(p arena.Addr, rank int, dest []byte) error {
	typ, err := t.pattern.ColumnType(rank)
	if err != nil {
		return err
	}
	off, _ := t.pattern.ColumnOffset(rank)
	buf := t.arena.Bytes(p, t.pattern.RowSize())
	typ.Copy(dest, buf[off:off+typ.Size])
	return nil
}

// UpdateCol overwrites the single column at rank for the row at ordinal.
func (t *RowTable) UpdateCol(ordinal int64, rank int, src []byte) error {
	buf, _, err := t.rowBytes(ordinal)
	if err != nil {
		return err
	}
	typ, err := t.pattern.ColumnType(rank)
	if err != nil {
		return err
	}
	off, _ := t.pattern.ColumnOffset(rank)
	typ.Copy(buf[off:off+typ.Size], src)
	return nil
}

// UpdateCols overwrites several columns for the row at ordinal.
func (t *RowTable) UpdateCols(ordinal int64, ranks []int, srcs [][]byte) error {
	buf, _, err := t.rowBytes(ordinal)
	if err != nil {
		return err
	}
	for i, rank := range ranks {
		typ, err := t.pattern.ColumnType(rank)
		if err != nil {
			return err
		}
		off, _ := t.pattern.ColumnOffset(rank)
		typ.Copy(buf[off:off+typ.Size], srcs[i])
	}
	return nil
}

// Delete flips the validity byte of the row at ordinal to tombstoned.
// Fails if the ordinal is out of range or already tombstoned.
func (t *RowTable) Delete(ordinal int64) error {
	p, err := t.storage.RowAddr(ordinal)
	if err != nil {
		return err
	}
	return t.invalidate(p, ordinal)
}

// DeleteAtPtr tombstones the row at a known address.
func (t *RowTable) DeleteAtPtr(p arena.Addr) error {
	return t.invalidate(p, -1)
}

func (t *RowTable) invalidate(p arena.Addr, ordinal int64) error {
	buf := t.arena.Bytes(p, t.pattern.RowSize())
	off := t.pattern.ValidityOffset()
	if buf[off] != validityLive {
		return fmt.Errorf("%w: ordinal %d", ErrTombstoned, ordinal)
	}
	buf[off] = validityTombstone
	return nil
}

// ColumnTypes returns the data column types, in declaration order. Used by
// operators building an output schema.
func (t *RowTable) ColumnTypes() []coltype.Type {
	return t.pattern.Columns()
}
