package rowstore

import (
	"fmt"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
)

const (
	defaultInitialSlotCap = 1 << 6  // 64 page pointers
	defaultSlotSize       = 1 << 12 // 4096 bytes per page
)

// PagedStorage is a two-level array over an Arena: a directory of page
// addresses, each page holding ⌊slotSize / recordSize⌋ fixed-size records.
// Pages are allocated lazily on first write; the directory doubles when
// exhausted, and old page addresses remain valid because the arena never
// moves live data.
type PagedStorage struct {
	a              *arena.Arena
	recordSize     int64
	recordsPerSlot int64
	slotSize       int64
	recordNum      int64 // highwater ordinal (visible-or-not)
	slots          []arena.Addr
}

// NewPagedStorage creates storage for fixed-size records, using the
// default initial directory capacity (64 pages) and page size (4096
// bytes), matching the table-init defaults in spec.md §3.
func NewPagedStorage(a *arena.Arena, recordSize int64) *PagedStorage {
	return NewPagedStorageWithOptions(a, recordSize, defaultInitialSlotCap, defaultSlotSize)
}

// NewPagedStorageWithOptions creates storage with an explicit initial
// directory capacity and page byte size.
func NewPagedStorageWithOptions(a *arena.Arena, recordSize, initSlotCap, slotSize int64) *PagedStorage {
	recordsPerSlot := slotSize / recordSize
	if recordsPerSlot < 1 {
		recordsPerSlot = 1
	}
	return &PagedStorage{
		a:              a,
		recordSize:     recordSize,
		recordsPerSlot: recordsPerSlot,
		slotSize:       slotSize,
		slots:          make([]arena.Addr, initSlotCap),
	}
}

// AllocRow reserves the next ordinal and returns its row address, lazily
// allocating the backing page if this is its first record.
func (s *PagedStorage) AllocRow() (arena.Addr, error) {
	slotRank := s.recordNum / s.recordsPerSlot
	posRank := s.recordNum % s.recordsPerSlot

	if slotRank >= int64(len(s.slots)) {
		s.expand()
	}
	if s.slots[slotRank] == 0 {
		p, err := s.a.Alloc(s.slotSize)
		if err != nil {
			return 0, fmt.Errorf("%w: allocating page %d: %v", ErrCapacity, slotRank, err)
		}
		s.slots[slotRank] = p
	}
	pointer := s.slots[slotRank] + arena.Addr(posRank*s.recordSize)
	s.recordNum++
	return pointer, nil
}

// expand doubles the directory capacity. Old page addresses are copied
// verbatim and remain valid; newly added directory slots start
// unallocated.
func (s *PagedStorage) expand() {
	grown := make([]arena.Addr, len(s.slots)*2)
	copy(grown, s.slots)
	s.slots = grown
}

// RowAddr returns the address of the record at ordinal, or an error if the
// ordinal has never been allocated.
func (s *PagedStorage) RowAddr(ordinal int64) (arena.Addr, error) {
	if ordinal < 0 || ordinal >= s.recordNum {
		return 0, fmt.Errorf("%w: ordinal %d, record count %d", ErrInvalidOrdinal, ordinal, s.recordNum)
	}
	slotRank := ordinal / s.recordsPerSlot
	posRank := ordinal % s.recordsPerSlot
	if slotRank >= int64(len(s.slots)) || s.slots[slotRank] == 0 {
		return 0, fmt.Errorf("%w: ordinal %d falls in an unallocated page", ErrInvalidOrdinal, ordinal)
	}
	return s.slots[slotRank] + arena.Addr(posRank*s.recordSize), nil
}

// RecordCount returns the highwater ordinal: the number of rows ever
// allocated, visible or tombstoned.
func (s *PagedStorage) RecordCount() int64 {
	return s.recordNum
}
