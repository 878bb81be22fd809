// Package hashindex packs multi-column keys into 64-bit fingerprints over
// a hashtable.HashTable, verifying exact equality of the key columns
// against the referenced row on lookup (the fingerprint is a possibly
// lossy filter, per spec.md §4.3).
package hashindex

import (
	"fmt"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/hashtable"
)

// bufferCapacity bounds the lookup iterator's internal pointer buffer,
// matching HASHINFO_CAPICITY in the source.
const bufferCapacity = 8

// HashIndex packs composite keys into a fingerprint and maintains a
// hashtable.HashTable keyed by that fingerprint. Verify is supplied by the
// caller (the loader/query layer, which knows the row layout) to confirm
// exact column equality between a lookup key and a candidate row, since
// the index itself only ever sees key-column byte slices, never whole
// rows.
type HashIndex struct {
	table     *hashtable.HashTable
	cellBits  int64
	colTypes  []coltype.Type
	colBits   []int64
	finalized bool
}

// New prepares an index over the given key column types. cellCapBits sets
// the hash table's bucket count to 2^cellCapBits.
func New(colTypes []coltype.Type, cellCapBits int64) *HashIndex {
	return &HashIndex{
		colTypes: colTypes,
		cellBits: cellCapBits,
	}
}

// Finish computes the per-column bit allocation and constructs the
// backing hash table. Must be called once, after the index's key column
// types are known, before Insert/Lookup/Delete.
func (h *HashIndex) Finish(a *arena.Arena) error {
	if h.finalized {
		return nil
	}
	if len(h.colTypes) == 0 {
		return fmt.Errorf("%w: hash index has no key columns", ErrInvalid)
	}
	average := h.cellBits / int64(len(h.colTypes))
	if average < 1 {
		average = 1
	}
	leftover := h.cellBits
	h.colBits = make([]int64, len(h.colTypes))
	for i, t := range h.colTypes {
		bits := t.Bits()
		actual := min3(bits, average, leftover)
		h.colBits[i] = actual
		leftover -= actual
	}
	h.table = hashtable.New(a, int64(1)<<uint(h.cellBits), 1.1)
	h.finalized = true
	return nil
}

func min3(a, b, c int64) int64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// fingerprint packs the key columns LSB-first, integral columns
// contributing their low colBits[i] bits and CHARN columns contributing a
// DJB2 hash of their bytes masked to colBits[i] bits.
func (h *HashIndex) fingerprint(keyCols [][]byte) int64 {
	var result int64
	var offset uint
	for i, t := range h.colTypes {
		bits := h.colBits[i]
		mask := int64(1)<<uint(bits) - 1
		var field int64
		if t.Code == coltype.CharN {
			field = coltype.DJB2(keyCols[i], t.Size) & mask
		} else {
			field = rawInt(keyCols[i]) & mask
		}
		result |= field << offset
		offset += uint(bits)
	}
	return result
}

func rawInt(b []byte) int64 {
	var v int64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= int64(b[i]) << uint(8*i)
	}
	return v
}

// Insert adds (fingerprint, ptr) for the given key columns.
func (h *HashIndex) Insert(keyCols [][]byte, ptr int64) error {
	return h.table.Add(h.fingerprint(keyCols), ptr)
}

// Delete removes the first entry whose fingerprint and verified identity
// match keyCols, using verify to confirm exact column equality against
// each candidate row. Returns false if no matching entry exists.
func (h *HashIndex) Delete(keyCols [][]byte, verify func(ptr int64) bool) bool {
	it := h.Lookup(keyCols)
	for {
		ptr, ok := it.Next(verify)
		if !ok {
			return false
		}
		if h.table.Del(it.hash, ptr) {
			return true
		}
	}
}

// Info is a lookup iterator over a fingerprint's probe stream, verifying
// exact column equality before yielding each candidate.
type Info struct {
	h      *HashIndex
	hash   int64
	buf    [bufferCapacity]int64
	rnum   int
	ppos   int
	cont   int64 // absolute position to resume via ProbeContd; 0 means drained
	primed bool
}

// Lookup prepares an iterator over all rows whose fingerprint matches
// keyCols. Exact equality is verified lazily, one candidate at a time, by
// the verify callback passed to Next.
func (h *HashIndex) Lookup(keyCols [][]byte) *Info {
	return &Info{h: h, hash: h.fingerprint(keyCols)}
}

func (it *Info) fill() {
	var n int
	if !it.primed {
		n = it.h.table.Probe(it.hash, it.buf[:])
		it.primed = true
	} else {
		n = it.h.table.ProbeContd(it.hash, int(it.cont), it.buf[:])
	}
	if n < 0 {
		it.rnum = bufferCapacity
		it.cont = int64(-n)
	} else {
		it.rnum = n
		it.cont = 0
	}
	it.ppos = 0
}

// Next returns the next candidate row pointer whose key columns verify
// exactly equal via verify, refilling the internal buffer from the
// underlying hash table's probe stream as needed. ok is false once the
// stream is exhausted.
func (it *Info) Next(verify func(ptr int64) bool) (ptr int64, ok bool) {
	if !it.primed {
		it.fill()
	}
	for {
		for it.ppos < it.rnum {
			cand := it.buf[it.ppos]
			it.ppos++
			if verify(cand) {
				return cand, true
			}
		}
		if it.cont == 0 {
			return 0, false
		}
		it.fill()
		if it.rnum == 0 {
			return 0, false
		}
	}
}
