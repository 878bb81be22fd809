// Package hashtable implements a chained hash table with a variable-fanout
// per-bucket cell layout: a bucket starts empty, inlines its first pair,
// promotes to a growable array on the second insert, and doubles that
// array through a size-class free list recycled across buckets. Deletion
// re-inlines a bucket that falls back to one entry.
package hashtable

import (
	"encoding/binary"
	"fmt"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
)

const pairSize = 16 // int64 hash + int64 ptr

// Pair is one (hash, pointer) entry. Ptr is an opaque payload — usually a
// row address, but GroupBy reuses it to carry an integer group-slot index.
type Pair struct {
	Hash int64
	Ptr  int64
}

// bucket is the header for one hash bucket: either an inline single pair
// (count == 1) or a pointer+capacity into a growable pair array in the
// arena (count >= 2).
type bucket struct {
	count    int64
	inline   Pair
	entries  arena.Addr
	capacity int64
}

// HashTable is a fixed bucket array of size ≈ estimatedDistinctKeys.
type HashTable struct {
	a                *arena.Arena
	buckets          []bucket
	tableSize        int64
	initialArraySize int64 // size class 0's entry count
	freeHeader       []arena.Addr
}

// New creates a hash table sized for estimatedDistinctKeys buckets, with
// estimatedDupPerKey used to pick the starting per-bucket array size
// (minimum 2, rounded to the nearest integer).
func New(a *arena.Arena, estimatedDistinctKeys int64, estimatedDupPerKey float64) *HashTable {
	if estimatedDistinctKeys < 1 {
		estimatedDistinctKeys = 1
	}
	initial := int64(estimatedDupPerKey + 0.5)
	if initial < 2 {
		initial = 2
	}
	return &HashTable{
		a:                a,
		buckets:          make([]bucket, estimatedDistinctKeys),
		tableSize:        estimatedDistinctKeys,
		initialArraySize: initial,
	}
}

// sizeToSlot returns k such that arraySize == initialArraySize * 2^k.
func (h *HashTable) sizeToSlot(arraySize int64) int {
	k := 0
	for arraySize > h.initialArraySize {
		arraySize >>= 1
		k++
	}
	return k
}

func (h *HashTable) growFreeHeader(k int) {
	if k < len(h.freeHeader) {
		return
	}
	grown := make([]arena.Addr, k+1)
	copy(grown, h.freeHeader)
	h.freeHeader = grown
}

// allocArray carves an array of n pairs, preferring a recycled block from
// the size-class free list over a fresh arena allocation.
func (h *HashTable) allocArray(n int64) (arena.Addr, error) {
	k := h.sizeToSlot(n)
	h.growFreeHeader(k)
	if head := h.freeHeader[k]; head != 0 {
		h.freeHeader[k] = h.readNext(head)
		return head, nil
	}
	p, err := h.a.Alloc(nextPow2(n * pairSize))
	if err != nil {
		return 0, fmt.Errorf("%w: allocating bucket array of %d pairs: %v", ErrCapacity, n, err)
	}
	return p, nil
}

// recycleArray returns a pair array of n pairs to its size class's free
// list, linking it via the first pair's Ptr field (mirroring the source's
// reuse of the tuple slot as an intrusive next-pointer).
func (h *HashTable) recycleArray(p arena.Addr, n int64) {
	k := h.sizeToSlot(n)
	h.growFreeHeader(k)
	h.writeNext(p, h.freeHeader[k])
	h.freeHeader[k] = p
}

func (h *HashTable) readNext(p arena.Addr) arena.Addr {
	return arena.Addr(int64(binary.LittleEndian.Uint64(h.a.Bytes(p, pairSize)[8:16])))
}

func (h *HashTable) writeNext(p arena.Addr, next arena.Addr) {
	buf := h.a.Bytes(p, pairSize)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(next))
}

func nextPow2(n int64) int64 {
	p := int64(1)
	for p < n {
		p <<= 1
	}
	return p
}

func (h *HashTable) readPair(p arena.Addr, i int64) Pair {
	buf := h.a.Bytes(p+arena.Addr(i*pairSize), pairSize)
	return Pair{
		Hash: int64(binary.LittleEndian.Uint64(buf[0:8])),
		Ptr:  int64(binary.LittleEndian.Uint64(buf[8:16])),
	}
}

func (h *HashTable) writePair(p arena.Addr, i int64, pair Pair) {
	buf := h.a.Bytes(p+arena.Addr(i*pairSize), pairSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(pair.Hash))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(pair.Ptr))
}

func (h *HashTable) which(hash int64) int64 {
	w := hash % h.tableSize
	if w < 0 {
		w += h.tableSize
	}
	return w
}

// Add inserts a (hash, ptr) pair, following the bucket state machine in
// spec.md §4.3.
func (h *HashTable) Add(hash, ptr int64) error {
	b := &h.buckets[h.which(hash)]
	switch {
	case b.count == 0:
		b.inline = Pair{Hash: hash, Ptr: ptr}
	case b.count == 1:
		arr, err := h.allocArray(h.initialArraySize)
		if err != nil {
			return err
		}
		h.writePair(arr, 0, b.inline)
		h.writePair(arr, 1, Pair{Hash: hash, Ptr: ptr})
		b.entries = arr
		b.capacity = h.initialArraySize
	case b.count == b.capacity:
		newCap := b.capacity << 1
		arr, err := h.allocArray(newCap)
		if err != nil {
			return err
		}
		for i := int64(0); i < b.capacity; i++ {
			h.writePair(arr, i, h.readPair(b.entries, i))
		}
		h.recycleArray(b.entries, b.capacity)
		h.writePair(arr, b.count, Pair{Hash: hash, Ptr: ptr})
		b.entries = arr
		b.capacity = newCap
	default:
		h.writePair(b.entries, b.count, Pair{Hash: hash, Ptr: ptr})
	}
	b.count++
	return nil
}

// Del removes the first (hash, ptr) pair that matches exactly, repacking
// the bucket to keep entries dense and re-inlining when the count falls
// from 2 to 1.
func (h *HashTable) Del(hash, ptr int64) bool {
	b := &h.buckets[h.which(hash)]
	switch b.count {
	case 0:
		return false
	case 1:
		if b.inline.Hash == hash && b.inline.Ptr == ptr {
			b.count = 0
			return true
		}
		return false
	case 2:
		pos := h.findPos(b.entries, b.count, hash, ptr)
		if pos < 0 {
			return false
		}
		remaining := h.readPair(b.entries, 1-pos)
		h.recycleArray(b.entries, b.capacity)
		b.inline = remaining
		b.entries = 0
		b.capacity = 0
		b.count = 1
		return true
	default:
		pos := h.findPos(b.entries, b.count, hash, ptr)
		if pos < 0 {
			return false
		}
		for i := pos; i < b.count-1; i++ {
			h.writePair(b.entries, i, h.readPair(b.entries, i+1))
		}
		b.count--
		return true
	}
}

func (h *HashTable) findPos(arr arena.Addr, count, hash, ptr int64) int64 {
	for i := int64(0); i < count; i++ {
		p := h.readPair(arr, i)
		if p.Hash == hash && p.Ptr == ptr {
			return i
		}
	}
	return -1
}

// Probe scans the bucket for hash, copying up to len(out) matching
// pointers into out. If out fills while more matches remain, it returns
// the negated absolute position reached so a caller can resume via
// ProbeContd; otherwise it returns the number of matches found (0 if
// none).
func (h *HashTable) Probe(hash int64, out []int64) int {
	b := &h.buckets[h.which(hash)]
	switch b.count {
	case 0:
		return 0
	case 1:
		if b.inline.Hash == hash {
			out[0] = b.inline.Ptr
			return 1
		}
		return 0
	default:
		return h.scan(b.entries, 0, b.count, hash, out)
	}
}

// ProbeContd resumes a scan left off at last (the absolute value of a
// previous negative Probe/ProbeContd return).
func (h *HashTable) ProbeContd(hash int64, last int, out []int64) int {
	b := &h.buckets[h.which(hash)]
	if b.count <= int64(last) {
		return 0
	}
	return h.scan(b.entries, int64(last), b.count, hash, out)
}

func (h *HashTable) scan(arr arena.Addr, start, count, hash int64, out []int64) int {
	jj := 0
	for i := start; i < count; i++ {
		p := h.readPair(arr, i)
		if p.Hash != hash {
			continue
		}
		out[jj] = p.Ptr
		jj++
		if jj == len(out) {
			for i2 := i + 1; i2 < count; i2++ {
				if h.readPair(arr, i2).Hash == hash {
					return -int(i2)
				}
			}
			return jj
		}
	}
	return jj
}

// TableSize returns the number of buckets.
func (h *HashTable) TableSize() int64 { return h.tableSize }
