// Package arena implements a power-of-two segregated free-list allocator
// carved from one pre-reserved byte region.
//
// All engine state — row pages, hash table buckets, result buffers — is
// carved from a single Arena so that the whole engine can be released by
// discarding one allocation. There is no per-block bookkeeping beyond the
// free lists themselves: a freed block's first machine word is overwritten
// with the address of the next free block in its size class.
package arena

import (
	"encoding/binary"
	"fmt"
)

// wordSize is the minimum allocation unit and free-list link size.
const wordSize = 8

// Addr is an offset into the arena's backing region. The zero Addr is never
// returned by Alloc and can be used by callers as a null sentinel.
type Addr int64

// Arena owns one contiguous byte region and hands out power-of-two blocks
// from it, recycling freed blocks through per-size-class free lists.
type Arena struct {
	buf     []byte
	minSize int64
	total   int64
	curr    int64 // bump pointer, offset into buf
	free    []Addr
}

// New reserves a region of total bytes and prepares free lists for block
// sizes that are minSize * 2^k. minSize must be at least wordSize (it is
// used as the intrusive free-list link).
func New(total, minSize int64) (*Arena, error) {
	if minSize < wordSize {
		return nil, fmt.Errorf("%w: min size %d is smaller than pointer size %d", ErrInvalid, minSize, wordSize)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total size %d must be positive", ErrInvalid, total)
	}
	a := &Arena{
		buf:     make([]byte, total),
		minSize: minSize,
		total:   total,
	}
	// Addr 0 is reserved as the null sentinel, so the bump pointer starts
	// one word in; this also guarantees alloc_default never returns 0.
	a.curr = wordSize
	a.free = make([]Addr, slot(total, minSize)+1)
	return a, nil
}

// slot returns the size-class index k such that size == minSize * 2^k.
// Mirrors Memory::slot in the original: count right-shifts of size by
// minSize until the low bit is set.
func slot(size, minSize int64) int {
	k := 0
	mask := minSize
	for size&mask == 0 {
		k++
		mask <<= 1
	}
	return k
}

// Alloc returns a block of the requested size, which must be a power-of-two
// multiple of the arena's min size. It first tries the free list for that
// size class (LIFO reuse), then falls back to bumping the high-water
// pointer.
func (a *Arena) Alloc(size int64) (Addr, error) {
	if size < a.minSize {
		return 0, fmt.Errorf("%w: alloc size %d is below the arena minimum %d", ErrInvalid, size, a.minSize)
	}
	k := slot(size, a.minSize)
	if (int64(1)<<uint(k))*a.minSize != size {
		return 0, fmt.Errorf("%w: alloc size %d is not a power-of-two multiple of %d", ErrInvalid, size, a.minSize)
	}
	if k < len(a.free) && a.free[k] != 0 {
		p := a.free[k]
		a.free[k] = a.readLink(p)
		return p, nil
	}
	return a.allocDefault(size)
}

func (a *Arena) allocDefault(size int64) (Addr, error) {
	if a.curr+size > a.total {
		return 0, fmt.Errorf("%w: bump allocation of %d bytes would exceed arena capacity %d", ErrCapacity, size, a.total)
	}
	p := Addr(a.curr)
	a.curr += size
	return p, nil
}

// Free returns a block to the free list for its size class. size must match
// the size originally passed to Alloc; a mismatched size corrupts the free
// list silently, as in the source. Double-free is likewise undefined.
func (a *Arena) Free(p Addr, size int64) {
	k := slot(size, a.minSize)
	a.growFreeList(k)
	a.writeLink(p, a.free[k])
	a.free[k] = p
}

func (a *Arena) growFreeList(k int) {
	if k < len(a.free) {
		return
	}
	grown := make([]Addr, k+1)
	copy(grown, a.free)
	a.free = grown
}

func (a *Arena) readLink(p Addr) Addr {
	return Addr(binary.LittleEndian.Uint64(a.buf[p : p+wordSize]))
}

func (a *Arena) writeLink(p, next Addr) {
	binary.LittleEndian.PutUint64(a.buf[p:p+wordSize], uint64(next))
}

// Bytes returns the slice backing the block at p, of the given length. The
// returned slice aliases the arena's storage; it is valid for the lifetime
// of the Arena.
func (a *Arena) Bytes(p Addr, length int64) []byte {
	return a.buf[p : int64(p)+length]
}

// Used reports the number of bytes claimed from the bump pointer so far,
// including blocks currently sitting on a free list.
func (a *Arena) Used() int64 {
	return a.curr
}

// Total reports the size of the backing region.
func (a *Arena) Total() int64 {
	return a.total
}
