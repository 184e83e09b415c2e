// Package arena provides an append-only bump allocator. All memory handed
// out stays live until the arena itself is released, which lets callers
// build long-lived linked structures without per-object bookkeeping.
package arena

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

const blockSize = 4096

// blockOverhead accounts for the slice header retained per block.
const blockOverhead = int64(unsafe.Sizeof([]byte{}))

// Arena hands out byte regions carved from large blocks. Allocation is
// single-writer only; MemoryUsage may be called concurrently with
// allocations.
type Arena struct {
	cur    []byte // current standard block
	pos    int    // next free byte in cur
	blocks [][]byte
	usage  atomic.Int64
}

// New returns an empty arena. No memory is reserved until the first
// allocation.
func New() *Arena {
	return &Arena{}
}

// Allocate returns a region of exactly n bytes. The region stays valid for
// the lifetime of the arena and the returned slice has both length and
// capacity n, so appends never spill into neighboring regions.
func (a *Arena) Allocate(n int) []byte {
	if n <= 0 {
		panic(fmt.Sprintf("arena: allocation size must be positive, got %d", n))
	}
	if n <= len(a.cur)-a.pos {
		p := a.cur[a.pos : a.pos+n : a.pos+n]
		a.pos += n
		return p
	}
	return a.allocateFallback(n)
}

// AllocateAligned is like Allocate but the region start is aligned to the
// pointer size (at least 8 bytes) when carved from the current block. The
// fallback path returns block starts, whose alignment comes from the
// runtime allocator.
func (a *Arena) AllocateAligned(n int) []byte {
	if n <= 0 {
		panic(fmt.Sprintf("arena: allocation size must be positive, got %d", n))
	}
	const align = max(unsafe.Sizeof(uintptr(0)), 8)

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(a.cur))) + uintptr(a.pos)
	slop := 0
	if mod := int(addr & (align - 1)); mod != 0 {
		slop = int(align) - mod
	}
	if n+slop <= len(a.cur)-a.pos {
		start := a.pos + slop
		p := a.cur[start : start+n : start+n]
		a.pos += n + slop
		return p
	}
	return a.allocateFallback(n)
}

// allocateFallback serves requests that do not fit in the current block.
// Large requests get a dedicated block so the tail of the current one is
// not wasted; small ones abandon that tail and start a fresh block.
func (a *Arena) allocateFallback(n int) []byte {
	if n > blockSize/4 {
		b := a.allocateNewBlock(n)
		return b[:n:n]
	}

	a.cur = a.allocateNewBlock(blockSize)
	a.pos = n
	return a.cur[:n:n]
}

func (a *Arena) allocateNewBlock(blockBytes int) []byte {
	b := make([]byte, blockBytes)
	a.blocks = append(a.blocks, b)
	a.usage.Add(int64(blockBytes) + blockOverhead)
	return b
}

// MemoryUsage returns an estimate of the total memory reserved by the
// arena, including per-block bookkeeping. It only ever grows.
func (a *Arena) MemoryUsage() int64 {
	return a.usage.Load()
}
