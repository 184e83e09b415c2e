// Package skiplist implements an ordered in-memory list balanced by coin
// flips rather than rebalancing. It supports one writer and any number of
// readers at the same time without locks.
package skiplist

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/MikhailWahib/silt/internal/arena"
	"github.com/MikhailWahib/silt/internal/random"
)

const (
	maxHeight = 12
	// branching controls the level probability: a node reaches level
	// h+1 with probability 1/branching.
	branching = 4
)

// defaultSeed feeds the height generator when the caller does not supply
// one.
const defaultSeed = 0xdeadbeef

// Comparator orders keys. It returns a negative value when a sorts before
// b, zero when they are equal and a positive value otherwise.
type Comparator func(a, b []byte) int

// node lives inside the arena. Every node carries the full tower even when
// its height is smaller, so pointer loads never touch memory outside the
// allocation.
type node struct {
	key []byte

	// next[i] is the successor at level i, nil at the tail. Stores
	// publish the node level by level from the bottom up.
	next [maxHeight]atomic.Pointer[node]
}

func (n *node) loadNext(level int) *node {
	return n.next[level].Load()
}

func (n *node) storeNext(level int, x *node) {
	n.next[level].Store(x)
}

const nodeSize = int(unsafe.Sizeof(node{}))

// SkipList keeps keys in comparator order. One goroutine may insert while
// any number of goroutines read; insertions themselves must be serialized
// externally. Keys are stored by reference and must be allocated from the
// list's arena so they stay reachable for the list's whole lifetime, and
// must never be mutated after insertion. There is no way to remove a key.
type SkipList struct {
	cmp  Comparator
	ar   *arena.Arena
	head *node
	rnd  *random.Random

	// Height of the entire list. Readers may observe a raised height
	// before the corresponding head pointers are set; they then find a
	// nil successor at the new level and simply drop down.
	height atomic.Int32
}

// New returns an empty list ordering keys with cmp and placing nodes in
// ar. rnd drives height selection; pass nil for a fixed default seed.
func New(cmp Comparator, ar *arena.Arena, rnd *random.Random) *SkipList {
	if cmp == nil {
		panic("skiplist: nil comparator")
	}
	if ar == nil {
		panic("skiplist: nil arena")
	}
	if rnd == nil {
		rnd = random.New(defaultSeed)
	}
	s := &SkipList{cmp: cmp, ar: ar, rnd: rnd}
	s.head = s.newNode(nil)
	s.height.Store(1)
	return s
}

func (s *SkipList) newNode(key []byte) *node {
	buf := s.ar.AllocateAligned(nodeSize)
	n := (*node)(unsafe.Pointer(unsafe.SliceData(buf)))
	n.key = key
	return n
}

func (s *SkipList) listHeight() int {
	return int(s.height.Load())
}

func (s *SkipList) randomHeight() int {
	h := 1
	for h < maxHeight && s.rnd.OneIn(branching) {
		h++
	}
	return h
}

// keyIsAfterNode reports whether key sorts strictly after n's key.
func (s *SkipList) keyIsAfterNode(key []byte, n *node) bool {
	return n != nil && s.cmp(n.key, key) < 0
}

// findGreaterOrEqual returns the earliest node whose key is >= key, or nil
// if every key is smaller. When prev is non-nil it records, per level, the
// rightmost node visited before dropping down, which is exactly the splice
// point an insertion at that level needs.
func (s *SkipList) findGreaterOrEqual(key []byte, prev *[maxHeight]*node) *node {
	x := s.head
	level := s.listHeight() - 1
	for {
		next := x.loadNext(level)
		if s.keyIsAfterNode(key, next) {
			x = next
			continue
		}
		if prev != nil {
			prev[level] = x
		}
		if level == 0 {
			return next
		}
		level--
	}
}

// findLessThan returns the latest node whose key is < key, or the head
// node if there is none.
func (s *SkipList) findLessThan(key []byte) *node {
	x := s.head
	level := s.listHeight() - 1
	for {
		next := x.loadNext(level)
		if next != nil && s.cmp(next.key, key) < 0 {
			x = next
			continue
		}
		if level == 0 {
			return x
		}
		level--
	}
}

// findLast returns the last node in the list, or the head node if the
// list is empty.
func (s *SkipList) findLast() *node {
	x := s.head
	level := s.listHeight() - 1
	for {
		next := x.loadNext(level)
		if next != nil {
			x = next
			continue
		}
		if level == 0 {
			return x
		}
		level--
	}
}

// Insert adds key to the list. The key must not already be present and
// must not be empty; both are caller bugs and panic. The key slice is
// retained as-is, so it must be arena-allocated and immutable.
func (s *SkipList) Insert(key []byte) {
	if len(key) == 0 {
		panic("skiplist: inserting empty key")
	}

	var prev [maxHeight]*node
	x := s.findGreaterOrEqual(key, &prev)
	if x != nil && s.cmp(x.key, key) == 0 {
		panic(fmt.Sprintf("skiplist: duplicate insertion of key %q", key))
	}

	height := s.randomHeight()
	if height > s.listHeight() {
		for i := s.listHeight(); i < height; i++ {
			prev[i] = s.head
		}
		// Raising the height before wiring the new node is harmless:
		// readers that see the new level find nil at the head and
		// drop down.
		s.height.Store(int32(height))
	}

	n := s.newNode(key)
	for i := 0; i < height; i++ {
		// Set the node's own pointer first so the node is fully
		// formed at this level the moment prev publishes it.
		n.storeNext(i, prev[i].loadNext(i))
		prev[i].storeNext(i, n)
	}
}

// Contains reports whether key is in the list.
func (s *SkipList) Contains(key []byte) bool {
	x := s.findGreaterOrEqual(key, nil)
	return x != nil && s.cmp(x.key, key) == 0
}
