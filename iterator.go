package silt

import (
	"bytes"

	"github.com/MikhailWahib/silt/internal/memtable"
	"github.com/MikhailWahib/silt/internal/record"
)

// Iterator walks the database's keys in ascending order. It sees the
// database as of the moment it was created: for every key the newest
// version visible at that point, with deleted keys skipped. Later writes
// do not disturb a running iteration.
//
// An Iterator is forward-only and must not be shared between goroutines.
// Key and Value panic when the iterator is not positioned at an entry.
type Iterator struct {
	sources []*memtable.Iterator
	seq     uint64
	cur     *memtable.Iterator
}

// NewIterator returns an iterator over a snapshot of the database taken
// now. It is initially invalid; position it with Seek or SeekToFirst.
func (db *DB) NewIterator() (*Iterator, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	it := &Iterator{seq: db.seq.Load()}
	for _, mt := range [2]*memtable.MemTable{db.active.Load(), db.imm.Load()} {
		if mt != nil {
			it.sources = append(it.sources, mt.NewIterator())
		}
	}
	return it, nil
}

// Valid reports whether the iterator is positioned at a key.
func (it *Iterator) Valid() bool {
	return it.cur != nil
}

// Key returns the current key. The slice is shared with the database; it
// stays readable until the database is closed and must not be modified.
func (it *Iterator) Key() []byte {
	it.mustBeValid()
	return it.cur.Key()
}

// Value returns the value stored under the current key, under the same
// sharing rules as Key.
func (it *Iterator) Value() []byte {
	it.mustBeValid()
	return it.cur.Value()
}

// SeekToFirst positions the iterator at the smallest live key.
func (it *Iterator) SeekToFirst() {
	for _, s := range it.sources {
		s.SeekToFirst()
	}
	it.findNextUserEntry(false, nil)
}

// Seek positions the iterator at the smallest live key >= target.
func (it *Iterator) Seek(target []byte) {
	for _, s := range it.sources {
		s.Seek(target, it.seq)
	}
	it.findNextUserEntry(false, nil)
}

// Next advances to the following live key, invalidating the iterator
// after the largest one.
func (it *Iterator) Next() {
	it.mustBeValid()
	skip := it.cur.Key()
	it.cur.Next()
	it.findNextUserEntry(true, skip)
}

// findNextUserEntry advances the merged sources until they stand at the
// newest visible put of a key not deleted and not already emitted. When
// skipping is set, entries for keys <= skip are hidden; tombstones extend
// skip so the older versions they shadow are passed over too.
func (it *Iterator) findNextUserEntry(skipping bool, skip []byte) {
	for {
		cur := it.smallestSource()
		if cur == nil {
			it.cur = nil
			return
		}
		if cur.Sequence() <= it.seq {
			switch key := cur.Key(); cur.Kind() {
			case record.DeleteEntry:
				skip = key
				skipping = true
			case record.PutEntry:
				if !skipping || bytes.Compare(key, skip) > 0 {
					it.cur = cur
					return
				}
			}
		}
		cur.Next()
	}
}

// smallestSource returns the source holding the entry that orders first,
// or nil when all sources are exhausted. Entries order by key, then by
// descending sequence, then by descending kind, mirroring the in-table
// entry order.
func (it *Iterator) smallestSource() *memtable.Iterator {
	var best *memtable.Iterator
	for _, s := range it.sources {
		if !s.Valid() {
			continue
		}
		if best == nil || sourceBefore(s, best) {
			best = s
		}
	}
	return best
}

func sourceBefore(a, b *memtable.Iterator) bool {
	if c := bytes.Compare(a.Key(), b.Key()); c != 0 {
		return c < 0
	}
	if a.Sequence() != b.Sequence() {
		return a.Sequence() > b.Sequence()
	}
	return a.Kind() > b.Kind()
}

func (it *Iterator) mustBeValid() {
	if it.cur == nil {
		panic("silt: use of invalid iterator")
	}
}
