// Package memtable implements the in-memory write buffer: a sorted,
// versioned table layered over an arena-backed skip list. Every mutation
// is a fresh entry tagged with its sequence number, so readers at an
// older sequence keep seeing the versions that were current for them.
package memtable

import (
	"bytes"
	"fmt"

	"github.com/MikhailWahib/silt/internal/arena"
	"github.com/MikhailWahib/silt/internal/filter"
	"github.com/MikhailWahib/silt/internal/random"
	"github.com/MikhailWahib/silt/internal/record"
	"github.com/MikhailWahib/silt/internal/skiplist"
)

// MemTable buffers mutations in memory in sorted order. One goroutine may
// call Add while any number of goroutines call Get or iterate. Entries
// are never removed; deletions are recorded as tombstone entries.
type MemTable struct {
	ar   *arena.Arena
	list *skiplist.SkipList
	fil  *filter.Filter
}

// New returns an empty table. fil may be nil to disable lookup screening.
// rnd drives the skip list's height selection; nil selects a fixed seed.
func New(fil *filter.Filter, rnd *random.Random) *MemTable {
	ar := arena.New()
	return &MemTable{
		ar:   ar,
		list: skiplist.New(compareEntries, ar, rnd),
		fil:  fil,
	}
}

// Add records a mutation of userKey at sequence seq. The key must not be
// empty and seq must not exceed MaxSequence; violations are caller bugs
// and panic. The key and value are copied, so the caller's slices may be
// reused afterwards. value is ignored for tombstones and may be nil.
func (m *MemTable) Add(seq uint64, t record.EntryType, userKey, value []byte) {
	if len(userKey) == 0 {
		panic("memtable: empty user key")
	}
	if seq > MaxSequence {
		panic(fmt.Sprintf("memtable: sequence %d overflows the tag", seq))
	}

	m.list.Insert(encodeEntry(m.ar, seq, t, userKey, value))
	if m.fil != nil {
		m.fil.Add(userKey)
	}
}

// Get returns the newest entry for userKey visible at sequence seq. The
// boolean is false when no such entry exists. A returned tombstone means
// the key was deleted; callers decide how to surface that. The entry's
// slices point into the table and must not be modified.
func (m *MemTable) Get(userKey []byte, seq uint64) (record.Entry, bool) {
	if m.fil != nil && !m.fil.MayContain(userKey) {
		return record.Entry{}, false
	}

	it := m.list.NewIterator()
	it.Seek(makeLookupKey(userKey, seq))
	if !it.Valid() {
		return record.Entry{}, false
	}

	key, tag, value := decodeEntry(it.Key())
	if !bytes.Equal(key, userKey) {
		return record.Entry{}, false
	}

	_, t := unpackTag(tag)
	e := record.Entry{Type: t, Key: key}
	if t == record.PutEntry {
		e.Value = value
	}
	return e, true
}

// ApproximateMemoryUsage returns the bytes reserved by the table,
// including allocator bookkeeping. It never shrinks and is safe to call
// concurrently with writes.
func (m *MemTable) ApproximateMemoryUsage() int64 {
	return m.ar.MemoryUsage()
}

// Empty reports whether the table holds no entries at all.
func (m *MemTable) Empty() bool {
	it := m.list.NewIterator()
	it.SeekToFirst()
	return !it.Valid()
}
