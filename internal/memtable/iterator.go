package memtable

import (
	"github.com/MikhailWahib/silt/internal/record"
	"github.com/MikhailWahib/silt/internal/skiplist"
)

// Iterator walks a table's entries in user key order, newest version of
// each key first. It may be used while another goroutine writes, but a
// single Iterator must not be shared between goroutines. Accessors panic
// when the iterator is not positioned at an entry.
type Iterator struct {
	it *skiplist.Iterator
}

// NewIterator returns an iterator over the table. It is initially
// invalid; position it with Seek, SeekToFirst or SeekToLast.
func (m *MemTable) NewIterator() *Iterator {
	return &Iterator{it: m.list.NewIterator()}
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator) Valid() bool {
	return it.it.Valid()
}

// Seek positions the iterator at the newest entry for userKey visible at
// seq, or at the next entry in order when userKey has none.
func (it *Iterator) Seek(userKey []byte, seq uint64) {
	it.it.Seek(makeLookupKey(userKey, seq))
}

// SeekToFirst positions the iterator at the first entry.
func (it *Iterator) SeekToFirst() {
	it.it.SeekToFirst()
}

// SeekToLast positions the iterator at the last entry.
func (it *Iterator) SeekToLast() {
	it.it.SeekToLast()
}

// Next advances to the following entry.
func (it *Iterator) Next() {
	it.it.Next()
}

// Prev moves to the preceding entry.
func (it *Iterator) Prev() {
	it.it.Prev()
}

// Key returns the user key of the current entry. The slice is owned by
// the table and must not be modified.
func (it *Iterator) Key() []byte {
	key, _, _ := decodeEntry(it.it.Key())
	return key
}

// Sequence returns the sequence number of the current entry.
func (it *Iterator) Sequence() uint64 {
	_, tag, _ := decodeEntry(it.it.Key())
	seq, _ := unpackTag(tag)
	return seq
}

// Kind returns the mutation type of the current entry.
func (it *Iterator) Kind() record.EntryType {
	_, tag, _ := decodeEntry(it.it.Key())
	_, t := unpackTag(tag)
	return t
}

// Value returns the value of the current entry, nil for tombstones. The
// slice is owned by the table and must not be modified.
func (it *Iterator) Value() []byte {
	_, tag, value := decodeEntry(it.it.Key())
	if _, t := unpackTag(tag); t != record.PutEntry {
		return nil
	}
	return value
}

// Entry returns the current entry decoded into a record.Entry. The
// entry's slices are owned by the table and must not be modified.
func (it *Iterator) Entry() record.Entry {
	key, tag, value := decodeEntry(it.it.Key())
	_, t := unpackTag(tag)
	e := record.Entry{Type: t, Key: key}
	if t == record.PutEntry {
		e.Value = value
	}
	return e
}
