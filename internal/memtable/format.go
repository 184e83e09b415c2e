package memtable

import (
	"bytes"

	"github.com/MikhailWahib/silt/internal/arena"
	"github.com/MikhailWahib/silt/internal/record"
)

// MaxSequence is the largest usable sequence number. The top byte of the
// packed tag is reserved for the entry type.
const MaxSequence = (uint64(1) << 56) - 1

// Entries are stored as a single arena region:
//
//	varint(len(userKey)+8) userKey fixed64(seq<<8 | type) varint(len(value)) value
//
// The length-prefixed first section is the internal key. Packing the type
// into the tag's low byte keeps one comparison key per entry.

func packTag(seq uint64, t record.EntryType) uint64 {
	return seq<<8 | uint64(t)
}

func unpackTag(tag uint64) (seq uint64, t record.EntryType) {
	return tag >> 8, record.EntryType(tag & 0xff)
}

func encodeEntry(ar *arena.Arena, seq uint64, t record.EntryType, userKey, value []byte) []byte {
	internalKeyLen := len(userKey) + 8
	size := record.UvarintLen(uint64(internalKeyLen)) + internalKeyLen +
		record.UvarintLen(uint64(len(value))) + len(value)

	buf := ar.Allocate(size)
	off := record.PutUvarint(buf, uint64(internalKeyLen))
	off += copy(buf[off:], userKey)
	record.EncodeFixed64(buf[off:], packTag(seq, t))
	off += 8
	off += record.PutUvarint(buf[off:], uint64(len(value)))
	copy(buf[off:], value)
	return buf
}

func decodeEntry(raw []byte) (userKey []byte, tag uint64, value []byte) {
	ik, rest, ok := record.GetLengthPrefixedSlice(raw)
	if !ok || len(ik) < 8 {
		panic("memtable: corrupt entry encoding")
	}
	value, _, ok = record.GetLengthPrefixedSlice(rest)
	if !ok {
		panic("memtable: corrupt entry encoding")
	}
	return ik[:len(ik)-8], record.DecodeFixed64(ik[len(ik)-8:]), value
}

// compareEntries orders encoded entries by user key ascending, then by tag
// descending, so the newest version of a key is encountered first.
func compareEntries(a, b []byte) int {
	ia, _, ok := record.GetLengthPrefixedSlice(a)
	if !ok || len(ia) < 8 {
		panic("memtable: corrupt entry encoding")
	}
	ib, _, ok := record.GetLengthPrefixedSlice(b)
	if !ok || len(ib) < 8 {
		panic("memtable: corrupt entry encoding")
	}
	if c := bytes.Compare(ia[:len(ia)-8], ib[:len(ib)-8]); c != 0 {
		return c
	}
	ta := record.DecodeFixed64(ia[len(ia)-8:])
	tb := record.DecodeFixed64(ib[len(ib)-8:])
	switch {
	case ta > tb:
		return -1
	case ta < tb:
		return 1
	default:
		return 0
	}
}

// makeLookupKey builds a search key that sorts at the newest entry for
// userKey visible at seq. PutEntry is the highest type value, so packing
// it makes the search key sort before every entry of the same key with a
// lower or equal sequence.
func makeLookupKey(userKey []byte, seq uint64) []byte {
	internalKeyLen := len(userKey) + 8
	buf := make([]byte, record.UvarintLen(uint64(internalKeyLen))+internalKeyLen)
	off := record.PutUvarint(buf, uint64(internalKeyLen))
	off += copy(buf[off:], userKey)
	record.EncodeFixed64(buf[off:], packTag(seq, record.PutEntry))
	return buf
}
