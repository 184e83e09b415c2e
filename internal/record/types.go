// Package record provides the entry types and byte-level utilities shared
// across the memtable implementation.
package record

// EntryType represents the kind of mutation an entry carries.
//
// The numeric values participate in entry ordering: at equal sequence
// numbers a PutEntry must sort ahead of a DeleteEntry, so DeleteEntry gets
// the smaller value.
type EntryType byte

const (
	// DeleteEntry marks a key as deleted (a tombstone).
	DeleteEntry EntryType = iota
	// PutEntry indicates a key-value insertion.
	PutEntry
)

// Entry represents a single decoded mutation returned by lookups.
type Entry struct {
	Type  EntryType
	Key   []byte
	Value []byte
}
