// Package silt is an in-memory sorted key-value index built for write-heavy
// workloads.
//
// Writes land in an arena-backed skip list, so a single writer and any
// number of readers proceed without blocking each other. Every mutation is
// versioned by a sequence number; reads and iterators observe a consistent
// snapshot and are never torn by concurrent writes. When the active table
// grows past the configured size it is rotated out and handed to an
// optional flush callback on a background goroutine, while reads keep
// consulting it until the callback finishes.
//
// Example usage:
//
//	db := silt.New(nil, nil)
//	defer db.Close()
//
//	if err := db.Set([]byte("key"), []byte("value")); err != nil {
//		log.Fatal(err)
//	}
//
//	value, found, err := db.Get([]byte("key"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if found {
//		fmt.Printf("Value: %s\n", value)
//	}
//
//	if err := db.Delete([]byte("key")); err != nil {
//		log.Fatal(err)
//	}
package silt

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/MikhailWahib/silt/internal/config"
	"github.com/MikhailWahib/silt/internal/filter"
	"github.com/MikhailWahib/silt/internal/memtable"
	"github.com/MikhailWahib/silt/internal/random"
	"github.com/MikhailWahib/silt/internal/record"
	"github.com/MikhailWahib/silt/internal/scheduler"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// DefaultConfig returns a Config populated with default values. Re-exported
// for user convenience.
var DefaultConfig = config.DefaultConfig

// Entry is one decoded mutation, as handed to flush callbacks.
type Entry = record.Entry

// EntryKind tells puts and deletions apart in flushed entries.
type EntryKind = record.EntryType

const (
	// Put marks an entry carrying a value.
	Put = record.PutEntry
	// Deleted marks a tombstone entry.
	Deleted = record.DeleteEntry
)

// TableIterator walks a rotated table in key order, newest version of each
// key first, tombstones included.
type TableIterator = memtable.Iterator

// FlushFunc consumes a table that was rotated out, for example to persist
// it. It runs on the database's background goroutine; rotated tables are
// dropped from lookups once it returns. A slow callback delays later
// flushes but never blocks writers.
type FlushFunc func(it *TableIterator)

var (
	// ErrClosed is returned by operations on a closed database.
	ErrClosed = errors.New("silt: database is closed")
	// ErrEmptyKey is returned when a caller passes a zero-length key.
	ErrEmptyKey = errors.New("silt: key is empty")
)

// DB is an in-memory sorted index. All methods are safe for concurrent
// use; writes are serialized internally, reads run lock-free against the
// underlying tables.
type DB struct {
	cfg   *config.Config
	flush FlushFunc
	sched *scheduler.Scheduler

	// seq is the last sequence number handed to a write.
	seq atomic.Uint64

	// active receives writes; imm is a rotated table still visible to
	// reads while its flush is pending, nil otherwise.
	active atomic.Pointer[memtable.MemTable]
	imm    atomic.Pointer[memtable.MemTable]

	mu     sync.Mutex // serializes writes, rotation and close
	gen    uint32     // table generations, perturbs each table's seed
	closed atomic.Bool
}

// New returns an empty database. A nil cfg selects defaults; zero-valued
// cfg fields are filled in. flush may be nil, in which case tables are
// never rotated and the index simply keeps growing in memory.
func New(cfg *Config, flush FlushFunc) *DB {
	if cfg == nil {
		cfg = config.DefaultConfig()
	} else {
		cfg.FillDefaults()
	}
	db := &DB{
		cfg:   cfg,
		flush: flush,
		sched: scheduler.New(),
	}
	db.active.Store(db.newTable())
	return db
}

func (db *DB) newTable() *memtable.MemTable {
	var f *filter.Filter
	if db.cfg.EnableFilter {
		f = filter.New(db.cfg.FilterExpectedKeys, db.cfg.FilterFalsePositiveRate)
	}
	rnd := random.New(db.cfg.RandomSeed + db.gen)
	db.gen++
	return memtable.New(f, rnd)
}

// Set stores value under key, overwriting any previous value.
func (db *DB) Set(key, value []byte) error {
	return db.write(record.PutEntry, key, value)
}

// Delete removes key by recording a tombstone. Deleting an absent key is
// not an error.
func (db *DB) Delete(key []byte) error {
	return db.write(record.DeleteEntry, key, nil)
}

func (db *DB) write(t record.EntryType, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed.Load() {
		return ErrClosed
	}

	seq := db.seq.Add(1)
	db.active.Load().Add(seq, t, key, value)
	db.maybeRotate()
	return nil
}

// maybeRotate freezes the active table once it outgrows the configured
// size and queues it for flushing. Called with mu held. While a flush is
// still pending the active table keeps absorbing writes instead.
func (db *DB) maybeRotate() {
	if db.flush == nil {
		return
	}
	mt := db.active.Load()
	if mt.ApproximateMemoryUsage() <= db.cfg.MaxMemtableSize {
		return
	}
	if db.imm.Load() != nil {
		return
	}

	db.imm.Store(mt)
	db.active.Store(db.newTable())
	db.sched.Schedule(func() {
		db.flush(mt.NewIterator())
		db.imm.Store(nil)
	})
}

// Get returns the value stored under key. found is false when the key was
// never written or its newest entry is a tombstone. The returned slice is
// the caller's to keep.
func (db *DB) Get(key []byte) (value []byte, found bool, err error) {
	if len(key) == 0 {
		return nil, false, ErrEmptyKey
	}
	if db.closed.Load() {
		return nil, false, ErrClosed
	}

	snap := db.seq.Load()
	for _, mt := range [2]*memtable.MemTable{db.active.Load(), db.imm.Load()} {
		if mt == nil {
			continue
		}
		e, ok := mt.Get(key, snap)
		if !ok {
			continue
		}
		if e.Type == record.DeleteEntry {
			return nil, false, nil
		}
		return append([]byte(nil), e.Value...), true, nil
	}
	return nil, false, nil
}

// ApproximateMemoryUsage returns the bytes currently reserved by the
// in-memory tables, including the one waiting to be flushed.
func (db *DB) ApproximateMemoryUsage() int64 {
	var total int64
	if mt := db.active.Load(); mt != nil {
		total += mt.ApproximateMemoryUsage()
	}
	if mt := db.imm.Load(); mt != nil {
		total += mt.ApproximateMemoryUsage()
	}
	return total
}

// Close hands the remaining buffered entries to the flush callback, waits
// for the background goroutine to finish and marks the database unusable.
// Calling Close again returns ErrClosed.
func (db *DB) Close() error {
	db.mu.Lock()
	if db.closed.Load() {
		db.mu.Unlock()
		return ErrClosed
	}
	db.closed.Store(true)

	if mt := db.active.Load(); db.flush != nil && !mt.Empty() {
		db.sched.Schedule(func() {
			db.flush(mt.NewIterator())
		})
	}
	db.mu.Unlock()

	db.sched.Close()
	return nil
}
