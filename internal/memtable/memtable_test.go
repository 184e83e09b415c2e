package memtable_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/MikhailWahib/silt/internal/filter"
	"github.com/MikhailWahib/silt/internal/memtable"
	"github.com/MikhailWahib/silt/internal/random"
	"github.com/MikhailWahib/silt/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestAddAndGet(t *testing.T) {
	m := memtable.New(nil, nil)
	m.Add(1, record.PutEntry, []byte("key"), []byte("value"))

	e, ok := m.Get([]byte("key"), 1)
	require.True(t, ok, "entry should be visible at its own sequence")
	assert.Equal(t, record.PutEntry, e.Type)
	assert.Equal(t, []byte("value"), e.Value)

	e, ok = m.Get([]byte("key"), 100)
	require.True(t, ok, "entry should be visible at later sequences")
	assert.Equal(t, []byte("value"), e.Value)

	_, ok = m.Get([]byte("key"), 0)
	assert.False(t, ok, "entry should be invisible before its sequence")

	_, ok = m.Get([]byte("other"), 100)
	assert.False(t, ok, "unknown keys should miss")
}

func TestVersionedReads(t *testing.T) {
	m := memtable.New(nil, nil)
	m.Add(1, record.PutEntry, []byte("key"), []byte("v1"))
	m.Add(3, record.PutEntry, []byte("key"), []byte("v3"))

	cases := []struct {
		seq  uint64
		want string
		ok   bool
	}{
		{0, "", false},
		{1, "v1", true},
		{2, "v1", true},
		{3, "v3", true},
		{9, "v3", true},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("seq=%d", c.seq), func(t *testing.T) {
			e, ok := m.Get([]byte("key"), c.seq)
			require.Equal(t, c.ok, ok)
			if c.ok {
				assert.Equal(t, c.want, string(e.Value))
			}
		})
	}
}

func TestTombstone(t *testing.T) {
	m := memtable.New(nil, nil)
	m.Add(1, record.PutEntry, []byte("key"), []byte("value"))
	m.Add(2, record.DeleteEntry, []byte("key"), nil)

	e, ok := m.Get([]byte("key"), 1)
	require.True(t, ok)
	assert.Equal(t, record.PutEntry, e.Type, "older read should still see the put")

	e, ok = m.Get([]byte("key"), 2)
	require.True(t, ok, "the tombstone itself is an entry")
	assert.Equal(t, record.DeleteEntry, e.Type)
	assert.Nil(t, e.Value)
}

func TestPutWinsAtEqualSequence(t *testing.T) {
	m := memtable.New(nil, nil)
	m.Add(5, record.DeleteEntry, []byte("key"), nil)
	m.Add(5, record.PutEntry, []byte("key"), []byte("value"))

	e, ok := m.Get([]byte("key"), 5)
	require.True(t, ok)
	assert.Equal(t, record.PutEntry, e.Type, "puts order ahead of deletes at the same sequence")
	assert.Equal(t, []byte("value"), e.Value)
}

func TestPrefixKeysStayDistinct(t *testing.T) {
	m := memtable.New(nil, nil)
	m.Add(1, record.PutEntry, []byte("a"), []byte("short"))
	m.Add(2, record.PutEntry, []byte("ab"), []byte("long"))

	e, ok := m.Get([]byte("a"), 10)
	require.True(t, ok)
	assert.Equal(t, []byte("short"), e.Value)

	e, ok = m.Get([]byte("ab"), 10)
	require.True(t, ok)
	assert.Equal(t, []byte("long"), e.Value)

	_, ok = m.Get([]byte("abc"), 10)
	assert.False(t, ok)
}

func TestEmptyValueRoundtrips(t *testing.T) {
	m := memtable.New(nil, nil)
	m.Add(1, record.PutEntry, []byte("key"), nil)

	e, ok := m.Get([]byte("key"), 1)
	require.True(t, ok)
	assert.Equal(t, record.PutEntry, e.Type)
	assert.Empty(t, e.Value)
}

func TestEmptyAndUsage(t *testing.T) {
	m := memtable.New(nil, nil)
	assert.True(t, m.Empty())

	before := m.ApproximateMemoryUsage()
	m.Add(1, record.PutEntry, []byte("key"), []byte("value"))
	assert.False(t, m.Empty())
	assert.Greater(t, m.ApproximateMemoryUsage(), before, "writes should grow the usage estimate")
}

func TestAddPanics(t *testing.T) {
	m := memtable.New(nil, nil)
	assert.Panics(t, func() { m.Add(1, record.PutEntry, nil, []byte("v")) }, "empty key")
	assert.Panics(t, func() { m.Add(memtable.MaxSequence+1, record.PutEntry, []byte("k"), nil) },
		"sequence overflow")
}

func TestIterator(t *testing.T) {
	m := memtable.New(nil, nil)
	m.Add(1, record.PutEntry, []byte("apple"), []byte("one"))
	m.Add(3, record.PutEntry, []byte("apple"), []byte("three"))
	m.Add(2, record.PutEntry, []byte("banana"), []byte("two"))
	m.Add(4, record.DeleteEntry, []byte("banana"), nil)
	m.Add(5, record.PutEntry, []byte("cherry"), []byte("five"))

	want := []struct {
		key  string
		seq  uint64
		kind record.EntryType
		val  string
	}{
		{"apple", 3, record.PutEntry, "three"},
		{"apple", 1, record.PutEntry, "one"},
		{"banana", 4, record.DeleteEntry, ""},
		{"banana", 2, record.PutEntry, "two"},
		{"cherry", 5, record.PutEntry, "five"},
	}

	it := m.NewIterator()
	i := 0
	for it.SeekToFirst(); it.Valid(); it.Next() {
		require.Less(t, i, len(want), "iterator yielded more entries than expected")
		w := want[i]
		assert.Equal(t, w.key, string(it.Key()), "entry %d key", i)
		assert.Equal(t, w.seq, it.Sequence(), "entry %d sequence", i)
		assert.Equal(t, w.kind, it.Kind(), "entry %d kind", i)
		assert.Equal(t, w.val, string(it.Value()), "entry %d value", i)
		e := it.Entry()
		assert.Equal(t, w.key, string(e.Key))
		i++
	}
	assert.Equal(t, len(want), i, "iterator should yield every entry exactly once")

	it.Seek([]byte("banana"), 3)
	require.True(t, it.Valid())
	assert.Equal(t, "banana", string(it.Key()))
	assert.Equal(t, uint64(2), it.Sequence(), "version 4 is invisible at sequence 3")

	it.Seek([]byte("banana"), 10)
	require.True(t, it.Valid())
	assert.Equal(t, uint64(4), it.Sequence())
	assert.Equal(t, record.DeleteEntry, it.Kind())
	assert.Nil(t, it.Value(), "tombstones carry no value")

	it.Seek([]byte("blueberry"), 10)
	require.True(t, it.Valid())
	assert.Equal(t, "cherry", string(it.Key()), "seek lands on the next key in order")

	it.SeekToLast()
	require.True(t, it.Valid())
	assert.Equal(t, "cherry", string(it.Key()))

	it.Prev()
	require.True(t, it.Valid())
	assert.Equal(t, "banana", string(it.Key()))
	assert.Equal(t, uint64(2), it.Sequence())
}

func TestWithFilter(t *testing.T) {
	f := filter.New(1000, 0.01)
	m := memtable.New(f, random.New(7))

	for i := 0; i < 500; i++ {
		m.Add(uint64(i+1), record.PutEntry,
			[]byte(fmt.Sprintf("key-%04d", i)), []byte(fmt.Sprintf("val-%04d", i)))
	}

	for i := 0; i < 500; i++ {
		e, ok := m.Get([]byte(fmt.Sprintf("key-%04d", i)), 1000)
		require.True(t, ok, "key %d must not be screened out", i)
		assert.Equal(t, fmt.Sprintf("val-%04d", i), string(e.Value))
	}

	misses := 0
	for i := 0; i < 500; i++ {
		if _, ok := m.Get([]byte(fmt.Sprintf("absent-%04d", i)), 1000); !ok {
			misses++
		}
	}
	assert.Equal(t, 500, misses, "absent keys must miss regardless of the filter")
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	m := memtable.New(nil, nil)
	var watermark atomic.Uint64
	done := make(chan struct{})

	key := func(i uint64) []byte { return []byte(fmt.Sprintf("key-%06d", i)) }
	val := func(i uint64) []byte { return []byte(fmt.Sprintf("val-%06d", i)) }

	var g errgroup.Group
	for r := 0; r < 4; r++ {
		seed := uint32(r + 1)
		g.Go(func() error {
			rnd := random.New(seed)
			for {
				select {
				case <-done:
					return nil
				default:
				}
				w := watermark.Load()
				if w == 0 {
					continue
				}
				k := uint64(rnd.Next())%w + 1
				e, ok := m.Get(key(k), w)
				if !ok {
					return fmt.Errorf("key %d missing below watermark %d", k, w)
				}
				if string(e.Value) != string(val(k)) {
					return fmt.Errorf("key %d read %q", k, e.Value)
				}
			}
		})
	}

	const n = 20000
	for i := uint64(1); i <= n; i++ {
		m.Add(i, record.PutEntry, key(i), val(i))
		watermark.Store(i)
	}
	close(done)
	require.NoError(t, g.Wait())
}
