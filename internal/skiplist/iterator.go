package skiplist

// Iterator walks a SkipList. It is safe to use while another goroutine
// inserts, but each Iterator may only be used from one goroutine at a
// time. Calling Key, Next or Prev on an invalid iterator is a caller bug
// and panics.
type Iterator struct {
	list *SkipList
	n    *node
}

// NewIterator returns an iterator over the list. It is initially invalid;
// position it with Seek, SeekToFirst or SeekToLast.
func (s *SkipList) NewIterator() *Iterator {
	return &Iterator{list: s}
}

// Valid reports whether the iterator is positioned at a key.
func (it *Iterator) Valid() bool {
	return it.n != nil
}

// Key returns the key at the current position. The returned slice is owned
// by the list and must not be modified.
func (it *Iterator) Key() []byte {
	it.mustBeValid()
	return it.n.key
}

// Next advances to the following key, invalidating the iterator at the
// end.
func (it *Iterator) Next() {
	it.mustBeValid()
	it.n = it.n.loadNext(0)
}

// Prev moves to the previous key, invalidating the iterator at the front.
// The position is re-derived by search instead of back pointers, so nodes
// inserted before the current key after the iterator passed them are
// still visited.
func (it *Iterator) Prev() {
	it.mustBeValid()
	it.n = it.list.findLessThan(it.n.key)
	if it.n == it.list.head {
		it.n = nil
	}
}

// Seek positions the iterator at the first key >= target, invalidating it
// when no such key exists.
func (it *Iterator) Seek(target []byte) {
	it.n = it.list.findGreaterOrEqual(target, nil)
}

// SeekToFirst positions the iterator at the smallest key, invalidating it
// when the list is empty.
func (it *Iterator) SeekToFirst() {
	it.n = it.list.head.loadNext(0)
}

// SeekToLast positions the iterator at the largest key, invalidating it
// when the list is empty.
func (it *Iterator) SeekToLast() {
	it.n = it.list.findLast()
	if it.n == it.list.head {
		it.n = nil
	}
}

func (it *Iterator) mustBeValid() {
	if it.n == nil {
		panic("skiplist: use of invalid iterator")
	}
}
