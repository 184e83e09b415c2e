// Package filter provides a concurrency-safe bloom filter used to screen
// point lookups before they touch the sorted index.
package filter

import (
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter is a bloom filter safe for one writer and many readers. A key
// that was added is always reported present; a key never added is
// reported present only with the configured false positive probability.
type Filter struct {
	mu sync.RWMutex
	bf *bloom.BloomFilter
}

// New returns a filter sized for the expected number of keys at the given
// false positive rate. expectedKeys must be positive and fpRate must be in
// (0, 1).
func New(expectedKeys uint, fpRate float64) *Filter {
	if expectedKeys == 0 {
		panic("filter: expected key count must be positive")
	}
	if fpRate <= 0 || fpRate >= 1 {
		panic(fmt.Sprintf("filter: false positive rate %v outside (0, 1)", fpRate))
	}
	return &Filter{bf: bloom.NewWithEstimates(expectedKeys, fpRate)}
}

// Add records key in the filter.
func (f *Filter) Add(key []byte) {
	f.mu.Lock()
	f.bf.Add(key)
	f.mu.Unlock()
}

// MayContain reports whether key might have been added. False means the
// key was definitely never added.
func (f *Filter) MayContain(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.Test(key)
}
