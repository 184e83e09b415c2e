// Package config provides configuration structures and defaults for silt.
package config

const (
	defaultMaxMemtableSize         = 4 * 1024 * 1024
	defaultFilterExpectedKeys      = 100_000
	defaultFilterFalsePositiveRate = 0.01
	defaultRandomSeed              = 0xdeadbeef
)

// Config holds the tunable parameters of a silt database.
type Config struct {
	// MaxMemtableSize is the memory usage, in bytes, at which the active
	// table is rotated out and handed to the flush callback.
	MaxMemtableSize int64

	// EnableFilter attaches a bloom filter to each table so lookups of
	// absent keys can skip the search entirely.
	EnableFilter bool

	// FilterExpectedKeys sizes the bloom filter. Only meaningful when
	// EnableFilter is set.
	FilterExpectedKeys uint

	// FilterFalsePositiveRate is the target rate of absent keys the
	// filter wrongly reports present. Only meaningful when EnableFilter
	// is set.
	FilterFalsePositiveRate float64

	// RandomSeed feeds the height generator of each table's skip list.
	// A fixed seed makes table shapes reproducible.
	RandomSeed uint32
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() *Config {
	return &Config{
		MaxMemtableSize:         defaultMaxMemtableSize,
		FilterExpectedKeys:      defaultFilterExpectedKeys,
		FilterFalsePositiveRate: defaultFilterFalsePositiveRate,
		RandomSeed:              defaultRandomSeed,
	}
}

// FillDefaults sets any zero-value fields in the Config to their default
// values.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.MaxMemtableSize == 0 {
		c.MaxMemtableSize = def.MaxMemtableSize
	}
	if c.FilterExpectedKeys == 0 {
		c.FilterExpectedKeys = def.FilterExpectedKeys
	}
	if c.FilterFalsePositiveRate == 0 {
		c.FilterFalsePositiveRate = def.FilterFalsePositiveRate
	}
	if c.RandomSeed == 0 {
		c.RandomSeed = def.RandomSeed
	}
}
