package record

// Hash computes a 32-bit hash of data using a Murmur-style mixing scheme.
// The same data and seed always produce the same value, so callers may use
// it for checksums embedded in stored keys.
func Hash(data []byte, seed uint32) uint32 {
	const (
		m = 0xc6a4a793
		r = 24
	)
	h := seed ^ uint32(len(data))*m

	for len(data) >= 4 {
		h += DecodeFixed32(data)
		h *= m
		h ^= h >> 16
		data = data[4:]
	}

	switch len(data) {
	case 3:
		h += uint32(data[2]) << 16
		fallthrough
	case 2:
		h += uint32(data[1]) << 8
		fallthrough
	case 1:
		h += uint32(data[0])
		h *= m
		h ^= h >> r
	}
	return h
}
