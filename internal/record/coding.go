package record

import "encoding/binary"

// EncodeFixed32 writes v into the first 4 bytes of dst in little-endian
// order. dst must have room for 4 bytes.
func EncodeFixed32(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}

// DecodeFixed32 reads a little-endian uint32 from the first 4 bytes of b.
func DecodeFixed32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// EncodeFixed64 writes v into the first 8 bytes of dst in little-endian
// order. dst must have room for 8 bytes.
func EncodeFixed64(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst, v)
}

// DecodeFixed64 reads a little-endian uint64 from the first 8 bytes of b.
func DecodeFixed64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// PutUvarint encodes v into dst using unsigned varint encoding and returns
// the number of bytes written. dst must have room for UvarintLen(v) bytes.
func PutUvarint(dst []byte, v uint64) int {
	return binary.PutUvarint(dst, v)
}

// UvarintLen reports how many bytes the varint encoding of v occupies.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// GetLengthPrefixedSlice decodes a varint length from the front of b and
// returns the slice it prefixes along with the remainder of b. ok is false
// when b is truncated.
func GetLengthPrefixedSlice(b []byte) (data, rest []byte, ok bool) {
	l, n := binary.Uvarint(b)
	if n <= 0 || uint64(len(b)-n) < l {
		return nil, nil, false
	}
	return b[n : n+int(l)], b[n+int(l):], true
}
