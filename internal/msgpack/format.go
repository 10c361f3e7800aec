// Package msgpack implements a sorted, fixed-width element array stored in the
// msgpack array framing and mutated in place on its encoded bytes.
package msgpack

import "encoding/binary"

// Format describes how one fixed-width element type is tagged, encoded and ordered.
type Format[V any] interface {
	// Tag is the first byte of every encoded element.
	Tag() byte
	// Size is the payload width in bytes, excluding the tag.
	Size() int
	// Read decodes the element at off. It reports false if the tag does not match.
	Read(b []byte, off int) (V, bool)
	// Write encodes v at off, tag first, overwriting whatever was there.
	Write(b []byte, off int, v V)
	// Compare returns -1, 0 or 1.
	Compare(a, b V) int
}

// Int64Tag is the msgpack int64 marker.
const Int64Tag = 0xd3

// Int64 is the Format for signed 64-bit integers.
//
// The payload is stored least significant byte first. This differs from the
// big-endian int64 of the msgpack specification, but already-encoded values use
// this layout and must keep decoding to the same numbers.
type Int64 struct{}

// Tag returns 0xd3.
func (Int64) Tag() byte { return Int64Tag }

// Size returns 8.
func (Int64) Size() int { return 8 }

// Read decodes a little-endian int64 payload following the tag at off.
func (Int64) Read(b []byte, off int) (int64, bool) {
	if b[off] != Int64Tag {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(b[off+1 : off+9])), true
}

// Write stores the tag and the little-endian payload at off.
func (Int64) Write(b []byte, off int, v int64) {
	b[off] = Int64Tag
	binary.LittleEndian.PutUint64(b[off+1:off+9], uint64(v))
}

// Compare orders int64 values ascending.
func (Int64) Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// slotSize is the width of one encoded element including its tag.
func slotSize[V any, F Format[V]]() int {
	var f F
	return f.Size() + 1
}
