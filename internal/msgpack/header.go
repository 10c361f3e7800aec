package msgpack

import (
	"encoding/binary"
	"fmt"
)

// Array header markers.
const (
	fixArrayMin = 0x90
	fixArrayMax = 0x9f
	array16Tag  = 0xdc
	array32Tag  = 0xdd

	maxFixCount     = 15
	maxArray16Count = 0xffff
)

// HeaderKind identifies which of the three msgpack array headers is used.
type HeaderKind uint8

const (
	// FixArray holds up to 15 elements in a single byte.
	FixArray HeaderKind = iota
	// Array16 holds up to 65535 elements behind a 2-byte count.
	Array16
	// Array32 holds anything larger behind a 4-byte count.
	Array32
)

func (k HeaderKind) String() string {
	switch k {
	case FixArray:
		return "fixarray"
	case Array16:
		return "array16"
	case Array32:
		return "array32"
	}
	return fmt.Sprintf("HeaderKind(%d)", uint8(k))
}

// Header is the length prefix of an encoded array.
type Header struct {
	Kind  HeaderKind
	Count int
}

// HeaderFor returns the smallest header able to hold n elements.
func HeaderFor(n int) Header {
	switch {
	case n <= maxFixCount:
		return Header{Kind: FixArray, Count: n}
	case n <= maxArray16Count:
		return Header{Kind: Array16, Count: n}
	default:
		return Header{Kind: Array32, Count: n}
	}
}

// ReadHeader decodes the header at the start of b.
//
// An unknown marker byte is rejected rather than read as array32. ReadHeader
// also reports false when b is too short to contain the header it announces.
func ReadHeader(b []byte) (Header, bool) {
	if len(b) == 0 {
		return Header{}, false
	}
	switch tag := b[0]; {
	case tag >= fixArrayMin && tag <= fixArrayMax:
		return Header{Kind: FixArray, Count: int(tag - fixArrayMin)}, true
	case tag == array16Tag:
		if len(b) < 3 {
			return Header{}, false
		}
		return Header{Kind: Array16, Count: int(binary.BigEndian.Uint16(b[1:3]))}, true
	case tag == array32Tag:
		if len(b) < 5 {
			return Header{}, false
		}
		return Header{Kind: Array32, Count: int(binary.BigEndian.Uint32(b[1:5]))}, true
	}
	return Header{}, false
}

// Width is the encoded size of the header: 1, 3 or 5 bytes.
func (h Header) Width() int {
	switch h.Kind {
	case Array16:
		return 3
	case Array32:
		return 5
	}
	return 1
}

// Offset is the byte offset of element i given the slot width.
func (h Header) Offset(i, slot int) int {
	return h.Width() + i*slot
}

// TotalBytes is the size of the whole encoded array given the slot width.
func (h Header) TotalBytes(slot int) int {
	return h.Width() + h.Count*slot
}

// Put writes the header bytes at the start of b.
func (h Header) Put(b []byte) {
	switch h.Kind {
	case FixArray:
		b[0] = fixArrayMin + byte(h.Count)
	case Array16:
		b[0] = array16Tag
		binary.BigEndian.PutUint16(b[1:3], uint16(h.Count))
	case Array32:
		b[0] = array32Tag
		binary.BigEndian.PutUint32(b[1:5], uint32(h.Count))
	}
}
