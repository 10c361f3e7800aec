package msgpack

// ByteVector is a resizable byte region the array is encoded into.
type ByteVector interface {
	// Len returns the current length in bytes.
	Len() int
	// Bytes returns a view of the region. The view is only valid until the
	// next call to Resize.
	Bytes() []byte
	// Move copies n bytes from src to dst. The ranges may overlap.
	Move(dst, src, n int)
	// Resize returns a vector of exactly n bytes whose first min(Len(), n)
	// bytes equal the current content and whose new tail is zeroed.
	// The receiver must not be used after a successful Resize.
	Resize(n int) (ByteVector, error)
}

// Allocator creates the initial vector of n bytes for a new array.
type Allocator func(n int) (ByteVector, error)

// Bytes is a ByteVector backed by an ordinary slice.
type Bytes []byte

// AllocBytes is an Allocator returning zeroed Bytes.
func AllocBytes(n int) (ByteVector, error) {
	return make(Bytes, n), nil
}

func (b Bytes) Len() int { return len(b) }

func (b Bytes) Bytes() []byte { return b }

func (b Bytes) Move(dst, src, n int) {
	copy(b[dst:dst+n], b[src:src+n])
}

func (b Bytes) Resize(n int) (ByteVector, error) {
	out := make(Bytes, n)
	copy(out, b)
	return out, nil
}
