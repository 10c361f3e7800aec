package msgpack

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by InsertAt for a position past the end.
var ErrIndexOutOfRange = errors.New("msgpack: index out of range")

// Array is a msgpack array of same-typed fixed-width elements kept in a ByteVector.
// Elements are read and written directly in the encoded bytes.
//
// An Array is not safe for concurrent use.
type Array[V any, F Format[V]] struct {
	buf    ByteVector
	format F
}

// Int64Array is the array of int64 elements.
type Int64Array = Array[int64, Int64]

// NewInt64Array creates an empty Int64Array with alloc.
func NewInt64Array(alloc Allocator) (*Int64Array, error) {
	return New[int64, Int64](alloc)
}

// ParseInt64Array interprets buf as an Int64Array.
func ParseInt64Array(buf ByteVector) (*Int64Array, bool) {
	return Parse[int64, Int64](buf)
}

// New allocates a one byte vector and writes an empty fixarray header to it.
func New[V any, F Format[V]](alloc Allocator) (*Array[V, F], error) {
	buf, err := alloc(1)
	if err != nil {
		return nil, err
	}
	HeaderFor(0).Put(buf.Bytes())
	return &Array[V, F]{buf: buf}, nil
}

// Parse wraps an existing encoding. It reports false unless buf holds a known
// header, exactly as many bytes as that header announces, and a valid tag in
// every element slot.
func Parse[V any, F Format[V]](buf ByteVector) (*Array[V, F], bool) {
	b := buf.Bytes()
	h, ok := ReadHeader(b)
	if !ok {
		return nil, false
	}
	slot := slotSize[V, F]()
	if len(b) != h.TotalBytes(slot) {
		return nil, false
	}
	var f F
	for i := 0; i < h.Count; i++ {
		if b[h.Offset(i, slot)] != f.Tag() {
			return nil, false
		}
	}
	return &Array[V, F]{buf: buf}, true
}

// Buffer returns the current backing vector. It changes after every
// successful InsertAt or DeleteAt.
func (a *Array[V, F]) Buffer() ByteVector {
	return a.buf
}

// Header decodes the current header.
func (a *Array[V, F]) Header() Header {
	h, _ := ReadHeader(a.buf.Bytes())
	return h
}

// Len returns the number of elements.
func (a *Array[V, F]) Len() int {
	return a.Header().Count
}

// Get returns element i, or false if i is out of range.
func (a *Array[V, F]) Get(i int) (V, bool) {
	h := a.Header()
	if i < 0 || i >= h.Count {
		var zero V
		return zero, false
	}
	return a.format.Read(a.buf.Bytes(), h.Offset(i, slotSize[V, F]()))
}

// Set overwrites element i. Out of range indexes are ignored.
// Set does not reorder; the caller keeps the array sorted.
func (a *Array[V, F]) Set(i int, v V) {
	h := a.Header()
	if i < 0 || i >= h.Count {
		return
	}
	a.format.Write(a.buf.Bytes(), h.Offset(i, slotSize[V, F]()), v)
}

// Values decodes all elements in order.
func (a *Array[V, F]) Values() []V {
	h := a.Header()
	slot := slotSize[V, F]()
	b := a.buf.Bytes()
	out := make([]V, 0, h.Count)
	for i := 0; i < h.Count; i++ {
		v, _ := a.format.Read(b, h.Offset(i, slot))
		out = append(out, v)
	}
	return out
}

// InsertAt inserts v before element i; i == Len() appends.
//
// The vector is resized before any byte is changed, so a resize error leaves
// the encoding untouched. The resize error is returned as is.
func (a *Array[V, F]) InsertAt(i int, v V) error {
	cur := a.Header()
	if i < 0 || i > cur.Count {
		return fmt.Errorf("%w: insert at %d with length %d", ErrIndexOutOfRange, i, cur.Count)
	}
	slot := slotSize[V, F]()
	next := HeaderFor(cur.Count + 1)

	buf, err := a.buf.Resize(next.TotalBytes(slot))
	if err != nil {
		return err
	}
	a.buf = buf

	// the payload must sit behind the new header before per-index offsets apply
	if next.Width() != cur.Width() && cur.Count > 0 {
		a.buf.Move(next.Width(), cur.Width(), cur.Count*slot)
	}
	if i < cur.Count {
		a.buf.Move(next.Offset(i+1, slot), next.Offset(i, slot), (cur.Count-i)*slot)
	}

	b := a.buf.Bytes()
	next.Put(b)
	a.format.Write(b, next.Offset(i, slot), v)
	return nil
}

// DeleteAt removes element i. Out of range indexes are a no-op.
//
// Bytes are compacted before the vector is shrunk. If the resize fails the
// encoding is no longer valid and the array must be discarded.
func (a *Array[V, F]) DeleteAt(i int) error {
	cur := a.Header()
	if i < 0 || i >= cur.Count {
		return nil
	}
	slot := slotSize[V, F]()

	if i < cur.Count-1 {
		a.buf.Move(cur.Offset(i, slot), cur.Offset(i+1, slot), (cur.Count-i-1)*slot)
	}

	next := HeaderFor(cur.Count - 1)
	if next.Width() != cur.Width() && next.Count > 0 {
		a.buf.Move(next.Width(), cur.Width(), next.Count*slot)
	}

	buf, err := a.buf.Resize(next.TotalBytes(slot))
	if err != nil {
		return err
	}
	a.buf = buf
	next.Put(a.buf.Bytes())
	return nil
}
