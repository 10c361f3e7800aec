// Package keyspace implements the in-memory set of named value slots the
// commands operate on. Values are plain byte regions that can be resized in
// place and handed out for direct access.
package keyspace

import (
	"errors"
	"fmt"
)

// ErrValueTooLarge is returned when a value would grow past the configured maximum.
var ErrValueTooLarge = errors.New("keyspace: value exceeds maximum size")

// KeyType describes what an opened key currently holds.
type KeyType int

const (
	// KeyTypeEmpty means the key does not exist.
	KeyTypeEmpty KeyType = iota
	// KeyTypeString means the key holds a byte string.
	KeyTypeString
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeEmpty:
		return "none"
	case KeyTypeString:
		return "string"
	}
	return fmt.Sprintf("KeyType(%d)", int(t))
}

// Keyspace is the ordered collection of values. It does no locking; callers
// serialize access.
type Keyspace struct {
	sl           *skipList
	maxValueSize int
}

// New creates an empty Keyspace. A maxValueSize of zero or less means unlimited.
func New(maxValueSize int) *Keyspace {
	return &Keyspace{
		sl:           newSkipList(),
		maxValueSize: maxValueSize,
	}
}

// Open returns a handle to name whether or not it exists.
func (ks *Keyspace) Open(name string) *Key {
	return &Key{ks: ks, name: name, node: ks.sl.get(name)}
}

// Get returns a copy of the value stored at name.
func (ks *Keyspace) Get(name string) ([]byte, bool) {
	n := ks.sl.get(name)
	if n == nil {
		return nil, false
	}
	return append([]byte{}, n.value...), true
}

// Set stores a copy of value at name, replacing any previous value.
func (ks *Keyspace) Set(name string, value []byte) error {
	if err := ks.checkSize(len(value)); err != nil {
		return err
	}
	ks.sl.put(name, append([]byte{}, value...))
	return nil
}

// Delete removes name and reports whether it existed.
func (ks *Keyspace) Delete(name string) bool {
	return ks.sl.remove(name)
}

// Len returns the number of keys.
func (ks *Keyspace) Len() int {
	return ks.sl.size
}

// Ascend calls fn for every key in order until fn returns false.
// The value passed to fn must not be retained or modified.
func (ks *Keyspace) Ascend(fn func(name string, value []byte) bool) {
	ks.sl.ascend(func(n *node) bool {
		return fn(n.key, n.value)
	})
}

// Clear drops every key.
func (ks *Keyspace) Clear() {
	ks.sl.clear()
}

func (ks *Keyspace) checkSize(n int) error {
	if ks.maxValueSize > 0 && n > ks.maxValueSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrValueTooLarge, n, ks.maxValueSize)
	}
	return nil
}
