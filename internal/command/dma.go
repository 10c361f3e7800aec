package command

import (
	"fmt"

	"github.com/MikhailWahib/gravelpack/internal/keyspace"
	"github.com/MikhailWahib/gravelpack/internal/msgpack"
)

// DMA is a msgpack.ByteVector over the live value of a key. The region is
// owned by the keyspace and moves when the value is resized, so every Resize
// goes through the key and fetches the region again.
type DMA struct {
	key    *keyspace.Key
	region []byte
}

// NewDMA wraps the current value of key.
func NewDMA(key *keyspace.Key) *DMA {
	return &DMA{key: key, region: key.DMA()}
}

// KeyAllocator returns an allocator that creates the value of an empty key.
func KeyAllocator(key *keyspace.Key) msgpack.Allocator {
	return func(n int) (msgpack.ByteVector, error) {
		if err := key.Truncate(n); err != nil {
			return nil, fmt.Errorf("allocate %q: %w", key.Name(), err)
		}
		return NewDMA(key), nil
	}
}

func (d *DMA) Len() int { return len(d.region) }

func (d *DMA) Bytes() []byte { return d.region }

func (d *DMA) Move(dst, src, n int) {
	copy(d.region[dst:dst+n], d.region[src:src+n])
}

// Resize truncates the key value to n bytes and returns a DMA over the new region.
func (d *DMA) Resize(n int) (msgpack.ByteVector, error) {
	if err := d.key.Truncate(n); err != nil {
		return nil, fmt.Errorf("resize %q to %d bytes: %w", d.key.Name(), n, err)
	}
	return NewDMA(d.key), nil
}
