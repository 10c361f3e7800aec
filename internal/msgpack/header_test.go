package msgpack_test

import (
	"testing"

	"github.com/MikhailWahib/gravelpack/internal/msgpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderFor(t *testing.T) {
	tests := []struct {
		count int
		kind  msgpack.HeaderKind
		width int
	}{
		{0, msgpack.FixArray, 1},
		{15, msgpack.FixArray, 1},
		{16, msgpack.Array16, 3},
		{65535, msgpack.Array16, 3},
		{65536, msgpack.Array32, 5},
		{1 << 20, msgpack.Array32, 5},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			h := msgpack.HeaderFor(tt.count)
			assert.Equal(t, tt.kind, h.Kind)
			assert.Equal(t, tt.count, h.Count)
			assert.Equal(t, tt.width, h.Width())
			assert.Equal(t, tt.width+tt.count*9, h.TotalBytes(9))
			assert.Equal(t, tt.width+2*9, h.Offset(2, 9))
		})
	}
}

func TestHeaderPutAndRead(t *testing.T) {
	tests := []struct {
		count int
		want  []byte
	}{
		{0, []byte{0x90}},
		{15, []byte{0x9f}},
		{16, []byte{0xdc, 0x00, 0x10}},
		{65535, []byte{0xdc, 0xff, 0xff}},
		{65536, []byte{0xdd, 0x00, 0x01, 0x00, 0x00}},
	}

	for _, tt := range tests {
		h := msgpack.HeaderFor(tt.count)
		b := make([]byte, h.Width())
		h.Put(b)
		assert.Equal(t, tt.want, b, "encoding of count %d", tt.count)

		got, ok := msgpack.ReadHeader(b)
		require.True(t, ok)
		assert.Equal(t, h, got)
	}
}

func TestReadHeaderRejects(t *testing.T) {
	tests := map[string][]byte{
		"empty":           {},
		"unknown tag":     {0xc0, 0, 0, 0, 0},
		"map tag":         {0x80},
		"short array16":   {0xdc, 0x00},
		"short array32":   {0xdd, 0x00, 0x00, 0x01},
		"int64 not array": {0xd3, 0, 0, 0, 0, 0, 0, 0, 0},
	}

	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := msgpack.ReadHeader(b)
			assert.False(t, ok)
		})
	}
}
