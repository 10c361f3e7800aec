package msgpack_test

import (
	"testing"

	"github.com/MikhailWahib/gravelpack/internal/msgpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesMoveOverlapping(t *testing.T) {
	b := msgpack.Bytes{1, 2, 3, 4, 5, 6, 7, 8}
	b.Move(2, 0, 5)
	assert.Equal(t, msgpack.Bytes{1, 2, 1, 2, 3, 4, 5, 8}, b, "move right")

	b = msgpack.Bytes{1, 2, 3, 4, 5, 6, 7, 8}
	b.Move(0, 2, 5)
	assert.Equal(t, msgpack.Bytes{3, 4, 5, 6, 7, 6, 7, 8}, b, "move left")
}

func TestBytesResize(t *testing.T) {
	b := msgpack.Bytes{9, 8, 7}

	grown, err := b.Resize(6)
	require.NoError(t, err)
	assert.Equal(t, 6, grown.Len())
	assert.Equal(t, []byte{9, 8, 7, 0, 0, 0}, grown.Bytes())

	shrunk, err := grown.Resize(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8}, shrunk.Bytes())
}

func TestAllocBytes(t *testing.T) {
	v, err := msgpack.AllocBytes(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, v.Bytes())
}
