// Package snapshot writes and loads point-in-time dumps of the keyspace.
//
// File layout:
//
//	[entry]...[manifest][footer]
//
// Entries use the record framing, one per key in ascending order. The
// manifest is CBOR encoded. The footer holds the manifest offset and size as
// two big-endian uint64.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

const (
	// FormatVersion is the current snapshot layout version.
	FormatVersion = 1

	ManifestOffsetSize = 8
	ManifestSizeSize   = 8
	FooterSize         = ManifestOffsetSize + ManifestSizeSize

	// values shorter than this are never compressed
	minCompressSize = 64
)

// Compression names stored in the manifest.
const (
	CompressionNone   = "none"
	CompressionSnappy = "snappy"
)

// ErrCorrupt is returned when a snapshot file cannot be decoded.
var ErrCorrupt = errors.New("snapshot: corrupt file")

// Manifest describes a snapshot.
type Manifest struct {
	Version       int    `cbor:"1,keyasint"`
	ReplicationID string `cbor:"2,keyasint"`
	Entries       uint64 `cbor:"3,keyasint"`
	Compression   string `cbor:"4,keyasint"`
	CreatedAt     int64  `cbor:"5,keyasint"`
}

// ID parses the replication ID.
func (m Manifest) ID() (uuid.UUID, error) {
	return uuid.Parse(m.ReplicationID)
}

// Created returns the creation time.
func (m Manifest) Created() time.Time {
	return time.Unix(0, m.CreatedAt)
}

func encodeFooter(offset, size int64) []byte {
	footer := make([]byte, FooterSize)
	binary.BigEndian.PutUint64(footer[:ManifestOffsetSize], uint64(offset))
	binary.BigEndian.PutUint64(footer[ManifestOffsetSize:], uint64(size))
	return footer
}

func decodeManifest(b []byte) (Manifest, error) {
	var m Manifest
	if err := cbor.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: manifest: %v", ErrCorrupt, err)
	}
	if m.Version != FormatVersion {
		return Manifest{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, m.Version)
	}
	if _, err := m.ID(); err != nil {
		return Manifest{}, fmt.Errorf("%w: replication id: %v", ErrCorrupt, err)
	}
	return m, nil
}
