package snapshot

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/MikhailWahib/gravelpack/internal/diskmanager"
	"github.com/MikhailWahib/gravelpack/internal/record"
	"github.com/golang/snappy"
)

// ReadManifest returns the manifest of the snapshot at path without loading entries.
func ReadManifest(dm diskmanager.DiskManager, path string) (Manifest, error) {
	file, err := dm.Open(path, os.O_RDONLY, 0)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = dm.Close(path) }()

	m, _, err := readManifest(file)
	return m, err
}

// Load reads the snapshot at path and calls fn for every key in order.
// The value passed to fn is owned by the callee.
func Load(dm diskmanager.DiskManager, path string, fn func(key string, value []byte) error) (Manifest, error) {
	file, err := dm.Open(path, os.O_RDONLY, 0)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = dm.Close(path) }()

	m, end, err := readManifest(file)
	if err != nil {
		return Manifest{}, err
	}

	var offset int64
	var count uint64
	for offset < end {
		e, next, err := record.ReadEntryAt(file, offset)
		if err != nil {
			return Manifest{}, fmt.Errorf("%w: entry at %d: %v", ErrCorrupt, offset, err)
		}
		if next > end {
			return Manifest{}, fmt.Errorf("%w: entry at %d overruns manifest", ErrCorrupt, offset)
		}

		value := e.Value
		switch e.Type {
		case record.ValueEntry:
		case record.CompressedValueEntry:
			value, err = snappy.Decode(nil, e.Value)
			if err != nil {
				return Manifest{}, fmt.Errorf("%w: entry at %d: %v", ErrCorrupt, offset, err)
			}
		default:
			return Manifest{}, fmt.Errorf("%w: unexpected %s entry at %d", ErrCorrupt, e.Type, offset)
		}

		if err := fn(string(e.Key), value); err != nil {
			return Manifest{}, err
		}
		count++
		offset = next
	}

	if count != m.Entries {
		return Manifest{}, fmt.Errorf("%w: manifest lists %d entries, found %d", ErrCorrupt, m.Entries, count)
	}
	return m, nil
}

// readManifest decodes the footer and manifest. It returns the manifest
// offset, which is where the entries end.
func readManifest(file diskmanager.FileHandle) (Manifest, int64, error) {
	stat, err := file.Stat()
	if err != nil {
		return Manifest{}, 0, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	if stat.Size() < FooterSize {
		return Manifest{}, 0, fmt.Errorf("%w: file too small", ErrCorrupt)
	}

	footer := make([]byte, FooterSize)
	if _, err := file.ReadAt(footer, stat.Size()-FooterSize); err != nil {
		return Manifest{}, 0, fmt.Errorf("failed to read footer: %w", err)
	}
	offset := int64(binary.BigEndian.Uint64(footer[:ManifestOffsetSize]))
	size := int64(binary.BigEndian.Uint64(footer[ManifestOffsetSize:]))
	if offset < 0 || size <= 0 || offset+size != stat.Size()-FooterSize {
		return Manifest{}, 0, fmt.Errorf("%w: bad footer", ErrCorrupt)
	}

	buf := make([]byte, size)
	if _, err := file.ReadAt(buf, offset); err != nil {
		return Manifest{}, 0, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := decodeManifest(buf)
	if err != nil {
		return Manifest{}, 0, err
	}
	return m, offset, nil
}
