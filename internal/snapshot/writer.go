package snapshot

import (
	"fmt"
	"os"
	"time"

	"github.com/MikhailWahib/gravelpack/internal/diskmanager"
	"github.com/MikhailWahib/gravelpack/internal/record"
	"github.com/fxamacker/cbor/v2"
	"github.com/golang/snappy"
	"github.com/google/uuid"
)

// Writer streams keys into a temporary file and moves it into place on Finish.
type Writer struct {
	dm       diskmanager.DiskManager
	path     string
	tmpPath  string
	file     diskmanager.FileHandle
	offset   int64
	manifest Manifest
	scratch  []byte
}

// NewWriter starts a snapshot that will replace path once finished.
func NewWriter(dm diskmanager.DiskManager, path string, replicationID uuid.UUID, compress bool) (*Writer, error) {
	tmpPath := path + ".tmp"
	file, err := dm.Open(tmpPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot for writing: %w", err)
	}
	if err := file.Truncate(0); err != nil {
		_ = dm.Close(tmpPath)
		return nil, fmt.Errorf("failed to truncate snapshot: %w", err)
	}

	compression := CompressionNone
	if compress {
		compression = CompressionSnappy
	}

	return &Writer{
		dm:      dm,
		path:    path,
		tmpPath: tmpPath,
		file:    file,
		manifest: Manifest{
			Version:       FormatVersion,
			ReplicationID: replicationID.String(),
			Compression:   compression,
		},
	}, nil
}

// Add writes one key. Keys must be added in ascending order.
func (w *Writer) Add(key string, value []byte) error {
	e := record.Entry{Type: record.ValueEntry, Key: []byte(key), Value: value}

	if w.manifest.Compression == CompressionSnappy && len(value) >= minCompressSize {
		if n := snappy.MaxEncodedLen(len(value)); len(w.scratch) < n {
			w.scratch = make([]byte, n)
		}
		compressed := snappy.Encode(w.scratch, value)
		if len(compressed) < len(value) {
			e.Type = record.CompressedValueEntry
			e.Value = compressed
		}
	}

	next, err := record.WriteEntryAt(w.file, w.offset, e)
	if err != nil {
		return err
	}
	w.offset = next
	w.manifest.Entries++
	return nil
}

// Finish writes the manifest and footer, syncs, and renames the file into place.
func (w *Writer) Finish() (Manifest, error) {
	w.manifest.CreatedAt = time.Now().UnixNano()

	manifest, err := cbor.Marshal(w.manifest)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to encode manifest: %w", err)
	}

	manifestOffset := w.offset
	if _, err := w.file.WriteAt(manifest, w.offset); err != nil {
		return Manifest{}, fmt.Errorf("failed to write manifest: %w", err)
	}
	w.offset += int64(len(manifest))

	if _, err := w.file.WriteAt(encodeFooter(manifestOffset, int64(len(manifest))), w.offset); err != nil {
		return Manifest{}, fmt.Errorf("failed to write footer: %w", err)
	}
	w.offset += FooterSize

	if err := w.file.Sync(); err != nil {
		return Manifest{}, fmt.Errorf("failed to sync snapshot: %w", err)
	}

	if err := w.dm.Rename(w.tmpPath, w.path); err != nil {
		return Manifest{}, fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	return w.manifest, nil
}

// Abort discards the unfinished snapshot.
func (w *Writer) Abort() error {
	return w.dm.Delete(w.tmpPath)
}
