// Package record implements the length-prefixed entry framing shared by the
// command log and snapshot files.
package record

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/MikhailWahib/gravelpack/internal/diskmanager"
)

// EntryTypeSize is the size in bytes used to store an entry type marker
const EntryTypeSize = 1

// LengthSize is the size in bytes used to store length prefixes
const LengthSize = 4

// PrefixSize is the total size of entry metadata (type + key length + value length)
const PrefixSize = EntryTypeSize + (2 * LengthSize) // 9 bytes

// EntryType represents the type of a framed entry
type EntryType byte

const (
	// ValueEntry is a key and its stored value in a snapshot
	ValueEntry EntryType = iota + 1
	// CompressedValueEntry is a ValueEntry whose value is snappy compressed
	CompressedValueEntry
	// CommandEntry is a logged write command: the name as key, the encoded arguments as value
	CommandEntry
)

func (t EntryType) String() string {
	switch t {
	case ValueEntry:
		return "value"
	case CompressedValueEntry:
		return "compressed-value"
	case CommandEntry:
		return "command"
	}
	return fmt.Sprintf("EntryType(%d)", byte(t))
}

// Entry is one framed record
type Entry struct {
	Type  EntryType
	Key   []byte
	Value []byte
}

// Size returns the encoded size of e
func (e Entry) Size() int {
	return PrefixSize + len(e.Key) + len(e.Value)
}

// Serialize converts an Entry to a byte slice.
// Format: [1 byte EntryType][4 bytes KeyLen][4 bytes ValueLen][Key][Value]
func Serialize(e Entry) []byte {
	keyLen := len(e.Key)
	buf := make([]byte, e.Size())

	buf[0] = byte(e.Type)
	binary.BigEndian.PutUint32(buf[EntryTypeSize:EntryTypeSize+LengthSize], uint32(keyLen))
	binary.BigEndian.PutUint32(buf[EntryTypeSize+LengthSize:PrefixSize], uint32(len(e.Value)))
	copy(buf[PrefixSize:], e.Key)
	copy(buf[PrefixSize+keyLen:], e.Value)

	return buf
}

// WriteEntryAt writes e to f at offset and returns the offset following it.
func WriteEntryAt(f diskmanager.FileHandle, offset int64, e Entry) (int64, error) {
	n, err := f.WriteAt(Serialize(e), offset)
	if err != nil {
		return 0, fmt.Errorf("failed to write entry: %w", err)
	}
	return offset + int64(n), nil
}

// ReadEntryAt reads the entry at offset and returns it with the offset following it.
// It returns io.EOF when offset is at the end of the file and
// io.ErrUnexpectedEOF when the entry is cut short.
func ReadEntryAt(f diskmanager.FileHandle, offset int64) (Entry, int64, error) {
	prefix := make([]byte, PrefixSize)
	n, err := f.ReadAt(prefix, offset)
	if err != nil {
		if err == io.EOF && n > 0 {
			return Entry{}, 0, io.ErrUnexpectedEOF
		}
		return Entry{}, 0, err
	}

	entryType := EntryType(prefix[0])
	keyLen := binary.BigEndian.Uint32(prefix[EntryTypeSize : EntryTypeSize+LengthSize])
	valLen := binary.BigEndian.Uint32(prefix[EntryTypeSize+LengthSize : PrefixSize])

	body := make([]byte, int(keyLen)+int(valLen))
	if len(body) > 0 {
		if _, err := f.ReadAt(body, offset+PrefixSize); err != nil {
			if err == io.EOF {
				return Entry{}, 0, io.ErrUnexpectedEOF
			}
			return Entry{}, 0, err
		}
	}

	return Entry{
		Type:  entryType,
		Key:   body[:keyLen],
		Value: body[keyLen:],
	}, offset + PrefixSize + int64(len(body)), nil
}
