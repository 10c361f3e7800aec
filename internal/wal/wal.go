// Package wal implements the command log. Every write command that changed
// the keyspace is appended verbatim and replayed on startup.
package wal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/MikhailWahib/gravelpack/internal/diskmanager"
	"github.com/MikhailWahib/gravelpack/internal/record"
	"github.com/fxamacker/cbor/v2"
)

// ErrEmptyCommand is returned when appending a command without a name.
var ErrEmptyCommand = errors.New("wal: empty command")

var encMode, _ = cbor.CoreDetEncOptions().EncMode()

// WAL manages the command log file
type WAL struct {
	mu sync.Mutex

	dm          diskmanager.DiskManager
	path        string
	file        diskmanager.FileHandle
	writeOffset int64
	syncWrites  bool
	appended    int
}

// NewWAL opens or creates the log at path. With syncWrites every append is
// followed by a sync.
func NewWAL(dm diskmanager.DiskManager, path string, syncWrites bool) (*WAL, error) {
	file, err := dm.Open(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open wal: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat wal: %w", err)
	}

	return &WAL{
		dm:          dm,
		path:        path,
		file:        file,
		writeOffset: fileInfo.Size(),
		syncWrites:  syncWrites,
	}, nil
}

// Append logs one command. args[0] is the command name.
func (w *WAL) Append(args [][]byte) error {
	if len(args) == 0 || len(args[0]) == 0 {
		return ErrEmptyCommand
	}

	value, err := encMode.Marshal(args[1:])
	if err != nil {
		return fmt.Errorf("failed to encode command arguments: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := record.WriteEntryAt(w.file, w.writeOffset, record.Entry{
		Type:  record.CommandEntry,
		Key:   args[0],
		Value: value,
	})
	if err != nil {
		return err
	}
	w.writeOffset = n
	w.appended++

	if w.syncWrites {
		return w.file.Sync()
	}
	return nil
}

// Replay reads every logged command from the beginning of the file. The
// commands read count towards Appended.
//
// A command cut short by a crash is dropped and the file is truncated to the
// last complete entry; the number of discarded bytes is returned.
func (w *WAL) Replay() ([][][]byte, int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var offset int64
	var commands [][][]byte

	for {
		e, next, err := record.ReadEntryAt(w.file, offset)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			dropped := w.writeOffset - offset
			if err := w.file.Truncate(offset); err != nil {
				return nil, 0, fmt.Errorf("failed to truncate torn wal tail: %w", err)
			}
			w.writeOffset = offset
			w.appended = len(commands)
			return commands, dropped, nil
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read wal at %d: %w", offset, err)
		}
		if e.Type != record.CommandEntry {
			return nil, 0, fmt.Errorf("unexpected %s entry in wal at %d", e.Type, offset)
		}

		var rest [][]byte
		if err := cbor.Unmarshal(e.Value, &rest); err != nil {
			return nil, 0, fmt.Errorf("failed to decode wal command at %d: %w", offset, err)
		}
		commands = append(commands, append([][]byte{e.Key}, rest...))
		offset = next
	}

	w.appended = len(commands)
	return commands, 0, nil
}

// Appended returns the number of commands in the log since the last Reset.
func (w *WAL) Appended() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.appended
}

// Size returns the current log size in bytes.
func (w *WAL) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeOffset
}

// Reset empties the log once its commands are covered by a snapshot.
func (w *WAL) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to reset wal: %w", err)
	}
	w.writeOffset = 0
	w.appended = 0
	return w.file.Sync()
}

// Close syncs and closes the log file
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Sync(); err != nil {
		return err
	}
	return w.dm.Close(w.path)
}
