// Package mockdm provides an in-memory disk manager for tests.
package mockdm

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MikhailWahib/gravelpack/internal/diskmanager"
)

// MockFile implements diskmanager.FileHandle over a byte slice.
type MockFile struct {
	data   []byte
	name   string
	syncs  int
	closed bool
}

// WriteAt writes len(b) bytes to the file starting at byte offset off
func (m *MockFile) WriteAt(b []byte, off int64) (int, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	requiredLen := int(off) + len(b)
	if requiredLen > len(m.data) {
		newData := make([]byte, requiredLen)
		copy(newData, m.data)
		m.data = newData
	}
	return copy(m.data[off:], b), nil
}

// ReadAt reads len(b) bytes from the file starting at byte offset off
func (m *MockFile) ReadAt(b []byte, off int64) (int, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(b, m.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

// Truncate resizes the mock file, zero filling on growth
func (m *MockFile) Truncate(size int64) error {
	if int(size) <= len(m.data) {
		m.data = m.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.data)
	m.data = grown
	return nil
}

// Close marks the mock file closed
func (m *MockFile) Close() error {
	m.closed = true
	return nil
}

// Sync counts sync calls
func (m *MockFile) Sync() error {
	m.syncs++
	return nil
}

// Syncs returns how many times Sync was called
func (m *MockFile) Syncs() int {
	return m.syncs
}

// Bytes returns the file contents
func (m *MockFile) Bytes() []byte {
	return m.data
}

// Stat returns file information
func (m *MockFile) Stat() (os.FileInfo, error) {
	return &testFileInfo{size: int64(len(m.data)), name: filepath.Base(m.name)}, nil
}

type testFileInfo struct {
	size int64
	name string
}

func (m *testFileInfo) Name() string       { return m.name }
func (m *testFileInfo) Size() int64        { return m.size }
func (m *testFileInfo) Mode() os.FileMode  { return 0644 }
func (m *testFileInfo) ModTime() time.Time { return time.Now() }
func (m *testFileInfo) IsDir() bool        { return false }
func (m *testFileInfo) Sys() any           { return nil }

// MockDiskManager implements diskmanager.DiskManager interface for testing
type MockDiskManager struct {
	files map[string]*MockFile
}

// NewMockDiskManager creates a new MockDiskManager instance
func NewMockDiskManager() *MockDiskManager {
	return &MockDiskManager{
		files: make(map[string]*MockFile),
	}
}

// Open creates or opens a mock file. Closed files are reopened with their data.
func (dm *MockDiskManager) Open(path string, flags int, _ os.FileMode) (diskmanager.FileHandle, error) {
	if file, exists := dm.files[path]; exists {
		file.closed = false
		return file, nil
	}
	if flags&os.O_CREATE == 0 {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	file := &MockFile{
		data: []byte{},
		name: path,
	}
	dm.files[path] = file
	return file, nil
}

// File returns the mock file at path, if any
func (dm *MockDiskManager) File(path string) (*MockFile, bool) {
	f, ok := dm.files[path]
	return f, ok
}

// Delete removes a mock file
func (dm *MockDiskManager) Delete(path string) error {
	delete(dm.files, path)
	return nil
}

// Rename moves a mock file
func (dm *MockDiskManager) Rename(oldPath, newPath string) error {
	file, exists := dm.files[oldPath]
	if !exists {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: os.ErrNotExist}
	}
	delete(dm.files, oldPath)
	file.name = newPath
	file.closed = true
	dm.files[newPath] = file
	return nil
}

// Exists reports whether a mock file exists
func (dm *MockDiskManager) Exists(path string) bool {
	_, ok := dm.files[path]
	return ok
}

// List returns mock files matching the filter
func (dm *MockDiskManager) List(_ string, filter string) ([]string, error) {
	var files []string
	for name := range dm.files {
		if filter == "" || strings.Contains(name, filter) {
			files = append(files, name)
		}
	}
	return files, nil
}

// Close closes a mock file
func (dm *MockDiskManager) Close(path string) error {
	if file, exists := dm.files[path]; exists {
		file.closed = true
	}
	return nil
}
