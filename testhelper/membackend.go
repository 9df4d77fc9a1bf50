// Package testhelper provides stand-ins for backend.Storage used to test
// the container engine without touching a real file.
package testhelper

import (
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/sectorfuse/sectorfuse/backend"
)

var _ backend.Storage = (*MemBackend)(nil)

// MemBackend is an in-memory backend.Storage backed by a growable byte
// slice. Writes past the current end grow the buffer, the way a real file
// grows when written past EOF.
type MemBackend struct {
	buf []byte
	pos int64
}

// NewMemBackend returns an empty in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{}
}

func (m *MemBackend) Stat() (fs.FileInfo, error) {
	return memInfo{size: int64(len(m.buf))}, nil
}

func (m *MemBackend) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *MemBackend) Close() error { return nil }

func (m *MemBackend) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, os.ErrInvalid
	}
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemBackend) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, os.ErrInvalid
	}
	end := off + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[off:end], p)
	return len(p), nil
}

func (m *MemBackend) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = m.pos + offset
	case io.SeekEnd:
		pos = int64(len(m.buf)) + offset
	default:
		return 0, os.ErrInvalid
	}
	if pos < 0 {
		return 0, os.ErrInvalid
	}
	m.pos = pos
	return pos, nil
}

func (m *MemBackend) Sys() (*os.File, error) {
	return nil, os.ErrInvalid
}

func (m *MemBackend) Writable() (backend.WritableFile, error) {
	return m, nil
}

type memInfo struct {
	size int64
}

func (m memInfo) Name() string       { return "membackend" }
func (m memInfo) Size() int64        { return m.size }
func (m memInfo) Mode() fs.FileMode  { return 0o600 }
func (m memInfo) ModTime() time.Time { return time.Time{} }
func (m memInfo) IsDir() bool        { return false }
func (m memInfo) Sys() interface{}   { return nil }
