// Package file provides a backend.Storage implementation backed by a plain
// os.File — the container host file for the sector engine.
package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/sectorfuse/sectorfuse/backend"
)

type rawBackend struct {
	storage  fs.File
	readOnly bool
}

// New creates a backend.Storage from an already-open fs.File.
func New(f fs.File, readOnly bool) backend.Storage {
	return rawBackend{
		storage:  f,
		readOnly: readOnly,
	}
}

// OpenFromPath opens an existing container host file (or block device) at
// pathName. The file must already exist.
func OpenFromPath(pathName string, readOnly bool) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass container file name")
	}

	if _, err := os.Stat(pathName); os.IsNotExist(err) {
		return nil, fmt.Errorf("container file %s does not exist", pathName)
	}

	openMode := os.O_RDONLY
	if !readOnly {
		openMode |= os.O_RDWR
	}

	f, err := os.OpenFile(pathName, openMode, 0o600)
	if err != nil {
		return nil, fmt.Errorf("could not open container %s with mode %v: %w", pathName, openMode, err)
	}

	return rawBackend{
		storage:  f,
		readOnly: readOnly,
	}, nil
}

// CreateFromPath creates a brand-new, empty container host file at pathName.
// The file must not already exist. Unlike a fixed-size disk image, the
// container file starts at zero length: the sector engine grows it one
// sector at a time via positional writes as Superblock.SectorCount grows.
func CreateFromPath(pathName string) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass container file name")
	}
	f, err := os.OpenFile(pathName, os.O_RDWR|os.O_EXCL|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not create container %s: %w", pathName, err)
	}

	return rawBackend{
		storage:  f,
		readOnly: false,
	}, nil
}

// OpenOrCreate opens pathName if it exists, otherwise creates it fresh. The
// bool return reports whether the file was just created, which the caller
// uses to decide between loading an existing superblock and initializing one.
func OpenOrCreate(pathName string) (backend.Storage, bool, error) {
	if _, err := os.Stat(pathName); err == nil {
		st, err := OpenFromPath(pathName, false)
		return st, false, err
	} else if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("could not stat container %s: %w", pathName, err)
	}
	st, err := CreateFromPath(pathName)
	return st, true, err
}

// backend.Storage interface guard
var _ backend.Storage = (*rawBackend)(nil)

// Sys returns the OS-specific file for ioctl calls via fd.
func (f rawBackend) Sys() (*os.File, error) {
	if osFile, ok := f.storage.(*os.File); ok {
		return osFile, nil
	}
	return nil, backend.ErrNotSuitable
}

// Writable returns the file for read-write operations.
func (f rawBackend) Writable() (backend.WritableFile, error) {
	if rwFile, ok := f.storage.(backend.WritableFile); ok {
		if !f.readOnly {
			return rwFile, nil
		}

		return nil, backend.ErrIncorrectOpenMode
	}
	return nil, backend.ErrNotSuitable
}

func (f rawBackend) Stat() (fs.FileInfo, error) {
	return f.storage.Stat()
}

func (f rawBackend) Read(b []byte) (int, error) {
	return f.storage.Read(b)
}

func (f rawBackend) Close() error {
	return f.storage.Close()
}

func (f rawBackend) ReadAt(p []byte, off int64) (n int, err error) {
	if readerAt, ok := f.storage.(io.ReaderAt); ok {
		return readerAt.ReadAt(p, off)
	}
	return -1, backend.ErrNotSuitable
}

func (f rawBackend) Seek(offset int64, whence int) (int64, error) {
	if seeker, ok := f.storage.(io.Seeker); ok {
		return seeker.Seek(offset, whence)
	}
	return -1, backend.ErrNotSuitable
}
