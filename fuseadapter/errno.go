//go:build fuse

package fuseadapter

import (
	"errors"
	"syscall"

	"github.com/sectorfuse/sectorfuse/container"
)

// toErrno maps an engine error to the syscall.Errno the kernel expects
// back from a FUSE callback.
func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}

	var notFound *container.InodeNotFoundError
	if errors.As(err, &notFound) {
		return syscall.ENOENT
	}

	var nameTooLong error = container.ErrNameTooLong
	switch {
	case errors.Is(err, container.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, container.ErrIsADirectory):
		return syscall.EISDIR
	case errors.Is(err, container.ErrInvalidName):
		return syscall.EINVAL
	case errors.Is(err, nameTooLong):
		return syscall.ENAMETOOLONG
	case errors.Is(err, container.ErrTruncateGrow):
		return syscall.EINVAL
	case errors.Is(err, container.ErrInodeExhausted):
		return syscall.ENOSPC
	}

	var hostErr *container.HostIOError
	if errors.As(err, &hostErr) {
		return syscall.EIO
	}

	var rangeErr *container.SectorOutOfRangeError
	if errors.As(err, &rangeErr) {
		return syscall.EIO
	}
	var mismatchErr *container.VariantMismatchError
	if errors.As(err, &mismatchErr) {
		return syscall.EIO
	}

	return syscall.EIO
}
