//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package file

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const blkgetsize64 = 0x80081272

// BlockDeviceSize returns the size in bytes of the block device backing f,
// via an ioctl call with request BLKGETSIZE64. Returns an error if f is not
// backed by a block device.
func BlockDeviceSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Mode()&os.ModeDevice == 0 {
		return 0, fmt.Errorf("%s is not a block device", f.Name())
	}
	size, err := unix.IoctlGetUint64(int(f.Fd()), blkgetsize64)
	if err != nil {
		return 0, fmt.Errorf("unable to get block device size: %w", err)
	}
	return int64(size), nil
}
