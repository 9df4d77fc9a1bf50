//go:build fuse

package fuseadapter

import (
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/sectorfuse/sectorfuse/container"
)

// Mount mounts engine's root directory at mountPoint and returns the
// running server once the mount is in place; it does not block. Call Wait
// on the returned server to block until the filesystem is unmounted.
func Mount(engine *container.Engine, mountPoint string, debug bool) (*fuse.Server, error) {
	timeout := time.Second
	opts := &gofuse.Options{
		MountOptions: fuse.MountOptions{
			Debug:      debug,
			FsName:     "sectorfuse",
			Name:       "sectorfuse",
			AllowOther: false,
		},
		EntryTimeout: &timeout,
		AttrTimeout:  &timeout,
	}
	return gofuse.Mount(mountPoint, Root(engine), opts)
}
