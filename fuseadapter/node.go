//go:build fuse

// Package fuseadapter exposes a container.Engine as a mountable FUSE
// filesystem via github.com/hanwen/go-fuse/v2. It is excluded from default
// builds: most callers only need the container engine itself (for the CLI's
// snapshot/export/stat paths), and pulling in the FUSE kernel binding for
// every consumer would be wasteful. Build with -tags fuse to include it.
package fuseadapter

import (
	"context"
	"sync"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/sirupsen/logrus"

	"github.com/sectorfuse/sectorfuse/container"
)

// Placeholder ownership and permission bits filled into every fuse.Attr.
// The container format carries no per-file owner, group, or mode, so every
// inode is reported identically.
const (
	placeholderUID       = 501
	placeholderGID       = 20
	placeholderFilePerm  = 0o777
	placeholderBlockSize = 512
)

// Node is one InodeEmbedder backed by a single container inode number.
type Node struct {
	fs.Inode

	mu     *sync.Mutex
	engine *container.Engine
	ino    uint64
	log    *logrus.Entry
}

var (
	_ fs.InodeEmbedder = (*Node)(nil)
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
	_ fs.NodeOpendirer = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeCreater   = (*Node)(nil)
	_ fs.NodeUnlinker  = (*Node)(nil)
	_ fs.NodeRmdirer   = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
	_ fs.NodeWriter    = (*Node)(nil)
	_ fs.NodeSetattrer = (*Node)(nil)
	_ fs.NodeFlusher   = (*Node)(nil)
	_ fs.NodeReleaser  = (*Node)(nil)
)

// fileHandle carries nothing: the engine writes through on every call and
// keeps no per-open state, so every FileHandle returned by Open/Create is
// interchangeable. It exists to satisfy go-fuse's FileHandle plumbing.
type fileHandle struct{}

// Root returns the InodeEmbedder for the container's root directory, ready
// to pass to fs.Mount.
func Root(e *container.Engine) fs.InodeEmbedder {
	return &Node{
		mu:     &sync.Mutex{},
		engine: e,
		ino:    container.RootIno,
		log:    logrus.WithField("component", "fuseadapter"),
	}
}

func (n *Node) child(ino uint64) *Node {
	return &Node{mu: n.mu, engine: n.engine, ino: ino, log: n.log}
}

func (n *Node) fillAttr(attr *container.Attr, out *fuse.Attr) {
	out.Ino = attr.Ino
	out.Size = attr.SizeBytes
	out.Blksize = placeholderBlockSize
	out.Blocks = attr.SizeSectors
	out.Uid = placeholderUID
	out.Gid = placeholderGID
	out.Nlink = 1
	if attr.FileType == container.FileTypeDirectory {
		out.Mode = syscall.S_IFDIR | placeholderFilePerm
	} else {
		out.Mode = syscall.S_IFREG | placeholderFilePerm
	}
}

// Getattr implements fs.NodeGetattrer.
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	n.mu.Lock()
	defer n.mu.Unlock()

	attr, err := n.engine.Getattr(n.ino)
	if err != nil {
		return toErrno(err)
	}
	n.fillAttr(&attr, &out.Attr)
	return 0
}

// Setattr implements fs.NodeSetattrer, supporting only truncation (size);
// other attribute changes (mode, timestamps, ownership) are accepted and
// ignored, since the container format has nowhere to persist them.
func (n *Node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	n.mu.Lock()
	defer n.mu.Unlock()

	if size, ok := in.GetSize(); ok {
		if err := n.engine.Truncate(n.ino, size); err != nil {
			return toErrno(err)
		}
	}
	attr, err := n.engine.Getattr(n.ino)
	if err != nil {
		return toErrno(err)
	}
	n.fillAttr(&attr, &out.Attr)
	return 0
}

// Lookup implements fs.NodeLookuper.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ino, ft, found, err := n.engine.Lookup(n.ino, name)
	if err != nil {
		return nil, toErrno(err)
	}
	if !found {
		return nil, syscall.ENOENT
	}

	mode := uint32(syscall.S_IFREG)
	if ft == container.FileTypeDirectory {
		mode = syscall.S_IFDIR
	}
	child := n.child(ino)
	stable := fs.StableAttr{Mode: mode, Ino: ino}
	inode := n.NewInode(ctx, child, stable)

	attr, err := n.engine.Getattr(ino)
	if err == nil {
		n.fillAttr(&attr, &out.Attr)
	}
	out.NodeId = ino
	return inode, 0
}

// Opendir implements fs.NodeOpendirer.
func (n *Node) Opendir(ctx context.Context) syscall.Errno {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := n.engine.Opendir(n.ino); err != nil {
		return toErrno(err)
	}
	return 0
}

// Readdir implements fs.NodeReaddirer.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	entries, err := n.engine.Readdir(n.ino, 0)
	if err != nil {
		return nil, toErrno(err)
	}

	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(syscall.S_IFREG)
		if e.FileType == container.FileTypeDirectory {
			mode = syscall.S_IFDIR
		}
		list = append(list, fuse.DirEntry{Name: e.Name, Ino: e.Ino, Mode: mode})
	}
	return fs.NewListDirStream(list), 0
}

// Create implements fs.NodeCreater.
func (n *Node) Create(ctx context.Context, name string, flags, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ino, err := n.engine.Create(n.ino, name, container.FileTypeRegular)
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}

	child := n.child(ino)
	stable := fs.StableAttr{Mode: syscall.S_IFREG, Ino: ino}
	inode := n.NewInode(ctx, child, stable)

	attr, err := n.engine.Getattr(ino)
	if err == nil {
		n.fillAttr(&attr, &out.Attr)
	}
	out.NodeId = ino
	return inode, &fileHandle{}, 0, 0
}

// Mkdir implements fs.NodeMkdirer.
func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ino, err := n.engine.Create(n.ino, name, container.FileTypeDirectory)
	if err != nil {
		return nil, toErrno(err)
	}
	child := n.child(ino)
	stable := fs.StableAttr{Mode: syscall.S_IFDIR, Ino: ino}
	inode := n.NewInode(ctx, child, stable)
	out.NodeId = ino
	return inode, 0
}

// Unlink implements fs.NodeUnlinker.
func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	n.mu.Lock()
	defer n.mu.Unlock()
	return toErrno(n.engine.Unlink(n.ino, name))
}

// Rmdir implements fs.NodeRmdirer. Directories can't be removed through
// Unlink (the engine rejects that with ErrIsADirectory); sectorfuse has no
// separate empty-directory-removal path, so Rmdir reports not-implemented
// rather than silently deleting a non-empty or populated directory tree.
func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return syscall.ENOSYS
}

// Open implements fs.NodeOpener.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := n.engine.Getattr(n.ino); err != nil {
		return nil, 0, toErrno(err)
	}
	return &fileHandle{}, 0, 0
}

// Read implements fs.NodeReader.
func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if off < 0 {
		return nil, syscall.EINVAL
	}
	nRead, err := n.engine.Read(n.ino, uint64(off), dest)
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(dest[:nRead]), 0
}

// Write implements fs.NodeWriter.
func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if off < 0 {
		return 0, syscall.EINVAL
	}
	nWritten, err := n.engine.Write(n.ino, uint64(off), data)
	if err != nil {
		return uint32(nWritten), toErrno(err)
	}
	return uint32(nWritten), 0
}

// Flush implements fs.NodeFlusher. The engine writes through on every
// call, so there is nothing buffered to flush.
func (n *Node) Flush(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return 0
}

// Release implements fs.NodeReleaser.
func (n *Node) Release(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return 0
}
