package container

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sectorfuse/sectorfuse/backend"
	"github.com/sectorfuse/sectorfuse/backend/file"
)

// Engine owns a single open container host file and every sector-level
// operation against it. An Engine is not safe for concurrent use from
// multiple goroutines; callers (the CLI, the FUSE adapter) are expected to
// serialize access the same way a single mount point does.
type Engine struct {
	storage backend.Storage
	sb      *Superblock

	// inoCache speeds up repeat findIno lookups; see inode.go.
	inoCache map[uint64]uint64

	log *logrus.Entry
}

// Open loads an existing container at path, or initializes a fresh one if
// no file exists there yet. A freshly initialized container holds exactly
// one sector: the root directory's metadata, ino RootIno, with no entries
// and no first_sector.
func Open(path string) (*Engine, error) {
	storage, created, err := file.OpenOrCreate(path)
	if err != nil {
		return nil, err
	}
	e, err := openEngine(storage, created)
	if err != nil {
		return nil, err
	}
	e.log = e.log.WithField("path", path)
	return e, nil
}

// openEngine builds an Engine atop an already-opened backend.Storage,
// initializing a fresh superblock when created is true and otherwise
// loading the existing one. Split out of Open so tests can drive the
// engine against an in-memory backend.Storage instead of a real file.
func openEngine(storage backend.Storage, created bool) (*Engine, error) {
	e := &Engine{
		storage: storage,
		log:     logrus.WithField("component", "container"),
	}

	if created {
		e.sb = newSuperblock()
		if err := e.writeSuperblock(); err != nil {
			return nil, err
		}
		root := MetadataSector{IsDir: true, Ino: RootIno, Parent: nil}
		if err := e.writeSector(RootSector, root); err != nil {
			return nil, err
		}
		e.log.Info("initialized new container")
		return e, nil
	}

	sb, err := e.readSuperblock()
	if err != nil {
		return nil, err
	}
	e.sb = sb
	e.log.WithFields(logrus.Fields{
		"volume_id":    sb.VolumeID,
		"sector_count": sb.SectorCount,
	}).Info("loaded container")
	return e, nil
}

// Close releases the underlying host file. It does not flush anything
// beyond what the host OS already guarantees for completed writes, since
// every mutating operation above writes through immediately.
func (e *Engine) Close() error {
	return e.storage.Close()
}

// VolumeID returns the container instance identifier stamped into the
// superblock at initialization.
func (e *Engine) VolumeID() uuid.UUID {
	return e.sb.VolumeID
}

// Release and Flush are no-ops: the engine keeps no per-handle state and
// writes through on every mutating call, so there is nothing to tear down
// or flush when a caller closes a file or directory handle.
func (e *Engine) Release(Handle) error { return nil }
func (e *Engine) Flush(Handle) error   { return nil }

// Attr is the result of Getattr: the facts a kernel stat(2) call, or the
// `sectorfuse stat` CLI, needs about one inode.
type Attr struct {
	Ino         uint64
	FileType    FileType
	SizeBytes   uint64
	SizeSectors uint64
}

// Getattr resolves ino to its current size and type.
func (e *Engine) Getattr(ino uint64) (Attr, error) {
	_, md, err := e.findIno(ino)
	if err != nil {
		return Attr{}, err
	}
	ft := FileTypeRegular
	if md.IsDir {
		ft = FileTypeDirectory
	}
	return Attr{
		Ino:         ino,
		FileType:    ft,
		SizeBytes:   md.LengthByte,
		SizeSectors: md.LengthSector,
	}, nil
}
