package container

import "math"

// findIno linearly scans sectors [0, sector_count) and returns the id and
// contents of the first Metadata sector (file or directory) with matching
// ino. The Engine also maintains an in-memory ino->sector cache, populated
// lazily and kept in sync on every metadata write or release, so repeat
// lookups after the first full scan are O(1); correctness never depends on
// the cache being present.
func (e *Engine) findIno(ino uint64) (uint64, MetadataSector, error) {
	if id, ok := e.inoCache[ino]; ok {
		md, err := e.readMetadata(id)
		if err == nil && md.Ino == ino {
			return id, md, nil
		}
		delete(e.inoCache, ino)
	}

	for id := uint64(0); id < e.sb.SectorCount; id++ {
		v, err := e.readSector(id)
		if err != nil {
			return 0, MetadataSector{}, err
		}
		md, ok := v.(MetadataSector)
		if !ok || md.Ino != ino {
			continue
		}
		e.cacheIno(ino, id)
		return id, md, nil
	}
	return 0, MetadataSector{}, &InodeNotFoundError{Ino: ino}
}

func (e *Engine) cacheIno(ino, sector uint64) {
	if e.inoCache == nil {
		e.inoCache = make(map[uint64]uint64)
	}
	e.inoCache[ino] = sector
}

func (e *Engine) uncacheIno(ino uint64) {
	delete(e.inoCache, ino)
}

// newInode hands out the next inode number, failing once the counter would
// wrap past its maximum representable value.
func (e *Engine) newInode() (uint64, error) {
	if e.sb.NextIno >= math.MaxUint64 {
		return 0, ErrInodeExhausted
	}
	ino := e.sb.NextIno
	e.sb.NextIno++
	if err := e.writeSuperblock(); err != nil {
		return 0, err
	}
	return ino, nil
}
