package container

import "github.com/sirupsen/logrus"

// Chain traversal contract: forward traversal over a directory's DirData
// chain follows Next pointers starting at the owning Metadata sector's
// FirstSector, oldest-reachable chunk last. Growth (see create, below)
// always prepends: the newly allocated chunk becomes FirstSector and its
// Next points at whatever was FirstSector a moment ago, so the newest
// chunk is visited first and every older chunk remains reachable. Previous
// is carried along purely as an informational back-reference (per spec
// §3, "previous back-links are informational and not required for
// correctness of traversal") and is never consulted by lookup, readdir, or
// unlink.

// Handle is the opaque handle type returned by opendir. The engine is
// single-threaded and stateless between calls, so there is exactly one
// handle value in use.
type Handle uint64

// dirEntryLoc names one entry slot inside a directory's DirData chain.
type dirEntryLoc struct {
	sector uint64
	data   DirDataSector
	index  int
}

// findEntry scans a directory's DirData chain starting at first for the
// first entry satisfying match. Scanning proceeds newest-chunk-first.
func (e *Engine) findEntry(first *uint64, match func(DirEntryRecord) bool) (dirEntryLoc, bool, error) {
	cur := first
	for cur != nil {
		v, err := e.readSector(*cur)
		if err != nil {
			return dirEntryLoc{}, false, err
		}
		dd, ok := v.(DirDataSector)
		if !ok {
			return dirEntryLoc{}, false, &VariantMismatchError{SectorID: *cur, Expected: "DirData", Got: sectorTagName(v)}
		}
		for i, ent := range dd.Entries {
			if !ent.Empty && match(ent) {
				return dirEntryLoc{sector: *cur, data: dd, index: i}, true, nil
			}
		}
		cur = dd.Next
	}
	return dirEntryLoc{}, false, nil
}

// findFreeSlot scans for the first empty=true slot in a directory's chain.
func (e *Engine) findFreeSlot(first *uint64) (dirEntryLoc, bool, error) {
	cur := first
	for cur != nil {
		v, err := e.readSector(*cur)
		if err != nil {
			return dirEntryLoc{}, false, err
		}
		dd, ok := v.(DirDataSector)
		if !ok {
			return dirEntryLoc{}, false, &VariantMismatchError{SectorID: *cur, Expected: "DirData", Got: sectorTagName(v)}
		}
		for i, ent := range dd.Entries {
			if ent.Empty {
				return dirEntryLoc{sector: *cur, data: dd, index: i}, true, nil
			}
		}
		cur = dd.Next
	}
	return dirEntryLoc{}, false, nil
}

// Opendir validates that ino resolves to a directory and returns the
// constant handle 1.
func (e *Engine) Opendir(ino uint64) (Handle, error) {
	_, md, err := e.findIno(ino)
	if err != nil {
		return 0, err
	}
	if !md.IsDir {
		return 0, ErrNotADirectory
	}
	return Handle(1), nil
}

// DirEntry is one result row from Readdir: a child's inode, type, and name.
type DirEntry struct {
	Ino      uint64
	FileType FileType
	Name     string
}

// Readdir returns "." and ".." followed by every non-empty entry in ino's
// DirData chain, skipping the first offset non-empty real entries. The
// synthetic "." and ".." rows are always emitted and never counted against
// offset: this is the contract this implementation commits to for the
// ambiguity spec.md's design notes flag around readdir offset semantics.
func (e *Engine) Readdir(ino uint64, offset uint64) ([]DirEntry, error) {
	_, md, err := e.findIno(ino)
	if err != nil {
		return nil, err
	}
	if !md.IsDir {
		return nil, ErrNotADirectory
	}

	out := []DirEntry{
		{Ino: ino, FileType: FileTypeDirectory, Name: "."},
		{Ino: ino, FileType: FileTypeDirectory, Name: ".."},
	}

	var skipped uint64
	cur := md.FirstSector
	for cur != nil {
		v, err := e.readSector(*cur)
		if err != nil {
			return nil, err
		}
		dd, ok := v.(DirDataSector)
		if !ok {
			return nil, &VariantMismatchError{SectorID: *cur, Expected: "DirData", Got: sectorTagName(v)}
		}
		for _, ent := range dd.Entries {
			if ent.Empty {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, DirEntry{Ino: ent.Ino, FileType: ent.FileType, Name: ent.Name})
		}
		cur = dd.Next
	}
	return out, nil
}

// Lookup returns the inode and filetype of the first non-empty entry named
// name inside parent's DirData chain.
func (e *Engine) Lookup(parent uint64, name string) (uint64, FileType, bool, error) {
	parentSector, md, err := e.findIno(parent)
	if err != nil {
		return 0, 0, false, err
	}
	if !md.IsDir {
		return 0, 0, false, ErrNotADirectory
	}
	_ = parentSector

	loc, found, err := e.findEntry(md.FirstSector, func(d DirEntryRecord) bool { return d.Name == name })
	if err != nil || !found {
		return 0, 0, false, err
	}
	ent := loc.data.Entries[loc.index]
	return ent.Ino, ent.FileType, true, nil
}

// LookupName returns the name parent-relative name of ino: "/" for the
// root, otherwise the entry name found by scanning the parent directory's
// chain.
func (e *Engine) LookupName(ino uint64) (string, error) {
	if ino == RootIno {
		return "/", nil
	}

	_, md, err := e.findIno(ino)
	if err != nil {
		return "", err
	}

	parentSector := RootSector
	if md.Parent != nil {
		parentSector = *md.Parent
	}
	parentMD, err := e.readMetadata(parentSector)
	if err != nil {
		return "", err
	}
	if !parentMD.IsDir {
		return "", ErrNotADirectory
	}

	loc, found, err := e.findEntry(parentMD.FirstSector, func(d DirEntryRecord) bool { return d.Ino == ino })
	if err != nil {
		return "", err
	}
	if !found {
		return "", &InodeNotFoundError{Ino: ino}
	}
	return loc.data.Entries[loc.index].Name, nil
}

// Create allocates a new inode, creates its metadata sector, and links a
// new directory entry for it into parent's DirData chain, growing the
// chain if every existing slot is occupied. The new child's metadata
// sector is allocated eagerly, before the entry slot search, matching
// spec's reservation order.
func (e *Engine) Create(parent uint64, name string, filetype FileType) (ino uint64, err error) {
	log := e.log.WithFields(logrus.Fields{"op": "create", "parent": parent, "name": name})
	log.Debug("create")
	defer func() {
		if err != nil {
			log.WithError(err).Warn("create failed")
		}
	}()

	if len(name) >= FileNameSize {
		return 0, ErrNameTooLong
	}
	if !validName(name) {
		return 0, ErrInvalidName
	}

	parentSector, parentMD, err := e.findIno(parent)
	if err != nil {
		return 0, err
	}
	if !parentMD.IsDir {
		return 0, ErrNotADirectory
	}

	ino, err = e.newInode()
	if err != nil {
		return 0, err
	}

	childSector, err := e.allocate()
	if err != nil {
		return 0, err
	}

	loc, found, err := e.findFreeSlot(parentMD.FirstSector)
	if err != nil {
		return 0, err
	}
	if !found {
		newDirSector, err := e.allocate()
		if err != nil {
			return 0, err
		}
		fresh := DirDataSector{Next: parentMD.FirstSector, Previous: nil}
		if err := e.writeSector(newDirSector, fresh); err != nil {
			return 0, err
		}
		parentMD.FirstSector = clone(newDirSector)
		parentMD.LengthSector++
		if err := e.writeSector(parentSector, parentMD); err != nil {
			return 0, err
		}
		loc = dirEntryLoc{sector: newDirSector, data: fresh, index: 0}
	}

	loc.data.Entries[loc.index] = DirEntryRecord{Ino: ino, Name: name, FileType: filetype, Empty: false}
	if err := e.writeSector(loc.sector, loc.data); err != nil {
		return 0, err
	}

	child := MetadataSector{IsDir: filetype == FileTypeDirectory, Ino: ino, Parent: clone(parentSector)}
	if err := e.writeSector(childSector, child); err != nil {
		return 0, err
	}
	e.cacheIno(ino, childSector)

	return ino, nil
}

// Unlink removes name from parent's DirData chain and releases the target
// file's sectors. Directories cannot be unlinked. A missing name is a
// silent no-op (idempotent delete).
func (e *Engine) Unlink(parent uint64, name string) (err error) {
	log := e.log.WithFields(logrus.Fields{"op": "unlink", "parent": parent, "name": name})
	log.Debug("unlink")
	defer func() {
		if err != nil {
			log.WithError(err).Warn("unlink failed")
		}
	}()

	_, parentMD, err := e.findIno(parent)
	if err != nil {
		return err
	}
	if !parentMD.IsDir {
		return ErrNotADirectory
	}

	loc, found, err := e.findEntry(parentMD.FirstSector, func(d DirEntryRecord) bool { return d.Name == name })
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	ent := loc.data.Entries[loc.index]
	if ent.FileType == FileTypeDirectory {
		return ErrIsADirectory
	}

	loc.data.Entries[loc.index] = DirEntryRecord{Empty: true}
	if err := e.writeSector(loc.sector, loc.data); err != nil {
		return err
	}

	return e.deleteFile(ent.Ino)
}

// deleteFile releases a file's metadata sector and its entire FileData
// chain. The owning directory's entry bit was already flipped by Unlink.
func (e *Engine) deleteFile(ino uint64) error {
	sectorID, md, err := e.findIno(ino)
	if err != nil {
		return err
	}

	e.uncacheIno(ino)
	if err := e.release(sectorID); err != nil {
		return err
	}

	cur := md.FirstSector
	for cur != nil {
		v, err := e.readSector(*cur)
		if err != nil {
			return err
		}
		fd, ok := v.(FileDataSector)
		if !ok {
			return &VariantMismatchError{SectorID: *cur, Expected: "FileData", Got: sectorTagName(v)}
		}
		next := fd.Next
		if err := e.release(*cur); err != nil {
			return err
		}
		cur = next
	}
	return nil
}
