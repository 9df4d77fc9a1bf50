package container

// readSector validates the sector id against the current superblock and
// performs exactly SectorSize bytes of positional I/O.
func (e *Engine) readSector(id uint64) (sectorVariant, error) {
	if id >= e.sb.SectorCount {
		return nil, &SectorOutOfRangeError{ID: id, Count: e.sb.SectorCount}
	}
	raw := make([]byte, SectorSize)
	n, err := e.storage.ReadAt(raw, sectorOffset(id))
	if err != nil || n != SectorSize {
		return nil, hostIOError("read sector", err)
	}
	v, err := DecodeSector(raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// writeSector validates the sector id and writes exactly SectorSize bytes.
func (e *Engine) writeSector(id uint64, v sectorVariant) error {
	if id >= e.sb.SectorCount {
		return &SectorOutOfRangeError{ID: id, Count: e.sb.SectorCount}
	}
	raw, err := EncodeSector(v)
	if err != nil {
		return err
	}
	w, err := e.storage.Writable()
	if err != nil {
		return hostIOError("open for write", err)
	}
	n, err := w.WriteAt(raw, sectorOffset(id))
	if err != nil || n != SectorSize {
		return hostIOError("write sector", err)
	}
	return nil
}

// readMetadata reads sector id and requires it to be a FileMetadata or
// DirMetadata sector.
func (e *Engine) readMetadata(id uint64) (MetadataSector, error) {
	v, err := e.readSector(id)
	if err != nil {
		return MetadataSector{}, err
	}
	md, ok := v.(MetadataSector)
	if !ok {
		return MetadataSector{}, &VariantMismatchError{SectorID: id, Expected: "Metadata", Got: sectorTagName(v)}
	}
	return md, nil
}

func sectorTagName(v sectorVariant) string {
	if v == nil {
		return "<nil>"
	}
	return v.tag().String()
}
