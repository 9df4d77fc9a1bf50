package container

import "github.com/sirupsen/logrus"

// Write and Read operate purely in terms of a file's FileData chain, one
// fixed DataChunkSize-byte sector at a time. Chunk boundaries are never
// realigned: a write that starts mid-chunk still advances chunk-by-chunk
// from wherever the chain already splits.

// Read copies up to len(out) bytes starting at offset into out and returns
// the number of bytes actually copied. Reading past end-of-file returns 0
// bytes and no error.
func (e *Engine) Read(ino uint64, offset uint64, out []byte) (int, error) {
	_, md, err := e.findIno(ino)
	if err != nil {
		return 0, err
	}
	if md.IsDir {
		return 0, ErrIsADirectory
	}
	if offset >= md.LengthByte {
		return 0, nil
	}

	remaining := md.LengthByte - offset
	if want := uint64(len(out)); remaining > want {
		remaining = want
	}

	var copied int
	var pos uint64
	cur := md.FirstSector
	for cur != nil && uint64(copied) < remaining {
		v, err := e.readSector(*cur)
		if err != nil {
			return copied, err
		}
		fd, ok := v.(FileDataSector)
		if !ok {
			return copied, &VariantMismatchError{SectorID: *cur, Expected: "FileData", Got: sectorTagName(v)}
		}

		chunkStart := pos
		chunkEnd := pos + fd.DataLength
		if chunkEnd > offset && chunkStart < offset+remaining {
			lo := uint64(0)
			if offset > chunkStart {
				lo = offset - chunkStart
			}
			hi := fd.DataLength
			if offset+remaining < chunkEnd {
				hi = offset + remaining - chunkStart
			}
			n := copy(out[copied:], fd.Data[lo:hi])
			copied += n
		}

		pos = chunkEnd
		cur = fd.Next
	}
	return copied, nil
}

// Write copies data into ino's FileData chain starting at offset, growing
// the chain with fresh chunks as needed, and extends the file's recorded
// length to cover whatever the write touched.
//
// Known deviation (preserved, see spec's design notes): offset is clamped
// to the file's current length rather than rejected or zero-filled, so a
// write requested far past EOF actually lands appended at the current end
// of the file instead of at the requested offset.
func (e *Engine) Write(ino uint64, offset uint64, data []byte) (written int, err error) {
	log := e.log.WithFields(logrus.Fields{"op": "write", "ino": ino, "offset": offset, "len": len(data)})
	log.Debug("write")
	defer func() {
		if err != nil {
			log.WithError(err).Warn("write failed")
		}
	}()

	if len(data) == 0 {
		return 0, nil
	}

	sectorID, md, err := e.findIno(ino)
	if err != nil {
		return 0, err
	}
	if md.IsDir {
		return 0, ErrIsADirectory
	}

	if offset > md.LengthByte {
		offset = md.LengthByte
	}

	// Skip over whole chunks until pos lands on the chunk containing offset
	// (or, if offset sits exactly at the end of the chain, on the first
	// not-yet-allocated chunk). Chunk boundaries here are fixed DataChunkSize
	// strides, matching how the write loop below advances pos, not the
	// chunks' own (possibly smaller) DataLength.
	var pos uint64
	var prev *uint64
	cur := md.FirstSector
	for cur != nil && offset >= pos+DataChunkSize {
		v, err := e.readSector(*cur)
		if err != nil {
			return 0, err
		}
		fd, ok := v.(FileDataSector)
		if !ok {
			return 0, &VariantMismatchError{SectorID: *cur, Expected: "FileData", Got: sectorTagName(v)}
		}
		pos += DataChunkSize
		prev = clone(*cur)
		cur = fd.Next
	}

	for written < len(data) {
		var fd FileDataSector
		var id uint64

		if cur != nil {
			id = *cur
			v, err := e.readSector(id)
			if err != nil {
				return written, err
			}
			var ok bool
			fd, ok = v.(FileDataSector)
			if !ok {
				return written, &VariantMismatchError{SectorID: id, Expected: "FileData", Got: sectorTagName(v)}
			}
		} else {
			id, err = e.allocate()
			if err != nil {
				return written, err
			}
			md.LengthSector++
			if prev == nil {
				md.FirstSector = clone(id)
			} else {
				prevV, err := e.readSector(*prev)
				if err != nil {
					return written, err
				}
				prevFD, ok := prevV.(FileDataSector)
				if !ok {
					return written, &VariantMismatchError{SectorID: *prev, Expected: "FileData", Got: sectorTagName(prevV)}
				}
				prevFD.Next = clone(id)
				if err := e.writeSector(*prev, prevFD); err != nil {
					return written, err
				}
			}
		}

		chunkStart := pos
		chunkOff := offset + uint64(written) - chunkStart
		n := copy(fd.Data[chunkOff:], data[written:])
		written += n
		if chunkOff+uint64(n) > fd.DataLength {
			fd.DataLength = chunkOff + uint64(n)
		}
		if err := e.writeSector(id, fd); err != nil {
			return written, err
		}

		pos = chunkStart + DataChunkSize
		prev = clone(id)
		cur = fd.Next
	}

	end := offset + uint64(written)
	if end > md.LengthByte {
		md.LengthByte = end
	}
	if err := e.writeSector(sectorID, md); err != nil {
		return written, err
	}
	return written, nil
}

// Truncate sets ino's recorded length. Truncate cannot grow a file.
//
// Known deviation (preserved, see spec's design notes): shrinking does not
// release the FileData sectors that now sit past the new length. They stay
// allocated and linked into the chain; only their DataLength is adjusted
// down (zeroed entirely once a chunk sits past the new length) so that
// length_byte still equals the sum of every chunk's DataLength. A
// subsequent Write that extends the file back out reuses them as-is rather
// than re-allocating.
func (e *Engine) Truncate(ino uint64, newSize uint64) (err error) {
	log := e.log.WithFields(logrus.Fields{"op": "truncate", "ino": ino, "new_size": newSize})
	log.Debug("truncate")
	defer func() {
		if err != nil {
			log.WithError(err).Warn("truncate failed")
		}
	}()

	sectorID, md, err := e.findIno(ino)
	if err != nil {
		return err
	}
	if md.IsDir {
		return ErrIsADirectory
	}
	if newSize > md.LengthByte {
		return ErrTruncateGrow
	}

	var pos uint64
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

		var want uint64
		if pos < newSize {
			want = newSize - pos
			if want > DataChunkSize {
				want = DataChunkSize
			}
		}
		if fd.DataLength != want {
			fd.DataLength = want
			if err := e.writeSector(*cur, fd); err != nil {
				return err
			}
		}

		pos += DataChunkSize
		cur = fd.Next
	}

	md.LengthByte = newSize
	return e.writeSector(sectorID, md)
}
