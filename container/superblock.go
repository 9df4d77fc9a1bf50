package container

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// Superblock is the container header at offset 0. RootDirSector is always 0
// (sector 0 is always the root directory's metadata); it is still persisted
// to keep the on-disk layout self-describing.
type Superblock struct {
	RootDirSector    uint64
	SectorCount      uint64
	FirstEmptySector *uint64
	LastEmptySector  *uint64
	NextIno          uint64

	// VolumeID is a container-instance identifier generated once at
	// initialization. It plays no role in any invariant or traversal; it
	// exists so logs and the `sectorfuse stat` CLI can tag a given
	// container file across opens.
	VolumeID uuid.UUID
}

// newSuperblock builds the superblock written for a freshly initialized
// container: one sector (the root directory metadata), next_ino=2, empty
// free list.
func newSuperblock() *Superblock {
	return &Superblock{
		RootDirSector: RootSector,
		SectorCount:   1,
		NextIno:       firstFreeIno,
		VolumeID:      uuid.New(),
	}
}

func (s *Superblock) toBytes() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, s.RootDirSector)
	_ = binary.Write(&buf, binary.LittleEndian, s.SectorCount)
	putOptionU64(&buf, s.FirstEmptySector)
	putOptionU64(&buf, s.LastEmptySector)
	_ = binary.Write(&buf, binary.LittleEndian, s.NextIno)
	buf.Write(s.VolumeID[:])

	out := make([]byte, HeaderSize)
	copy(out, buf.Bytes())
	return out
}

func superblockFromBytes(raw []byte) (*Superblock, error) {
	if len(raw) < HeaderSize {
		return nil, ErrShortIO
	}
	r := bytes.NewReader(raw)
	sb := &Superblock{}
	if err := binary.Read(r, binary.LittleEndian, &sb.RootDirSector); err != nil {
		return nil, ErrShortIO
	}
	if err := binary.Read(r, binary.LittleEndian, &sb.SectorCount); err != nil {
		return nil, ErrShortIO
	}
	var err error
	if sb.FirstEmptySector, err = getOptionU64(r); err != nil {
		return nil, err
	}
	if sb.LastEmptySector, err = getOptionU64(r); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &sb.NextIno); err != nil {
		return nil, ErrShortIO
	}
	if _, err := r.Read(sb.VolumeID[:]); err != nil {
		return nil, ErrShortIO
	}
	return sb, nil
}

// readSuperblock loads the header from offset 0.
func (e *Engine) readSuperblock() (*Superblock, error) {
	raw := make([]byte, HeaderSize)
	n, err := e.storage.ReadAt(raw, 0)
	if err != nil || n != HeaderSize {
		return nil, hostIOError("read superblock", err)
	}
	return superblockFromBytes(raw)
}

// writeSuperblock persists the in-memory superblock to offset 0.
func (e *Engine) writeSuperblock() error {
	w, err := e.storage.Writable()
	if err != nil {
		return hostIOError("open for write", err)
	}
	raw := e.sb.toBytes()
	n, err := w.WriteAt(raw, 0)
	if err != nil || n != len(raw) {
		return hostIOError("write superblock", err)
	}
	return nil
}
