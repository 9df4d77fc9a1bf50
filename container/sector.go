package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// SectorTag is the 4-byte discriminator prefixing every sector's encoding.
type SectorTag uint32

const (
	TagEmpty        SectorTag = 0
	TagFileMetadata SectorTag = 1
	TagFileData     SectorTag = 2
	TagDirMetadata  SectorTag = 3
	TagDirData      SectorTag = 4
)

func (t SectorTag) String() string {
	switch t {
	case TagEmpty:
		return "Empty"
	case TagFileMetadata:
		return "FileMetadata"
	case TagFileData:
		return "FileData"
	case TagDirMetadata:
		return "DirMetadata"
	case TagDirData:
		return "DirData"
	default:
		return fmt.Sprintf("SectorTag(%d)", uint32(t))
	}
}

// FileType distinguishes regular files from directories, both in directory
// entries and in getattr results.
type FileType uint8

const (
	FileTypeRegular   FileType = 0
	FileTypeDirectory FileType = 1
)

func (t FileType) String() string {
	if t == FileTypeDirectory {
		return "Directory"
	}
	return "RegularFile"
}

// EmptySector is a doubly-linked free-list node.
type EmptySector struct {
	Previous *uint64
	Next     *uint64
}

func (EmptySector) tag() SectorTag { return TagEmpty }

// MetadataSector is the shared field layout for FileMetadata and
// DirMetadata; IsDir selects the tag used on encode.
type MetadataSector struct {
	IsDir        bool
	Ino          uint64
	Parent       *uint64
	LengthByte   uint64
	LengthSector uint64
	FirstSector  *uint64
}

func (m MetadataSector) tag() SectorTag {
	if m.IsDir {
		return TagDirMetadata
	}
	return TagFileMetadata
}

// FileDataSector is one chunk of a file's byte stream.
type FileDataSector struct {
	DataLength uint64
	Next       *uint64
	Previous   *uint64
	Data       [DataChunkSize]byte
}

func (FileDataSector) tag() SectorTag { return TagFileData }

// DirEntryRecord is one slot inside a DirData sector.
type DirEntryRecord struct {
	Ino      uint64
	Name     string
	FileType FileType
	Empty    bool
}

// DirDataSector is one chunk of a directory's entry list.
type DirDataSector struct {
	Next     *uint64
	Previous *uint64
	Entries  [DirSectorSize]DirEntryRecord
}

func (DirDataSector) tag() SectorTag { return TagDirData }

// sectorVariant is implemented by the four concrete sector payload types.
type sectorVariant interface {
	tag() SectorTag
}

func putOptionU64(buf *bytes.Buffer, v *uint64) {
	if v == nil {
		buf.WriteByte(0)
		var zero uint64
		_ = binary.Write(buf, binary.LittleEndian, zero)
		return
	}
	buf.WriteByte(1)
	_ = binary.Write(buf, binary.LittleEndian, *v)
}

func getOptionU64(r *bytes.Reader) (*uint64, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, ErrShortIO
	}
	var v uint64
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return nil, ErrShortIO
	}
	if present == 0 {
		return nil, nil
	}
	return &v, nil
}

// EncodeSector serializes a sector variant into exactly SectorSize bytes:
// a 4-byte tag, the variant body, and zero padding.
func EncodeSector(v sectorVariant) ([]byte, error) {
	var body bytes.Buffer
	switch s := v.(type) {
	case EmptySector:
		putOptionU64(&body, s.Previous)
		putOptionU64(&body, s.Next)
	case MetadataSector:
		_ = binary.Write(&body, binary.LittleEndian, s.Ino)
		putOptionU64(&body, s.Parent)
		_ = binary.Write(&body, binary.LittleEndian, s.LengthByte)
		_ = binary.Write(&body, binary.LittleEndian, s.LengthSector)
		putOptionU64(&body, s.FirstSector)
	case FileDataSector:
		_ = binary.Write(&body, binary.LittleEndian, s.DataLength)
		putOptionU64(&body, s.Next)
		putOptionU64(&body, s.Previous)
		body.Write(s.Data[:])
	case DirDataSector:
		putOptionU64(&body, s.Next)
		putOptionU64(&body, s.Previous)
		for _, e := range s.Entries {
			if err := putDirEntry(&body, e); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown sector type %T", ErrDecodeFailure, v)
	}

	if body.Len() > maxBodySize {
		return nil, fmt.Errorf("%w: body of %d bytes exceeds max %d", ErrDecodeFailure, body.Len(), maxBodySize)
	}

	out := make([]byte, SectorSize)
	binary.LittleEndian.PutUint32(out[0:tagFieldSize], uint32(v.tag()))
	copy(out[tagFieldSize:], body.Bytes())
	return out, nil
}

func putDirEntry(buf *bytes.Buffer, e DirEntryRecord) error {
	if len(e.Name) >= FileNameSize {
		return fmt.Errorf("%w: %q", ErrNameTooLong, e.Name)
	}
	_ = binary.Write(buf, binary.LittleEndian, e.Ino)
	buf.WriteByte(byte(len(e.Name)))
	var nameBuf [FileNameSize]byte
	copy(nameBuf[:], e.Name)
	buf.Write(nameBuf[:])
	buf.WriteByte(byte(e.FileType))
	if e.Empty {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	return nil
}

func getDirEntry(r *bytes.Reader) (DirEntryRecord, error) {
	var e DirEntryRecord
	if err := binary.Read(r, binary.LittleEndian, &e.Ino); err != nil {
		return e, ErrShortIO
	}
	nameLen, err := r.ReadByte()
	if err != nil {
		return e, ErrShortIO
	}
	var nameBuf [FileNameSize]byte
	if _, err := r.Read(nameBuf[:]); err != nil {
		return e, ErrShortIO
	}
	if int(nameLen) > FileNameSize {
		return e, fmt.Errorf("%w: stored name length %d exceeds max", ErrDecodeFailure, nameLen)
	}
	e.Name = string(nameBuf[:nameLen])
	ft, err := r.ReadByte()
	if err != nil {
		return e, ErrShortIO
	}
	e.FileType = FileType(ft)
	emptyByte, err := r.ReadByte()
	if err != nil {
		return e, ErrShortIO
	}
	e.Empty = emptyByte != 0
	return e, nil
}

// DecodeSector parses exactly SectorSize bytes (trailing padding tolerated)
// into its concrete sector variant.
func DecodeSector(raw []byte) (sectorVariant, error) {
	if len(raw) < tagFieldSize {
		return nil, ErrShortIO
	}
	tag := SectorTag(binary.LittleEndian.Uint32(raw[0:tagFieldSize]))
	r := bytes.NewReader(raw[tagFieldSize:])

	switch tag {
	case TagEmpty:
		prev, err := getOptionU64(r)
		if err != nil {
			return nil, err
		}
		next, err := getOptionU64(r)
		if err != nil {
			return nil, err
		}
		return EmptySector{Previous: prev, Next: next}, nil

	case TagFileMetadata, TagDirMetadata:
		var ino uint64
		if err := binary.Read(r, binary.LittleEndian, &ino); err != nil {
			return nil, ErrShortIO
		}
		parent, err := getOptionU64(r)
		if err != nil {
			return nil, err
		}
		var lengthByte, lengthSector uint64
		if err := binary.Read(r, binary.LittleEndian, &lengthByte); err != nil {
			return nil, ErrShortIO
		}
		if err := binary.Read(r, binary.LittleEndian, &lengthSector); err != nil {
			return nil, ErrShortIO
		}
		firstSector, err := getOptionU64(r)
		if err != nil {
			return nil, err
		}
		return MetadataSector{
			IsDir:        tag == TagDirMetadata,
			Ino:          ino,
			Parent:       parent,
			LengthByte:   lengthByte,
			LengthSector: lengthSector,
			FirstSector:  firstSector,
		}, nil

	case TagFileData:
		var dataLength uint64
		if err := binary.Read(r, binary.LittleEndian, &dataLength); err != nil {
			return nil, ErrShortIO
		}
		next, err := getOptionU64(r)
		if err != nil {
			return nil, err
		}
		previous, err := getOptionU64(r)
		if err != nil {
			return nil, err
		}
		var data [DataChunkSize]byte
		if _, err := r.Read(data[:]); err != nil {
			return nil, ErrShortIO
		}
		return FileDataSector{DataLength: dataLength, Next: next, Previous: previous, Data: data}, nil

	case TagDirData:
		next, err := getOptionU64(r)
		if err != nil {
			return nil, err
		}
		previous, err := getOptionU64(r)
		if err != nil {
			return nil, err
		}
		var entries [DirSectorSize]DirEntryRecord
		for i := range entries {
			e, err := getDirEntry(r)
			if err != nil {
				return nil, err
			}
			entries[i] = e
		}
		return DirDataSector{Next: next, Previous: previous, Entries: entries}, nil

	default:
		return nil, fmt.Errorf("%w: unknown sector tag %d", ErrDecodeFailure, tag)
	}
}

func validName(name string) bool {
	return len(name) > 0 && len(name) < FileNameSize && utf8.ValidString(name)
}
