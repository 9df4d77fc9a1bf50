// Package container implements the single-file-backed hierarchical
// filesystem engine: a superblock, a sector-based free-list allocator, and
// the inode/directory/file operations expressed as edits to a graph of
// fixed-size sector records.
package container

// On-disk format parameters. These are part of the external format and must
// not change without a new container version.
const (
	// DataChunkSize is the number of logical file bytes a single FileData
	// sector can hold.
	DataChunkSize = 200
	// FileNameSize is the maximum number of bytes (exclusive) a directory
	// entry name may occupy; names of exactly FileNameSize bytes are
	// rejected.
	FileNameSize = 30
	// DirSectorSize is the number of entry slots in a single DirData sector.
	DirSectorSize = 5

	// RootIno is the inode number of the root directory.
	RootIno uint64 = 1
	// RootSector is the sector id that always holds the root directory's
	// metadata.
	RootSector uint64 = 0
	// firstFreeIno is the first inode number handed out by new_inode();
	// RootIno is reserved and never reissued.
	firstFreeIno uint64 = 2
)

const (
	optionFieldSize = 1 + 8 // presence byte + u64
	tagFieldSize    = 4

	emptyBodySize = optionFieldSize * 2 // previous, next

	// metadataBodySize covers both FileMetadata and DirMetadata, which
	// share an identical field layout and differ only by tag.
	metadataBodySize = 8 /* ino */ + optionFieldSize /* parent */ + 8 /* length_byte */ + 8 /* length_sector */ + optionFieldSize /* first_sector */

	fileDataBodySize = 8 /* data_length */ + optionFieldSize /* next */ + optionFieldSize /* previous */ + DataChunkSize

	dirEntrySize    = 8 /* ino */ + 1 /* name length */ + FileNameSize + 1 /* filetype */ + 1 /* empty */
	dirDataBodySize = optionFieldSize /* next */ + optionFieldSize /* previous */ + DirSectorSize*dirEntrySize
)

// maxBodySize is the size of the largest sector variant body (FileData, by
// construction: DataChunkSize=200 dwarfs the handful of link/length fields
// every other variant carries).
const maxBodySize = fileDataBodySize

// SectorSize is the fixed on-disk size of every sector: a 4-byte
// discriminator followed by the largest variant body, the rest zero-padded.
const SectorSize = tagFieldSize + maxBodySize

// HeaderSize is the fixed on-disk size of the superblock.
const HeaderSize = 8 /* root_dir_sector */ + 8 /* sector_count */ + optionFieldSize /* first_empty_sector */ + optionFieldSize /* last_empty_sector */ + 8 /* next_ino */ + 16 /* volume id */

// sectorOffset computes the byte offset of sector id within the container
// host file.
func sectorOffset(id uint64) int64 {
	return int64(HeaderSize) + int64(id)*int64(SectorSize)
}
