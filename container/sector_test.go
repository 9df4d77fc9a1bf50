package container

import (
	"bytes"
	"testing"
)

func u64p(v uint64) *uint64 { return &v }

func TestSectorEncodeDecodeRoundTrip(t *testing.T) {
	cases := []sectorVariant{
		EmptySector{},
		EmptySector{Previous: u64p(3), Next: u64p(9)},
		MetadataSector{IsDir: true, Ino: 1, Parent: nil, LengthByte: 0, LengthSector: 0, FirstSector: nil},
		MetadataSector{IsDir: false, Ino: 42, Parent: u64p(0), LengthByte: 437, LengthSector: 3, FirstSector: u64p(7)},
		FileDataSector{DataLength: 12, Next: u64p(4), Previous: nil, Data: [DataChunkSize]byte{1, 2, 3}},
		DirDataSector{Next: nil, Previous: u64p(1), Entries: [DirSectorSize]DirEntryRecord{
			{Ino: 2, Name: "a", FileType: FileTypeRegular, Empty: false},
			{Empty: true},
			{Empty: true},
			{Empty: true},
			{Empty: true},
		}},
	}

	for i, c := range cases {
		raw, err := EncodeSector(c)
		if err != nil {
			t.Fatalf("case %d: EncodeSector: %v", i, err)
		}
		if len(raw) != SectorSize {
			t.Fatalf("case %d: encoded length = %d, want %d", i, len(raw), SectorSize)
		}
		decoded, err := DecodeSector(raw)
		if err != nil {
			t.Fatalf("case %d: DecodeSector: %v", i, err)
		}
		if decoded.tag() != c.tag() {
			t.Fatalf("case %d: decoded tag %v, want %v", i, decoded.tag(), c.tag())
		}

		// Re-encoding the decoded value must produce byte-identical output.
		raw2, err := EncodeSector(decoded)
		if err != nil {
			t.Fatalf("case %d: re-EncodeSector: %v", i, err)
		}
		if !bytes.Equal(raw, raw2) {
			t.Fatalf("case %d: re-encoded bytes differ from original", i)
		}
	}
}

func TestEncodeSectorRejectsNameTooLong(t *testing.T) {
	longName := make([]byte, FileNameSize)
	for i := range longName {
		longName[i] = 'x'
	}
	dd := DirDataSector{Entries: [DirSectorSize]DirEntryRecord{
		{Ino: 1, Name: string(longName), FileType: FileTypeRegular},
	}}
	if _, err := EncodeSector(dd); err == nil {
		t.Fatal("EncodeSector accepted a name of exactly FileNameSize bytes")
	}
}

func TestDecodeSectorUnknownTag(t *testing.T) {
	raw := make([]byte, SectorSize)
	raw[0] = 0xff
	raw[1] = 0xff
	raw[2] = 0xff
	raw[3] = 0xff
	if _, err := DecodeSector(raw); err == nil {
		t.Fatal("DecodeSector accepted an unknown tag")
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"", false},
		{"a", true},
		{string(make([]byte, FileNameSize-1)), true},
		{string(make([]byte, FileNameSize)), false},
		{string(make([]byte, FileNameSize+1)), false},
	}
	for _, tt := range tests {
		if got := validName(tt.name); got != tt.want {
			t.Errorf("validName(len=%d) = %v, want %v", len(tt.name), got, tt.want)
		}
	}
}
