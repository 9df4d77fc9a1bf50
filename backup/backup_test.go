package backup

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
)

func writeFakeContainer(t *testing.T, dir string, contents []byte) string {
	t.Helper()
	path := filepath.Join(dir, "container.sfs")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write fake container: %v", err)
	}
	return path
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	contents := bytes.Repeat([]byte("sectorfuse"), 1000)
	src := writeFakeContainer(t, dir, contents)
	dest := filepath.Join(dir, "snapshot.lz4")

	if err := Snapshot(src, dest); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer f.Close()

	got, err := io.ReadAll(lz4.NewReader(f))
	if err != nil {
		t.Fatalf("decompress snapshot: %v", err)
	}
	if !bytes.Equal(got, contents) {
		t.Fatalf("decompressed snapshot does not match source container")
	}
}

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	contents := bytes.Repeat([]byte("sectorfuse-export"), 1000)
	src := writeFakeContainer(t, dir, contents)
	dest := filepath.Join(dir, "export.xz")

	if err := Export(src, dest); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		t.Fatalf("init xz reader: %v", err)
	}
	got, err := io.ReadAll(xr)
	if err != nil {
		t.Fatalf("decompress export: %v", err)
	}
	if !bytes.Equal(got, contents) {
		t.Fatalf("decompressed export does not match source container")
	}
}
