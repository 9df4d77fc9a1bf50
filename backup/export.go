package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/sectorfuse/sectorfuse/backend/file"
	"github.com/sectorfuse/sectorfuse/util/timestamp"
)

// Export writes an XZ-compressed archival copy of containerPath's current
// bytes to destPath. XZ trades Snapshot's speed for a much better
// compression ratio, which is the right trade for an infrequent, kept-
// around-for-a-while archive rather than a frequent local backup.
func Export(containerPath, destPath string) error {
	log := logrus.WithFields(logrus.Fields{
		"component": "backup",
		"op":        "export",
		"source":    containerPath,
		"dest":      destPath,
	})

	src, err := file.OpenFromPath(containerPath, true)
	if err != nil {
		return fmt.Errorf("backup: open container: %w", err)
	}
	defer src.Close()

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("backup: seek container: %w", err)
	}

	out, err := os.OpenFile(destPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("backup: create export file: %w", err)
	}
	defer out.Close()

	xw, err := xz.NewWriter(out)
	if err != nil {
		return fmt.Errorf("backup: init xz writer: %w", err)
	}

	n, err := io.Copy(xw, src)
	if err != nil {
		return fmt.Errorf("backup: compress export: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("backup: finalize export: %w", err)
	}

	log.WithFields(logrus.Fields{
		"bytes": n,
		"at":    timestamp.GetTime(),
	}).Info("wrote export")
	return nil
}
