// Package backup provides point-in-time copies of a container's host
// file: fast local Snapshots and slower, smaller archival Exports.
package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4"
	"github.com/sirupsen/logrus"

	"github.com/sectorfuse/sectorfuse/backend/file"
	"github.com/sectorfuse/sectorfuse/util/timestamp"
)

// Snapshot copies containerPath's current bytes into an LZ4-framed file at
// destPath. It is meant for frequent, low-latency local copies (e.g. "take
// a copy before this batch of writes") rather than archival storage; see
// Export for that.
func Snapshot(containerPath, destPath string) error {
	log := logrus.WithFields(logrus.Fields{
		"component": "backup",
		"op":        "snapshot",
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
		return fmt.Errorf("backup: create snapshot file: %w", err)
	}
	defer out.Close()

	lz := lz4.NewWriter(out)

	n, err := io.Copy(lz, src)
	if err != nil {
		return fmt.Errorf("backup: compress snapshot: %w", err)
	}
	if err := lz.Close(); err != nil {
		return fmt.Errorf("backup: finalize snapshot: %w", err)
	}

	log.WithFields(logrus.Fields{
		"bytes": n,
		"at":    timestamp.GetTime(),
	}).Info("wrote snapshot")
	return nil
}
