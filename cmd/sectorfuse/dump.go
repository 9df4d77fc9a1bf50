package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sectorfuse/sectorfuse/backend/file"
	"github.com/sectorfuse/sectorfuse/container"
	"github.com/sectorfuse/sectorfuse/util"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <container> <sector-id>",
		Short: "Hex-dump one raw sector, tag and all, for debugging",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var id uint64
			if _, err := fmt.Sscanf(args[1], "%d", &id); err != nil {
				return fmt.Errorf("invalid sector id %q: %w", args[1], err)
			}

			storage, err := file.OpenFromPath(path, true)
			if err != nil {
				return err
			}
			defer storage.Close()

			offset := int64(container.HeaderSize) + int64(id)*int64(container.SectorSize)
			raw := make([]byte, container.SectorSize)
			if _, err := storage.ReadAt(raw, offset); err != nil {
				return fmt.Errorf("read sector %d: %w", id, err)
			}

			v, decodeErr := container.DecodeSector(raw)
			if decodeErr == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "sector %d: decoded as %T\n", id, v)
			}

			fmt.Fprint(cmd.OutOrStdout(), util.DumpByteSlice(raw, 16, true, true, false, nil))
			return nil
		},
	}
}
