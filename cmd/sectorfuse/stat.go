package main

import (
	"fmt"

	"github.com/spf13/cobra"
	times "gopkg.in/djherbis/times.v1"

	"github.com/sectorfuse/sectorfuse/container"
)

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <container> <ino>",
		Short: "Print an inode's size and type, and the container's volume id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var ino uint64
			if _, err := fmt.Sscanf(args[1], "%d", &ino); err != nil {
				return fmt.Errorf("invalid inode number %q: %w", args[1], err)
			}

			e, err := container.Open(path)
			if err != nil {
				return err
			}
			defer e.Close()

			attr, err := e.Getattr(ino)
			if err != nil {
				return err
			}

			name, err := e.LookupName(ino)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ino:       %d\n", attr.Ino)
			fmt.Fprintf(cmd.OutOrStdout(), "name:      %s\n", name)
			fmt.Fprintf(cmd.OutOrStdout(), "type:      %s\n", attr.FileType)
			fmt.Fprintf(cmd.OutOrStdout(), "size:      %d bytes (%d sectors)\n", attr.SizeBytes, attr.SizeSectors)
			fmt.Fprintf(cmd.OutOrStdout(), "volume_id: %s\n", e.VolumeID())

			if ts, err := times.Stat(path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "host file modified: %s\n", ts.ModTime())
				fmt.Fprintf(cmd.OutOrStdout(), "host file accessed: %s\n", ts.AccessTime())
				if ts.HasBirthTime() {
					fmt.Fprintf(cmd.OutOrStdout(), "host file created:  %s\n", ts.BirthTime())
				}
			}
			return nil
		},
	}
}
