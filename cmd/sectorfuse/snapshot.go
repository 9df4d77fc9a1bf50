package main

import (
	"github.com/spf13/cobra"

	"github.com/sectorfuse/sectorfuse/backup"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <container> <dest.lz4>",
		Short: "Take a fast, LZ4-compressed local copy of a container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return backup.Snapshot(args[0], args[1])
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <container> <dest.xz>",
		Short: "Write an XZ-compressed archival copy of a container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return backup.Export(args[0], args[1])
		},
	}
}
