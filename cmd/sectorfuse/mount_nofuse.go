//go:build !fuse

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "mount <container> <mountpoint>",
		Short:  "Mount a container as a FUSE filesystem (requires the fuse build tag)",
		Hidden: false,
		Args:   cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("sectorfuse was built without FUSE support, rebuild with -tags fuse")
		},
	}
}
