// Command sectorfuse initializes, inspects, mounts, and backs up
// single-file sector containers.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "sectorfuse",
		Short: "Inspect, mount, and back up sectorfuse containers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStatCmd(),
		newSnapshotCmd(),
		newExportCmd(),
		newDumpCmd(),
		newMountCmd(),
	)
	return root
}
