//go:build fuse

package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sectorfuse/sectorfuse/container"
	"github.com/sectorfuse/sectorfuse/fuseadapter"
)

func newMountCmd() *cobra.Command {
	var debug bool
	var notify bool

	cmd := &cobra.Command{
		Use:   "mount <container> <mountpoint>",
		Short: "Mount a container as a FUSE filesystem until interrupted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := container.Open(args[0])
			if err != nil {
				return err
			}
			defer e.Close()

			server, err := fuseadapter.Mount(e, args[1], debug)
			if err != nil {
				return fmt.Errorf("mount: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mounted %s at %s, waiting for unmount\n", args[0], args[1])
			server.Wait()
			if notify {
				logrus.WithFields(logrus.Fields{"container": args[0], "mountpoint": args[1]}).Info("sectorfuse unmounted")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "enable go-fuse protocol tracing")
	cmd.Flags().BoolVarP(&notify, "allow-notification", "n", false, "log a completion notice once the filesystem is unmounted")
	return cmd
}
