package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "roomreserve",
		Short: "Classroom reservation service with recurring bookings and approval workflow",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "roomreserve.yaml", "path to the configuration file")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newCreateUserCmd(&configPath))
	root.AddCommand(newEnsureIndexesCmd(&configPath))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
