package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // Set at build time using -ldflags

// GlobalFlags are shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	flags := &GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:          "connwatch <command> [flags]",
		Short:        "Watches internet connectivity and diagnoses outages",
		Long:         longDescription,
		SilenceUsage: true,
		Version:      version,
	}

	rootCmd.PersistentFlags().StringVarP(
		&flags.ConfigPath,
		"config",
		"c",
		"",
		"Path to a YAML config file; environment variables override its values",
	)

	rootCmd.AddCommand(NewServeCmd(flags))
	rootCmd.AddCommand(NewDiagnoseCmd(flags))
	rootCmd.AddCommand(NewHashPasswordCmd())

	return rootCmd
}

const longDescription = `connwatch polls a chain of public endpoints, classifies the connection as
online, degraded or offline, and runs a parallel diagnostics sweep when an
outage is detected.`
