// Package cmd provides the command-line interface of terminalsim.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Version is the version reported by `terminalsim version`.
var Version = "dev"

// SeedEnv names the environment variable that supplies the default seed.
const SeedEnv = "TERMINALSIM_SEED"

// NewRootCommand builds the terminalsim command tree.
func NewRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "terminalsim",
		Short: "Discrete-event simulator of a container terminal",
		Long: `terminalsim simulates trucks and vessels competing for the ` +
			`gates, cranes and truck bays of a container terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (trace, debug, info, warn, error)")

	root.AddCommand(newRunCommand())
	root.AddCommand(newSweepCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of terminalsim",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "terminalsim %s\n", Version)
		},
	}
}

// Execute loads .env, runs the root command and exits the process. Registered
// exit handlers, such as the ones flushing recorders, run before exiting.
func Execute() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to load .env: %v", err)
	}

	err = NewRootCommand().Execute()
	if err != nil {
		logrus.Error(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
