package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	schemaDir string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "objectmodel",
		Short: "Register and validate against JSON schemas",
		Long: `objectmodel loads a directory of JSON or YAML schema documents, registers
each under its file name and validates data files against them.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.schemaDir, "schemas", "s", "schemas", "Directory of schema documents")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log format (console, json)")

	rootCmd.AddCommand(
		newKeysCmd(opts),
		newValidateCmd(opts),
		newAnnounceCmd(opts),
	)

	return rootCmd
}
