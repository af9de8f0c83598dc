// Package main provides the CLI entry point for jsona, a demonstration
// driver over the jsona library: format JSONA documents, lint them against
// a compiled schema, and pluck a value out by JSON Pointer.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.jsona.dev/jsona/log"
	"go.jsona.dev/jsona/profiler"
	"go.jsona.dev/jsona/version"
)

func main() {
	logCfg := log.NewConfig()
	prof := profiler.New()

	var configPath string

	rootCmd := &cobra.Command{
		Use:           "jsona",
		Short:         "Work with JSONA documents",
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			handler, err := logCfg.NewHandler(os.Stderr)
			if err != nil {
				return fmt.Errorf("configuring logging: %w", err)
			}

			slog.SetDefault(slog.New(handler))

			return prof.Start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return prof.Stop()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".jsona", "path to the .jsona workspace config")

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	prof.RegisterFlags(rootCmd.PersistentFlags())

	if err := logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	rootCmd.AddCommand(
		newFormatCmd(&configPath),
		newLintCmd(),
		newGetCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
}
