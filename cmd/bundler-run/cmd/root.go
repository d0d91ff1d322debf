package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/app-bundler/internal/config"
	"github.com/oshokin/app-bundler/internal/service/run"
	"github.com/oshokin/app-bundler/internal/version"
)

var (
	// configPath to the project manifest YAML file.
	configPath string

	// rootCmd represents the base command for launching a created app.
	rootCmd = &cobra.Command{
		Use:   "bundler-run <app>",
		Short: "Launch a previously created app bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &run.Options{
				ConfigPath: configPath,
				AppName:    args[0],
			}

			return run.Run(ctx, options)
		},
	}
)

// Execute runs the bundler-run CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to project manifest")
}
