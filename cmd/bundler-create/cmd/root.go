package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/app-bundler/internal/config"
	"github.com/oshokin/app-bundler/internal/service/create"
	"github.com/oshokin/app-bundler/internal/version"
)

var (
	// configPath to the project manifest YAML file.
	configPath string

	// rootCmd represents the base command for building app bundles.
	rootCmd = &cobra.Command{
		Use:   "bundler-create [app]",
		Short: "Build app bundles and install their stub binaries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &create.Options{
				ConfigPath: configPath,
			}
			if len(args) > 0 {
				options.AppName = args[0]
			}

			return create.Run(ctx, options)
		},
	}
)

// Execute runs the bundler-create CLI and exits with non-zero status on error.
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
