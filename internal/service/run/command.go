package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/oshokin/app-bundler/internal/buildtree"
	"github.com/oshokin/app-bundler/internal/config"
	"github.com/oshokin/app-bundler/internal/domain/app"
	"github.com/oshokin/app-bundler/internal/logger"
	"github.com/oshokin/app-bundler/internal/platform"
	"github.com/oshokin/app-bundler/internal/service/create"
)

const defaultDirectoryMode os.FileMode = 0o755

// errNotCreated is returned when the app has no installed bundle yet.
var errNotCreated = errors.New("app has not been created yet; run bundler-create first")

// Options are inputs accepted by the run entry point.
type Options struct {
	// ConfigPath is the optional path to the project manifest.
	ConfigPath string
	// AppName names the declared app to launch.
	AppName string
}

// Run launches a previously created app's stub binary and blocks until it
// exits, streaming its stdio. The child receives a per-app log-directory
// environment variable (<APP_NAME>_LOG_DIR in upper snake case).
// It is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "bundler-run")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	declared, err := cfg.App(opts.AppName)
	if err != nil {
		return err
	}

	a := declared.Clone()
	if a.PlatformTag == "" {
		host, detectErr := platform.Detect(ctx)
		if detectErr != nil {
			return fmt.Errorf("detect host platform: %w", detectErr)
		}

		a.PlatformTag = host.Tag()
	}

	buildTree := buildtree.NewLayout(cfg.BuildDir)

	binaryPath, err := locateBinary(a, buildTree)
	if err != nil {
		return err
	}

	logDir := buildTree.LogDir(a)
	if err = os.MkdirAll(logDir, defaultDirectoryMode); err != nil {
		return fmt.Errorf("create log directory %s: %w", logDir, err)
	}

	logger.InfoKV(ctx, "Launching app",
		"app", a.Name, "binary", binaryPath, "log_dir", logDir)

	command := exec.CommandContext(ctx, binaryPath)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	command.Env = append(os.Environ(),
		fmt.Sprintf("%s=%s", a.LogDirEnvironmentVariable(), logDir))

	if err = command.Run(); err != nil {
		return fmt.Errorf("run %s: %w", a.Name, err)
	}

	return nil
}

// locateBinary finds the app's installed launcher, preferring the
// receipt written at create time over filename conventions.
func locateBinary(a *app.App, buildTree *buildtree.Layout) (string, error) {
	bundleDir := buildTree.BundleDir(a)

	if receipt, err := create.LoadReceipt(buildTree.ReceiptPath(a)); err == nil {
		path := filepath.Join(bundleDir, receipt.Binary)
		if _, statErr := os.Stat(path); statErr == nil {
			return path, nil
		}
	}

	// No receipt; fall back to the conventional launcher name.
	path := filepath.Join(bundleDir, a.StubBinaryName())
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%s: %w", a.Name, errNotCreated)
}
