package create

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/oshokin/app-bundler/internal/archive"
	"github.com/oshokin/app-bundler/internal/buildtree"
	"github.com/oshokin/app-bundler/internal/config"
	"github.com/oshokin/app-bundler/internal/domain/app"
	"github.com/oshokin/app-bundler/internal/download"
	"github.com/oshokin/app-bundler/internal/logger"
	"github.com/oshokin/app-bundler/internal/platform"
	"github.com/oshokin/app-bundler/internal/repository/cache"
	"github.com/oshokin/app-bundler/internal/service/stub"
)

// errNoStubBinary is returned when no launcher can be located after install.
var errNoStubBinary = errors.New("no stub binary found in the bundle directory")

// Options are inputs accepted by the create entry point.
type Options struct {
	// ConfigPath is the optional path to the project manifest.
	ConfigPath string
	// AppName optionally restricts the build to one declared app.
	AppName string
}

// runner holds the wired services for a single create execution.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	cfg       *config.Config    // Project manifest.
	host      *platform.Info    // Detected host platform.
	fetcher   *stub.Fetcher     // Artifact fetcher shared across apps.
	stubs     *stub.Service     // Stub-binary pipeline.
	buildTree *buildtree.Layout // Build output layout.
}

// Run builds the declared apps: prepares each bundle directory,
// installs the stub binary and writes an install receipt.
// It is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "bundler-create")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	apps, err := r.selectApps(opts.AppName)
	if err != nil {
		return err
	}

	for _, a := range apps {
		if err = r.createApp(ctx, a); err != nil {
			logger.ErrorKV(ctx, "App build failed", "app", a.Name, "error", err)
			return err
		}
	}

	logger.Info(ctx, "Create completed")

	return nil
}

// newRunner loads the manifest, detects the host and wires the pipeline.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	host, err := platform.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect host platform: %w", err)
	}

	downloader := download.NewBreakerClient(download.NewClient())
	fetcher := stub.NewFetcher(downloader, cache.NewLayout(cfg.DataDir), cfg.SupportBaseURL)
	installer := stub.NewInstaller(archive.NewExtractor(archive.DefaultFilter()))

	return &runner{
		cfg:       cfg,
		host:      host,
		fetcher:   fetcher,
		stubs:     stub.NewService(fetcher, installer, host.String()),
		buildTree: buildtree.NewLayout(cfg.BuildDir),
	}, nil
}

// selectApps returns the apps to build, all of them when name is empty.
func (r *runner) selectApps(name string) ([]*app.App, error) {
	if name == "" {
		return r.cfg.Apps, nil
	}

	selected, err := r.cfg.App(name)
	if err != nil {
		return nil, err
	}

	return []*app.App{selected}, nil
}

// createApp builds one app's bundle.
func (r *runner) createApp(ctx context.Context, declared *app.App) error {
	// Work on a copy so manifest defaults never leak back into the config.
	a := declared.Clone()
	if a.PlatformTag == "" {
		a.PlatformTag = r.host.Tag()
	}

	ctx = logger.WithKV(ctx, "app", a.Name)
	bundleDir := r.buildTree.BundleDir(a)

	logger.InfoKV(ctx, "Building app bundle", "target", bundleDir)

	if err := ensureNotRunning(bundleDir); err != nil {
		return err
	}

	if err := r.buildTree.EnsureBundleDir(a); err != nil {
		return err
	}

	source, err := r.stubs.InstallStubBinary(ctx, a, bundleDir)
	if err != nil {
		return err
	}

	binaryPath, err := locateStubBinary(a, source, bundleDir)
	if err != nil {
		return err
	}

	receipt, err := newReceipt(a, source, r.fetcher, binaryPath)
	if err != nil {
		return err
	}

	if err = receipt.Save(r.buildTree.ReceiptPath(a)); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Wrote install receipt",
		"path", r.buildTree.ReceiptPath(a), "binary", receipt.Binary)

	return nil
}

// locateStubBinary finds the installed launcher inside the bundle directory.
//
// Official archives ship a well-known launcher name and plain-file
// overrides keep their base name; for other variants the directory is
// scanned, preferring the conventional launcher name when present.
func locateStubBinary(a *app.App, source stub.Source, bundleDir string) (string, error) {
	switch s := source.(type) {
	case stub.OfficialSource:
		return existingBinary(filepath.Join(bundleDir, a.StubBinaryName()))
	case stub.FileSource:
		return existingBinary(filepath.Join(bundleDir, filepath.Base(s.Path)))
	default:
		return scanForBinary(a, bundleDir)
	}
}

// existingBinary confirms the expected launcher is present.
func existingBinary(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("installed stub binary %s: %w", path, err)
	}

	return path, nil
}

// scanForBinary picks the launcher out of an extracted archive bundle.
func scanForBinary(a *app.App, bundleDir string) (string, error) {
	conventional := filepath.Join(bundleDir, a.StubBinaryName())
	if _, err := os.Stat(conventional); err == nil {
		return conventional, nil
	}

	entries, err := os.ReadDir(bundleDir)
	if err != nil {
		return "", fmt.Errorf("read bundle directory %s: %w", bundleDir, err)
	}

	var candidates []string

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == buildtree.ReceiptFilename {
			continue
		}

		candidates = append(candidates, entry.Name())
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%s: %w", bundleDir, errNoStubBinary)
	}

	sort.Strings(candidates)

	return filepath.Join(bundleDir, candidates[0]), nil
}
