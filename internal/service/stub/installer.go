package stub

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/app-bundler/internal/archive"
	"github.com/oshokin/app-bundler/internal/logger"
)

// stubBinaryMode is the mode the installed launcher receives.
const stubBinaryMode os.FileMode = 0o755

// Installer places a fetched artifact into the app's bundle directory.
type Installer struct {
	// extractor unpacks archive artifacts with the startup-resolved filter.
	extractor *archive.Extractor
}

// NewInstaller creates an installer using the provided extractor.
func NewInstaller(extractor *archive.Extractor) *Installer {
	return &Installer{extractor: extractor}
}

// Install places the artifact at localPath into targetDir.
//
// Recognized archives are extracted; anything else is applied as a single
// binary preserving its base name. Failures propagate as plain wrapped
// errors and are never retried. The target directory is expected to exist.
func (i *Installer) Install(ctx context.Context, localPath, targetDir string) error {
	if archive.IsArchive(localPath) {
		logger.DebugKV(ctx, "Unpacking stub binary archive",
			"archive", localPath, "target", targetDir)

		if err := i.extractor.Extract(localPath, targetDir); err != nil {
			return fmt.Errorf("unpack stub binary %s: %w", localPath, err)
		}

		return nil
	}

	return i.installBinary(ctx, localPath, targetDir)
}

// installBinary applies a raw stub binary into the target directory,
// byte-identical and executable, replacing any previous one atomically.
func (i *Installer) installBinary(ctx context.Context, localPath, targetDir string) error {
	logger.DebugKV(ctx, "Placing stub binary",
		"source", localPath, "target", targetDir)

	data, err := os.ReadFile(filepath.Clean(localPath))
	if err != nil {
		return fmt.Errorf("read stub binary %s: %w", localPath, err)
	}

	targetPath := filepath.Join(targetDir, filepath.Base(localPath))

	// go-update needs an existing target to swap.
	if _, err = os.Stat(targetPath); err != nil && os.IsNotExist(err) {
		if _, err = os.Create(filepath.Clean(targetPath)); err != nil {
			return fmt.Errorf("create stub binary %s: %w", targetPath, err)
		}
	}

	//nolint:exhaustruct // No checksum: local overrides carry no published digest.
	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: stubBinaryMode,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("install stub binary %s: %w", targetPath, err)
	}

	// Drop the backup go-update leaves behind.
	oldPath := targetPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}
