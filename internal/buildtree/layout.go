package buildtree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/app-bundler/internal/domain/app"
)

const (
	// bundleSegment is the directory under the platform segment holding the app bundle.
	bundleSegment = "app"
	// logsSegment is the directory holding per-app logs next to the bundle.
	logsSegment = "logs"

	// ReceiptFilename is the install receipt written into the bundle directory.
	ReceiptFilename = "app-bundler-receipt.yaml"

	// defaultDirectoryMode is used when creating build-tree directories.
	defaultDirectoryMode os.FileMode = 0o755
)

// Layout maps apps to their build output directories.
type Layout struct {
	// root is the build output directory shared by all apps.
	root string
}

// NewLayout creates a build-tree layout rooted at the provided build directory.
func NewLayout(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the build directory the layout is rooted at.
func (l *Layout) Root() string {
	return l.root
}

// BundleDir returns the directory the app's stub binary is installed into:
// <build-root>/<app-name>/<platform>/app.
func (l *Layout) BundleDir(a *app.App) string {
	return filepath.Join(l.root, a.Name, a.PlatformTag, bundleSegment)
}

// LogDir returns the directory the app logs into when launched.
func (l *Layout) LogDir(a *app.App) string {
	return filepath.Join(l.root, a.Name, a.PlatformTag, logsSegment)
}

// ReceiptPath returns the location of the app's install receipt.
func (l *Layout) ReceiptPath(a *app.App) string {
	return filepath.Join(l.BundleDir(a), ReceiptFilename)
}

// EnsureBundleDir creates the app's bundle directory.
// The stub pipeline itself assumes the target directory exists.
func (l *Layout) EnsureBundleDir(a *app.App) error {
	if err := os.MkdirAll(l.BundleDir(a), defaultDirectoryMode); err != nil {
		return fmt.Errorf("create bundle directory for %s: %w", a.Name, err)
	}

	return nil
}
