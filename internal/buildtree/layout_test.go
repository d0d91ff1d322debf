package buildtree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/app-bundler/internal/domain/app"
)

// TestLayoutPaths pins the build-tree path shapes.
func TestLayoutPaths(t *testing.T) {
	t.Parallel()

	layout := NewLayout("build")
	a := &app.App{Name: "my-app", PlatformTag: "tester"}

	require.Equal(t, filepath.Join("build", "my-app", "tester", "app"), layout.BundleDir(a))
	require.Equal(t, filepath.Join("build", "my-app", "tester", "logs"), layout.LogDir(a))
	require.Equal(t,
		filepath.Join("build", "my-app", "tester", "app", ReceiptFilename),
		layout.ReceiptPath(a))
	require.Equal(t, "build", layout.Root())
}

// TestEnsureBundleDir creates the bundle directory tree.
func TestEnsureBundleDir(t *testing.T) {
	t.Parallel()

	layout := NewLayout(filepath.Join(t.TempDir(), "build"))
	a := &app.App{Name: "my-app", PlatformTag: "tester"}

	require.NoError(t, layout.EnsureBundleDir(a))

	info, err := os.Stat(layout.BundleDir(a))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
