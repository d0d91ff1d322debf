package stub

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/app-bundler/internal/archive"
)

// writeZip creates a zip archive holding the provided name/content pairs.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	var buffer bytes.Buffer

	writer := zip.NewWriter(&buffer)
	for name, content := range entries {
		entry, err := writer.Create(name)
		require.NoError(t, err)

		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	require.NoError(t, os.WriteFile(path, buffer.Bytes(), 0o600))
}

// newTestInstaller builds an installer with the default extraction filter.
func newTestInstaller() *Installer {
	return NewInstaller(archive.NewExtractor(archive.DefaultFilter()))
}

// TestInstallArchive extracts a recognized archive into the target directory.
func TestInstallArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "Console-Stub-3.X-b37.zip")
	writeZip(t, archivePath, map[string]string{"Console-Stub.bin": "stub binary"})

	targetDir := filepath.Join(dir, "bundle")
	require.NoError(t, os.MkdirAll(targetDir, 0o755))

	require.NoError(t, newTestInstaller().Install(context.Background(), archivePath, targetDir))

	contents, err := os.ReadFile(filepath.Join(targetDir, "Console-Stub.bin"))
	require.NoError(t, err)
	require.Equal(t, "stub binary", string(contents))
}

// TestInstallPlainFile places a raw binary byte-identical, executable, keeping its base name.
func TestInstallPlainFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "My-Stub")
	require.NoError(t, os.WriteFile(sourcePath, []byte("custom stub"), 0o600))

	targetDir := filepath.Join(dir, "bundle")
	require.NoError(t, os.MkdirAll(targetDir, 0o755))

	require.NoError(t, newTestInstaller().Install(context.Background(), sourcePath, targetDir))

	targetPath := filepath.Join(targetDir, "My-Stub")

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	require.Equal(t, "custom stub", string(contents))

	if runtime.GOOS != "windows" {
		info, statErr := os.Stat(targetPath)
		require.NoError(t, statErr)
		require.NotZero(t, info.Mode()&0o100)
	}

	// No backup file is left behind.
	_, err = os.Stat(targetPath + ".old")
	require.True(t, os.IsNotExist(err))
}

// TestInstallOverwritesPrevious replaces an already-installed binary.
func TestInstallOverwritesPrevious(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "My-Stub")
	require.NoError(t, os.WriteFile(sourcePath, []byte("new stub"), 0o600))

	targetDir := filepath.Join(dir, "bundle")
	require.NoError(t, os.MkdirAll(targetDir, 0o755))
	require.NoError(t,
		os.WriteFile(filepath.Join(targetDir, "My-Stub"), []byte("old stub"), 0o755))

	require.NoError(t, newTestInstaller().Install(context.Background(), sourcePath, targetDir))

	contents, err := os.ReadFile(filepath.Join(targetDir, "My-Stub"))
	require.NoError(t, err)
	require.Equal(t, "new stub", string(contents))
}

// TestInstallCorruptArchive propagates extraction failures as plain errors.
func TestInstallCorruptArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("not a zip"), 0o600))

	targetDir := filepath.Join(dir, "bundle")
	require.NoError(t, os.MkdirAll(targetDir, 0o755))

	err := newTestInstaller().Install(context.Background(), archivePath, targetDir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.zip")
}
