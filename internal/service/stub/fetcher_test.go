package stub

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/app-bundler/internal/download"
	"github.com/oshokin/app-bundler/internal/repository/cache"
)

// recordingDownloader captures the download call for assertions.
type recordingDownloader struct {
	calls   int
	fileURL string
	destDir string
	role    string
	path    string
	err     error
}

func (d *recordingDownloader) File(_ context.Context, fileURL, destDir, role string) (string, error) {
	d.calls++
	d.fileURL = fileURL
	d.destDir = destDir
	d.role = role

	return d.path, d.err
}

// TestOfficialURL pins the canonical artifact URL format.
func TestOfficialURL(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher(&recordingDownloader{}, cache.NewLayout("data"), "")

	url := fetcher.OfficialURL(OfficialSource{
		RuntimeTag: "3.X",
		FormalName: "Tester",
		Kind:       "Console-Stub",
		Revision:   "37",
	})
	require.Equal(t,
		"https://app-bundler-support.s3.amazonaws.com/runtime/3.X/Tester/Console-Stub-3.X-b37.zip",
		url)

	// Pinning a revision changes only the b<N> suffix.
	pinned := fetcher.OfficialURL(OfficialSource{
		RuntimeTag: "3.X",
		FormalName: "Tester",
		Kind:       "Console-Stub",
		Revision:   "42",
	})
	require.Equal(t,
		"https://app-bundler-support.s3.amazonaws.com/runtime/3.X/Tester/Console-Stub-3.X-b42.zip",
		pinned)
}

// TestFetchOfficial downloads into the fixed stub cache segment.
func TestFetchOfficial(t *testing.T) {
	t.Parallel()

	downloader := &recordingDownloader{path: "/data/stub/Console-Stub-3.X-b37.zip"}
	fetcher := NewFetcher(downloader, cache.NewLayout("data"), "https://mirror.local/runtime")

	localPath, err := fetcher.Fetch(context.Background(), OfficialSource{
		RuntimeTag: "3.X",
		FormalName: "Tester",
		Kind:       "Console-Stub",
		Revision:   "37",
	})
	require.NoError(t, err)
	require.Equal(t, downloader.path, localPath)
	require.Equal(t, "https://mirror.local/runtime/3.X/Tester/Console-Stub-3.X-b37.zip", downloader.fileURL)
	require.Equal(t, filepath.Join("data", "stub"), downloader.destDir)
	require.Equal(t, "stub binary", downloader.role)
}

// TestFetchCustomURL downloads into the hash-derived cache segment.
func TestFetchCustomURL(t *testing.T) {
	t.Parallel()

	downloader := &recordingDownloader{path: "/data/stub/x/My-Stub.zip"}
	layout := cache.NewLayout("data")
	fetcher := NewFetcher(downloader, layout, "")

	customURL := "https://example.com/custom/My-Stub.zip"

	_, err := fetcher.Fetch(context.Background(), URLSource{URL: customURL})
	require.NoError(t, err)
	require.Equal(t, customURL, downloader.fileURL)
	require.Equal(t, layout.StubDirFor(customURL), downloader.destDir)
}

// TestFetchLocal returns existing paths without network calls
// and surfaces missing overrides as plain errors.
func TestFetchLocal(t *testing.T) {
	t.Parallel()

	downloader := &recordingDownloader{}
	fetcher := NewFetcher(downloader, cache.NewLayout("data"), "")
	ctx := context.Background()

	existing := filepath.Join(t.TempDir(), "My-Stub")
	require.NoError(t, os.WriteFile(existing, []byte("custom stub"), 0o600))

	localPath, err := fetcher.Fetch(ctx, FileSource{Path: existing})
	require.NoError(t, err)
	require.Equal(t, existing, localPath)

	_, err = fetcher.Fetch(ctx, ArchiveSource{Path: "/nonexistent/support.zip"})
	require.Error(t, err)
	require.NotErrorIs(t, err, download.ErrMissingResource)
	require.NotErrorIs(t, err, download.ErrNetworkFailure)
	require.Contains(t, err.Error(), "/nonexistent/support.zip")

	// Local variants never reached the downloader.
	require.Equal(t, 0, downloader.calls)
}
