package stub

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/app-bundler/internal/download"
	"github.com/oshokin/app-bundler/internal/repository/cache"
)

const (
	// DefaultSupportBaseURL is where official stub artifacts are published.
	DefaultSupportBaseURL = "https://app-bundler-support.s3.amazonaws.com/runtime"

	// officialArchiveExtension is the container format of official artifacts.
	officialArchiveExtension = ".zip"

	// downloadRole names what is being fetched in logs and errors.
	downloadRole = "stub binary"
)

// errUnknownSource is returned when a source variant is not recognized.
var errUnknownSource = errors.New("unknown stub binary source")

// Fetcher turns a resolved source into a local filesystem path.
type Fetcher struct {
	// downloader obtains remote artifacts.
	downloader download.Downloader
	// cacheLayout decides where downloaded artifacts land.
	cacheLayout *cache.Layout
	// baseURL is the official artifact repository base.
	baseURL string
}

// NewFetcher creates a fetcher. An empty baseURL selects the official default.
func NewFetcher(downloader download.Downloader, cacheLayout *cache.Layout, baseURL string) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultSupportBaseURL
	}

	return &Fetcher{
		downloader:  downloader,
		cacheLayout: cacheLayout,
		baseURL:     baseURL,
	}
}

// OfficialURL builds the canonical download URL for an official artifact:
// <base>/<runtime_tag>/<formal_name>/<Kind>-<runtime_tag>-b<revision>.zip.
func (f *Fetcher) OfficialURL(source OfficialSource) string {
	return fmt.Sprintf("%s/%s/%s/%s-%s-b%s%s",
		f.baseURL,
		source.RuntimeTag,
		source.FormalName,
		source.Kind,
		source.RuntimeTag,
		source.Revision,
		officialArchiveExtension)
}

// Fetch returns the local path of the artifact the source describes.
//
// Remote variants always issue the download call; deduplication lives in
// the download client. Local variants never touch the network, and a
// missing local path is a plain command error, never a network error.
func (f *Fetcher) Fetch(ctx context.Context, source Source) (string, error) {
	switch s := source.(type) {
	case OfficialSource:
		return f.downloader.File(ctx, f.OfficialURL(s), f.cacheLayout.StubDir(), downloadRole)
	case URLSource:
		return f.downloader.File(ctx, s.URL, f.cacheLayout.StubDirFor(s.URL), downloadRole)
	case FileSource:
		return localPath(s.Path)
	case ArchiveSource:
		return localPath(s.Path)
	default:
		return "", fmt.Errorf("%w: %T", errUnknownSource, source)
	}
}

// localPath confirms an app-supplied override exists and returns it.
func localPath(path string) (string, error) {
	if _, err := os.Stat(filepath.Clean(path)); err != nil {
		return "", fmt.Errorf("stub binary override %s: %w", path, err)
	}

	return path, nil
}
