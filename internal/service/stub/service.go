package stub

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/app-bundler/internal/domain/app"
	"github.com/oshokin/app-bundler/internal/download"
	"github.com/oshokin/app-bundler/internal/logger"
)

// ErrMissingStubBinary indicates the official artifact for this app,
// runtime and platform is not published.
var ErrMissingStubBinary = errors.New("stub binary is not published")

// Service composes the resolve, fetch and install stages.
// Control flows strictly forward; no stage calls back into an earlier one.
type Service struct {
	// fetcher obtains artifact bytes locally.
	fetcher *Fetcher
	// installer places artifacts into bundle directories.
	installer *Installer
	// hostPlatform names the host in user-facing errors.
	hostPlatform string
}

// NewService creates the stub-binary pipeline.
func NewService(fetcher *Fetcher, installer *Installer, hostPlatform string) *Service {
	return &Service{
		fetcher:      fetcher,
		installer:    installer,
		hostPlatform: hostPlatform,
	}
}

// InstallStubBinary resolves the app's stub source, fetches its bytes
// and installs them into targetDir. The resolved source is returned so
// callers can record where the binary came from; it is computed fresh on
// every invocation and never persisted.
//
// A missing official artifact is translated into ErrMissingStubBinary
// carrying the formal name, runtime tag and host platform; a missing custom
// URL propagates as the unmodified download error, since the user already
// supplied the exact URL. Network failures propagate unchanged for every
// variant.
func (s *Service) InstallStubBinary(ctx context.Context, a *app.App, targetDir string) (Source, error) {
	source := Resolve(ctx, a)

	logger.DebugKV(ctx, "Resolved stub binary source",
		"app", a.Name, "source", fmt.Sprintf("%T", source))

	localPath, err := s.fetcher.Fetch(ctx, source)
	if err != nil {
		if _, official := source.(OfficialSource); official &&
			errors.Is(err, download.ErrMissingResource) {
			return source, fmt.Errorf("unable to download %s stub binary for runtime %s on %s: %w",
				a.FormalName, a.RuntimeTag, s.hostPlatform, ErrMissingStubBinary)
		}

		return source, err
	}

	if err = s.installer.Install(ctx, localPath, targetDir); err != nil {
		return source, err
	}

	logger.InfoKV(ctx, "Installed stub binary",
		"app", a.Name, "target", targetDir)

	return source, nil
}
