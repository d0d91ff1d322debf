package stub

import (
	"context"
	"strings"

	"github.com/oshokin/app-bundler/internal/archive"
	"github.com/oshokin/app-bundler/internal/domain/app"
	"github.com/oshokin/app-bundler/internal/logger"
)

// DefaultRevision is the baseline build of the official stub families,
// used when the app does not pin one.
const DefaultRevision app.Revision = "37"

// urlSchemePrefixes are the recognized remote override prefixes.
// Matching is scheme-prefix only, so absolute local paths that happen to
// contain "://" somewhere are never misclassified as URLs.
var urlSchemePrefixes = []string{"https://", "http://"}

// Resolve determines the concrete artifact source for an app.
// It is a pure function of the app configuration and compiled-in
// defaults; archive-vs-file classification is by extension and is
// repeated at install time, since the path may not exist yet here.
func Resolve(ctx context.Context, a *app.App) Source {
	if a.StubBinary == "" {
		revision := a.StubBinaryRevision
		if !revision.IsSet() {
			revision = DefaultRevision
		}

		return OfficialSource{
			RuntimeTag: a.RuntimeTag,
			FormalName: a.FormalName,
			Kind:       a.StubKind(),
			Revision:   revision,
		}
	}

	if a.StubBinaryRevision.IsSet() {
		logger.Warnf(ctx,
			"App %s overrides the stub binary, so the stub binary revision will be ignored.",
			a.Name)
	}

	if isURL(a.StubBinary) {
		return URLSource{URL: a.StubBinary}
	}

	if archive.IsArchive(a.StubBinary) {
		return ArchiveSource{Path: a.StubBinary}
	}

	return FileSource{Path: a.StubBinary}
}

// isURL reports whether the override starts with a recognized URL scheme.
func isURL(override string) bool {
	for _, prefix := range urlSchemePrefixes {
		if strings.HasPrefix(override, prefix) {
			return true
		}
	}

	return false
}
