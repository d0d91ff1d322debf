package stub

import "github.com/oshokin/app-bundler/internal/domain/app"

// Source is the resolved origin of an app's stub binary.
// Exactly one of the four concrete variants is produced per resolution,
// so the fetcher and installer can switch exhaustively instead of
// probing optional fields.
type Source interface {
	isSource()
}

// OfficialSource points at a versioned artifact in the official repository.
type OfficialSource struct {
	// RuntimeTag identifies the runtime version the artifact is built against.
	RuntimeTag string
	// FormalName is the app display name used in the artifact URL.
	FormalName string
	// Kind is the stub family ("Console-Stub" or "GUI-Stub").
	Kind string
	// Revision is the pinned or default build revision.
	Revision app.Revision
}

// URLSource points at an app-specified remote artifact.
type URLSource struct {
	// URL is the exact artifact location supplied by the app.
	URL string
}

// FileSource points at an app-specified plain file on the local filesystem.
type FileSource struct {
	// Path is the file location supplied by the app.
	Path string
}

// ArchiveSource points at an app-specified archive container on the local filesystem.
type ArchiveSource struct {
	// Path is the archive location supplied by the app.
	Path string
}

func (OfficialSource) isSource() {}
func (URLSource) isSource()      {}
func (FileSource) isSource()     {}
func (ArchiveSource) isSource()  {}
