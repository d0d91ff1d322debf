package app

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConsoleStubKind is the stub family for console applications.
	ConsoleStubKind = "Console-Stub"
	// GUIStubKind is the stub family for windowed applications.
	GUIStubKind = "GUI-Stub"

	// stubBinaryExtension is the extension of the launcher inside official archives.
	stubBinaryExtension = ".bin"
)

var (
	// errNameRequired is returned when an app has no name.
	errNameRequired = errors.New("app name must be provided")
	// errRuntimeRequired is returned when an app has no runtime tag.
	errRuntimeRequired = errors.New("app runtime tag must be provided")
	// errInvalidName is returned when an app name is not a valid slug.
	errInvalidName = errors.New("app name must be a lowercase slug")
	// errInvalidRevisionNode is returned when a revision is neither a string nor an integer scalar.
	errInvalidRevisionNode = errors.New("stub binary revision must be a string or an integer")

	// nameExpression validates app names: lowercase alphanumeric segments joined by hyphens.
	nameExpression = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Revision identifies a specific build of the official stub binary family.
// It is string-backed but accepts integer scalars in YAML,
// since manifests commonly write revisions unquoted.
type Revision string

// UnmarshalYAML accepts string and integer scalars for a revision.
func (r *Revision) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!str", "!!int":
		*r = Revision(value.Value)
		return nil
	default:
		return fmt.Errorf("%w, got %s", errInvalidRevisionNode, value.Tag)
	}
}

// IsSet reports whether the app pinned a revision.
func (r Revision) IsSet() bool {
	return r != ""
}

// App describes one application in the project manifest.
// The stub-binary pipeline consumes it read-only.
type App struct {
	// Name is the machine-friendly slug identifying the app.
	Name string `yaml:"name"`
	// FormalName is the human-facing display name used in artifact URLs.
	FormalName string `yaml:"formal_name"`
	// PlatformTag is the build-tree platform segment; detected from the host when empty.
	PlatformTag string `yaml:"platform,omitempty"`
	// RuntimeTag identifies the runtime version the stub binary is built against.
	RuntimeTag string `yaml:"runtime"`
	// ConsoleApp selects the console stub family instead of the windowed one.
	ConsoleApp bool `yaml:"console_app,omitempty"`
	// StubBinary optionally overrides the stub source with a URL or a filesystem path.
	StubBinary string `yaml:"stub_binary,omitempty"`
	// StubBinaryRevision optionally pins the official stub revision.
	// It is meaningless together with StubBinary and is then ignored with a warning.
	StubBinaryRevision Revision `yaml:"stub_binary_revision,omitempty"`
}

// StubKind returns the stub family selected by the console/GUI classification.
func (a *App) StubKind() string {
	if a.ConsoleApp {
		return ConsoleStubKind
	}

	return GUIStubKind
}

// StubBinaryName returns the launcher filename shipped inside official archives.
func (a *App) StubBinaryName() string {
	return a.StubKind() + stubBinaryExtension
}

// LogDirEnvironmentVariable returns the name of the environment variable
// carrying the log directory when the app is launched.
func (a *App) LogDirEnvironmentVariable() string {
	return strings.ToUpper(strings.ReplaceAll(a.Name, "-", "_")) + "_LOG_DIR"
}

// Validate checks required fields and fills derivable defaults.
func (a *App) Validate() error {
	if a.Name == "" {
		return errNameRequired
	}

	if !nameExpression.MatchString(a.Name) {
		return fmt.Errorf("%w: %s", errInvalidName, a.Name)
	}

	if a.RuntimeTag == "" {
		return fmt.Errorf("app %s: %w", a.Name, errRuntimeRequired)
	}

	// Default the display name from the slug.
	if a.FormalName == "" {
		a.FormalName = a.Name
	}

	return nil
}

// Clone returns a deep copy of the descriptor.
func (a *App) Clone() *App {
	clone := *a
	return &clone
}
