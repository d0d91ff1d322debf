package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// stubSegment is the fixed cache segment for official stub artifacts.
const stubSegment = "stub"

// Layout maps artifact kinds to directories under the bundler data root.
// Downloaded archives persist here across invocations; nothing in this
// package invalidates them.
type Layout struct {
	// root is the data directory shared by all apps.
	root string
}

// NewLayout creates a cache layout rooted at the provided data directory.
func NewLayout(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the data directory the layout is rooted at.
func (l *Layout) Root() string {
	return l.root
}

// StubDir returns the download directory for official stub artifacts.
func (l *Layout) StubDir() string {
	return filepath.Join(l.root, stubSegment)
}

// StubDirFor returns the download directory for an app-specific override.
// The segment is the SHA-256 hex digest of the override string itself, so
// differently-configured apps sharing a data directory never collide and
// the same override always maps to the same directory across runs.
func (l *Layout) StubDirFor(override string) string {
	digest := sha256.Sum256([]byte(override))
	return filepath.Join(l.root, stubSegment, hex.EncodeToString(digest[:]))
}
