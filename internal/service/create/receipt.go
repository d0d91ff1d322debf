package create

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/app-bundler/internal/domain/app"
	"github.com/oshokin/app-bundler/internal/service/stub"
	"github.com/oshokin/app-bundler/internal/version"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// checksumFunction is used to hash the installed launcher.
	checksumFunction crypto.Hash = crypto.SHA512

	// receiptFilePermissions restricts receipt files to the owner.
	receiptFilePermissions os.FileMode = 0o600
)

// Source kinds recorded in receipts.
const (
	sourceKindOfficial = "official"
	sourceKindURL      = "url"
	sourceKindFile     = "file"
	sourceKindArchive  = "archive"
)

var errHashUnavailable = errors.New("hash function unavailable")

// Receipt records what was installed into a bundle directory and from where,
// so later packaging steps and reruns can audit the bundle.
type Receipt struct {
	// App is the app slug the bundle belongs to.
	App string `yaml:"app"`
	// FormalName is the app display name.
	FormalName string `yaml:"formal_name"`
	// Platform is the build-tree platform segment.
	Platform string `yaml:"platform"`
	// Runtime is the runtime tag the stub is built against.
	Runtime string `yaml:"runtime"`
	// SourceKind is the resolved source variant (official, url, file, archive).
	SourceKind string `yaml:"source_kind"`
	// Origin is the URL or path the stub binary came from.
	Origin string `yaml:"origin"`
	// Revision is the official revision, empty for overrides.
	Revision string `yaml:"revision,omitempty"`
	// Binary is the launcher filename inside the bundle directory.
	Binary string `yaml:"binary"`
	// ChecksumSHA512 is the base64-encoded digest of the launcher.
	ChecksumSHA512 string `yaml:"checksum_sha512"`
	// ToolVersion is the bundler version that produced the bundle.
	ToolVersion string `yaml:"tool_version"`
	// CreatedAt is when the bundle was produced.
	CreatedAt time.Time `yaml:"created_at"`
}

// newReceipt assembles the receipt for an installed launcher.
func newReceipt(a *app.App, source stub.Source, fetcher *stub.Fetcher, binaryPath string) (*Receipt, error) {
	checksum, err := fileChecksum(binaryPath)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		App:            a.Name,
		FormalName:     a.FormalName,
		Platform:       a.PlatformTag,
		Runtime:        a.RuntimeTag,
		Binary:         filepath.Base(binaryPath),
		ChecksumSHA512: base64.StdEncoding.EncodeToString(checksum),
		ToolVersion:    version.Short(),
		CreatedAt:      time.Now().UTC(),
	}

	switch s := source.(type) {
	case stub.OfficialSource:
		receipt.SourceKind = sourceKindOfficial
		receipt.Origin = fetcher.OfficialURL(s)
		receipt.Revision = string(s.Revision)
	case stub.URLSource:
		receipt.SourceKind = sourceKindURL
		receipt.Origin = s.URL
	case stub.FileSource:
		receipt.SourceKind = sourceKindFile
		receipt.Origin = s.Path
	case stub.ArchiveSource:
		receipt.SourceKind = sourceKindArchive
		receipt.Origin = s.Path
	}

	return receipt, nil
}

// Save writes the receipt to the provided path.
func (r *Receipt) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, receiptFilePermissions); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	return nil
}

// LoadReceipt reads a previously written receipt.
func LoadReceipt(path string) (*Receipt, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}

	var receipt Receipt
	if err = yaml.Unmarshal(contents, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}

	return &receipt, nil
}

// fileChecksum returns checksum bytes for a file using checksumFunction.
func fileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !checksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := checksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
