package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Filter selects how defensively archive entries are treated during extraction.
type Filter int

const (
	// FilterNone extracts regular files, directories and symlinks as stored.
	// Path traversal outside the destination is still rejected.
	FilterNone Filter = iota
	// FilterData additionally skips symlinks and special entries and strips
	// setuid, setgid and sticky bits from extracted modes.
	FilterData
)

const (
	// defaultDirectoryMode is used for directories created during extraction.
	defaultDirectoryMode os.FileMode = 0o755

	// specialModeBits are stripped from entry modes under FilterData.
	specialModeBits = os.ModeSetuid | os.ModeSetgid | os.ModeSticky
)

var (
	// errUnknownFormat is returned when the archive extension is not recognized.
	errUnknownFormat = errors.New("unrecognized archive format")
	// errIllegalPath is returned when an entry would escape the destination directory.
	errIllegalPath = errors.New("archive entry escapes the destination directory")
)

// DefaultFilter returns the extraction filter this build supports.
// Resolved once at startup so the installer never re-checks capabilities per call.
func DefaultFilter() Filter {
	return FilterData
}

// Extractor unpacks archive containers into directories.
type Extractor struct {
	// filter is the hardening policy applied to every extraction.
	filter Filter
}

// NewExtractor creates an extractor with the provided filter.
func NewExtractor(filter Filter) *Extractor {
	return &Extractor{filter: filter}
}

// Extract unpacks the archive at archivePath into destDir.
// The container format is chosen by extension, matching IsArchive.
func (e *Extractor) Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, defaultDirectoryMode); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	lower := strings.ToLower(archivePath)

	switch {
	case strings.HasSuffix(lower, ".zip"):
		return e.extractZip(archivePath, destDir)
	case strings.HasSuffix(lower, ".tar"):
		return e.withArchiveFile(archivePath, destDir, func(r io.Reader) (io.Reader, error) {
			return r, nil
		})
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return e.withArchiveFile(archivePath, destDir, func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		return e.withArchiveFile(archivePath, destDir, func(r io.Reader) (io.Reader, error) {
			return bzip2.NewReader(r), nil
		})
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return e.withArchiveFile(archivePath, destDir, func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		})
	default:
		return fmt.Errorf("%s: %w", archivePath, errUnknownFormat)
	}
}

// withArchiveFile opens the archive, wraps it in the provided decompressor
// and extracts the resulting tar stream.
func (e *Extractor) withArchiveFile(
	archivePath, destDir string,
	decompress func(io.Reader) (io.Reader, error),
) error {
	archiveFile, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = archiveFile.Close()
	}()

	reader, err := decompress(archiveFile)
	if err != nil {
		return fmt.Errorf("read archive %s: %w", archivePath, err)
	}

	if closer, ok := reader.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	return e.extractTar(reader, destDir)
}

// extractTar walks a tar stream and materializes its entries under destDir.
func (e *Extractor) extractTar(reader io.Reader, destDir string) error {
	tarReader := tar.NewReader(reader)

	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := secureExtractPath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, defaultDirectoryMode); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			mode := e.entryMode(os.FileMode(header.Mode)) //nolint:gosec // Tar modes fit in 32 bits.
			if err = writeEntry(target, tarReader, mode); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if e.filter == FilterData {
				// Symlinks are dropped under the data filter.
				continue
			}

			if err = os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		default:
			// Devices, FIFOs and other special entries are never extracted.
			continue
		}
	}
}

// extractZip materializes all entries of a zip container under destDir.
func (e *Extractor) extractZip(archivePath, destDir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}

	defer func() {
		_ = zipReader.Close()
	}()

	for _, entry := range zipReader.File {
		target, err := secureExtractPath(destDir, entry.Name)
		if err != nil {
			return err
		}

		mode := entry.Mode()

		switch {
		case mode.IsDir():
			if err = os.MkdirAll(target, defaultDirectoryMode); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case mode&os.ModeSymlink != 0:
			if e.filter == FilterData {
				continue
			}

			linkName, err := readZipEntry(entry)
			if err != nil {
				return err
			}

			if err = os.Symlink(string(linkName), target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		case mode.IsRegular():
			source, err := entry.Open()
			if err != nil {
				return fmt.Errorf("open archive entry %s: %w", entry.Name, err)
			}

			err = writeEntry(target, source, e.entryMode(mode))

			_ = source.Close()

			if err != nil {
				return err
			}

		default:
			continue
		}
	}

	return nil
}

// entryMode sanitizes an archive entry mode according to the filter.
func (e *Extractor) entryMode(mode os.FileMode) os.FileMode {
	mode = mode.Perm() | (mode & specialModeBits)
	if e.filter == FilterData {
		mode &^= specialModeBits
	}

	if mode.Perm() == 0 {
		mode |= 0o644
	}

	return mode
}

// writeEntry creates the parent directory and streams an entry to disk.
func writeEntry(target string, source io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), defaultDirectoryMode); err != nil {
		return fmt.Errorf("create parent directory for %s: %w", target, err)
	}

	outputFile, err := os.OpenFile(filepath.Clean(target), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err = io.Copy(outputFile, source); err != nil { //nolint:gosec // Archives come from trusted, cached downloads.
		_ = outputFile.Close()

		return fmt.Errorf("write file %s: %w", target, err)
	}

	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}

	return nil
}

// readZipEntry returns the full contents of a zip entry (used for symlink targets).
func readZipEntry(entry *zip.File) ([]byte, error) {
	source, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %s: %w", entry.Name, err)
	}

	defer func() {
		_ = source.Close()
	}()

	contents, err := io.ReadAll(source)
	if err != nil {
		return nil, fmt.Errorf("read archive entry %s: %w", entry.Name, err)
	}

	return contents, nil
}

// secureExtractPath joins an entry name onto destDir and rejects traversal.
func secureExtractPath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) &&
		target != filepath.Clean(destDir) {
		return "", fmt.Errorf("%s: %w", name, errIllegalPath)
	}

	return target, nil
}
