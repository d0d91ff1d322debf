package archive

import "strings"

// knownExtensions lists the archive container suffixes the bundler recognizes,
// longest first so ".tar.gz" wins over ".gz"-style suffix checks.
var knownExtensions = []string{
	".tar.gz",
	".tar.bz2",
	".tar.xz",
	".tgz",
	".tbz2",
	".txz",
	".tar",
	".zip",
}

// IsArchive reports whether the path names a recognized archive container.
// Classification is by extension only; file contents are never sniffed,
// so a plain file whose bytes happen to form an archive stays a plain file.
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	return false
}
