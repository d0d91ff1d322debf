// Package archive recognizes and unpacks the container formats the
// bundler accepts for stub binaries: zip plus tar with gzip, bzip2 or
// xz compression.
//
// Extraction is hardened by a filter resolved once at startup: under
// FilterData symlinks and special entries are skipped and setuid/setgid
// bits are stripped. Path traversal outside the destination is always
// rejected, regardless of filter.
package archive
