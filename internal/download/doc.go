// Package download fetches remote artifacts to deterministic local paths.
//
// Client maps HTTP 404/410 to ErrMissingResource and transport-level
// failures to ErrNetworkFailure; callers classify everything else as a
// plain command error. A file already present at the target path is
// reused without a network call, so the download directory doubles as
// the artifact cache.
//
// BreakerClient adds per-host circuit breaking with exponential-backoff
// reset on top of any Downloader.
package download
