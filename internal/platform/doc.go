// Package platform identifies the host the bundler runs on.
//
// The OS and architecture come from the Go runtime; the human-facing
// platform name (used in error messages about unavailable official
// artifacts) is detected via gopsutil with a graceful fallback to the
// bare OS name.
package platform
