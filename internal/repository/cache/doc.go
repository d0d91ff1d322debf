// Package cache computes the on-disk layout of downloaded artifacts
// under the bundler data root: a fixed "stub" segment for official
// artifacts and content-derived hash segments for per-app overrides.
package cache
