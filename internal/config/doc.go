// Package config defines the project manifest used by the bundler
// binaries and provides helpers to load, validate and save it in YAML
// format.
//
// The manifest holds project-level settings (support base URL, data and
// build directories) and the per-app descriptors.
package config
