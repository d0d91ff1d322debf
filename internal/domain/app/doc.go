// Package app defines the application descriptor consumed by the
// stub-binary pipeline: platform and runtime tags, the console/GUI
// classification, and the optional stub-binary override fields.
package app
