// Package create implements the per-app build workflow: load the
// project manifest, prepare the build tree, run the stub-binary
// pipeline and write an install receipt into the bundle directory.
//
// A build is refused while the app's installed binary is running.
package create
