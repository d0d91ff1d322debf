// Package buildtree computes the build output layout for an app:
// the bundle directory receiving the stub binary, the log directory
// used at launch, and the install receipt location.
package buildtree
