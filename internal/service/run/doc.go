// Package run launches a previously created app bundle: it locates the
// installed stub binary via the install receipt and executes it with a
// per-app log-directory environment variable.
package run
