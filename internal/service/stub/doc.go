// Package stub implements the stub-binary pipeline: resolving which
// artifact source applies to an app, fetching its bytes (network
// download or local filesystem), and installing the launcher into the
// app's bundle directory.
//
// The pipeline is a strict Resolver -> Fetcher -> Installer chain
// composed by Service.InstallStubBinary. Sources are an explicit sum
// type (official pinned artifact, custom URL, local file, local
// archive), so each stage switches exhaustively over the variants.
package stub
