// Package installer resolves, downloads, verifies and installs agf releases.
//
// An install is one synchronous sequence: resolve the version in the
// manifest, select the artifact for the platform, refuse placeholders,
// fetch and verify the archive, extract the binary and apply it atomically
// with go-update. A failed smoke test restores the previous binary, so an
// attempt either completes or leaves the install directory as it was.
package installer
