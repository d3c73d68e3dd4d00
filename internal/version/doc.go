// Package version exposes build metadata for agf-installer and agf-packager.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags,
// for example -X github.com/oshokin/agf-installer/internal/version.Version=1.2.0.
package version
