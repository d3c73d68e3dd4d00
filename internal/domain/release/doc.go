// Package release contains core domain types for published agf releases.
//
// It defines Record (one immutable release), PlatformKey (the closed set of
// supported OS/CPU pairs), ArtifactRef (download URL plus optional SHA-256)
// and the pure operations over them: platform selection and checksum
// verification.
package release
