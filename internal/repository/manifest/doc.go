// Package manifest implements the release Store.
//
// Records come from a YAML document, either the copy bundled into the binary
// or a file read through afero. A FileRepository can require a detached
// OpenPGP signature over the raw bytes before parsing, and can append new
// records for the packager without touching existing ones.
package manifest
