// Package packager appends a new release record to a manifest.
//
// It hashes locally built agf-<triple>.tar.gz archives, renders their
// download URLs, appends the resulting record to the manifest file without
// touching existing records and optionally signs the new manifest.
package packager
