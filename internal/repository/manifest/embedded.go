package manifest

import (
	_ "embed"
)

//go:embed releases.yaml
var bundledManifest []byte

// NewEmbedded returns a Store over the bundled manifest.
func NewEmbedded() (*MemoryStore, error) {
	return Load(bundledManifest)
}
