package release

import (
	"fmt"
	"runtime"
	"strings"
)

// PlatformKey identifies an OS and CPU architecture pair.
type PlatformKey string

// Supported platforms. The set is closed.
const (
	PlatformMacOSARM64 PlatformKey = "macos-arm64"
	PlatformMacOSX8664 PlatformKey = "macos-x86_64"
	PlatformLinuxX8664 PlatformKey = "linux-x86_64"
	PlatformLinuxARM64 PlatformKey = "linux-arm64"
)

const (
	artifactNamePrefix  = "agf-"
	artifactNameSuffix  = ".tar.gz"
	releaseDownloadPath = "/releases/download/v"
)

// platformInfo describes how a platform maps to Go and to release file names.
type platformInfo struct {
	goos   string
	goarch string
	triple string
}

//nolint:gochecknoglobals // Read-only lookup table.
var platforms = map[PlatformKey]platformInfo{
	PlatformMacOSARM64: {goos: "darwin", goarch: "arm64", triple: "aarch64-apple-darwin"},
	PlatformMacOSX8664: {goos: "darwin", goarch: "amd64", triple: "x86_64-apple-darwin"},
	PlatformLinuxX8664: {goos: "linux", goarch: "amd64", triple: "x86_64-unknown-linux-gnu"},
	PlatformLinuxARM64: {goos: "linux", goarch: "arm64", triple: "aarch64-unknown-linux-gnu"},
}

// Platforms returns every supported key in a stable order.
func Platforms() []PlatformKey {
	return []PlatformKey{
		PlatformMacOSARM64,
		PlatformMacOSX8664,
		PlatformLinuxX8664,
		PlatformLinuxARM64,
	}
}

// Valid reports whether the key belongs to the supported set.
func (p PlatformKey) Valid() bool {
	_, ok := platforms[p]
	return ok
}

// Triple returns the target triple used in artifact file names, e.g. aarch64-apple-darwin.
func (p PlatformKey) Triple() string {
	return platforms[p].triple
}

// ArtifactName returns the archive file name for the platform, e.g. agf-aarch64-apple-darwin.tar.gz.
func (p PlatformKey) ArtifactName() string {
	return artifactNamePrefix + p.Triple() + artifactNameSuffix
}

// String implements fmt.Stringer.
func (p PlatformKey) String() string {
	return string(p)
}

// ParsePlatformKey accepts either a canonical key (linux-x86_64) or a target triple.
func ParsePlatformKey(s string) (PlatformKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if key := PlatformKey(s); key.Valid() {
		return key, nil
	}

	for key, info := range platforms {
		if info.triple == s {
			return key, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
}

// PlatformFor maps a GOOS/GOARCH pair to a platform key.
func PlatformFor(goos, goarch string) (PlatformKey, error) {
	for _, key := range Platforms() {
		info := platforms[key]
		if info.goos == goos && info.goarch == goarch {
			return key, nil
		}
	}

	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
}

// CurrentPlatform returns the key for the running process.
func CurrentPlatform() (PlatformKey, error) {
	return PlatformFor(runtime.GOOS, runtime.GOARCH)
}

// ArtifactURL renders the GitHub-style release download URL for a platform,
// e.g. https://github.com/subinium/agf/releases/download/v0.5.3/agf-aarch64-apple-darwin.tar.gz.
func ArtifactURL(baseURL, version string, platform PlatformKey) string {
	return strings.TrimRight(baseURL, "/") +
		releaseDownloadPath + strings.TrimPrefix(version, "v") +
		"/" + platform.ArtifactName()
}
