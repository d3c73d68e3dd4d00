package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPlatformFor maps GOOS/GOARCH pairs to platform keys.
func TestPlatformFor(t *testing.T) {
	t.Parallel()

	cases := map[[2]string]PlatformKey{
		{"darwin", "arm64"}: PlatformMacOSARM64,
		{"darwin", "amd64"}: PlatformMacOSX8664,
		{"linux", "amd64"}:  PlatformLinuxX8664,
		{"linux", "arm64"}:  PlatformLinuxARM64,
	}

	for pair, want := range cases {
		got, err := PlatformFor(pair[0], pair[1])
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := PlatformFor("windows", "amd64")
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
}

// TestParsePlatformKey accepts canonical keys and target triples.
func TestParsePlatformKey(t *testing.T) {
	t.Parallel()

	key, err := ParsePlatformKey("macos-arm64")
	require.NoError(t, err)
	require.Equal(t, PlatformMacOSARM64, key)

	key, err = ParsePlatformKey("x86_64-unknown-linux-gnu")
	require.NoError(t, err)
	require.Equal(t, PlatformLinuxX8664, key)

	_, err = ParsePlatformKey("plan9-mips")
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
}

// TestArtifactURL renders GitHub release URLs.
func TestArtifactURL(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"https://github.com/subinium/agf/releases/download/v0.5.3/agf-aarch64-apple-darwin.tar.gz",
		ArtifactURL("https://github.com/subinium/agf/", "v0.5.3", PlatformMacOSARM64),
	)
}
