package manifest

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/agf-installer/internal/domain/release"
)

// TestEmbedded_ChecksumsWellFormed verifies every published checksum round-trips through hex.
func TestEmbedded_ChecksumsWellFormed(t *testing.T) {
	t.Parallel()

	store, err := NewEmbedded()
	require.NoError(t, err)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, records)

	hexDigest := regexp.MustCompile(`^[0-9a-f]{64}$`)

	for _, record := range records {
		for platform, ref := range record.Artifacts() {
			require.True(t, strings.HasSuffix(ref.URL, platform.ArtifactName()), ref.URL)
			require.Contains(t, ref.URL, "/v"+record.Version()+"/")

			if !record.Published() {
				continue
			}

			require.NotNil(t, ref.Checksum, "%s %s", record.Version(), platform)
			require.Regexp(t, hexDigest, ref.Checksum.String())

			decoded, parseErr := release.ParseChecksum(ref.Checksum.String())
			require.NoError(t, parseErr)
			require.Equal(t, *ref.Checksum, decoded)
		}
	}
}

// TestEmbedded_Scenario053 resolves the macOS arm64 artifact of 0.5.3.
func TestEmbedded_Scenario053(t *testing.T) {
	t.Parallel()

	store, err := NewEmbedded()
	require.NoError(t, err)

	record, err := store.Get(context.Background(), "0.5.3")
	require.NoError(t, err)

	ref, err := release.Select(record, release.PlatformMacOSARM64)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(ref.URL, "agf-aarch64-apple-darwin.tar.gz"))
	require.Equal(t, "00b094f2ae27181cc66d23bb5e62b294ef45925133d37ecc6dcc238b2d7150aa", ref.Checksum.String())

	_, err = release.Select(record, release.PlatformLinuxX8664)
	require.ErrorIs(t, err, release.ErrUnsupportedPlatform)
}

// TestEmbedded_Placeholder010 checks that the first record carries no checksums.
func TestEmbedded_Placeholder010(t *testing.T) {
	t.Parallel()

	store, err := NewEmbedded()
	require.NoError(t, err)

	record, err := store.Get(context.Background(), "v0.1.0")
	require.NoError(t, err)
	require.False(t, record.Published())

	for _, ref := range record.Artifacts() {
		require.False(t, ref.HasChecksum())
	}
}

// TestMemoryStore_GetAndLatest covers NotFound, ordering and the latest alias.
func TestMemoryStore_GetAndLatest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, err := NewEmbedded()
	require.NoError(t, err)

	_, err = store.Get(ctx, "9.9.9")
	require.ErrorIs(t, err, release.ErrNotFound)

	latest, err := store.Get(ctx, LatestVersion)
	require.NoError(t, err)
	require.Equal(t, "0.5.3", latest.Version())

	records, err := store.List(ctx)
	require.NoError(t, err)

	versions := make([]string, 0, len(records))
	for _, record := range records {
		versions = append(versions, record.Version())
	}

	require.Equal(t, []string{"0.1.0", "0.1.3", "0.5.3"}, versions)
}

// TestLoad_Rejects covers duplicate versions, unknown platforms and bad digests.
func TestLoad_Rejects(t *testing.T) {
	t.Parallel()

	duplicate := `
releases:
  - version: 1.0.0
    platforms:
      linux-x86_64: {url: "https://example.com/a"}
  - version: v1.0.0
    platforms:
      linux-x86_64: {url: "https://example.com/b"}
`
	_, err := Load([]byte(duplicate))
	require.ErrorIs(t, err, ErrVersionExists)

	unknownPlatform := `
releases:
  - version: 1.0.0
    platforms:
      haiku-x86: {url: "https://example.com/a"}
`
	_, err = Load([]byte(unknownPlatform))
	require.ErrorIs(t, err, release.ErrUnsupportedPlatform)

	badDigest := `
releases:
  - version: 1.0.0
    platforms:
      linux-x86_64: {url: "https://example.com/a", sha256: "abc"}
`
	_, err = Load([]byte(badDigest))
	require.ErrorIs(t, err, release.ErrInvalidChecksum)

	_, err = Load([]byte("releases: [not, a, map"))
	require.Error(t, err)
}

// TestLatest_NoPublished returns NotFound when only placeholders exist.
func TestLatest_NoPublished(t *testing.T) {
	t.Parallel()

	store, err := Load([]byte(`
releases:
  - version: 0.1.0
    platforms:
      linux-x86_64: {url: "https://example.com/a"}
`))
	require.NoError(t, err)

	_, err = store.Latest(context.Background())
	require.ErrorIs(t, err, release.ErrNotFound)
}
