package packager

import (
	"bytes"
	"context"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/agf-installer/internal/domain/release"
	"github.com/oshokin/agf-installer/internal/repository/manifest"
	"github.com/oshokin/agf-installer/internal/signature"
)

const (
	artifactsDir = "/build/dist"
	manifestPath = "/build/releases.yaml"
)

func writeArchives(t *testing.T, fs afero.Fs, archives map[release.PlatformKey]string) {
	t.Helper()

	require.NoError(t, fs.MkdirAll(artifactsDir, 0o755))

	for platform, body := range archives {
		require.NoError(t, afero.WriteFile(fs, artifactsDir+"/"+platform.ArtifactName(), []byte(body), 0o644))
	}
}

// TestPackager_AppendsRecord hashes archives and appends a published record.
func TestPackager_AppendsRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fs := afero.NewMemMapFs()
	writeArchives(t, fs, map[release.PlatformKey]string{
		release.PlatformMacOSARM64: "mac arm archive",
		release.PlatformLinuxX8664: "linux archive",
	})

	pkg, err := newPackager(fs, &Options{
		Version:      "v0.6.0",
		ArtifactsDir: artifactsDir,
		ManifestPath: manifestPath,
	}, nil)
	require.NoError(t, err)

	record, err := pkg.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, "0.6.0", record.Version())
	require.True(t, record.Published())
	require.Equal(t, []release.PlatformKey{release.PlatformMacOSARM64, release.PlatformLinuxX8664}, record.Platforms())

	stored, err := manifest.NewFileRepository(fs, manifestPath).Get(ctx, "0.6.0")
	require.NoError(t, err)

	ref, err := release.Select(stored, release.PlatformMacOSARM64)
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL+"/releases/download/v0.6.0/agf-aarch64-apple-darwin.tar.gz", ref.URL)
	require.Equal(t, release.Sum([]byte("mac arm archive")), *ref.Checksum)

	// Publishing the same version twice is rejected.
	_, err = pkg.Run(ctx)
	require.ErrorIs(t, err, manifest.ErrVersionExists)
}

// TestPackager_NoArtifacts fails when nothing matches a known platform.
func TestPackager_NoArtifacts(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(artifactsDir, 0o755))
	require.NoError(t, afero.WriteFile(fs, artifactsDir+"/agf-sparc-sun-solaris.tar.gz", []byte("x"), 0o644))

	pkg, err := newPackager(fs, &Options{
		Version:      "0.6.0",
		ArtifactsDir: artifactsDir,
		ManifestPath: manifestPath,
	}, nil)
	require.NoError(t, err)

	_, err = pkg.Run(context.Background())
	require.ErrorIs(t, err, errNoArtifacts)
}

// TestNewPackager_RequiresManifest fails fast without a manifest path.
func TestNewPackager_RequiresManifest(t *testing.T) {
	t.Parallel()

	_, err := newPackager(afero.NewMemMapFs(), &Options{Version: "0.6.0"}, nil)
	require.ErrorIs(t, err, errManifestPathRequired)
}

// TestPackager_SignsManifest writes a signature that the verifier accepts.
func TestPackager_SignsManifest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fs := afero.NewMemMapFs()
	writeArchives(t, fs, map[release.PlatformKey]string{release.PlatformLinuxX8664: "linux archive"})

	entity, err := openpgp.NewEntity("agf release", "", "release@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	require.NoError(t, err)

	var private bytes.Buffer

	w, err := armor.Encode(&private, openpgp.PrivateKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.SerializePrivate(w, nil))
	require.NoError(t, w.Close())
	require.NoError(t, afero.WriteFile(fs, "/keys/release-private.asc", private.Bytes(), 0o600))

	pkg, err := newPackager(fs, &Options{
		Version:        "0.6.0",
		ArtifactsDir:   artifactsDir,
		ManifestPath:   manifestPath,
		SigningKeyPath: "/keys/release-private.asc",
	}, nil)
	require.NoError(t, err)

	_, err = pkg.Run(ctx)
	require.NoError(t, err)

	verifier := signature.NewVerifier(openpgp.EntityList{entity})
	repo := manifest.NewFileRepository(fs, manifestPath, manifest.WithSignature(verifier, manifestPath+signatureSuffix))

	record, err := repo.Get(ctx, "0.6.0")
	require.NoError(t, err)
	require.Equal(t, "0.6.0", record.Version())
}
