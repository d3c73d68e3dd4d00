package receipt

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(afero.NewMemMapFs(), "/opt/bin")

	r, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, r)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal receipt.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/opt/bin", 0o755))

	repo := NewFileRepository(fs, "/opt/bin")
	require.Equal(t, "/opt/bin/"+Filename, repo.Path())

	want := &Receipt{
		Version:         "0.5.3",
		Platform:        "macos-arm64",
		URL:             "https://github.com/subinium/agf/releases/download/v0.5.3/agf-aarch64-apple-darwin.tar.gz",
		ArchiveChecksum: "00b094f2ae27181cc66d23bb5e62b294ef45925133d37ecc6dcc238b2d7150aa",
		BinaryChecksum:  "ce1deef7ca1a1503aef101deb16dc6e42c434a075b4fe03a20cf5d6fd7cac617",
		Path:            "/opt/bin/agf",
		InstalledAt:     time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Version, got.Version)
	require.Equal(t, want.ArchiveChecksum, got.ArchiveChecksum)
	require.True(t, want.InstalledAt.Equal(got.InstalledAt))
}

// TestFileRepository_Corrupt surfaces decode failures.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/opt/bin/"+Filename, []byte("version: [unterminated"), 0o644))

	_, err := NewFileRepository(fs, "/opt/bin").Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

// TestFileRepository_FailedSaveKeepsPrevious leaves the earlier receipt readable when a write fails.
func TestFileRepository_FailedSaveKeepsPrevious(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/opt/bin", 0o755))
	require.NoError(t, NewFileRepository(base, "/opt/bin").Save(ctx, &Receipt{Version: "0.1.3"}))

	err := NewFileRepository(afero.NewReadOnlyFs(base), "/opt/bin").Save(ctx, &Receipt{Version: "0.5.3"})
	require.Error(t, err)

	got, err := NewFileRepository(base, "/opt/bin").Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "0.1.3", got.Version)

	_, err = base.Stat("/opt/bin/" + Filename + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)
}
