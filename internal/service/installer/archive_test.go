package installer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExtractBinary finds the binary at the root or inside a directory.
func TestExtractBinary(t *testing.T) {
	t.Parallel()

	data, err := extractBinary(tarGz(t, map[string]string{"agf": "root"}), "agf", 1<<20)
	require.NoError(t, err)
	require.Equal(t, []byte("root"), data)

	data, err = extractBinary(tarGz(t, map[string]string{"./dist/agf": "nested", "dist/agf.1": "man"}), "agf", 1<<20)
	require.NoError(t, err)
	require.Equal(t, []byte("nested"), data)
}

// TestExtractBinary_Errors covers missing entries, oversized entries and non-gzip input.
func TestExtractBinary_Errors(t *testing.T) {
	t.Parallel()

	_, err := extractBinary(tarGz(t, map[string]string{"README.md": "docs"}), "agf", 1<<20)
	require.ErrorIs(t, err, ErrBinaryNotInArchive)

	_, err = extractBinary(tarGz(t, map[string]string{"agf": "0123456789"}), "agf", 4)
	require.ErrorIs(t, err, errBinaryTooLarge)

	_, err = extractBinary([]byte("plain bytes"), "agf", 1<<20)
	require.Error(t, err)
}
