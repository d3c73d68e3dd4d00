package release

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested version is not published.
	ErrNotFound = errors.New("release not found")
	// ErrUnsupportedPlatform is returned when a record has no artifact for the platform.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrFetch is returned when the artifact could not be downloaded.
	ErrFetch = errors.New("fetch artifact")
	// ErrChecksumMismatch is returned when downloaded bytes do not hash to the declared digest.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrMissingChecksum is returned when a placeholder artifact is used before publication.
	ErrMissingChecksum = errors.New("checksum missing")
	// ErrInvalidChecksum is returned when a checksum string is not a 64-char hex digest.
	ErrInvalidChecksum = errors.New("invalid checksum")
	// ErrInvalidRecord is returned when a record fails validation at construction time.
	ErrInvalidRecord = errors.New("invalid release record")
)

// ChecksumMismatchError carries both digests for diagnostics.
// It matches ErrChecksumMismatch with errors.Is.
type ChecksumMismatchError struct {
	// Expected is the digest declared in the manifest.
	Expected Checksum
	// Actual is the digest of the downloaded bytes.
	Actual Checksum
}

// Error implements the error interface.
func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", ErrChecksumMismatch, e.Expected, e.Actual)
}

// Is reports whether target is ErrChecksumMismatch.
func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
