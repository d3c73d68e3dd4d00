package release

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// ChecksumHexLength is the length of a SHA-256 digest rendered as hex.
const ChecksumHexLength = sha256.Size * 2

// Checksum is a SHA-256 digest.
type Checksum [sha256.Size]byte

// ParseChecksum decodes a 64-character hex digest. Upper-case input is accepted.
func ParseChecksum(s string) (Checksum, error) {
	var sum Checksum

	s = strings.TrimSpace(s)
	if len(s) != ChecksumHexLength {
		return sum, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalidChecksum, ChecksumHexLength, len(s))
	}

	if _, err := hex.Decode(sum[:], []byte(s)); err != nil {
		return sum, fmt.Errorf("%w: %w", ErrInvalidChecksum, err)
	}

	return sum, nil
}

// Sum computes the checksum of data.
func Sum(data []byte) Checksum {
	return sha256.Sum256(data)
}

// String renders the digest as lower-case hex.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Equal compares two digests in constant time.
func (c Checksum) Equal(other Checksum) bool {
	return subtle.ConstantTimeCompare(c[:], other[:]) == 1
}

// Bytes returns a copy of the digest bytes.
func (c Checksum) Bytes() []byte {
	out := make([]byte, len(c))
	copy(out, c[:])

	return out
}

// Verify checks data against the expected checksum.
// A nil expected checksum means the artifact is still a placeholder.
func Verify(data []byte, expected *Checksum) error {
	if expected == nil {
		return ErrMissingChecksum
	}

	actual := Sum(data)
	if !actual.Equal(*expected) {
		return &ChecksumMismatchError{
			Expected: *expected,
			Actual:   actual,
		}
	}

	return nil
}
