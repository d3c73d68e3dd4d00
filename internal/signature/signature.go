package signature

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/spf13/afero"
)

const (
	// maxKeyringSize limits keyring files to 1 MiB.
	maxKeyringSize = 1 << 20
	// maxSignatureSize limits detached signatures; real ones are well under 1 KiB.
	maxSignatureSize = 16 << 10
	// armoredSignaturePrefix starts every armored signature block.
	armoredSignaturePrefix = "-----BEGIN PGP SIGNATURE-----"
)

var (
	// ErrInvalidSignature is returned when the manifest signature does not verify.
	ErrInvalidSignature = errors.New("invalid manifest signature")
	// errEmptyKeyring is returned when a keyring holds no keys.
	errEmptyKeyring = errors.New("keyring contains no keys")
	// errNoPrivateKey is returned when a signing key has no private part.
	errNoPrivateKey = errors.New("signing key has no private key")
	// errSignatureTooLarge is returned when a signature exceeds maxSignatureSize.
	errSignatureTooLarge = errors.New("signature too large")
)

// ReadKeyring parses an armored or binary OpenPGP keyring.
func ReadKeyring(r io.Reader) (openpgp.EntityList, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxKeyringSize))
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse keyring: %w", err)
		}
	}

	if len(entities) == 0 {
		return nil, errEmptyKeyring
	}

	return entities, nil
}

// LoadKeyring reads a keyring file from fs.
func LoadKeyring(fs afero.Fs, path string) (openpgp.EntityList, error) {
	f, err := fs.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	return ReadKeyring(f)
}

// Verifier checks detached signatures against a keyring.
type Verifier struct {
	// keyring holds the trusted public keys.
	keyring openpgp.EntityList
}

// NewVerifier returns a verifier trusting the given keys.
func NewVerifier(keyring openpgp.EntityList) *Verifier {
	return &Verifier{keyring: keyring}
}

// Verify checks that signature is a valid detached signature of data made by
// a key in the keyring. Armored and binary signatures are accepted.
func (v *Verifier) Verify(data, signature []byte) error {
	if len(v.keyring) == 0 {
		return errEmptyKeyring
	}

	if len(signature) > maxSignatureSize {
		return fmt.Errorf("%w: %d bytes", errSignatureTooLarge, len(signature))
	}

	var err error
	if bytes.HasPrefix(bytes.TrimSpace(signature), []byte(armoredSignaturePrefix)) {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return nil
}

// Signer produces armored detached signatures.
type Signer struct {
	// entity is the unlocked private key.
	entity *openpgp.Entity
}

// NewSigner builds a signer from a keyring, using the first key with a private part.
// Encrypted keys are unlocked with passphrase.
func NewSigner(keyring openpgp.EntityList, passphrase []byte) (*Signer, error) {
	for _, entity := range keyring {
		if entity.PrivateKey == nil {
			continue
		}

		if entity.PrivateKey.Encrypted {
			if err := entity.DecryptPrivateKeys(passphrase); err != nil {
				return nil, fmt.Errorf("unlock signing key: %w", err)
			}
		}

		return &Signer{entity: entity}, nil
	}

	return nil, errNoPrivateKey
}

// Sign returns an armored detached signature of data.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	var out bytes.Buffer

	if err := openpgp.ArmoredDetachSign(&out, s.entity, bytes.NewReader(data), nil); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	return out.Bytes(), nil
}
