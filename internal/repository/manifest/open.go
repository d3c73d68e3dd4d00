package manifest

import (
	"github.com/spf13/afero"

	"github.com/oshokin/agf-installer/internal/config"
	"github.com/oshokin/agf-installer/internal/signature"
)

// Open returns the Store described by cfg: the bundled manifest when no path
// is configured, otherwise a FileRepository, signed when a keyring is set.
//
//nolint:ireturn // Callers only need the Store behaviour.
func Open(fs afero.Fs, cfg *config.Config) (Store, error) {
	if cfg.ManifestPath == "" {
		return NewEmbedded()
	}

	var opts []Option

	if cfg.KeyringPath != "" {
		keyring, err := signature.LoadKeyring(fs, cfg.KeyringPath)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithSignature(signature.NewVerifier(keyring), cfg.ManifestSignaturePath))
	}

	return NewFileRepository(fs, cfg.ManifestPath, opts...), nil
}
