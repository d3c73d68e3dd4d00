package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/oshokin/agf-installer/internal/domain/release"
	"github.com/oshokin/agf-installer/internal/signature"
)

const (
	// defaultProgramName is written into manifests created from scratch.
	defaultProgramName = "agf"
	// manifestFileMode is used when writing manifest files.
	manifestFileMode os.FileMode = 0o644
)

// FileRepository is a Store backed by a YAML manifest file.
// The file is re-read on every call so external edits are picked up.
type FileRepository struct {
	// fs is the filesystem holding the manifest.
	fs afero.Fs
	// path is the manifest location.
	path string
	// verifier, when set, must accept the detached signature at signaturePath.
	verifier *signature.Verifier
	// signaturePath is the armored detached signature of the manifest.
	signaturePath string
	// mu serializes Append against concurrent readers in the same process.
	mu sync.Mutex
}

// Option configures a FileRepository.
type Option func(*FileRepository)

// WithSignature requires the manifest to be signed by a key trusted by verifier.
func WithSignature(verifier *signature.Verifier, signaturePath string) Option {
	return func(r *FileRepository) {
		r.verifier = verifier
		r.signaturePath = filepath.Clean(signaturePath)
	}
}

var _ Store = (*FileRepository)(nil)

// NewFileRepository creates a repository reading the manifest at path.
func NewFileRepository(fs afero.Fs, path string, opts ...Option) *FileRepository {
	r := &FileRepository{
		fs:   fs,
		path: filepath.Clean(path),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Path returns the manifest location.
func (r *FileRepository) Path() string {
	return r.path
}

// Snapshot reads, verifies and parses the manifest.
func (r *FileRepository) Snapshot(_ context.Context) (*MemoryStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	if r.verifier != nil {
		var sig []byte

		sig, err = afero.ReadFile(r.fs, r.signaturePath)
		if err != nil {
			return nil, fmt.Errorf("read manifest signature: %w", err)
		}

		if err = r.verifier.Verify(data, sig); err != nil {
			return nil, err
		}
	}

	return Load(data)
}

// Get returns the record for version.
func (r *FileRepository) Get(ctx context.Context, version string) (*release.Record, error) {
	store, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return store.Get(ctx, version)
}

// List returns every record in ascending version order.
func (r *FileRepository) List(ctx context.Context) ([]*release.Record, error) {
	store, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return store.List(ctx)
}

// Latest returns the newest published record.
func (r *FileRepository) Latest(ctx context.Context) (*release.Record, error) {
	store, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return store.Latest(ctx)
}

// Append adds record to the manifest, creating the file if needed.
// Existing records are never modified; re-publishing a version fails with ErrVersionExists.
// It returns the bytes that were written.
func (r *FileRepository) Append(_ context.Context, record *release.Record) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return nil, err
	}

	existing, err := doc.Records()
	if err != nil {
		return nil, err
	}

	for _, current := range existing {
		if current.Version() == record.Version() {
			return nil, fmt.Errorf("%w: %s", ErrVersionExists, record.Version())
		}
	}

	doc.Releases = append(doc.Releases, EntryFromRecord(record))

	data, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	if err = r.writeAtomically(data); err != nil {
		return nil, err
	}

	return data, nil
}

// readDocument loads the manifest, or an empty document if the file does not exist.
func (r *FileRepository) readDocument() (*Document, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Document{Name: defaultProgramName}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return ParseDocument(data)
}

// writeAtomically writes data next to the manifest and renames it into place.
func (r *FileRepository) writeAtomically(data []byte) error {
	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := afero.WriteFile(r.fs, tmp, data, manifestFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err := r.fs.Rename(tmp, r.path); err != nil {
		_ = r.fs.Remove(tmp)

		return fmt.Errorf("replace manifest: %w", err)
	}

	return nil
}
