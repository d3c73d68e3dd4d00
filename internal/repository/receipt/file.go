package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Filename is the receipt file name inside the install directory.
const Filename = ".agf-install.yaml"

// receiptFileMode is used when writing the receipt.
const receiptFileMode os.FileMode = 0o644

// Receipt describes the artifact that is currently installed.
type Receipt struct {
	// Version is the installed release version.
	Version string `yaml:"version"`
	// Platform is the platform key the artifact was selected for.
	Platform string `yaml:"platform"`
	// URL is where the archive was downloaded from.
	URL string `yaml:"url"`
	// ArchiveChecksum is the verified SHA-256 of the downloaded archive.
	ArchiveChecksum string `yaml:"archive_sha256"`
	// BinaryChecksum is the SHA-256 of the installed executable.
	BinaryChecksum string `yaml:"binary_sha256"`
	// Path is the installed executable.
	Path string `yaml:"path"`
	// InstalledAt is when the binary was put in place.
	InstalledAt time.Time `yaml:"installed_at"`
}

// Repository defines persistence operations for the install receipt.
type Repository interface {
	Load(ctx context.Context) (*Receipt, error)
	Save(ctx context.Context, receipt *Receipt) error
}

// ErrNotFound is returned when nothing has been installed yet.
var ErrNotFound = errors.New("install receipt not found")

// FileRepository persists the receipt to a YAML file.
type FileRepository struct {
	// fs is the filesystem holding the receipt.
	fs afero.Fs
	// path is the receipt file location.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

var _ Repository = (*FileRepository)(nil)

// NewFileRepository creates a repository for the receipt in installDir.
func NewFileRepository(fs afero.Fs, installDir string) *FileRepository {
	return &FileRepository{
		fs:   fs,
		path: filepath.Join(filepath.Clean(installDir), Filename),
	}
}

// Path returns the receipt location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt: %w", err)
	}

	var receipt Receipt
	if err = yaml.Unmarshal(contents, &receipt); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}

	return &receipt, nil
}

// Save writes the receipt to disk.
func (r *FileRepository) Save(_ context.Context, receipt *Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	// Write next to the receipt and rename so a failed write keeps the previous one.
	tmpPath := r.path + ".tmp"
	if err = afero.WriteFile(r.fs, tmpPath, data, receiptFileMode); err != nil {
		_ = r.fs.Remove(tmpPath)
		return fmt.Errorf("write receipt: %w", err)
	}

	if err = r.fs.Rename(tmpPath, r.path); err != nil {
		_ = r.fs.Remove(tmpPath)
		return fmt.Errorf("replace receipt: %w", err)
	}

	return nil
}
