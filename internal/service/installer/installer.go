package installer

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/mitchellh/go-homedir"

	"github.com/oshokin/agf-installer/internal/config"
	"github.com/oshokin/agf-installer/internal/domain/release"
	"github.com/oshokin/agf-installer/internal/logger"
	"github.com/oshokin/agf-installer/internal/repository/manifest"
	"github.com/oshokin/agf-installer/internal/repository/receipt"
)

// Fetcher downloads an artifact.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Installer wires the manifest store, fetcher and receipt repository together.
type Installer struct {
	// store resolves versions to release records.
	store manifest.Store
	// fetcher downloads archives.
	fetcher Fetcher
	// receipts records successful installs. Nil disables receipts.
	receipts receipt.Repository
	// installDir is where the binary is placed.
	installDir string
	// binaryName is the executable name inside the archive and in installDir.
	binaryName string
	// maxBinarySize caps the extracted binary.
	maxBinarySize int64
	// smokeTest runs "<binary> --help" after applying.
	smokeTest bool
	// stopRunning kills running instances before applying.
	stopRunning bool
	// now is the clock used for receipts.
	now func() time.Time
}

// Option configures an Installer.
type Option func(*Installer)

// WithInstallDir sets the target directory.
func WithInstallDir(dir string) Option {
	return func(i *Installer) {
		if dir != "" {
			i.installDir = filepath.Clean(dir)
		}
	}
}

// WithBinaryName sets the executable name.
func WithBinaryName(name string) Option {
	return func(i *Installer) {
		if name != "" {
			i.binaryName = name
		}
	}
}

// WithMaxBinarySize caps the extracted binary size.
func WithMaxBinarySize(size int64) Option {
	return func(i *Installer) {
		if size > 0 {
			i.maxBinarySize = size
		}
	}
}

// WithReceipts enables receipt persistence.
func WithReceipts(repository receipt.Repository) Option {
	return func(i *Installer) {
		i.receipts = repository
	}
}

// WithSmokeTest toggles the post-install "--help" check.
func WithSmokeTest(enabled bool) Option {
	return func(i *Installer) {
		i.smokeTest = enabled
	}
}

// WithStopRunning toggles killing running instances before applying.
func WithStopRunning(enabled bool) Option {
	return func(i *Installer) {
		i.stopRunning = enabled
	}
}

// New creates an installer with config defaults.
func New(store manifest.Store, fetcher Fetcher, opts ...Option) *Installer {
	i := &Installer{
		store:         store,
		fetcher:       fetcher,
		installDir:    defaultInstallDir(),
		binaryName:    config.DefaultBinaryName,
		maxBinarySize: config.DefaultMaxArtifactSize,
		smokeTest:     true,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// defaultInstallDir expands the configured default, keeping it verbatim when no home directory is known.
func defaultInstallDir() string {
	dir, err := homedir.Expand(config.DefaultInstallDir)
	if err != nil {
		return config.DefaultInstallDir
	}

	return filepath.Clean(dir)
}

// Result describes a completed install.
type Result struct {
	// Record is the installed release.
	Record *release.Record
	// Platform is the platform the artifact was selected for.
	Platform release.PlatformKey
	// Artifact is the verified archive reference.
	Artifact release.ArtifactRef
	// Path is the installed executable.
	Path string
	// BinaryChecksum is the SHA-256 of the installed executable.
	BinaryChecksum release.Checksum
	// Changed is false when the same binary was already in place.
	Changed bool
}

// Store returns the manifest store the installer resolves against.
func (i *Installer) Store() manifest.Store {
	return i.store
}

// TargetPath returns where the binary is installed.
func (i *Installer) TargetPath() string {
	return filepath.Join(i.installDir, i.binaryName)
}

// Resolve looks up version and selects the artifact for platform.
func (i *Installer) Resolve(
	ctx context.Context,
	version string,
	platform release.PlatformKey,
) (*release.Record, release.ArtifactRef, error) {
	record, err := i.store.Get(ctx, version)
	if err != nil {
		return nil, release.ArtifactRef{}, err
	}

	ref, err := release.Select(record, platform)
	if err != nil {
		return nil, release.ArtifactRef{}, err
	}

	return record, ref, nil
}

// CheckArchive verifies a local archive against the manifest entry for version and platform.
func (i *Installer) CheckArchive(
	ctx context.Context,
	data []byte,
	version string,
	platform release.PlatformKey,
) (release.ArtifactRef, error) {
	record, ref, err := i.Resolve(ctx, version, platform)
	if err != nil {
		return ref, err
	}

	if err = release.Verify(data, ref.Checksum); err != nil {
		return ref, fmt.Errorf("version %s, platform %s: %w", record.Version(), platform, err)
	}

	return ref, nil
}

// Install runs resolve, select, fetch, verify, extract and apply for version on platform.
// Nothing is written to the install directory unless the archive verified.
func (i *Installer) Install(ctx context.Context, version string, platform release.PlatformKey) (*Result, error) {
	ctx = logger.WithKV(ctx, "platform", platform.String())

	record, ref, err := i.Resolve(ctx, version, platform)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "version", record.Version())

	if !ref.HasChecksum() {
		return nil, fmt.Errorf("version %s, platform %s: %w", record.Version(), platform, release.ErrMissingChecksum)
	}

	logger.InfoKV(ctx, "Downloading release archive", "url", ref.URL)

	archive, err := i.fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Verifying the archive checksum")

	if err = release.Verify(archive, ref.Checksum); err != nil {
		return nil, fmt.Errorf("%s: %w", ref.URL, err)
	}

	binary, err := extractBinary(archive, i.binaryName, i.maxBinarySize)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Record:         record,
		Platform:       platform,
		Artifact:       ref,
		Path:           i.TargetPath(),
		BinaryChecksum: release.Sum(binary),
	}

	result.Changed, err = i.apply(ctx, binary, result)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Installed", "path", result.Path, "changed", result.Changed)

	return result, nil
}

// Receipt returns the last successful install, or receipt.ErrNotFound.
func (i *Installer) Receipt(ctx context.Context) (*receipt.Receipt, error) {
	if i.receipts == nil {
		return nil, receipt.ErrNotFound
	}

	return i.receipts.Load(ctx)
}

// apply puts binary in place atomically and records the receipt.
// It returns false when the target already holds the same bytes.
// Any failure after the binary is swapped in puts the previous one back.
func (i *Installer) apply(ctx context.Context, binary []byte, result *Result) (bool, error) {
	target := i.TargetPath()

	if err := os.MkdirAll(i.installDir, installDirMode); err != nil {
		return false, fmt.Errorf("create install dir: %w", err)
	}

	unlock, err := i.lock(ctx)
	if err != nil {
		return false, err
	}

	defer unlock()

	current, err := os.ReadFile(target)
	switch {
	case err == nil && release.Sum(current).Equal(result.BinaryChecksum):
		logger.Info(ctx, "The installed binary is already up to date")
		return false, i.saveReceipt(ctx, result)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("read installed binary: %w", err)
	}

	existed := err == nil

	if err = i.handleRunningInstances(ctx); err != nil {
		return false, fmt.Errorf("stop running instances: %w", err)
	}

	// go-update moves the current target aside before renaming the new file in.
	if !existed {
		if err = os.WriteFile(target, nil, DefaultFileMode); err != nil {
			return false, fmt.Errorf("create target: %w", err)
		}
	}

	oldPath := target + oldSuffix
	options := goupdate.Options{
		TargetPath:  target,
		TargetMode:  DefaultFileMode,
		Checksum:    result.BinaryChecksum.Bytes(),
		Hash:        crypto.SHA256,
		OldSavePath: oldPath,
	}

	logger.Debug(ctx, "Applying update")

	if err = goupdate.Apply(bytes.NewReader(binary), options); err != nil {
		if !existed {
			_ = os.Remove(target)
			_ = os.Remove(oldPath)
		}

		return false, fmt.Errorf("apply binary: %w", err)
	}

	if i.smokeTest {
		if err = runSmokeTest(ctx, target, i.binaryName); err != nil {
			rollback(ctx, target, oldPath, existed)
			return false, err
		}
	}

	if err = i.saveReceipt(ctx, result); err != nil {
		rollback(ctx, target, oldPath, existed)
		return false, err
	}

	_ = os.Remove(oldPath)

	return true, nil
}

// rollback restores the previous binary and logs when that fails too.
func rollback(ctx context.Context, target, oldPath string, existed bool) {
	if err := restore(target, oldPath, existed); err != nil {
		logger.ErrorKV(ctx, "Could not restore the previous binary", "error", err)
	}
}

// restore undoes a committed apply.
func restore(target, oldPath string, existed bool) error {
	if existed {
		return os.Rename(oldPath, target)
	}

	_ = os.Remove(oldPath)

	return os.Remove(target)
}

// runSmokeTest runs "<binary> --help" and expects the output to mention name.
func runSmokeTest(ctx context.Context, path, name string) error {
	cmdCtx, cancel := context.WithTimeout(ctx, smokeTestTimeout)
	defer cancel()

	output, err := exec.CommandContext(cmdCtx, path, helpFlag).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrSmokeTest, path, helpFlag, err)
	}

	if !strings.Contains(string(output), name) {
		return fmt.Errorf("%w: %s %s output does not mention %q", ErrSmokeTest, path, helpFlag, name)
	}

	return nil
}

// saveReceipt records the install when receipts are enabled.
func (i *Installer) saveReceipt(ctx context.Context, result *Result) error {
	if i.receipts == nil {
		return nil
	}

	entry := &receipt.Receipt{
		Version:         result.Record.Version(),
		Platform:        result.Platform.String(),
		URL:             result.Artifact.URL,
		ArchiveChecksum: result.Artifact.Checksum.String(),
		BinaryChecksum:  result.BinaryChecksum.String(),
		Path:            result.Path,
		InstalledAt:     i.now().UTC(),
	}

	if err := i.receipts.Save(ctx, entry); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}

	return nil
}
