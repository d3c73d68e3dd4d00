package installer

import (
	"errors"
	"os"
	"time"
)

const (
	// DefaultFileMode is the mode of the installed executable.
	DefaultFileMode os.FileMode = 0o755

	// installDirMode is used when the install directory has to be created.
	installDirMode os.FileMode = 0o755

	// oldSuffix names the previous binary kept until the smoke test passes.
	oldSuffix = ".old"

	// helpFlag is passed to the installed binary by the smoke test.
	helpFlag = "--help"

	// smokeTestTimeout bounds the smoke test run.
	smokeTestTimeout = 10 * time.Second

	// LockFilename marks an install in progress inside the install directory.
	LockFilename = ".agf-install.lock"

	// lockLifetime is the age after which a lock left by a crashed install is ignored.
	lockLifetime = 2 * time.Minute

	// lockFileMode is used when creating the lock file.
	lockFileMode os.FileMode = 0o644
)

var (
	// ErrBinaryNotInArchive is returned when the archive has no entry named like the binary.
	ErrBinaryNotInArchive = errors.New("binary not found in archive")
	// ErrInstallInProgress is returned when another install holds the lock on the install directory.
	ErrInstallInProgress = errors.New("another install is in progress")
	// ErrSmokeTest is returned when the installed binary fails "--help".
	ErrSmokeTest = errors.New("smoke test failed")
	// errBinaryTooLarge is returned when the extracted binary exceeds the size cap.
	errBinaryTooLarge = errors.New("binary exceeds size limit")
)
