package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/agf-installer/internal/logger"
)

// lock claims the install directory for this process and returns the release func.
// A lock older than lockLifetime is treated as left over from a crashed install.
func (i *Installer) lock(ctx context.Context) (func(), error) {
	path := filepath.Join(i.installDir, LockFilename)

	for attempt := 0; attempt < 2; attempt++ {
		marker, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, lockFileMode)
		if err == nil {
			_, _ = fmt.Fprintf(marker, "%d\n", os.Getpid())

			if err = marker.Close(); err != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write install lock: %w", err)
			}

			return func() {
				_ = os.Remove(path)
			}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create install lock: %w", err)
		}

		info, statErr := os.Stat(path)
		if statErr == nil && time.Since(info.ModTime()) <= lockLifetime {
			return nil, fmt.Errorf("%w: %s", ErrInstallInProgress, path)
		}

		logger.WarnKV(ctx, "Removing stale install lock", "path", path)

		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale install lock: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrInstallInProgress, path)
}
