package installer

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
)

// extractBinary returns the contents of the regular file called name from a tar.gz archive.
// The entry may sit at the archive root or inside a top-level directory.
func extractBinary(archive []byte, name string, maxSize int64) ([]byte, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}

	defer func() {
		_ = gzr.Close()
	}()

	tr := tar.NewReader(gzr)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		if path.Base(path.Clean(header.Name)) != name {
			continue
		}

		if header.Size > maxSize {
			return nil, fmt.Errorf("%s: %w (%d > %d bytes)", header.Name, errBinaryTooLarge, header.Size, maxSize)
		}

		data, err := io.ReadAll(io.LimitReader(tr, maxSize+1))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", header.Name, err)
		}

		if int64(len(data)) > maxSize {
			return nil, fmt.Errorf("%s: %w", header.Name, errBinaryTooLarge)
		}

		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrBinaryNotInArchive, name)
}
