package fs

import (
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/zerr"
)

// DeleteRecursively removes path and everything below it. A missing path is
// not an error.
func DeleteRecursively(path string) error {
	if err := os.RemoveAll(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to delete directory"), "path", path)
	}
	return nil
}
