//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/snip/internal/errors"
)

// openFileNoFollow opens an export file for writing.
// Windows has no O_NOFOLLOW, and creating symlinks there needs extra privileges.
// ValidatePath has already rejected a symlinked file or parent.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// openFileNoFollowRead opens an import file for reading.
// See openFileNoFollow for the symlink caveat.
func openFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, err
	}
	return f, nil
}
