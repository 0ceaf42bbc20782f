//go:build unix

package winrun

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// execNative replaces the current process image with target. It only
// returns on failure.
func execNative(target string) error {
	path, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	return unix.Exec(path, []string{target}, os.Environ())
}
