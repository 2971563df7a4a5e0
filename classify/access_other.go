//go:build !unix

package classify

import (
	"os"
)

// AccessProbe falls back to the owner write bit where access(2) is unavailable.
type AccessProbe struct{}

// Writable reports whether the owner write bit of path is set.
func (AccessProbe) Writable(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().Perm()&0o200 != 0, nil
}
