//go:build unix

package classify

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"
)

// AccessProbe checks write permission with access(2), which accounts for
// ownership, group membership, ACLs and read-only mounts for the real user.
type AccessProbe struct{}

// Writable reports whether the process may open path for writing.
func (AccessProbe) Writable(path string) (bool, error) {
	err := unix.Access(path, unix.W_OK)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EROFS), errors.Is(err, unix.EPERM), errors.Is(err, unix.ETXTBSY):
		return false, nil
	default:
		return false, &fs.PathError{Op: "access", Path: path, Err: err}
	}
}
