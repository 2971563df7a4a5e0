package classify

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
)

// ModeProbe reads the owner write bit from a billy filesystem. It is used
// with in-memory filesystems, which have no notion of a calling user.
type ModeProbe struct {
	FS billy.Filesystem
}

// Writable reports whether the owner write bit of path is set.
func (p ModeProbe) Writable(path string) (bool, error) {
	info, err := p.FS.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().Perm()&0o200 != 0, nil
}
