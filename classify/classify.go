// Package classify assigns files to the governance or compliance role.
//
// The rule is a heuristic: a file the running process may write is assumed
// to still need changes and goes to the governance bucket; anything else is
// treated as final and goes to the compliance bucket. The same file can be
// classified differently on another host or under another user.
package classify

import (
	"github.com/TallDave67/aws-object-lock/locktypes"
)

// Probe reports whether the running process may write to path.
type Probe interface {
	Writable(path string) (bool, error)
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(path string) (bool, error)

// Writable calls f(path).
func (f ProbeFunc) Writable(path string) (bool, error) {
	return f(path)
}

// Classifier maps a file to a role using a Probe.
type Classifier struct {
	probe Probe
}

// New creates a Classifier backed by probe.
func New(probe Probe) *Classifier {
	return &Classifier{probe: probe}
}

// NewAccessClassifier creates a Classifier that asks the operating system.
func NewAccessClassifier() *Classifier {
	return New(AccessProbe{})
}

// Classify returns RoleGovernance for writable files and RoleCompliance otherwise.
// Callers pass regular files only.
func (c *Classifier) Classify(path string) (locktypes.Role, error) {
	writable, err := c.probe.Writable(path)
	if err != nil {
		return "", err
	}
	if writable {
		return locktypes.RoleGovernance, nil
	}
	return locktypes.RoleCompliance, nil
}
