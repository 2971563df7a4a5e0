// Package naming derives globally unique, S3-legal bucket names from a base
// name and a role tag.
package naming

import (
	"strings"

	"github.com/google/uuid"

	"github.com/TallDave67/aws-object-lock/internal/validation"
)

// Generator produces bucket names of the form "<base>-<tag>-<token>".
// The zero value is not usable; call New.
type Generator struct {
	token func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithTokenSource replaces the random UUID token source.
// Tests use it to make generated names predictable.
func WithTokenSource(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.token = fn
		}
	}
}

// New creates a Generator drawing a fresh UUIDv4 token for every name.
func New(opts ...Option) *Generator {
	g := &Generator{token: uuid.NewString}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a bucket name for base and tag.
//
// The result is lower-case, contains only letters, digits and hyphens, starts
// and ends with a letter or digit and is at most 63 characters long. When the
// combined name is too long the base/tag prefix is shortened, never the token,
// so every call yields a distinct name.
func (g *Generator) Generate(base, tag string) string {
	token := strings.Trim(normalize(g.token()), "-")
	if len(token) > validation.MaxBucketNameLength {
		token = token[:validation.MaxBucketNameLength]
	}

	prefix := normalize(base + "-" + tag)
	if limit := validation.MaxBucketNameLength - len(token) - 1; len(prefix) > limit {
		if limit < 0 {
			limit = 0
		}
		prefix = prefix[:limit]
	}
	prefix = strings.Trim(prefix, "-")

	if prefix == "" {
		return strings.Trim(token, "-")
	}
	return strings.Trim(prefix+"-"+token, "-")
}

// Generate derives a name with a default Generator.
func Generate(base, tag string) string {
	return New().Generate(base, tag)
}

// normalize lower-cases s and replaces every rune S3 does not allow in a
// generated name with a hyphen. Periods are replaced too.
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r != '.' && validation.IsValidBucketChar(r) {
			return r
		}
		return '-'
	}, strings.ToLower(s))
}
