// Package pathutil provides canonicalization and comparison helpers for the
// POSIX-style absolute virtual path namespace the repository operates on.
package pathutil

import (
	"path"
	"strings"

	"github.com/msojda/repository/internal/errs"
)

// Root is the canonical form of the namespace root.
const Root = "/"

// Sanitize canonicalizes p and fails with errs.InvalidPath if p is empty or
// not absolute. The result has no "." or ".." segments and no trailing
// slash, except for the root itself.
func Sanitize(op, p string) (string, error) {
	if p == "" {
		return "", errs.New(errs.InvalidPath, op, p, "path is empty")
	}
	if !strings.HasPrefix(p, "/") {
		return "", errs.New(errs.InvalidPath, op, p, "path is not absolute")
	}

	clean := path.Clean(p)
	if clean == "." {
		clean = Root
	}

	return clean, nil
}

// IsAbsolute reports whether p begins with a slash.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

// IsRoot reports whether the canonical path p denotes the namespace root.
func IsRoot(p string) bool {
	return p == Root
}

// IsBasePath reports whether prefix is an ancestor of (or equal to) path.
// Both arguments are assumed already canonical.
func IsBasePath(prefix, p string) bool {
	if prefix == p {
		return true
	}
	if prefix == Root {
		return strings.HasPrefix(p, Root)
	}
	return strings.HasPrefix(p, prefix+"/")
}

// MakeRelative strips base (and the separating slash) from the front of p.
// If p does not begin with base, p is returned unchanged.
func MakeRelative(p, base string) string {
	if p == base {
		return ""
	}
	if base == Root {
		return strings.TrimPrefix(p, Root)
	}
	prefix := base + "/"
	if strings.HasPrefix(p, prefix) {
		return strings.TrimPrefix(p, prefix)
	}
	return p
}

// Join concatenates base with the given relative segments using POSIX
// semantics and cleans the result.
func Join(base string, segments ...string) string {
	all := append([]string{base}, segments...)
	return path.Clean(strings.Join(all, "/"))
}

// Parent returns the canonical parent of p, or Root if p is already Root.
func Parent(p string) string {
	if IsRoot(p) {
		return Root
	}
	parent := path.Dir(p)
	if parent == "." {
		return Root
	}
	return parent
}

// Base returns the last segment of p.
func Base(p string) string {
	return path.Base(p)
}

// SortByDescendingSpecificity orders keys by descending string length,
// breaking ties lexicographically. Among the ancestors of one path, the
// longer key is the more deeply nested, so it comes first. This
// is the robust replacement for "reverse store.Keys() order" called out in
// spec.md §9: it does not depend on the underlying store returning keys in
// any particular order.
func SortByDescendingSpecificity(keys []string) {
	sortKeys(keys)
}
