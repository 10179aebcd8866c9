// Package errs defines the repository's error taxonomy.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies which error category a repository operation failed with.
type Kind int

const (
	// InvalidPath means an argument violates the canonical-absolute contract.
	InvalidPath Kind = iota
	// ResourceNotFound means a target virtual path could not be resolved.
	ResourceNotFound
	// UnsupportedLanguage means a query language other than glob or literal was requested.
	UnsupportedLanguage
	// UnsupportedResource means add received a resource that is neither a filesystem nor a link resource.
	UnsupportedResource
	// UnsupportedOperation means remove matched one or more non-mapping resources.
	UnsupportedOperation
)

func (k Kind) String() string {
	switch k {
	case InvalidPath:
		return "InvalidPath"
	case ResourceNotFound:
		return "ResourceNotFound"
	case UnsupportedLanguage:
		return "UnsupportedLanguage"
	case UnsupportedResource:
		return "UnsupportedResource"
	case UnsupportedOperation:
		return "UnsupportedOperation"
	default:
		return "Unknown"
	}
}

// Error wraps a repository failure with the operation and path that caused it.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an *Error of the given kind.
func New(kind Kind, op, path string, msg string) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: errors.New(msg)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
