// Package query implements QueryEngine: literal and glob evaluation of
// queries against the fused virtual namespace, per spec.md §4.5.
package query

import (
	"github.com/msojda/repository/internal/children"
	"github.com/msojda/repository/internal/errs"
	"github.com/msojda/repository/internal/globutil"
	"github.com/msojda/repository/internal/resolve"
)

// Lang selects how a query string is interpreted.
type Lang int

const (
	LangGlob Lang = iota
	LangLiteral
)

// ParseLang maps a user-facing language name to a Lang, failing with
// errs.UnsupportedLanguage for anything other than "glob" or "literal".
func ParseLang(s string) (Lang, error) {
	switch s {
	case "", "glob":
		return LangGlob, nil
	case "literal":
		return LangLiteral, nil
	default:
		return 0, errs.New(errs.UnsupportedLanguage, "find", s, "query language must be \"glob\" or \"literal\"")
	}
}

// Entry is a single query match: its virtual path and the fs path it
// resolves to, if any.
type Entry = children.Entry

// Engine evaluates queries against the resolver and child enumerator.
type Engine struct {
	resolver   *resolve.Resolver
	enumerator *children.Enumerator
}

// New creates an Engine over resolver and enumerator.
func New(resolver *resolve.Resolver, enumerator *children.Enumerator) *Engine {
	return &Engine{resolver: resolver, enumerator: enumerator}
}

// Find evaluates q under lang and returns the matching entries.
func (e *Engine) Find(q string, lang Lang) []Entry {
	if lang == LangLiteral || !globutil.IsDynamic(q) {
		return e.findLiteral(q)
	}
	return e.findGlob(q)
}

// Contains is Find's boolean short-circuit form: it stops at the first
// match instead of materializing the full collection.
func (e *Engine) Contains(q string, lang Lang) bool {
	if lang == LangLiteral || !globutil.IsDynamic(q) {
		return len(e.findLiteral(q)) > 0
	}

	base := globutil.StaticPrefix(q)
	for _, entry := range e.enumerator.RecursiveChildren(base) {
		if globutil.Match(entry.VirtualPath, q) {
			return true
		}
	}
	return false
}

func (e *Engine) findLiteral(q string) []Entry {
	results := e.resolver.Resolve(q, true)
	if len(results) == 0 {
		return nil
	}
	return []Entry{{VirtualPath: q, FsPath: results[0]}}
}

func (e *Engine) findGlob(q string) []Entry {
	base := globutil.StaticPrefix(q)

	var matches []Entry
	for _, entry := range e.enumerator.RecursiveChildren(base) {
		if globutil.Match(entry.VirtualPath, q) {
			matches = append(matches, entry)
		}
	}
	return matches
}
