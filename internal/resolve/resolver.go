// Package resolve implements the two-stage virtual-to-filesystem path
// resolution algorithm: an exact-match lookup in the store, falling back to
// an ancestor walk that lets a mapped prefix implicitly expose its
// descendants.
package resolve

import (
	"os"

	"github.com/msojda/repository/internal/logging"
	"github.com/msojda/repository/internal/pathutil"
	"github.com/msojda/repository/internal/store"
	"github.com/msojda/repository/internal/target"
)

var logger = logging.GetLogger().WithPrefix("resolve")

// maxLinkDepth bounds link-following recursion, per spec.md §9's guidance
// since the source algorithm does not otherwise detect link cycles.
const maxLinkDepth = 32

// Resolver resolves virtual paths against a KeyValueStore and a filesystem
// base directory.
type Resolver struct {
	store      store.KeyValueStore
	baseDir    string
	fileExists func(string) bool
}

// New creates a Resolver over store, resolving FsPath targets relative to
// baseDir.
func New(s store.KeyValueStore, baseDir string) *Resolver {
	return &Resolver{
		store:      s,
		baseDir:    baseDir,
		fileExists: defaultFileExists,
	}
}

func defaultFileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Resolve returns the absolute filesystem paths vpath maps to. A nil entry
// in the result means "known virtual path, no backing file" (an exact
// mapping whose target stack is empty). If onlyFirst is true, at most one
// result is returned, and the resolver stops walking as soon as it has one.
func (r *Resolver) Resolve(vpath string, onlyFirst bool) []*string {
	return r.resolveDepth(vpath, onlyFirst, 0)
}

func (r *Resolver) resolveDepth(vpath string, onlyFirst bool, depth int) []*string {
	if depth > maxLinkDepth {
		logger.Warn("link recursion exceeded %d hops resolving %q", maxLinkDepth, vpath)
		return nil
	}

	if raw, ok := r.store.Get(vpath); ok {
		return r.resolveExactStack(target.DecodeStack(raw), onlyFirst, depth)
	}

	return r.resolveAncestors(vpath, onlyFirst, depth)
}

// ResolveStack resolves an already-decoded target stack directly, without a
// store lookup. ChildEnumerator uses this to resolve a virtual child's own
// stack with the same link-following semantics as Resolve.
func (r *Resolver) ResolveStack(stack []target.Target, onlyFirst bool) []*string {
	return r.resolveExactStack(stack, onlyFirst, 0)
}

func (r *Resolver) resolveExactStack(stack []target.Target, onlyFirst bool, depth int) []*string {
	if len(stack) == 0 {
		var nilPath *string
		return []*string{nilPath}
	}

	results := make([]*string, 0, len(stack))
	for _, t := range stack {
		switch t.Kind {
		case target.KindFsPath:
			fs := pathutil.Join(r.baseDir, t.Path)
			results = append(results, &fs)
		case target.KindLink:
			linked := r.resolveDepth(t.Path, true, depth+1)
			results = append(results, linked...)
		}

		if onlyFirst {
			break
		}
	}

	return results
}

func (r *Resolver) resolveAncestors(vpath string, onlyFirst bool, depth int) []*string {
	keys := r.store.Keys()
	pathutil.SortByDescendingSpecificity(keys)

	var results []*string
	for _, k := range keys {
		if !pathutil.IsBasePath(k, vpath) {
			continue
		}

		suffix := pathutil.MakeRelative(vpath, k)
		raw, _ := r.store.Get(k)
		for _, t := range target.DecodeStack(raw) {
			switch t.Kind {
			case target.KindFsPath:
				candidate := pathutil.Join(r.baseDir, t.Path, suffix)
				if r.fileExists(candidate) {
					results = append(results, &candidate)
					if onlyFirst {
						return results
					}
				}
			case target.KindLink:
				// The ancestor walk appends the link's target verbatim,
				// without joining the suffix or checking existence — this
				// mirrors the source behavior called out in spec.md §9
				// rather than performing a second-hop resolution.
				linkTarget := t.Path
				results = append(results, &linkTarget)
				if onlyFirst {
					return results
				}
			}
		}
	}

	return results
}
