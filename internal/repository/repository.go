// Package repository binds the core algorithms (resolve, children, query,
// mutate) into the public facade spec.md §4.7 tabulates: get, find,
// contains, listChildren, hasChildren, add, remove.
package repository

import (
	"github.com/msojda/repository/internal/children"
	"github.com/msojda/repository/internal/errs"
	"github.com/msojda/repository/internal/logging"
	"github.com/msojda/repository/internal/mutate"
	"github.com/msojda/repository/internal/pathutil"
	"github.com/msojda/repository/internal/query"
	"github.com/msojda/repository/internal/resolve"
	"github.com/msojda/repository/internal/resource"
	"github.com/msojda/repository/internal/store"
	"github.com/msojda/repository/internal/target"
)

var logger = logging.GetLogger().WithPrefix("repository")

// Repository is the virtual resource repository: the facade an
// application (or, in this module, the FUSE adapter) addresses by
// logical virtual path while the physical layout is composed from one or
// more source directories and virtual aliases.
//
// A Repository is instance-scoped and owns no background state: every
// public operation runs to completion before another may begin, per
// spec.md §5.
type Repository struct {
	store      store.KeyValueStore
	resolver   *resolve.Resolver
	enumerator *children.Enumerator
	query      *query.Engine
	mutator    *mutate.Mutator
	resources  *resource.Factory
}

// New creates a Repository over s, resolving FsPath targets relative to
// baseDir.
func New(s store.KeyValueStore, baseDir string) *Repository {
	if !s.Exists(pathutil.Root) {
		s.Set(pathutil.Root, nil)
	}

	resolver := resolve.New(s, baseDir)
	enumerator := children.New(s, resolver)
	engine := query.New(resolver, enumerator)
	mutator := mutate.New(s, enumerator, engine)

	return &Repository{
		store:      s,
		resolver:   resolver,
		enumerator: enumerator,
		query:      engine,
		mutator:    mutator,
		resources:  resource.NewFactory(),
	}
}

// Xattrs exposes the repository's xattr store for callers that need to
// attach extended attributes to a resource, e.g. the FUSE adapter.
func (r *Repository) Xattrs() *resource.XattrStore {
	return r.resources.Xattrs()
}

// Get resolves path to its first backing resource.
func (r *Repository) Get(path string) (resource.Resource, error) {
	clean, err := pathutil.Sanitize("get", path)
	if err != nil {
		return resource.Resource{}, err
	}

	results := r.resolver.Resolve(clean, true)
	if len(results) == 0 {
		return resource.Resource{}, errs.New(errs.ResourceNotFound, "get", clean, "no mapping resolves this path")
	}

	return r.resources.Create(results[0], clean), nil
}

// Find evaluates q under lang ("glob" or "literal", defaulting to glob)
// and returns the matching resources.
func (r *Repository) Find(q, lang string) (resource.Collection, error) {
	clean, err := pathutil.Sanitize("find", q)
	if err != nil {
		return nil, err
	}
	l, err := query.ParseLang(lang)
	if err != nil {
		return nil, err
	}

	entries := r.query.Find(clean, l)
	return r.toCollection(entries), nil
}

// Contains reports whether q matches at least one resource.
func (r *Repository) Contains(q, lang string) (bool, error) {
	clean, err := pathutil.Sanitize("contains", q)
	if err != nil {
		return false, err
	}
	l, err := query.ParseLang(lang)
	if err != nil {
		return false, err
	}

	return r.query.Contains(clean, l), nil
}

// ListChildren returns the direct children of path.
func (r *Repository) ListChildren(path string) (resource.Collection, error) {
	clean, err := pathutil.Sanitize("listChildren", path)
	if err != nil {
		return nil, err
	}
	if len(r.resolver.Resolve(clean, true)) == 0 && !r.store.Exists(clean) {
		return nil, errs.New(errs.ResourceNotFound, "listChildren", clean, "path does not resolve")
	}

	entries := r.enumerator.DirectChildren(clean)
	return r.toCollection(entries), nil
}

// HasChildren reports whether path has at least one direct child.
func (r *Repository) HasChildren(path string) (bool, error) {
	clean, err := pathutil.Sanitize("hasChildren", path)
	if err != nil {
		return false, err
	}
	if len(r.resolver.Resolve(clean, true)) == 0 && !r.store.Exists(clean) {
		return false, errs.New(errs.ResourceNotFound, "hasChildren", clean, "path does not resolve")
	}

	return r.enumerator.HasChildren(clean), nil
}

// Add attaches a resource to the repository at path: a filesystem path
// relative to the repository's base directory, or a link to another
// virtual path.
func (r *Repository) Add(path string, t target.Target) error {
	clean, err := pathutil.Sanitize("add", path)
	if err != nil {
		return err
	}

	logger.Info("add %q", clean)
	r.mutator.Add(clean, t)
	return nil
}

// Mkdir anchors path as a present-with-empty-stack key, creating a virtual
// directory with no backing filesystem path and, until something is added
// beneath it, no children. Per spec.md §3, an empty stack anchors the tree
// without exposing base_directory the way a one-element FsPath("") stack
// would through the Resolver's ancestor walk.
func (r *Repository) Mkdir(path string) error {
	clean, err := pathutil.Sanitize("mkdir", path)
	if err != nil {
		return err
	}

	logger.Info("mkdir %q", clean)
	r.mutator.Anchor(clean)
	return nil
}

// Remove deletes every mapping matched by q, rejecting deletions that
// would orphan a non-mapping resource.
func (r *Repository) Remove(q string) (int, error) {
	clean, err := pathutil.Sanitize("remove", q)
	if err != nil {
		return 0, err
	}

	n, err := r.mutator.Remove(clean)
	if err != nil {
		return 0, err
	}

	r.resources.Xattrs().DropPath(clean)
	logger.Info("remove %q deleted %d mapping(s)", clean, n)
	return n, nil
}

// Rename moves every store key at or beneath oldPath to the corresponding
// key beneath newPath, preserving each key's target stack unchanged. Unlike
// Remove, it operates purely on store keys: spec.md defines no rename
// primitive of its own, so this composes directly over the KeyValueStore
// the way the teacher's Dir.Rename moves a subtree of its PathMapper
// entries, generalized from a single source string per path to the spec's
// full target stack. It returns the number of keys moved, or
// ResourceNotFound if oldPath has no mapping at or beneath it.
func (r *Repository) Rename(oldPath, newPath string) (int, error) {
	oldClean, err := pathutil.Sanitize("rename", oldPath)
	if err != nil {
		return 0, err
	}
	newClean, err := pathutil.Sanitize("rename", newPath)
	if err != nil {
		return 0, err
	}

	var toMove []string
	for _, k := range r.store.Keys() {
		if k == oldClean || pathutil.IsBasePath(oldClean, k) {
			toMove = append(toMove, k)
		}
	}
	if len(toMove) == 0 {
		return 0, errs.New(errs.ResourceNotFound, "rename", oldClean, "no mapping found at or under this path")
	}

	moved := 0
	for _, k := range toMove {
		raw, _ := r.store.Get(k)

		newKey := newClean
		if suffix := pathutil.MakeRelative(k, oldClean); suffix != "" {
			newKey = pathutil.Join(newClean, suffix)
		}

		r.store.Set(newKey, raw)
		r.store.Remove(k)
		moved++
	}

	logger.Info("rename %q -> %q moved %d mapping(s)", oldClean, newClean, moved)
	return moved, nil
}

// Orphans reports every descendant of path that resolves to an on-disk
// file or directory but has no mapping of its own — i.e. the resources a
// Remove targeting one of them would be rejected for disturbing, per
// spec.md §4.6 step 3's mapping/inherited partition. This is a read-only
// diagnostic surfacing that same partition outside of a remove attempt.
func (r *Repository) Orphans(path string) (resource.Collection, error) {
	clean, err := pathutil.Sanitize("orphans", path)
	if err != nil {
		return nil, err
	}
	if len(r.resolver.Resolve(clean, true)) == 0 && !r.store.Exists(clean) {
		return nil, errs.New(errs.ResourceNotFound, "orphans", clean, "path does not resolve")
	}

	var orphaned []children.Entry
	for _, entry := range r.enumerator.RecursiveChildren(clean) {
		if entry.FsPath != nil && !r.store.Exists(entry.VirtualPath) {
			orphaned = append(orphaned, entry)
		}
	}
	return r.toCollection(orphaned), nil
}

func (r *Repository) toCollection(entries []children.Entry) resource.Collection {
	out := make(resource.Collection, 0, len(entries))
	for _, e := range entries {
		out = append(out, r.resources.Create(e.FsPath, e.VirtualPath))
	}
	return out
}
