// Package resource implements the repository's opaque resources: a single
// Resource type whose Kind marks it as a file, directory, link or generic
// resource, and the factory and collection types the core binds against
// (spec.md §6, "out of scope"
// collaborators the repository facade still needs concrete shapes for).
package resource

import (
	"os"
	"sync"
)

// Kind identifies which concrete resource a Resource value carries.
type Kind int

const (
	KindGeneric Kind = iota
	KindFile
	KindDirectory
	KindLink
)

// Resource is the concrete shape the core treats opaquely: a virtual path
// and the filesystem path it resolved to (empty for a link or for a mapping
// with no backing file). Extended attributes are not part of it; they live
// in the Factory's XattrStore, keyed by the repository's own virtual path
// (so xattrs attach to the mapping, not to the underlying inode).
type Resource struct {
	Kind        Kind
	VirtualPath string
	FsPath      string
	LinkTarget  string
}

// Collection is an ordered set of resources, e.g. the result of
// listChildren or find.
type Collection []Resource

// Factory constructs Resources from a resolved filesystem path (or none)
// and a virtual path, per spec.md §6's ResourceFactory contract: a nil fs
// path with no backing file yields a synthetic generic resource.
type Factory struct {
	xattrs *XattrStore
}

// NewFactory creates a Factory backed by an empty xattr store.
func NewFactory() *Factory {
	return &Factory{xattrs: NewXattrStore()}
}

// Xattrs exposes the factory's xattr store so callers (e.g. the
// fuseadapter) can attach extended attributes to a resource's virtual
// path.
func (f *Factory) Xattrs() *XattrStore {
	return f.xattrs
}

// Create builds the concrete resource implied by fsPath's type. fsPath may
// be nil (no backing file) or point to a path that no longer exists on
// disk, in which case a generic resource is produced.
func (f *Factory) Create(fsPath *string, vpath string) Resource {
	if fsPath == nil {
		return Resource{Kind: KindGeneric, VirtualPath: vpath}
	}

	info, err := os.Stat(*fsPath)
	if err != nil {
		return Resource{Kind: KindGeneric, VirtualPath: vpath, FsPath: *fsPath}
	}

	if info.IsDir() {
		return Resource{Kind: KindDirectory, VirtualPath: vpath, FsPath: *fsPath}
	}
	return Resource{Kind: KindFile, VirtualPath: vpath, FsPath: *fsPath}
}

// CreateLink builds a resource representing a Link target that could not
// be resolved further (e.g. a dangling link), carrying the raw virtual
// target string instead of a filesystem path.
func (f *Factory) CreateLink(vpath, linkTarget string) Resource {
	return Resource{Kind: KindLink, VirtualPath: vpath, LinkTarget: linkTarget}
}

// XattrStore holds extended attributes keyed by virtual path, mirroring
// the teacher's PathMapper xattr map but keyed by the stable virtual
// identity rather than the underlying source path (which can change out
// from under a mapping on override or remap).
type XattrStore struct {
	mu    sync.RWMutex
	attrs map[string]map[string][]byte
}

// NewXattrStore creates an empty XattrStore.
func NewXattrStore() *XattrStore {
	return &XattrStore{attrs: make(map[string]map[string][]byte)}
}

// Get returns the named xattr for vpath, if set.
func (x *XattrStore) Get(vpath, name string) ([]byte, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	attrs, ok := x.attrs[vpath]
	if !ok {
		return nil, false
	}
	value, ok := attrs[name]
	return value, ok
}

// Set stores value under name for vpath, copying it so the caller's
// buffer can be reused.
func (x *XattrStore) Set(vpath, name string, value []byte) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.attrs[vpath] == nil {
		x.attrs[vpath] = make(map[string][]byte)
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	x.attrs[vpath][name] = copied
}

// List returns the names of every xattr set on vpath.
func (x *XattrStore) List(vpath string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	attrs, ok := x.attrs[vpath]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	return names
}

// Remove deletes the named xattr from vpath. It reports whether the xattr
// was present.
func (x *XattrStore) Remove(vpath, name string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	attrs, ok := x.attrs[vpath]
	if !ok {
		return false
	}
	if _, ok := attrs[name]; !ok {
		return false
	}
	delete(attrs, name)
	return true
}

// DropPath removes every xattr recorded for vpath, called when a mapping
// is removed so xattrs don't silently reattach to an unrelated resource
// that later reuses the same virtual path.
func (x *XattrStore) DropPath(vpath string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.attrs, vpath)
}
