// Package children implements direct and recursive child enumeration,
// fusing on-disk directory listings under resolved filesystem paths with
// descendant entries of the virtual path store.
package children

import (
	"os"
	"sort"

	"github.com/msojda/repository/internal/logging"
	"github.com/msojda/repository/internal/pathutil"
	"github.com/msojda/repository/internal/resolve"
	"github.com/msojda/repository/internal/store"
	"github.com/msojda/repository/internal/target"
)

var logger = logging.GetLogger().WithPrefix("children")

// Entry is a single enumerated child: its virtual path and the absolute
// filesystem path it resolves to (nil if it has no backing file).
type Entry struct {
	VirtualPath string
	FsPath      *string
}

// Enumerator fuses on-disk listings with virtual mappings under a resolved
// directory.
type Enumerator struct {
	store    store.KeyValueStore
	resolver *resolve.Resolver
}

// New creates an Enumerator backed by s and resolving through resolver.
func New(s store.KeyValueStore, resolver *resolve.Resolver) *Enumerator {
	return &Enumerator{store: s, resolver: resolver}
}

// DirectChildren returns the immediate children of vpath, deterministically
// sorted by virtual path. Virtual children shadow on-disk entries with the
// same virtual path, per spec.md §4.4.
func (e *Enumerator) DirectChildren(vpath string) []Entry {
	merged := make(map[string]*string)

	for fsPath, resolved := range e.onDiskChildren(vpath, false) {
		merged[fsPath] = resolved
	}
	for vp, resolved := range e.virtualChildren(vpath, false) {
		merged[vp] = resolved
	}

	return sortedEntries(merged)
}

// RecursiveChildren returns every descendant of vpath, fused the same way
// as DirectChildren, additionally expanding virtual children that are
// themselves backed by an on-disk directory.
func (e *Enumerator) RecursiveChildren(vpath string) []Entry {
	merged := make(map[string]*string)
	e.collectRecursive(vpath, merged)
	return sortedEntries(merged)
}

func (e *Enumerator) collectRecursive(vpath string, merged map[string]*string) {
	for fsPath, resolved := range e.onDiskChildren(vpath, true) {
		merged[fsPath] = resolved
	}
	for vp, resolved := range e.virtualChildren(vpath, true) {
		merged[vp] = resolved
		if resolved != nil && isDir(*resolved) {
			e.collectRecursive(vp, merged)
		}
	}
}

// HasChildren reports whether vpath has at least one direct child: an
// on-disk entry under a resolved directory, or a store key one level below
// vpath. Deeper store keys with no key or on-disk entry in between are not
// counted.
func (e *Enumerator) HasChildren(vpath string) bool {
	for range e.onDiskChildren(vpath, false) {
		return true
	}
	for range e.virtualChildren(vpath, false) {
		return true
	}
	return false
}

// onDiskChildren lists entries on disk under every filesystem path vpath
// resolves to. When recursive is true, nested directories are walked fully.
func (e *Enumerator) onDiskChildren(vpath string, recursive bool) map[string]*string {
	out := make(map[string]*string)

	for _, resolved := range e.resolver.Resolve(vpath, false) {
		if resolved == nil {
			continue
		}
		e.listDir(vpath, *resolved, recursive, out)
	}

	return out
}

func (e *Enumerator) listDir(vpath, fsDir string, recursive bool, out map[string]*string) {
	entries, err := os.ReadDir(fsDir)
	if err != nil {
		logger.Trace("not a listable directory %q: %v", fsDir, err)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		childFs := pathutil.Join(fsDir, name)
		childV := vpath + "/" + name
		out[childV] = &childFs

		if recursive && isDir(childFs) {
			e.listDir(childV, childFs, recursive, out)
		}
	}
}

// virtualChildren returns store keys that are descendants of vpath. When
// recursive is false only immediate children (no further "/") are included.
func (e *Enumerator) virtualChildren(vpath string, recursive bool) map[string]*string {
	out := make(map[string]*string)

	for _, key := range e.store.Keys() {
		if key == vpath || !pathutil.IsBasePath(vpath, key) {
			continue
		}

		rel := pathutil.MakeRelative(key, vpath)
		if !recursive && containsSlash(rel) {
			continue
		}

		raw, _ := e.store.Get(key)
		out[key] = firstFsPath(raw, e.resolver)
	}

	return out
}

func firstFsPath(raw []string, resolver *resolve.Resolver) *string {
	stack := target.DecodeStack(raw)
	if len(stack) == 0 {
		return nil
	}
	// Reuse the resolver's exact-hit semantics so link targets and relative
	// fs paths resolve consistently with Resolve itself.
	results := resolver.ResolveStack(stack, true)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

func containsSlash(s string) bool {
	for _, r := range s {
		if r == '/' {
			return true
		}
	}
	return false
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func sortedEntries(merged map[string]*string) []Entry {
	out := make([]Entry, 0, len(merged))
	for vp, fs := range merged {
		out = append(out, Entry{VirtualPath: vp, FsPath: fs})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].VirtualPath < out[j].VirtualPath
	})
	return out
}
