// Package mutate implements Mutator: the add/remove operations that write
// through the target stack, per spec.md §4.6.
package mutate

import (
	"fmt"

	"github.com/msojda/repository/internal/children"
	"github.com/msojda/repository/internal/errs"
	"github.com/msojda/repository/internal/logging"
	"github.com/msojda/repository/internal/pathutil"
	"github.com/msojda/repository/internal/query"
	"github.com/msojda/repository/internal/store"
	"github.com/msojda/repository/internal/target"
)

var logger = logging.GetLogger().WithPrefix("mutate")

// Mutator performs the repository's two write operations against a
// KeyValueStore, guarded by the safety checks spec.md §4.6 requires of
// remove.
type Mutator struct {
	store      store.KeyValueStore
	enumerator *children.Enumerator
	engine     *query.Engine
}

// New creates a Mutator over s, resolving and enumerating queries with
// enumerator and engine.
func New(s store.KeyValueStore, enumerator *children.Enumerator, engine *query.Engine) *Mutator {
	return &Mutator{store: s, enumerator: enumerator, engine: engine}
}

// Add pushes t onto vpath's target stack.
func (m *Mutator) Add(vpath string, t target.Target) {
	logger.Debug("add %q -> %v", vpath, t)
	target.Push(m.store, vpath, t)
}

// Anchor installs vpath as a present-with-empty-stack key if it has no
// mapping yet, the same way New anchors "/" (internal/repository). This is
// the only way to create a directory with no backing filesystem path and
// no children: pushing an FsPath("") target would instead resolve to
// base_directory itself, since a one-element stack is never the "known
// virtual path, no backing file" case resolve.Resolver treats specially.
func (m *Mutator) Anchor(vpath string) {
	if m.store.Exists(vpath) {
		logger.Debug("anchor %q: already mapped", vpath)
		return
	}
	logger.Debug("anchor %q", vpath)
	m.store.Set(vpath, nil)
}

// Remove deletes every mapping matched by query, after verifying none of
// the matches is a merely-inherited or on-disk resource. It returns the
// number of store keys deleted.
func (m *Mutator) Remove(q string) (int, error) {
	trimmed := q
	if trimmed == "" || trimmed == pathutil.Root {
		return 0, errs.New(errs.InvalidPath, "remove", q, "root deletion is forbidden")
	}

	matches := m.engine.Find(q, query.LangGlob)

	var nonMappings []string
	mappingSet := make(map[string]bool)
	for _, entry := range matches {
		if m.store.Exists(entry.VirtualPath) {
			mappingSet[entry.VirtualPath] = true
		} else {
			nonMappings = append(nonMappings, entry.VirtualPath)
		}
	}

	if len(nonMappings) > 0 {
		msg := fmt.Sprintf("query %q matches %d non-mapping resources; remove rejected to avoid orphaning them", q, len(nonMappings))
		if len(nonMappings) == 1 {
			msg = fmt.Sprintf("query %q matches a non-mapping resource %q; remove rejected to avoid orphaning it", q, nonMappings[0])
		}
		return 0, errs.New(errs.UnsupportedOperation, "remove", q, msg)
	}

	removed := 0
	for vpath := range mappingSet {
		for _, descendant := range m.enumerator.RecursiveChildren(vpath) {
			if m.store.Exists(descendant.VirtualPath) {
				if m.store.Remove(descendant.VirtualPath) {
					removed++
				}
			}
		}
		if m.store.Remove(vpath) {
			removed++
		}
	}

	logger.Info("remove %q deleted %d mapping(s)", q, removed)
	return removed, nil
}
