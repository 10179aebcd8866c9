package children

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/msojda/repository/internal/resolve"
	"github.com/msojda/repository/internal/store"
	"github.com/msojda/repository/internal/target"
)

func writeFile(t *testing.T, base, rel string) {
	t.Helper()
	full := filepath.Join(base, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func setup(t *testing.T) (*store.MemStore, string) {
	t.Helper()
	return store.NewMemStore(), t.TempDir()
}

func TestDirectChildrenFromDisk(t *testing.T) {
	s, base := setup(t)
	writeFile(t, base, "css/main.css")
	writeFile(t, base, "css/theme.css")

	s.Set("/app/css", target.EncodeStack([]target.Target{target.FsPath("css")}))

	e := New(s, resolve.New(s, base))
	got := e.DirectChildren("/app/css")

	if len(got) != 2 {
		t.Fatalf("DirectChildren = %v, want 2 entries", got)
	}
	if got[0].VirtualPath != "/app/css/main.css" || got[1].VirtualPath != "/app/css/theme.css" {
		t.Fatalf("DirectChildren not sorted lexicographically: %v", got)
	}
}

func TestDirectChildrenVirtualOverridesOnDisk(t *testing.T) {
	s, base := setup(t)
	writeFile(t, base, "fs/app/config/a.yml")

	s.Set("/app", target.EncodeStack([]target.Target{target.FsPath("fs/app")}))
	s.Set("/app/config", target.EncodeStack([]target.Target{target.FsPath("fs/override")}))

	e := New(s, resolve.New(s, base))
	got := e.DirectChildren("/app")

	if len(got) != 1 || got[0].VirtualPath != "/app/config" {
		t.Fatalf("DirectChildren(/app) = %v", got)
	}
	if got[0].FsPath == nil || *got[0].FsPath != filepath.Join(base, "fs/override") {
		t.Fatalf("/app/config resolved to %v, want the virtual mapping's path", got[0].FsPath)
	}
}

func TestRecursiveChildrenCSSGlobScenario(t *testing.T) {
	s, base := setup(t)
	writeFile(t, base, "fs/css/main.css")
	writeFile(t, base, "fs/css/sub/theme.css")
	writeFile(t, base, "fs/css/sub/notes.txt")

	s.Set("/app", target.EncodeStack([]target.Target{target.FsPath("fs/css")}))

	e := New(s, resolve.New(s, base))
	got := e.RecursiveChildren("/app")

	wantPaths := map[string]bool{
		"/app/main.css":       true,
		"/app/sub":            true,
		"/app/sub/theme.css":  true,
		"/app/sub/notes.txt":  true,
	}
	if len(got) != len(wantPaths) {
		t.Fatalf("RecursiveChildren returned %d entries, want %d: %v", len(got), len(wantPaths), got)
	}
	for _, entry := range got {
		if !wantPaths[entry.VirtualPath] {
			t.Errorf("unexpected entry %q", entry.VirtualPath)
		}
	}
}

func TestRecursiveChildrenOverride(t *testing.T) {
	s, base := setup(t)
	writeFile(t, base, "fs/app/config/a.yml")
	writeFile(t, base, "fs/override/a.yml")

	s.Set("/app", target.EncodeStack([]target.Target{target.FsPath("fs/app")}))
	s.Set("/app/config", target.EncodeStack([]target.Target{target.FsPath("fs/override")}))

	e := New(s, resolve.New(s, base))
	got := e.RecursiveChildren("/app")

	for _, entry := range got {
		if entry.VirtualPath == "/app/config/a.yml" {
			if entry.FsPath == nil || *entry.FsPath != filepath.Join(base, "fs/override/a.yml") {
				t.Fatalf("/app/config/a.yml resolved to %v, want override path", entry.FsPath)
			}
		}
	}
}

func TestHasChildren(t *testing.T) {
	s, base := setup(t)
	e := New(s, resolve.New(s, base))

	if e.HasChildren("/app") {
		t.Fatal("empty repository should report no children")
	}

	s.Set("/app/css", target.EncodeStack([]target.Target{target.FsPath("css")}))
	if !e.HasChildren("/app") {
		t.Fatal("expected /app to have a child after mapping /app/css")
	}
}
