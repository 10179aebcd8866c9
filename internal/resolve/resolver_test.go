package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/msojda/repository/internal/store"
	"github.com/msojda/repository/internal/target"
)

func writeFile(t *testing.T, base string, rel string) {
	t.Helper()
	full := filepath.Join(base, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestResolveExactFsPath(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "css/main.css")

	s := store.NewMemStore()
	s.Set("/app/css", target.EncodeStack([]target.Target{target.FsPath("css")}))

	r := New(s, base)
	got := r.Resolve("/app/css", true)
	if len(got) != 1 || got[0] == nil {
		t.Fatalf("Resolve(/app/css) = %v", got)
	}
	want := filepath.Join(base, "css")
	if *got[0] != want {
		t.Fatalf("Resolve(/app/css) = %q, want %q", *got[0], want)
	}
}

func TestResolveExactEmptyStackYieldsNil(t *testing.T) {
	s := store.NewMemStore()
	s.Set("/virtual-dir", nil)

	r := New(s, t.TempDir())
	got := r.Resolve("/virtual-dir", false)
	if len(got) != 1 || got[0] != nil {
		t.Fatalf("Resolve(/virtual-dir) = %v, want [nil]", got)
	}
}

func TestResolveInheritance(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "disk/d/x/y.txt")

	s := store.NewMemStore()
	s.Set("/a", target.EncodeStack([]target.Target{target.FsPath("disk/d")}))

	r := New(s, base)
	got := r.Resolve("/a/x/y.txt", true)
	if len(got) != 1 || got[0] == nil {
		t.Fatalf("Resolve(/a/x/y.txt) = %v", got)
	}
	want := filepath.Join(base, "disk/d/x/y.txt")
	if *got[0] != want {
		t.Fatalf("Resolve(/a/x/y.txt) = %q, want %q", *got[0], want)
	}
}

func TestResolveOverrideShadowsAncestor(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "fs/app/config/a.yml")
	writeFile(t, base, "fs/override/a.yml")

	s := store.NewMemStore()
	s.Set("/app", target.EncodeStack([]target.Target{target.FsPath("fs/app")}))
	s.Set("/app/config", target.EncodeStack([]target.Target{target.FsPath("fs/override")}))

	r := New(s, base)
	got := r.Resolve("/app/config/a.yml", true)
	if len(got) != 1 || got[0] == nil {
		t.Fatalf("Resolve(/app/config/a.yml) = %v", got)
	}
	want := filepath.Join(base, "fs/override/a.yml")
	if *got[0] != want {
		t.Fatalf("Resolve(/app/config/a.yml) = %q, want %q", *got[0], want)
	}
}

func TestResolveLink(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "css/main.css")

	s := store.NewMemStore()
	s.Set("/app/css", target.EncodeStack([]target.Target{target.FsPath("css")}))
	s.Set("/link/x", target.EncodeStack([]target.Target{target.Link("/app/css")}))

	r := New(s, base)
	got := r.Resolve("/link/x", true)
	if len(got) != 1 || got[0] == nil {
		t.Fatalf("Resolve(/link/x) = %v", got)
	}
	want := filepath.Join(base, "css")
	if *got[0] != want {
		t.Fatalf("Resolve(/link/x) = %q, want %q", *got[0], want)
	}
}

func TestResolveUnmappedReturnsEmpty(t *testing.T) {
	s := store.NewMemStore()
	r := New(s, t.TempDir())

	got := r.Resolve("/nothing/here", false)
	if len(got) != 0 {
		t.Fatalf("Resolve(/nothing/here) = %v, want empty", got)
	}
}

func TestResolveAncestorOnlyExistingFiles(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "disk/exists.txt")

	s := store.NewMemStore()
	s.Set("/a", target.EncodeStack([]target.Target{target.FsPath("disk")}))

	r := New(s, base)

	got := r.Resolve("/a/exists.txt", false)
	if len(got) != 1 {
		t.Fatalf("Resolve(/a/exists.txt) = %v, want one match", got)
	}

	got = r.Resolve("/a/missing.txt", false)
	if len(got) != 0 {
		t.Fatalf("Resolve(/a/missing.txt) = %v, want no match (file does not exist on disk)", got)
	}
}
