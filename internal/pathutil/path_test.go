package pathutil

import (
	"testing"

	"github.com/msojda/repository/internal/errs"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "root", input: "/", want: "/"},
		{name: "simple", input: "/a/b", want: "/a/b"},
		{name: "trailing slash trimmed", input: "/a/b/", want: "/a/b"},
		{name: "dot segments removed", input: "/a/./b", want: "/a/b"},
		{name: "dotdot clamped at root", input: "/a/../../b", want: "/b"},
		{name: "double slash collapsed", input: "//", want: "/"},
		{name: "empty", input: "", wantErr: true},
		{name: "relative", input: "a/b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize("test", tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Sanitize(%q) = %q, want error", tt.input, got)
				}
				if !errs.Is(err, errs.InvalidPath) {
					t.Fatalf("Sanitize(%q) error kind = %v, want InvalidPath", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Sanitize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsBasePath(t *testing.T) {
	tests := []struct {
		prefix, path string
		want         bool
	}{
		{"/", "/a", true},
		{"/", "/", true},
		{"/a", "/a", true},
		{"/a", "/a/b", true},
		{"/a", "/ab", false},
		{"/a/b", "/a", false},
	}

	for _, tt := range tests {
		if got := IsBasePath(tt.prefix, tt.path); got != tt.want {
			t.Errorf("IsBasePath(%q, %q) = %v, want %v", tt.prefix, tt.path, got, tt.want)
		}
	}
}

func TestMakeRelative(t *testing.T) {
	tests := []struct {
		path, base, want string
	}{
		{"/a/b/c", "/a", "b/c"},
		{"/a", "/a", ""},
		{"/a/b", "/", "a/b"},
		{"/x/y", "/a", "/x/y"},
	}

	for _, tt := range tests {
		if got := MakeRelative(tt.path, tt.base); got != tt.want {
			t.Errorf("MakeRelative(%q, %q) = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("/base", "x", "y.txt"); got != "/base/x/y.txt" {
		t.Errorf("Join = %q, want /base/x/y.txt", got)
	}
	if got := Join("/base"); got != "/base" {
		t.Errorf("Join = %q, want /base", got)
	}
}

func TestSortByDescendingSpecificity(t *testing.T) {
	keys := []string{"/a", "/a/b/c", "/", "/a/b"}
	SortByDescendingSpecificity(keys)

	want := []string{"/a/b/c", "/a/b", "/a", "/"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("sorted keys = %v, want %v", keys, want)
		}
	}
}
