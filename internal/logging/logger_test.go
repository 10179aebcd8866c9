package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("vrepo", &buf)
	l.SetLevel(LevelWarn)

	l.Debug("should not appear")
	l.Info("should not appear either")
	l.Warn("a warning")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("log output leaked below the configured level: %q", out)
	}
	if !strings.Contains(out, "a warning") {
		t.Fatalf("log output missing expected line: %q", out)
	}
	if !strings.Contains(out, "[WARN]") {
		t.Fatalf("log output missing level tag: %q", out)
	}
}

func TestWithPrefixComposesDottedPath(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger("vrepo", &buf)
	child := root.WithPrefix("resolve")
	grandchild := child.WithPrefix("ancestor")

	grandchild.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "vrepo.resolve.ancestor:") {
		t.Fatalf("expected dotted prefix in output, got %q", out)
	}
}

func TestWithPrefixInheritsLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger("vrepo", &buf)
	root.SetLevel(LevelTrace)

	child := root.WithPrefix("children")
	child.Trace("deep detail")

	if !strings.Contains(buf.String(), "deep detail") {
		t.Fatal("child logger created after SetLevel should inherit the parent's level")
	}
}

func TestWithPrefixLevelChangeDoesNotAffectParent(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger("vrepo", &buf)
	child := root.WithPrefix("store")

	child.SetLevel(LevelError)
	root.Info("root still logs at info")

	if !strings.Contains(buf.String(), "root still logs at info") {
		t.Fatal("changing a child logger's level must not affect its parent")
	}
}
