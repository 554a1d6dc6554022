package core

import (
	"runtime"
	"testing"
)

func TestHashKey_Deterministic(t *testing.T) {
	id := FileIdentity("/home/user/notes/todo.md")

	k1 := HashKey(id)
	k2 := HashKey(id)

	if k1 != k2 {
		t.Fatalf("same identity hashed to different keys: %s vs %s", k1, k2)
	}
	if len(k1) != 64 {
		t.Fatalf("expected fixed 64-char key, got %d chars", len(k1))
	}
}

func TestHashKey_SeparatorNormalization(t *testing.T) {
	a := FileIdentity("/home/user/docs/report.txt")
	b := FileIdentity("/home/user/docs//report.txt")
	c := FileIdentity("/home/user/docs/report.txt/")

	if HashKey(a) != HashKey(b) {
		t.Error("redundant separators changed the key")
	}
	if HashKey(a) != HashKey(c) {
		t.Error("trailing separator changed the key")
	}
}

func TestHashKey_CaseFolding(t *testing.T) {
	a := FileIdentity("/Users/Dev/Foo.txt")
	b := FileIdentity("/users/dev/foo.txt")

	same := HashKey(a) == HashKey(b)
	insensitive := runtime.GOOS == "windows" || runtime.GOOS == "darwin"
	if same != insensitive {
		t.Errorf("casefolding mismatch on %s: keys equal=%v", runtime.GOOS, same)
	}
}

func TestHashKey_SchemesDoNotCollide(t *testing.T) {
	file := FileIdentity("doc-1")
	untitled := UntitledIdentity("doc-1")

	if HashKey(file) == HashKey(untitled) {
		t.Fatal("file and untitled identities with equal paths must not collide")
	}
}

func TestIdentity_UntitledComparedVerbatim(t *testing.T) {
	a := UntitledIdentity("Untitled-1")
	b := UntitledIdentity("untitled-1")

	if a.Equal(b) {
		t.Error("untitled fragments must compare verbatim, not casefolded")
	}
}

func TestIdentity_Kind(t *testing.T) {
	cases := []struct {
		id   Identity
		want Kind
	}{
		{FileIdentity("/tmp/a"), KindFile},
		{UntitledIdentity("Untitled-1"), KindUntitled},
		{Identity{Scheme: "vscode-settings", Path: "settings.json"}, KindVirtual},
	}
	for _, c := range cases {
		if got := c.id.Kind(); got != c.want {
			t.Errorf("Kind(%s) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestParseIdentity_RoundTrip(t *testing.T) {
	orig := Identity{Scheme: "untitled", Path: "Untitled-2"}

	parsed, err := ParseIdentity(orig.String())
	if err != nil {
		t.Fatalf("ParseIdentity failed: %v", err)
	}
	if parsed != orig {
		t.Fatalf("round trip mangled identity: got %+v", parsed)
	}
}

func TestParseIdentity_Malformed(t *testing.T) {
	for _, s := range []string{"", "no-scheme-here", "://path"} {
		if _, err := ParseIdentity(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}
