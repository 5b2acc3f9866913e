package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasFilepathPrefix(t *testing.T) {
	cases := []struct {
		path, prefix string
		want         bool
	}{
		{"/foo/bar", "/foo", true},
		{"/foobar", "/foo", false},
		{"/foo/bar", "/foo/bar", true},
		{"/foo", "/foo/bar", false},
	}
	for _, c := range cases {
		if got := HasFilepathPrefix(c.path, c.prefix); got != c.want {
			t.Errorf("HasFilepathPrefix(%q, %q) = %v, want %v", c.path, c.prefix, got, c.want)
		}
	}
}

func TestWriteFileAtomicAndRename(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "doc.json")

	if err := WriteFileAtomic(target, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("contents = %q, want %q", got, `{"a":1}`)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestReplaceSymlink(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "latest.json")

	if err := os.WriteFile(filepath.Join(dir, "v1.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ReplaceSymlink(link, "v1.json"); err != nil {
		t.Fatalf("ReplaceSymlink (create): %v", err)
	}
	target, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "v1.json" {
		t.Errorf("target = %q, want v1.json", target)
	}

	if err := os.WriteFile(filepath.Join(dir, "v2.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ReplaceSymlink(link, "v2.json"); err != nil {
		t.Fatalf("ReplaceSymlink (retarget): %v", err)
	}
	target, err = os.Readlink(link)
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "v2.json" {
		t.Errorf("target = %q, want v2.json", target)
	}
}
