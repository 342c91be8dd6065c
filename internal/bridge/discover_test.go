package bridge

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/lib.rs", "")
	writeFile(t, dir, "src/ffi/bridge.rs", "")
	writeFile(t, dir, "src/notes.md", "")
	writeFile(t, dir, "target/debug/gen.rs", "")
	writeFile(t, dir, ".git/hooks.rs", "")
	single := writeFile(t, dir, "extra/one.txt", "")

	files, err := Discover([]string{dir, single, filepath.Join(dir, "src", "lib.rs")}, []string{"rs"})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		if err != nil {
			t.Fatal(err)
		}
		rel = append(rel, filepath.ToSlash(r))
	}

	want := []string{"extra/one.txt", "src/ffi/bridge.rs", "src/lib.rs"}
	if diff := cmp.Diff(want, rel); diff != "" {
		t.Errorf("Discover mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := Discover([]string{filepath.Join(t.TempDir(), "nope")}, []string{".rs"}); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}
