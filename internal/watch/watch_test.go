package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newWatcher(t *testing.T, opts Options) *Watcher {
	t.Helper()
	w, err := New(opts)
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// collect waits until every path in want has been reported.
func collect(t *testing.T, w *Watcher, want ...string) map[string]bool {
	t.Helper()
	seen := make(map[string]bool)
	deadline := time.After(5 * time.Second)
	for {
		missing := false
		for _, p := range want {
			if !seen[p] {
				missing = true
			}
		}
		if !missing {
			return seen
		}

		select {
		case batch := <-w.Changes():
			for _, p := range batch {
				seen[p] = true
			}
		case err := <-w.Errors():
			t.Fatalf("watcher error: %v", err)
		case <-deadline:
			t.Fatalf("timeout waiting for %v, saw %v", want, seen)
		}
	}
}

func TestWatchReportsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "src")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, Options{Extensions: []string{".rs"}, Debounce: 20 * time.Millisecond})
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	top := filepath.Join(dir, "lib.rs")
	nested := filepath.Join(sub, "bridge.rs")
	ignored := filepath.Join(dir, "notes.txt")
	for _, p := range []string{ignored, top, nested} {
		if err := os.WriteFile(p, []byte("mod ffi {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	seen := collect(t, w, top, nested)
	if seen[ignored] {
		t.Error("files without a watched extension should be ignored")
	}
}

func TestWatchFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.rs")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, Options{Extensions: []string{"rs"}, Debounce: 20 * time.Millisecond})
	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("mod ffi {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	collect(t, w, path)
}

func TestAddMissingRoot(t *testing.T) {
	w := newWatcher(t, Options{})
	if err := w.Add(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(Options{})
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close returned %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, Options{Debounce: 20 * time.Millisecond})
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- w.Run(ctx, func(b []string) { batches <- b }, nil)
	}()

	if err := os.WriteFile(filepath.Join(dir, "a.rs"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-batches:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for batch")
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestToOp(t *testing.T) {
	if got := toOp(fsnotify.Create | fsnotify.Write); got != OpCreate|OpWrite {
		t.Errorf("toOp(Create|Write) = %b", got)
	}
	if got := toOp(fsnotify.Rename); got != OpRename {
		t.Errorf("toOp(Rename) = %b", got)
	}
	if got := toOp(fsnotify.Chmod); got != OpChmod {
		t.Errorf("toOp(Chmod) = %b", got)
	}
}
