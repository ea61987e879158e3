package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(delay time.Duration, files ...string) *Watcher {
	config := DefaultConfig()
	config.DebounceDelay = delay
	w := newWatcher(nil, config)
	for _, f := range files {
		w.files[f] = true
	}
	return w
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpCreate | OpWrite, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
	if !(OpCreate | OpWrite).Has(OpWrite) || OpCreate.Has(OpWrite) {
		t.Error("Has mismatch")
	}
}

func TestWatcher_Coalesces(t *testing.T) {
	w := newTestWatcher(time.Hour, "/docs/a.md")
	defer w.Close()

	now := time.Now()
	w.handle("/docs/a.md", OpWrite, now)
	w.handle("/docs/a.md", OpRename, now.Add(time.Millisecond))
	w.handle("/docs/other.md", OpWrite, now)
	w.handle("/docs/a.md", 0, now)

	if got := w.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}

	w.Flush()

	select {
	case ev := <-w.Events():
		if ev.Path != "/docs/a.md" || ev.Op != OpWrite|OpRename {
			t.Errorf("unexpected event %+v", ev)
		}
		if !ev.Timestamp.Equal(now.Add(time.Millisecond)) {
			t.Errorf("Timestamp = %v, want last operation time", ev.Timestamp)
		}
	default:
		t.Fatal("expected a flushed event")
	}

	if w.PendingCount() != 0 {
		t.Error("expected no pending events after Flush")
	}
}

func TestWatcher_DebounceFires(t *testing.T) {
	w := newTestWatcher(10*time.Millisecond, "/docs/a.md")
	defer w.Close()

	w.handle("/docs/a.md", OpWrite, time.Now())

	select {
	case ev := <-w.Events():
		if ev.Op != OpWrite {
			t.Errorf("Op = %v", ev.Op)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced event")
	}
}

func TestWatcher_CloseDiscardsPending(t *testing.T) {
	w := newTestWatcher(time.Hour, "/docs/a.md")
	w.handle("/docs/a.md", OpWrite, time.Now())

	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("expected closed events channel")
	}
	if err := w.Watch("/docs/a.md"); err != ErrWatcherClosed {
		t.Errorf("Watch after Close = %v, want ErrWatcherClosed", err)
	}
}

func TestWatcher_WatchUnwatch(t *testing.T) {
	w, err := New(WithDebounceDelay(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("# x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := w.Watch(a); err != ErrAlreadyWatching {
		t.Errorf("Watch again = %v, want ErrAlreadyWatching", err)
	}
	if err := w.Watch(filepath.Join(dir, "missing.md")); err != ErrPathNotExist {
		t.Errorf("Watch missing = %v, want ErrPathNotExist", err)
	}
	if got := w.WatchedPaths(); len(got) != 2 || got[0] != a {
		t.Errorf("WatchedPaths() = %v", got)
	}
	if w.dirs[dir] != 2 {
		t.Errorf("dir refcount = %d, want 2", w.dirs[dir])
	}

	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch error = %v", err)
	}
	if w.IsWatching(a) || !w.IsWatching(b) {
		t.Error("unexpected watch state after Unwatch")
	}
	if err := w.Unwatch(a); err != ErrNotWatching {
		t.Errorf("Unwatch again = %v, want ErrNotWatching", err)
	}
}

func TestWatcher_DeliversWrites(t *testing.T) {
	w, err := New(WithDebounceDelay(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	ignored := filepath.Join(dir, "other.md")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(ignored, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case ev := <-w.Events():
		if ev.Path != path {
			t.Errorf("Path = %q, want %q", ev.Path, path)
		}
		if !ev.Op.Has(OpWrite) {
			t.Errorf("Op = %v, want WRITE", ev.Op)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
