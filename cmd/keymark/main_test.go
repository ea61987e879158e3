package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/event"
	"github.com/dshills/keymark/internal/watcher"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "missing.toml")

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestTableCmd(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantLines int
		wantPipes int
		first     string
	}{
		{"defaults", nil, 5, 3, "| Header 1 | Header 2 |"},
		{"sized", []string{"--rows", "1", "--cols", "3"}, 3, 4, "| Header 1 | Header 2 | Header 3 |"},
		{"clamped", []string{"--rows", "0", "--cols", "0"}, 3, 2, "| Header 1 |"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, append([]string{"table"}, tt.args...)...)
			if err != nil {
				t.Fatalf("table error = %v", err)
			}
			lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			if len(lines) != tt.wantLines {
				t.Fatalf("lines = %d, want %d:\n%s", len(lines), tt.wantLines, out)
			}
			for _, line := range lines {
				if got := strings.Count(line, "|"); got != tt.wantPipes {
					t.Errorf("line %q has %d pipes, want %d", line, got, tt.wantPipes)
				}
			}
			if lines[0] != tt.first {
				t.Errorf("header = %q, want %q", lines[0], tt.first)
			}
		})
	}
}

func TestRenderCmd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "note.md")
	if err := os.WriteFile(src, []byte("# Hello\n\n~~old~~ new"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "render", "-o", "-", "--theme", "dark", src)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, "<del>old</del>") || !strings.Contains(out, "#f0f0f0") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, stderr, err := run(t, "render", src); err != nil {
		t.Fatalf("render to file error = %v", err)
	} else if !strings.Contains(stderr, "note.html") {
		t.Errorf("expected export notice, got %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "note.html")); err != nil {
		t.Errorf("expected exported file: %v", err)
	}

	if _, _, err := run(t, "render", "--theme", "sepia", src); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestReplaceCmd(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.md")
	if err := os.WriteFile(src, []byte("aaa"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, stderr, err := run(t, "replace", "--find", "a", "--with", "bb", src)
	if err != nil {
		t.Fatalf("replace error = %v", err)
	}
	if out != "bbbbbb" {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(stderr, "Replaced 3 occurrence(s).") {
		t.Errorf("stderr = %q", stderr)
	}

	if _, _, err := run(t, "replace", "-q", "-w", "--find", "a", "--with", "c", src); err != nil {
		t.Fatalf("replace --write error = %v", err)
	}
	data, _ := os.ReadFile(src)
	if string(data) != "ccc" {
		t.Errorf("file = %q", data)
	}

	if _, _, err := run(t, "replace", src); err == nil {
		t.Error("expected error without --find")
	}
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "keymark dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(cfg, []byte("[table]\nrows = 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfg, "version"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected config validation error")
	}
}

func TestRemoved(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "a.md")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "gone.md")

	tests := []struct {
		name string
		ev   watcher.Event
		want bool
	}{
		{"write", watcher.Event{Path: present, Op: watcher.OpWrite}, false},
		{"recreated", watcher.Event{Path: present, Op: watcher.OpRemove | watcher.OpCreate}, false},
		{"renamed over", watcher.Event{Path: present, Op: watcher.OpRemove | watcher.OpRename}, false},
		{"deleted", watcher.Event{Path: missing, Op: watcher.OpRemove}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removed(tt.ev); got != tt.want {
				t.Errorf("removed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := pslog.NewWithOptions(&buf, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.DebugLevel,
	})
	bus := event.NewBus()
	if err := logEvents(bus, logger); err != nil {
		t.Fatalf("logEvents error = %v", err)
	}

	ctx := context.Background()
	bus.Publish(ctx, event.New(event.TopicDocumentExported, event.SessionPayload{ID: "s1", Path: "/d/a.html"}, "test"))
	bus.Publish(ctx, event.New(event.TopicSearchReplaced, event.SearchPayload{Query: "needle", Count: 2}, "test"))
	bus.Publish(ctx, event.New(event.TopicDocumentRendered, event.RenderPayload{ID: "s1"}, "test"))

	out := buf.String()
	for _, want := range []string{"document.exported", "/d/a.html", "search.replaced", "needle"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "document.rendered") {
		t.Error("render events should not be logged")
	}
}
