package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDebouncerMergesBurst(t *testing.T) {
	in := make(chan ChangeEvent, 10)
	d := NewDebouncer(in, 20*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	in <- ChangeEvent{Type: ChangeTypeSource, Paths: []string{"A.java"}}
	in <- ChangeEvent{Type: ChangeTypeSource, Paths: []string{"B.java"}}
	in <- ChangeEvent{Type: ChangeTypeSource, Paths: []string{"A.java"}}
	in <- ChangeEvent{Type: ChangeTypeConfig, Paths: []string{"config.txt"}}

	first := receive(t, d.Output())
	if first.Type != ChangeTypeConfig {
		t.Errorf("first batch type = %s, want config", first.Type)
	}
	second := receive(t, d.Output())
	if second.Type != ChangeTypeSource || len(second.Paths) != 2 {
		t.Errorf("second batch = %s %v, want two deduplicated sources", second.Type, second.Paths)
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, time.Hour, 30*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	in <- ChangeEvent{Type: ChangeTypeSource, Paths: []string{"A.java"}}
	got := receive(t, d.Output())
	if len(got.Paths) != 1 {
		t.Errorf("batch = %v", got.Paths)
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	in := make(chan ChangeEvent, 1)
	d := NewDebouncer(in, time.Hour, time.Hour)
	d.Start(context.Background())

	in <- ChangeEvent{Type: ChangeTypeLibrary, Paths: []string{"lib/a.jar"}}
	close(in)

	got := receive(t, d.Output())
	if got.Type != ChangeTypeLibrary {
		t.Errorf("type = %s, want library", got.Type)
	}
	select {
	case _, ok := <-d.Output():
		if ok {
			t.Error("output not closed after input closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for output to close")
	}
}

func TestAnalyzeChanges(t *testing.T) {
	tests := []struct {
		typ         ChangeType
		wantReload  bool
		wantRebuild bool
	}{
		{ChangeTypeSource, false, false},
		{ChangeTypeLibrary, false, true},
		{ChangeTypeConfig, true, true},
	}
	for _, tt := range tests {
		a := AnalyzeChanges(ChangeEvent{Type: tt.typ, Paths: []string{"x"}})
		if a.ReloadConfig != tt.wantReload || a.FullRebuild != tt.wantRebuild {
			t.Errorf("%s: reload %v rebuild %v", tt.typ, a.ReloadConfig, a.FullRebuild)
		}
		if len(a.ChangedFiles) != 1 {
			t.Errorf("%s: ChangedFiles = %v", tt.typ, a.ChangedFiles)
		}
	}
}

func TestClassify(t *testing.T) {
	root := filepath.FromSlash("/proj")
	fw := &FileWatcher{paths: Paths{
		Root:        root,
		Source:      filepath.Join(root, "src"),
		Lib:         filepath.Join(root, "lib"),
		ConfigFiles: []string{"config.txt"},
	}}

	tests := []struct {
		path   string
		want   ChangeType
		wantOK bool
	}{
		{filepath.Join(root, "src", "pkg", "A.java"), ChangeTypeSource, true},
		{filepath.Join(root, "lib", "gson", "gson.jar"), ChangeTypeLibrary, true},
		{filepath.Join(root, "config.txt"), ChangeTypeConfig, true},
		{filepath.Join(root, "src", "notes.txt"), 0, false},
		{filepath.Join(root, "bin", "A.java"), 0, false},
		{filepath.Join(root, "src", "sub", "config.txt"), 0, false},
	}
	for _, tt := range tests {
		got, ok := fw.Classify(tt.path)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Classify(%s) = %s, %v, want %s, %v", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFileWatcherReportsSourceChange(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(Paths{Root: root, Source: filepath.Join(root, "src")})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(src, "A.java")
	if err := os.WriteFile(path, []byte("class A {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := receive(t, fw.Events())
	if got.Type != ChangeTypeSource || got.Paths[0] != path {
		t.Errorf("event = %s %v, want source %s", got.Type, got.Paths, path)
	}
}

func receive(t *testing.T, ch <-chan ChangeEvent) ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return ChangeEvent{}
}
