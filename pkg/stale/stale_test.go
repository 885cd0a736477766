package stale

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		source, output, src, want string
	}{
		{"src", "bin", filepath.Join("src", "pkg", "A.java"), filepath.Join("bin", "pkg", "A.class")},
		{"./src", "out/classes", filepath.Join("src", "Main.java"), filepath.Join("out", "classes", "Main.class")},
		{"src", "bin", filepath.Join("other", "X.java"), filepath.Join("bin", "X.class")},
	}
	for _, tt := range tests {
		if got := ArtifactPath(tt.source, tt.output, tt.src); got != tt.want {
			t.Errorf("ArtifactPath(%q, %q, %q) = %q, want %q", tt.source, tt.output, tt.src, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		src    time.Time
		exists bool
		art    time.Time
		want   bool
	}{
		{"missing artifact", base, false, time.Time{}, true},
		{"source newer", base.Add(time.Second), true, base, true},
		{"source older", base, true, base.Add(time.Second), false},
		{"equal timestamps", base, true, base, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.src, tt.exists, tt.art); got != tt.want {
				t.Errorf("Compare() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectorFilter(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "bin")
	old := time.Now().Add(-time.Hour)
	now := time.Now()

	touch(t, filepath.Join(src, "pkg", "Changed.java"), now)
	touch(t, filepath.Join(out, "pkg", "Changed.class"), old)
	touch(t, filepath.Join(src, "pkg", "Same.java"), old)
	touch(t, filepath.Join(out, "pkg", "Same.class"), old)
	touch(t, filepath.Join(src, "pkg", "New.java"), old)

	d := Detector{SourceRoot: src, OutputRoot: out}
	got := d.Filter([]string{
		filepath.Join(src, "pkg", "Changed.java"),
		filepath.Join(src, "pkg", "New.java"),
		filepath.Join(src, "pkg", "Same.java"),
	})

	if len(got) != 2 {
		t.Fatalf("Filter() = %v, want Changed.java and New.java", got)
	}
	if filepath.Base(got[0]) != "Changed.java" || filepath.Base(got[1]) != "New.java" {
		t.Errorf("Filter() = %v", got)
	}
}

func TestIsStaleMissingSource(t *testing.T) {
	dir := t.TempDir()
	if IsStale(filepath.Join(dir, "gone.java"), filepath.Join(dir, "gone.class")) {
		t.Error("a vanished source should not be reported stale")
	}
}
