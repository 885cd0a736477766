package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ritzau/javabuild/pkg/model"
)

// writeSources creates files below root from a rel-path -> content map
func writeSources(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func chainFixture(t *testing.T) (root string, a, b, c string) {
	root = filepath.Join(t.TempDir(), "src")
	writeSources(t, root, map[string]string{
		"pkg/A.java":   "package pkg;\npublic class A {}\n",
		"pkg/B.java":   "package pkg;\nimport pkg.A;\npublic class B {}\n",
		"app/C.java":   "package app;\nimport pkg.B;\npublic class C {}\n",
		"app/D.java":   "package app;\nimport java.util.List;\npublic class D {}\n",
		"other/W.java": "package other;\nimport pkg.*;\npublic class W {}\n",
	})
	return root,
		filepath.Join(root, "pkg", "A.java"),
		filepath.Join(root, "pkg", "B.java"),
		filepath.Join(root, "app", "C.java")
}

func candidates(root string) []string {
	return []string{
		filepath.Join(root, "pkg", "A.java"),
		filepath.Join(root, "pkg", "B.java"),
		filepath.Join(root, "app", "C.java"),
		filepath.Join(root, "app", "D.java"),
		filepath.Join(root, "other", "W.java"),
	}
}

func TestExpandShallow(t *testing.T) {
	root, a, b, c := chainFixture(t)
	w := filepath.Join(root, "other", "W.java")

	got := Expand(context.Background(), root, model.NewFileSet(a), candidates(root), model.ExpansionShallow)

	for _, want := range []string{a, b, w} {
		if !got.Has(want) {
			t.Errorf("expected %s in expanded set %v", want, got.Sorted())
		}
	}
	if got.Has(c) {
		t.Errorf("shallow expansion must not reach C (two hops): %v", got.Sorted())
	}
	if got.Len() != 3 {
		t.Errorf("expanded set has %d files, want 3: %v", got.Len(), got.Sorted())
	}
}

func TestExpandTransitive(t *testing.T) {
	root, a, _, c := chainFixture(t)

	got := Expand(context.Background(), root, model.NewFileSet(a), candidates(root), model.ExpansionTransitive)

	if !got.Has(c) {
		t.Errorf("transitive expansion should reach C: %v", got.Sorted())
	}
	if got.Has(filepath.Join(root, "app", "D.java")) {
		t.Errorf("D imports nothing stale and must stay out: %v", got.Sorted())
	}
	if got.Len() != 4 {
		t.Errorf("expanded set has %d files, want 4: %v", got.Len(), got.Sorted())
	}
}

func TestExpandDoesNotMutateInput(t *testing.T) {
	root, a, _, _ := chainFixture(t)
	stale := model.NewFileSet(a)

	_ = Expand(context.Background(), root, stale, candidates(root), model.ExpansionShallow)

	if stale.Len() != 1 {
		t.Errorf("input set was modified: %v", stale.Sorted())
	}
}

func TestExpandTransitiveCycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), "src")
	writeSources(t, root, map[string]string{
		"p/X.java": "package p;\nimport p.Y;\nclass X {}\n",
		"p/Y.java": "package p;\nimport p.X;\nclass Y {}\n",
		"q/Z.java": "package q;\nimport p.Y;\nclass Z {}\n",
	})
	files := []string{
		filepath.Join(root, "p", "X.java"),
		filepath.Join(root, "p", "Y.java"),
		filepath.Join(root, "q", "Z.java"),
	}

	got := Expand(context.Background(), root, model.NewFileSet(files[0]), files, model.ExpansionTransitive)
	if got.Len() != 3 {
		t.Errorf("expected all three files, got %v", got.Sorted())
	}
}

func TestBuildIndexSkipsUnreadable(t *testing.T) {
	root, a, b, _ := chainFixture(t)
	missing := filepath.Join(root, "pkg", "Gone.java")

	idx := BuildIndex(context.Background(), root, []string{a, b, missing})

	if len(idx.Skipped()) != 1 || idx.Skipped()[0] != missing {
		t.Errorf("Skipped() = %v, want [%s]", idx.Skipped(), missing)
	}
	if deps := idx.Graph.Dependents(a); len(deps) != 1 || deps[0] != b {
		t.Errorf("Dependents(A) = %v, want [%s]", deps, b)
	}
}

func TestExpandIgnoresStaticImports(t *testing.T) {
	root := filepath.Join(t.TempDir(), "src")
	writeSources(t, root, map[string]string{
		"pkg/A.java":       "package pkg;\npublic class A { public static int x; }\n",
		"pkg/A/Inner.java": "package pkg.A;\npublic class Inner {}\n",
		"app/S.java":       "package app;\nimport static pkg.A.*;\npublic class S {}\n",
		"app/T.java":       "package app;\nimport static pkg.A.x;\npublic class T {}\n",
	})
	a := filepath.Join(root, "pkg", "A.java")
	inner := filepath.Join(root, "pkg", "A", "Inner.java")
	all := []string{
		a,
		inner,
		filepath.Join(root, "app", "S.java"),
		filepath.Join(root, "app", "T.java"),
	}

	got := Expand(context.Background(), root, model.NewFileSet(a, inner), all, model.ExpansionTransitive)
	if got.Len() != 2 {
		t.Errorf("static imports expanded the set to %v", got.Sorted())
	}
}
