package graph

import (
	"testing"

	"github.com/ritzau/javabuild/pkg/model"
)

func TestNewImportGraph(t *testing.T) {
	g := NewImportGraph()
	if g == nil {
		t.Fatal("NewImportGraph() returned nil")
	}

	if len(g.Nodes()) != 0 {
		t.Errorf("New graph should have 0 nodes, got %d", len(g.Nodes()))
	}
}

func TestAddFile(t *testing.T) {
	g := NewImportGraph()

	g.AddFile("src/pkg/A.java", "pkg.A")
	g.AddFile("src/pkg/A.java", "ignored")

	if len(g.Nodes()) != 1 {
		t.Errorf("Expected 1 node, got %d", len(g.Nodes()))
	}

	node, exists := g.GetNode("src/pkg/A.java")
	if !exists {
		t.Fatal("File not found in graph")
	}
	if node.Symbol != "pkg.A" {
		t.Errorf("Expected symbol pkg.A, got %s", node.Symbol)
	}
}

func TestAddImport(t *testing.T) {
	g := NewImportGraph()

	g.AddFile("B.java", "B")
	g.AddFile("A.java", "A")
	g.AddImport("B.java", "A.java")
	g.AddImport("B.java", "A.java")
	g.AddImport("A.java", "A.java")

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, got %d: %v", len(edges), edges)
	}
	if edges[0][0] != "B.java" || edges[0][1] != "A.java" {
		t.Errorf("Expected edge B.java->A.java, got %v", edges[0])
	}
}

func TestDependentsAndImports(t *testing.T) {
	g := NewImportGraph()

	g.AddImport("C.java", "A.java")
	g.AddImport("B.java", "A.java")

	deps := g.Dependents("A.java")
	if len(deps) != 2 || deps[0] != "B.java" || deps[1] != "C.java" {
		t.Errorf("Dependents(A) = %v, want [B.java C.java]", deps)
	}

	if imps := g.Imports("C.java"); len(imps) != 1 || imps[0] != "A.java" {
		t.Errorf("Imports(C) = %v, want [A.java]", imps)
	}

	if got := g.Dependents("missing.java"); got != nil {
		t.Errorf("Dependents(missing) = %v, want nil", got)
	}
}

func TestView(t *testing.T) {
	g := NewImportGraph()
	g.AddFile("src/pkg/A.java", "pkg.A")
	g.AddFile("src/pkg/B.java", "pkg.B")
	g.AddImport("src/pkg/B.java", "src/pkg/A.java")

	view := g.View(model.NewFileSet("src/pkg/A.java"))

	if len(view.Nodes) != 2 || len(view.Edges) != 1 {
		t.Fatalf("View() has %d nodes and %d edges", len(view.Nodes), len(view.Edges))
	}
	a := view.Nodes["src/pkg/A.java"]
	if !a.Stale || a.Package != "pkg" {
		t.Errorf("node A = %+v, want stale in package pkg", a)
	}
	if view.Nodes["src/pkg/B.java"].Stale {
		t.Error("node B should not be stale")
	}
}
