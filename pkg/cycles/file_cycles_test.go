package cycles

import (
	"testing"

	"github.com/ritzau/javabuild/pkg/graph"
)

func TestFindImportCycles_NoCycles(t *testing.T) {
	g := graph.NewImportGraph()

	// A simple acyclic chain: A -> B -> C
	g.AddImport("A.java", "B.java")
	g.AddImport("B.java", "C.java")

	if cycles := FindImportCycles(g); len(cycles) != 0 {
		t.Errorf("Expected no cycles, but found %d", len(cycles))
	}
}

func TestFindImportCycles_SimpleCycle(t *testing.T) {
	g := graph.NewImportGraph()

	g.AddImport("b/B.java", "a/A.java")
	g.AddImport("a/A.java", "b/B.java")

	cycles := FindImportCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", len(cycles))
	}

	files := cycles[0].Files
	if len(files) != 2 || files[0] != "a/A.java" || files[1] != "b/B.java" {
		t.Errorf("Expected sorted cycle [a/A.java b/B.java], got %v", files)
	}
}

func TestFindImportCycles_Multiple(t *testing.T) {
	g := graph.NewImportGraph()

	// Cycle 1: X -> Y -> Z -> X
	g.AddImport("X.java", "Y.java")
	g.AddImport("Y.java", "Z.java")
	g.AddImport("Z.java", "X.java")

	// Cycle 2: M <-> N, reached from X but not part of cycle 1
	g.AddImport("X.java", "M.java")
	g.AddImport("M.java", "N.java")
	g.AddImport("N.java", "M.java")

	cycles := FindImportCycles(g)
	if len(cycles) != 2 {
		t.Fatalf("Expected 2 cycles, got %d: %v", len(cycles), cycles)
	}
	if cycles[0].Files[0] != "M.java" || len(cycles[0].Files) != 2 {
		t.Errorf("Expected first cycle [M.java N.java], got %v", cycles[0].Files)
	}
	if len(cycles[1].Files) != 3 {
		t.Errorf("Expected second cycle of length 3, got %v", cycles[1].Files)
	}
}
