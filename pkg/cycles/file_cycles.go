package cycles

import (
	"sort"

	"github.com/ritzau/javabuild/pkg/graph"
)

// ImportCycle is a set of source files that import each other, directly or
// through other members of the set
type ImportCycle struct {
	Files []string `json:"files"`
}

// FindImportCycles returns the import cycles in g. Files within a cycle and
// the cycles themselves are sorted so repeated runs report identically.
func FindImportCycles(g *graph.ImportGraph) []ImportCycle {
	sccs := NewTarjanSCC(g.Graph()).FindSCCs()

	cycles := make([]ImportCycle, 0, len(sccs))
	for _, scc := range sccs {
		files := make([]string, 0, len(scc))
		for _, id := range scc {
			if node := g.GetNodeByID(id); node != nil {
				files = append(files, node.Path)
			}
		}
		if len(files) > 1 {
			sort.Strings(files)
			cycles = append(cycles, ImportCycle{Files: files})
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Files[0] < cycles[j].Files[0]
	})
	return cycles
}
