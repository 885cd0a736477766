package cycles

import (
	"gonum.org/v1/gonum/graph"
)

// TarjanSCC finds strongly connected components using Tarjan's algorithm
type TarjanSCC struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

// NewTarjanSCC creates a new Tarjan SCC finder
func NewTarjanSCC(g graph.Directed) *TarjanSCC {
	return &TarjanSCC{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

// FindSCCs returns the components with more than one node, i.e. the cycles.
// Self loops never occur in an ImportGraph so single nodes are skipped.
func (t *TarjanSCC) FindSCCs() [][]int64 {
	nodes := t.graph.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if _, visited := t.indices[id]; !visited {
			t.strongConnect(id)
		}
	}
	return t.sccs
}

func (t *TarjanSCC) strongConnect(id int64) {
	t.indices[id] = t.index
	t.lowLink[id] = t.index
	t.index++

	t.stack = append(t.stack, id)
	t.onStack[id] = true

	successors := t.graph.From(id)
	for successors.Next() {
		next := successors.Node().ID()

		if _, visited := t.indices[next]; !visited {
			t.strongConnect(next)
			t.lowLink[id] = min(t.lowLink[id], t.lowLink[next])
		} else if t.onStack[next] {
			t.lowLink[id] = min(t.lowLink[id], t.indices[next])
		}
	}

	if t.lowLink[id] != t.indices[id] {
		return
	}

	// id is the root of a component: pop it off the stack
	var scc []int64
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == id {
			break
		}
	}
	if len(scc) > 1 {
		t.sccs = append(t.sccs, scc)
	}
}
