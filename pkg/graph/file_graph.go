package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/javabuild/pkg/javasrc"
	"github.com/ritzau/javabuild/pkg/model"
)

// FileNode is one source file in the import graph
type FileNode struct {
	Path   string // e.g. "src/pkg/A.java"
	Symbol string // e.g. "pkg.A"
}

// ImportGraph holds source files and their import edges. An edge runs from
// the importing file to the imported file, so the dependents of a file are
// its predecessors.
type ImportGraph struct {
	graph  *simple.DirectedGraph
	nodes  map[string]*FileNode // path -> node
	ids    map[string]int64     // path -> graph ID
	paths  map[int64]string     // graph ID -> path
	nextID int64
}

// NewImportGraph creates an empty import graph
func NewImportGraph() *ImportGraph {
	return &ImportGraph{
		graph: simple.NewDirectedGraph(),
		nodes: make(map[string]*FileNode),
		ids:   make(map[string]int64),
		paths: make(map[int64]string),
	}
}

// AddFile adds a file to the graph; adding a known path is a no-op
func (g *ImportGraph) AddFile(path, symbol string) {
	if _, exists := g.nodes[path]; exists {
		return
	}

	g.nodes[path] = &FileNode{Path: path, Symbol: symbol}
	g.ids[path] = g.nextID
	g.paths[g.nextID] = path
	g.graph.AddNode(simple.Node(g.nextID))
	g.nextID++
}

// AddImport records that importer imports imported. Unknown files are added
// without a symbol. Self imports are ignored.
func (g *ImportGraph) AddImport(importer, imported string) {
	if importer == imported {
		return
	}
	g.AddFile(importer, "")
	g.AddFile(imported, "")

	from, to := g.ids[importer], g.ids[imported]
	if !g.graph.HasEdgeFromTo(from, to) {
		g.graph.SetEdge(g.graph.NewEdge(g.graph.Node(from), g.graph.Node(to)))
	}
}

// GetNode returns a file node by path
func (g *ImportGraph) GetNode(path string) (*FileNode, bool) {
	node, exists := g.nodes[path]
	return node, exists
}

// GetNodeByID returns a file node by its graph ID
func (g *ImportGraph) GetNodeByID(id int64) *FileNode {
	if path, ok := g.paths[id]; ok {
		return g.nodes[path]
	}
	return nil
}

// Graph returns the underlying directed graph
func (g *ImportGraph) Graph() *simple.DirectedGraph {
	return g.graph
}

// Nodes returns all file nodes sorted by path
func (g *ImportGraph) Nodes() []*FileNode {
	nodes := make([]*FileNode, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return nodes
}

// Edges returns all import edges as sorted [importer, imported] pairs
func (g *ImportGraph) Edges() [][2]string {
	var edges [][2]string

	iter := g.graph.Edges()
	for iter.Next() {
		e := iter.Edge()
		edges = append(edges, [2]string{g.paths[e.From().ID()], g.paths[e.To().ID()]})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// Imports returns the files that path imports, sorted
func (g *ImportGraph) Imports(path string) []string {
	id, ok := g.ids[path]
	if !ok {
		return nil
	}
	return g.pathsOf(g.graph.From(id))
}

// Dependents returns the files that import path, sorted
func (g *ImportGraph) Dependents(path string) []string {
	id, ok := g.ids[path]
	if !ok {
		return nil
	}
	return g.pathsOf(g.graph.To(id))
}

func (g *ImportGraph) pathsOf(iter gonum.Nodes) []string {
	var out []string
	for iter.Next() {
		out = append(out, g.paths[iter.Node().ID()])
	}
	sort.Strings(out)
	return out
}

// View converts the graph to the JSON model, flagging members of stale
func (g *ImportGraph) View(stale *model.FileSet) *model.Graph {
	view := model.NewGraph()
	for _, n := range g.Nodes() {
		view.AddNode(&model.Node{
			ID:      n.Path,
			Symbol:  n.Symbol,
			Package: javasrc.PackageOf(n.Symbol),
			Stale:   stale != nil && stale.Has(n.Path),
		})
	}
	for _, e := range g.Edges() {
		view.AddEdge(&model.Edge{Source: e[0], Target: e[1]})
	}
	return view
}
