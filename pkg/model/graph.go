package model

// Graph is the JSON view of the import graph served by the inspection API.
type Graph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges []*Edge          `json:"edges"`
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: make([]*Edge, 0),
	}
}

// Node is one source file.
type Node struct {
	ID      string `json:"id"`      // Source path
	Symbol  string `json:"symbol"`  // Fully-qualified symbol, e.g. "pkg.A"
	Package string `json:"package"` // Package part of the symbol, empty for the default package
	Stale   bool   `json:"stale,omitempty"`
}

// Edge points from an importing file to the file it imports.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// AddNode adds a node to the graph. If a node with the same ID exists, it is replaced.
func (g *Graph) AddNode(node *Node) {
	g.Nodes[node.ID] = node
}

// AddEdge adds an edge to the graph.
func (g *Graph) AddEdge(edge *Edge) {
	g.Edges = append(g.Edges, edge)
}
