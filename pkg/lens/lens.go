// Package lens narrows the import graph view to the part a reader cares
// about and computes differences between successive views.
package lens

import (
	"github.com/ritzau/javabuild/pkg/model"
)

// Lens selects the visible part of a graph
type Lens struct {
	// Focus lists node IDs (source paths) or package names. Empty shows everything.
	Focus []string `json:"focus,omitempty"`
	// MaxDistance hides nodes further than this many import hops from the
	// focus. Negative means unbounded.
	MaxDistance int `json:"maxDistance"`
	// StaleOnly keeps stale nodes and the edges between them
	StaleOnly bool `json:"staleOnly,omitempty"`
}

// Full is the lens showing the whole graph
var Full = Lens{MaxDistance: -1}

// Render returns the subgraph of g visible through l. Edges are kept when
// both ends are visible, in their original order.
func Render(g *model.Graph, l Lens) *model.Graph {
	out := model.NewGraph()
	if g == nil {
		return out
	}

	var distances map[string]int
	if len(l.Focus) > 0 {
		distances = ComputeDistances(g, l.Focus)
	}

	for id, node := range g.Nodes {
		if l.StaleOnly && !node.Stale {
			continue
		}
		if distances != nil {
			d := distances[id]
			if d == Unreachable || (l.MaxDistance >= 0 && d > l.MaxDistance) {
				continue
			}
		}
		out.AddNode(node)
	}

	for _, e := range g.Edges {
		if out.Nodes[e.Source] != nil && out.Nodes[e.Target] != nil {
			out.AddEdge(e)
		}
	}
	return out
}
