package lens

import (
	"github.com/ritzau/javabuild/pkg/model"
)

// Unreachable is the distance of nodes not connected to the focus
const Unreachable = -1

type distanceQueueNode struct {
	nodeID   string
	distance int
}

// expandPackages replaces package names in the selection with every node
// of that package. IDs naming a node are kept as is.
func expandPackages(selected []string, g *model.Graph) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, id := range selected {
		if _, ok := g.Nodes[id]; ok {
			add(id)
			continue
		}
		for nodeID, node := range g.Nodes {
			if node.Package == id {
				add(nodeID)
			}
		}
	}
	return out
}

// ComputeDistances returns the number of import hops from every node to the
// nearest selected node, following imports in both directions. Nodes not
// connected to the selection get Unreachable.
func ComputeDistances(g *model.Graph, selected []string) map[string]int {
	distances := make(map[string]int, len(g.Nodes))
	for id := range g.Nodes {
		distances[id] = Unreachable
	}

	adjacency := buildAdjacencyList(g)

	var queue []distanceQueueNode
	for _, id := range expandPackages(selected, g) {
		distances[id] = 0
		queue = append(queue, distanceQueueNode{nodeID: id})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range adjacency[current.nodeID] {
			if d, ok := distances[neighbor]; ok && d == Unreachable {
				distances[neighbor] = current.distance + 1
				queue = append(queue, distanceQueueNode{nodeID: neighbor, distance: current.distance + 1})
			}
		}
	}
	return distances
}

// buildAdjacencyList creates an undirected adjacency list from graph edges
func buildAdjacencyList(g *model.Graph) map[string][]string {
	adjacency := make(map[string][]string)
	for _, e := range g.Edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		adjacency[e.Target] = append(adjacency[e.Target], e.Source)
	}
	return adjacency
}
