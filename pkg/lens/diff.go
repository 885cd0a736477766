package lens

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ritzau/javabuild/pkg/model"
)

// GraphDiff is the difference between two graph views
type GraphDiff struct {
	AddedNodes    []*model.Node `json:"addedNodes"`
	RemovedNodes  []string      `json:"removedNodes"`  // Node IDs
	ModifiedNodes []*model.Node `json:"modifiedNodes"` // Nodes whose stale flag or symbol changed
	AddedEdges    []*model.Edge `json:"addedEdges"`
	RemovedEdges  []string      `json:"removedEdges"` // Edge keys (source|target)
	FullGraph     bool          `json:"fullGraph"`    // True when there was nothing to diff against
}

// Empty reports whether the diff carries no change
func (d *GraphDiff) Empty() bool {
	return !d.FullGraph &&
		len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 && len(d.ModifiedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}

// GraphSnapshot is a graph view indexed for diffing
type GraphSnapshot struct {
	Hash  string
	Nodes map[string]model.Node
	Edges map[string]model.Edge
}

// CreateSnapshot indexes g for a later ComputeDiff
func CreateSnapshot(g *model.Graph) *GraphSnapshot {
	snapshot := &GraphSnapshot{
		Nodes: make(map[string]model.Node, len(g.Nodes)),
		Edges: make(map[string]model.Edge, len(g.Edges)),
	}
	for id, node := range g.Nodes {
		snapshot.Nodes[id] = *node
	}
	for _, e := range g.Edges {
		snapshot.Edges[edgeKey(e.Source, e.Target)] = *e
	}

	// encoding/json sorts map keys, so equal graphs hash equally
	data, _ := json.Marshal(g)
	hash := sha256.Sum256(data)
	snapshot.Hash = fmt.Sprintf("%x", hash)
	return snapshot
}

// ComputeDiff computes what changed from old to g. Without an old snapshot
// the whole graph is reported as added. Every list is sorted.
func ComputeDiff(old *GraphSnapshot, g *model.Graph) *GraphDiff {
	diff := &GraphDiff{
		AddedNodes:    make([]*model.Node, 0),
		RemovedNodes:  make([]string, 0),
		ModifiedNodes: make([]*model.Node, 0),
		AddedEdges:    make([]*model.Edge, 0),
		RemovedEdges:  make([]string, 0),
		FullGraph:     old == nil,
	}
	if old == nil {
		old = &GraphSnapshot{}
	}

	newEdges := make(map[string]*model.Edge, len(g.Edges))
	for _, e := range g.Edges {
		newEdges[edgeKey(e.Source, e.Target)] = e
	}

	for id, node := range g.Nodes {
		prev, exists := old.Nodes[id]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, node)
		case prev != *node:
			diff.ModifiedNodes = append(diff.ModifiedNodes, node)
		}
	}
	for id := range old.Nodes {
		if _, exists := g.Nodes[id]; !exists {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}
	for key, e := range newEdges {
		if _, exists := old.Edges[key]; !exists {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for key := range old.Edges {
		if _, exists := newEdges[key]; !exists {
			diff.RemovedEdges = append(diff.RemovedEdges, key)
		}
	}

	sortNodes(diff.AddedNodes)
	sortNodes(diff.ModifiedNodes)
	sort.Strings(diff.RemovedNodes)
	sort.Slice(diff.AddedEdges, func(i, j int) bool {
		return edgeKey(diff.AddedEdges[i].Source, diff.AddedEdges[i].Target) <
			edgeKey(diff.AddedEdges[j].Source, diff.AddedEdges[j].Target)
	})
	sort.Strings(diff.RemovedEdges)
	return diff
}

func sortNodes(nodes []*model.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}

// edgeKey creates a unique key for an edge
func edgeKey(source, target string) string {
	return source + "|" + target
}
