// Package graph holds the navigation graph: nodes placed on open cells and
// symmetric edges between neighbors that are not separated by a wall.
//
// A Graph is immutable once built and is safe for concurrent reads. When the
// environment changes a new Graph is built; its ID differs from the old one so
// routes computed against the old graph can be recognized as stale.
package graph

import (
	"math"
	"sort"

	"pathfinding-sim/internal/common"

	"github.com/dhconnelly/rtreego"
)

// Node is a traversable point in the environment graph.
type Node struct {
	ID       int    // Dense index, 0..Len()-1, also the search tie-break key
	Name     string // Cell key the node was built from
	Position common.Vector
	edges    []Edge
}

// ConnectsTo returns the neighbors reachable from n, in insertion order.
func (n *Node) ConnectsTo() []*Node {
	out := make([]*Node, len(n.edges))
	for i, e := range n.edges {
		out[i] = e.To
	}
	return out
}

// Edge is a directed connection; the reverse direction is stored on the other node.
type Edge struct {
	From, To *Node
	Cost     float64 // Euclidean distance, never negative
}

// Graph maps each node to its outgoing edges.
type Graph struct {
	id     string
	nodes  []*Node
	byName map[string]*Node
	index  *rtreego.Rtree
	edges  int
}

// ID identifies this build of the graph.
func (g *Graph) ID() string { return g.id }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id int) *Node {
	if id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns all nodes ordered by ID.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeByName looks a node up by the cell key it was built from.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Contains reports whether n belongs to this graph instance.
func (g *Graph) Contains(n *Node) bool {
	return n != nil && n.ID >= 0 && n.ID < len(g.nodes) && g.nodes[n.ID] == n
}

// Neighbors returns the outgoing edges of n. The slice must not be modified.
func (g *Graph) Neighbors(n *Node) []Edge {
	if !g.Contains(n) {
		return nil
	}
	return n.edges
}

// HasEdge reports whether a directed edge a→b exists.
func (g *Graph) HasEdge(a, b *Node) bool {
	for _, e := range g.Neighbors(a) {
		if e.To == b {
			return true
		}
	}
	return false
}

// Edges returns every undirected connection once, ordered by (From.ID, To.ID).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges/2)
	for _, n := range g.nodes {
		for _, e := range n.edges {
			if e.From.ID < e.To.ID || !g.HasEdge(e.To, e.From) {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From.ID != out[j].From.ID {
			return out[i].From.ID < out[j].From.ID
		}
		return out[i].To.ID < out[j].To.ID
	})
	return out
}

// Nearest returns the node closest to p and its distance, or nil for an empty graph.
func (g *Graph) Nearest(p common.Vector) (*Node, float64) {
	if len(g.nodes) == 0 {
		return nil, math.MaxFloat64
	}
	item := g.index.NearestNeighbor(rtreego.Point{p.X, p.Y, p.Z})
	if item == nil {
		return nil, math.MaxFloat64
	}
	n := item.(*nodeEntry).node
	return n, common.Distance(p, n.Position)
}

// nodeEntry wraps a node for R-tree storage.
type nodeEntry struct {
	node *Node
	box  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *nodeEntry) Bounds() rtreego.Rect { return e.box }

const pointTolerance = 1e-6

func pointRect(p common.Vector) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{p.X, p.Y, p.Z},
		[]float64{pointTolerance, pointTolerance, pointTolerance},
	)
}
