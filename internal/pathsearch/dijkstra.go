// Package pathsearch finds shortest routes on a navigation graph with Dijkstra's
// algorithm.
//
// Edge costs are Euclidean distances and therefore never negative, so the
// label-setting search is optimal. Among unsettled nodes with equal tentative
// distance the one with the lowest node ID is settled first; routes are
// reproducible for a given graph.
package pathsearch

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/graph"
)

var (
	// ErrNilGraph indicates that a nil graph was passed to FindRoute.
	ErrNilGraph = errors.New("pathsearch: graph is nil")

	// ErrInvalidEndpoint indicates that start or goal is not a node of the graph.
	ErrInvalidEndpoint = errors.New("pathsearch: endpoint not in graph")

	// ErrNoPathFound indicates that the goal cannot be reached from start.
	ErrNoPathFound = errors.New("pathsearch: no path found")
)

// Route is an ordered sequence of nodes from start to goal inclusive.
type Route struct {
	GraphID string
	Nodes   []*graph.Node
	Cost    float64 // settled distance label of the goal
}

// Start returns the first node of the route.
func (r Route) Start() *graph.Node { return r.Nodes[0] }

// Goal returns the last node of the route.
func (r Route) Goal() *graph.Node { return r.Nodes[len(r.Nodes)-1] }

// Len returns the number of waypoints.
func (r Route) Len() int { return len(r.Nodes) }

// EdgeCost sums the edge costs along the route.
func (r Route) EdgeCost() float64 {
	total := 0.0
	for i := 1; i < len(r.Nodes); i++ {
		total += common.Distance(r.Nodes[i-1].Position, r.Nodes[i].Position)
	}
	return total
}

// Positions returns the waypoint positions in order.
func (r Route) Positions() []common.Vector {
	out := make([]common.Vector, len(r.Nodes))
	for i, n := range r.Nodes {
		out[i] = n.Position
	}
	return out
}

// Valid reports whether the route was computed on g.
func (r Route) Valid(g *graph.Graph) bool {
	return g != nil && len(r.Nodes) > 0 && r.GraphID == g.ID()
}

// FindRoute returns the minimum-cost route from start to goal.
func FindRoute(g *graph.Graph, start, goal *graph.Node) (Route, error) {
	if g == nil {
		return Route{}, ErrNilGraph
	}
	if !g.Contains(start) {
		return Route{}, fmt.Errorf("%w: start %s", ErrInvalidEndpoint, describe(start))
	}
	if !g.Contains(goal) {
		return Route{}, fmt.Errorf("%w: goal %s", ErrInvalidEndpoint, describe(goal))
	}

	s := newSearch(g, start)
	s.run(goal)

	if math.IsInf(s.dist[goal.ID], 1) {
		return Route{}, fmt.Errorf("%w: %s -> %s", ErrNoPathFound, start.Name, goal.Name)
	}

	return Route{
		GraphID: g.ID(),
		Nodes:   s.reconstruct(goal),
		Cost:    s.dist[goal.ID],
	}, nil
}

func describe(n *graph.Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q (id %d)", n.Name, n.ID)
}

// search holds the mutable state of a single Dijkstra run.
type search struct {
	g       *graph.Graph
	dist    []float64 // tentative distance per node ID
	prev    []int     // predecessor per node ID, -1 for none
	settled []bool
	pq      nodePQ
}

func newSearch(g *graph.Graph, start *graph.Node) *search {
	n := g.Len()
	s := &search{
		g:       g,
		dist:    make([]float64, n),
		prev:    make([]int, n),
		settled: make([]bool, n),
		pq:      make(nodePQ, 0, n),
	}
	for i := range s.dist {
		s.dist[i] = math.Inf(1)
		s.prev[i] = -1
	}
	s.dist[start.ID] = 0
	heap.Push(&s.pq, &nodeItem{id: start.ID, dist: 0})
	return s
}

// run settles nodes in order of increasing distance until goal is settled or
// nothing reachable is left.
func (s *search) run(goal *graph.Node) {
	for s.pq.Len() > 0 {
		item := heap.Pop(&s.pq).(*nodeItem)
		u := item.id

		// Stale entry left by lazy decrease-key.
		if s.settled[u] {
			continue
		}
		s.settled[u] = true
		if u == goal.ID {
			return
		}

		for _, e := range s.g.Neighbors(s.g.Node(u)) {
			v := e.To.ID
			if s.settled[v] {
				continue
			}
			nd := s.dist[u] + e.Cost
			if nd >= s.dist[v] {
				continue
			}
			s.dist[v] = nd
			s.prev[v] = u
			heap.Push(&s.pq, &nodeItem{id: v, dist: nd})
		}
	}
}

func (s *search) reconstruct(goal *graph.Node) []*graph.Node {
	var rev []*graph.Node
	for id := goal.ID; id != -1; id = s.prev[id] {
		rev = append(rev, s.g.Node(id))
	}
	out := make([]*graph.Node, len(rev))
	for i, n := range rev {
		out[len(rev)-1-i] = n
	}
	return out
}

// nodeItem is a (node, tentative distance) entry of the priority queue.
type nodeItem struct {
	id   int
	dist float64
}

// nodePQ is a min-heap ordered by distance, then by node ID.
type nodePQ []*nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].id < pq[j].id
}

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }

func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
