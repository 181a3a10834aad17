package graph

import (
	"fmt"
	"math"
	"sort"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/logging"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Direction is one of the four horizontal neighbor directions of a cell.
type Direction int

const (
	East  Direction = iota // +X
	West                   // -X
	North                  // +Z
	South                  // -Z
)

// Directions lists the four directions in index order.
var Directions = [4]Direction{East, West, North, South}

// Opposite returns the direction pointing back.
func (d Direction) Opposite() Direction {
	switch d {
	case East:
		return West
	case West:
		return East
	case North:
		return South
	default:
		return North
	}
}

// Offset returns the unit ground-plane step for d.
func (d Direction) Offset() common.Vector {
	switch d {
	case East:
		return common.Vector{X: 1}
	case West:
		return common.Vector{X: -1}
	case North:
		return common.Vector{Z: 1}
	default:
		return common.Vector{Z: -1}
	}
}

func (d Direction) String() string {
	switch d {
	case East:
		return "east"
	case West:
		return "west"
	case North:
		return "north"
	case South:
		return "south"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// CellRecord is one adjacency fact: a cell position and, per Direction, whether
// the wall on that side is open.
type CellRecord struct {
	Name     string
	Position *common.Vector
	Open     []bool // indexed by Direction, len 4
}

// ConstructionWarning reports an adjacency record that was skipped.
type ConstructionWarning struct {
	Cell   string
	Reason string
}

func (w ConstructionWarning) Error() string {
	return fmt.Sprintf("graph: skipped cell %q: %s", w.Cell, w.Reason)
}

// Builder turns adjacency facts into a Graph. It is a short-lived object:
// the cell lookup it keeps while building is dropped with it.
type Builder struct {
	spacing    float64
	epsilon    float64
	nodeHeight float64
	logger     logging.Logger
	warnings   []ConstructionWarning
}

// Option configures a Builder.
type Option func(*Builder)

// WithSpacing sets the distance between adjacent cell centers.
func WithSpacing(s float64) Option {
	return func(b *Builder) { b.spacing = s }
}

// WithEpsilon sets the tolerance used when matching neighbor positions.
func WithEpsilon(e float64) Option {
	return func(b *Builder) { b.epsilon = e }
}

// WithNodeHeight sets the vertical offset of a node above its cell.
func WithNodeHeight(h float64) Option {
	return func(b *Builder) { b.nodeHeight = h }
}

// WithLogger sets the logger used for construction warnings.
func WithLogger(l logging.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a builder with spacing 1, epsilon 0.1 and node height 0.2.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		spacing:    1,
		epsilon:    0.1,
		nodeHeight: 0.2,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.OrNoOp(b.logger)
	return b
}

// Warnings returns the records skipped by the last build.
func (b *Builder) Warnings() []ConstructionWarning {
	return b.warnings
}

func (b *Builder) warn(cell, reason string) {
	w := ConstructionWarning{Cell: cell, Reason: reason}
	b.warnings = append(b.warnings, w)
	b.logger.Warn("construction warning", "cell", cell, "reason", reason)
}

type cellEntry struct {
	record CellRecord
	ground orb.Point
	node   *Node
}

// FromCells builds a graph with one node per valid cell. Two nodes are joined
// by an edge pair iff the cells are adjacent and both report the shared wall open.
func (b *Builder) FromCells(records []CellRecord) *Graph {
	b.warnings = nil
	g := newGraph()

	cells := make([]*cellEntry, 0, len(records))
	lookup := make(map[[2]int64][]*cellEntry, len(records))

	for i, rec := range records {
		name := rec.Name
		if name == "" {
			name = fmt.Sprintf("cell-%d", i)
		}
		switch {
		case rec.Position == nil:
			b.warn(name, "missing position")
			continue
		case !common.IsFinite(*rec.Position):
			b.warn(name, "non-finite position")
			continue
		case len(rec.Open) != len(Directions):
			b.warn(name, fmt.Sprintf("expected %d wall states, got %d", len(Directions), len(rec.Open)))
			continue
		}
		if _, dup := g.byName[name]; dup {
			b.warn(name, "duplicate cell name")
			continue
		}

		pos := r3.Add(*rec.Position, r3.Scale(b.nodeHeight, common.Up))
		n := g.addNode(name, pos)
		ce := &cellEntry{
			record: rec,
			ground: orb.Point{rec.Position.X, rec.Position.Z},
			node:   n,
		}
		cells = append(cells, ce)
		key := b.gridKey(ce.ground)
		lookup[key] = append(lookup[key], ce)
	}

	for _, ce := range cells {
		// East and North only: each adjacent pair is visited once.
		for _, d := range [...]Direction{East, North} {
			nb := b.findNeighbor(lookup, ce, d)
			if nb == nil {
				continue
			}
			if ce.record.Open[d] && nb.record.Open[d.Opposite()] {
				g.connect(ce.node, nb.node)
				g.connect(nb.node, ce.node)
			}
		}
	}

	g.buildIndex(b.logger)
	b.logger.Info("graph built", "graph", g.id, "nodes", g.Len(), "edges", g.edges, "skipped", len(b.warnings))
	return g
}

func (b *Builder) gridKey(p orb.Point) [2]int64 {
	return [2]int64{int64(math.Round(p.X() / b.spacing)), int64(math.Round(p.Y() / b.spacing))}
}

// findNeighbor returns the cell closest to the expected neighbor position, if
// one lies within epsilon of it. A match can round into an adjacent bucket, so
// every bucket epsilon can reach is scanned.
func (b *Builder) findNeighbor(lookup map[[2]int64][]*cellEntry, ce *cellEntry, d Direction) *cellEntry {
	off := d.Offset()
	want := orb.Point{ce.ground.X() + off.X*b.spacing, ce.ground.Y() + off.Z*b.spacing}
	key := b.gridKey(want)
	reach := int64(math.Ceil(b.epsilon / b.spacing))

	var best *cellEntry
	bestDist := math.Inf(1)
	for dx := -reach; dx <= reach; dx++ {
		for dz := -reach; dz <= reach; dz++ {
			for _, cand := range lookup[[2]int64{key[0] + dx, key[1] + dz}] {
				if cand == ce {
					continue
				}
				dist := planar.Distance(cand.ground, want)
				if dist <= b.epsilon && dist < bestDist {
					best, bestDist = cand, dist
				}
			}
		}
	}
	return best
}

// FromPoints builds a graph connecting every pair of points no farther apart than
// spacing + epsilon.
func (b *Builder) FromPoints(points []common.Vector) *Graph {
	b.warnings = nil
	g := newGraph()

	for i, p := range points {
		name := fmt.Sprintf("point-%d", i)
		if !common.IsFinite(p) {
			b.warn(name, "non-finite position")
			continue
		}
		g.addNode(name, p)
	}
	g.buildIndex(b.logger)

	reach := b.spacing + b.epsilon
	for _, n := range g.nodes {
		box, err := rtreego.NewRect(
			rtreego.Point{n.Position.X - reach, n.Position.Y - reach, n.Position.Z - reach},
			[]float64{2 * reach, 2 * reach, 2 * reach},
		)
		if err != nil {
			continue
		}
		cands := g.index.SearchIntersect(box)
		nbs := make([]*Node, 0, len(cands))
		for _, c := range cands {
			m := c.(*nodeEntry).node
			if m != n && common.Distance(n.Position, m.Position) <= reach {
				nbs = append(nbs, m)
			}
		}
		sortByID(nbs)
		for _, m := range nbs {
			g.connect(n, m)
		}
	}

	b.logger.Info("graph built", "graph", g.id, "nodes", g.Len(), "edges", g.edges, "skipped", len(b.warnings))
	return g
}

func newGraph() *Graph {
	return &Graph{
		id:     uuid.NewString(),
		byName: make(map[string]*Node),
	}
}

func (g *Graph) addNode(name string, pos common.Vector) *Node {
	n := &Node{ID: len(g.nodes), Name: name, Position: pos}
	g.nodes = append(g.nodes, n)
	g.byName[name] = n
	return n
}

func (g *Graph) connect(from, to *Node) {
	from.edges = append(from.edges, Edge{
		From: from,
		To:   to,
		Cost: common.Distance(from.Position, to.Position),
	})
	g.edges++
}

func (g *Graph) buildIndex(logger logging.Logger) {
	g.index = rtreego.NewTree(3, 25, 50)
	for _, n := range g.nodes {
		box, err := pointRect(n.Position)
		if err != nil {
			logger.Warn("node not indexed", "node", n.Name, "error", err)
			continue
		}
		g.index.Insert(&nodeEntry{node: n, box: box})
	}
}

func sortByID(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}
