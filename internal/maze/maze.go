// Package maze models a rectangular grid of cells separated by walls. It is the
// adjacency source for graph construction and the collider source for the world.
//
// Cell (x, z) sits at (x*spacing, 0, z*spacing). Walls are stored per cell and
// per graph.Direction; the shared wall of two neighbors is always kept in sync.
package maze

import (
	"errors"
	"fmt"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/graph"
	"pathfinding-sim/internal/world"

	"github.com/paulmach/orb"
)

var (
	// ErrInvalidSize is returned for a maze without cells.
	ErrInvalidSize = errors.New("maze: width and depth must be positive")
	// ErrOutOfBounds is returned for a cell or wall outside the grid.
	ErrOutOfBounds = errors.New("maze: cell out of bounds")
)

// Cell is one maze cell.
type Cell struct {
	X, Z  int
	Walls [4]bool // indexed by graph.Direction, true when closed
}

// Open reports whether the wall toward d is open.
func (c Cell) Open(d graph.Direction) bool { return !c.Walls[d] }

// Maze is a width × depth grid. Cells start fully walled in.
type Maze struct {
	width, depth int
	cells        []Cell
}

// New returns a maze with every wall closed.
func New(width, depth int) (*Maze, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, depth)
	}
	m := &Maze{width: width, depth: depth, cells: make([]Cell, width*depth)}
	for z := 0; z < depth; z++ {
		for x := 0; x < width; x++ {
			c := &m.cells[m.index(x, z)]
			c.X, c.Z = x, z
			c.Walls = [4]bool{true, true, true, true}
		}
	}
	return m, nil
}

// Width returns the number of cells along X.
func (m *Maze) Width() int { return m.width }

// Depth returns the number of cells along Z.
func (m *Maze) Depth() int { return m.depth }

func (m *Maze) index(x, z int) int { return z*m.width + x }

func (m *Maze) inBounds(x, z int) bool {
	return x >= 0 && x < m.width && z >= 0 && z < m.depth
}

// Cell returns the cell at (x, z).
func (m *Maze) Cell(x, z int) (Cell, bool) {
	if !m.inBounds(x, z) {
		return Cell{}, false
	}
	return m.cells[m.index(x, z)], true
}

// neighbor returns the coordinates one step from (x, z) toward d.
func neighbor(x, z int, d graph.Direction) (int, int) {
	switch d {
	case graph.East:
		return x + 1, z
	case graph.West:
		return x - 1, z
	case graph.North:
		return x, z + 1
	default:
		return x, z - 1
	}
}

// SetWall opens or closes the wall of (x, z) toward d, and the matching wall of
// the neighbor when there is one.
func (m *Maze) SetWall(x, z int, d graph.Direction, closed bool) error {
	if !m.inBounds(x, z) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, z)
	}
	m.cells[m.index(x, z)].Walls[d] = closed
	if nx, nz := neighbor(x, z, d); m.inBounds(nx, nz) {
		m.cells[m.index(nx, nz)].Walls[d.Opposite()] = closed
	}
	return nil
}

// Wall reports whether the wall of (x, z) toward d is closed. Walls outside the
// grid are closed.
func (m *Maze) Wall(x, z int, d graph.Direction) bool {
	if !m.inBounds(x, z) {
		return true
	}
	return m.cells[m.index(x, z)].Walls[d]
}

// CellName is the graph node name used for the cell at (x, z).
func CellName(x, z int) string { return fmt.Sprintf("%d,%d", x, z) }

// CellPosition returns the ground position of the cell center.
func CellPosition(x, z int, spacing float64) common.Vector {
	return common.Vector{X: float64(x) * spacing, Z: float64(z) * spacing}
}

// Cells exports the adjacency facts for graph construction.
func (m *Maze) Cells(spacing float64) []graph.CellRecord {
	records := make([]graph.CellRecord, 0, len(m.cells))
	for _, c := range m.cells {
		pos := CellPosition(c.X, c.Z, spacing)
		open := make([]bool, len(graph.Directions))
		for _, d := range graph.Directions {
			open[d] = c.Open(d)
		}
		records = append(records, graph.CellRecord{Name: CellName(c.X, c.Z), Position: &pos, Open: open})
	}
	return records
}

// Bounds returns the ground footprint of the whole maze, outer walls included.
func (m *Maze) Bounds(spacing float64) orb.Bound {
	half := spacing / 2
	return orb.Bound{
		Min: orb.Point{-half, -half},
		Max: orb.Point{float64(m.width)*spacing - half, float64(m.depth)*spacing - half},
	}
}

// Colliders returns one wall box per closed wall and a floor slab below y=0.
// Each shared wall is emitted once.
func (m *Maze) Colliders(spacing, thickness, height float64) []world.Box {
	var boxes []world.Box
	half, t := spacing/2, thickness/2
	for _, c := range m.cells {
		cx, cz := float64(c.X)*spacing, float64(c.Z)*spacing
		for _, d := range graph.Directions {
			if !c.Walls[d] || !m.owns(c, d) {
				continue
			}
			var fp orb.Bound
			switch d {
			case graph.East, graph.West:
				x := cx + half
				if d == graph.West {
					x = cx - half
				}
				fp = orb.Bound{Min: orb.Point{x - t, cz - half - t}, Max: orb.Point{x + t, cz + half + t}}
			default:
				z := cz + half
				if d == graph.South {
					z = cz - half
				}
				fp = orb.Bound{Min: orb.Point{cx - half - t, z - t}, Max: orb.Point{cx + half + t, z + t}}
			}
			id := fmt.Sprintf("wall-%s-%s", CellName(c.X, c.Z), d)
			boxes = append(boxes, world.FromFootprint(id, fp, 0, height, world.LayerWall))
		}
	}
	boxes = append(boxes, world.FromFootprint("floor", m.Bounds(spacing), -0.1, 0, world.LayerFloor))
	return boxes
}

// owns reports whether c emits its wall toward d. Interior walls belong to the
// cell on their west or south side.
func (m *Maze) owns(c Cell, d graph.Direction) bool {
	switch d {
	case graph.West:
		return c.X == 0
	case graph.South:
		return c.Z == 0
	default:
		return true
	}
}

// OpenCount returns the number of open interior passages.
func (m *Maze) OpenCount() int {
	n := 0
	for _, c := range m.cells {
		if c.X+1 < m.width && c.Open(graph.East) {
			n++
		}
		if c.Z+1 < m.depth && c.Open(graph.North) {
			n++
		}
	}
	return n
}
