package maze

import (
	"math/rand"
	"time"

	"pathfinding-sim/internal/graph"
)

// Config controls maze generation.
type Config struct {
	Width, Depth int

	// Braiding is the chance, 0.0 to 1.0, that a dead end gets an extra opening.
	// Zero yields a perfect maze (exactly one route between any two cells); higher
	// values add cycles.
	Braiding float64

	Seed int64 // 0 = random
}

type point struct{ x, z int }

// Generate carves a maze with a randomized depth-first backtracker starting at
// cell (0, 0). The same seed always produces the same maze.
func Generate(cfg Config) (*Maze, error) {
	m, err := New(cfg.Width, cfg.Depth)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	m.backtrack(point{0, 0}, rng)
	if cfg.Braiding > 0 {
		m.braid(cfg.Braiding, rng)
	}
	return m, nil
}

func (m *Maze) backtrack(start point, rng *rand.Rand) {
	visited := make([]bool, len(m.cells))
	visited[m.index(start.x, start.z)] = true
	stack := []point{start}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates := make([]graph.Direction, 0, 4)
		for _, d := range graph.Directions {
			nx, nz := neighbor(curr.x, curr.z, d)
			if m.inBounds(nx, nz) && !visited[m.index(nx, nz)] {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		d := candidates[rng.Intn(len(candidates))]
		nx, nz := neighbor(curr.x, curr.z, d)
		_ = m.SetWall(curr.x, curr.z, d, false)
		visited[m.index(nx, nz)] = true
		stack = append(stack, point{nx, nz})
	}
}

// braid opens one extra interior wall of some dead ends.
func (m *Maze) braid(probability float64, rng *rand.Rand) {
	for i := range m.cells {
		c := m.cells[i]
		if m.exits(c) != 1 || rng.Float64() >= probability {
			continue
		}
		candidates := make([]graph.Direction, 0, 3)
		for _, d := range graph.Directions {
			nx, nz := neighbor(c.X, c.Z, d)
			if c.Walls[d] && m.inBounds(nx, nz) {
				candidates = append(candidates, d)
			}
		}
		if len(candidates) > 0 {
			_ = m.SetWall(c.X, c.Z, candidates[rng.Intn(len(candidates))], false)
		}
	}
}

// exits counts the open walls of c that lead to another cell.
func (m *Maze) exits(c Cell) int {
	n := 0
	for _, d := range graph.Directions {
		if nx, nz := neighbor(c.X, c.Z, d); !c.Walls[d] && m.inBounds(nx, nz) {
			n++
		}
	}
	return n
}
