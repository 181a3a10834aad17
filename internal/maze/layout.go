package maze

import (
	"errors"
	"fmt"
	"strings"

	"pathfinding-sim/internal/graph"
)

// ErrBadLayout is returned when a text layout cannot be read.
var ErrBadLayout = errors.New("maze: malformed layout")

const wallChar = '#'

// Parse reads a text layout. The layout is a (2*depth+1) × (2*width+1) character
// grid where '#' is a wall and any other character is open. Cells sit on odd rows
// and columns and the walls between them on the even ones. The first line is the
// north edge, so z grows upward on the page:
//
//	#####
//	#   #
//	# ###
//	#   #
//	#####
//
// is a 2×2 maze whose only closed interior wall separates (1,0) from (1,1).
func Parse(text string) (*Maze, error) {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, line)
	}
	if len(rows) < 3 || len(rows)%2 == 0 {
		return nil, fmt.Errorf("%w: %d rows, want an odd number of at least 3", ErrBadLayout, len(rows))
	}
	cols := len(rows[0])
	if cols < 3 || cols%2 == 0 {
		return nil, fmt.Errorf("%w: %d columns, want an odd number of at least 3", ErrBadLayout, cols)
	}
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrBadLayout, i+1, len(r), cols)
		}
	}

	width, depth := (cols-1)/2, (len(rows)-1)/2
	m, err := New(width, depth)
	if err != nil {
		return nil, err
	}
	for z := 0; z < depth; z++ {
		row := 2*(depth-1-z) + 1
		for x := 0; x < width; x++ {
			col := 2*x + 1
			if rows[row][col] == wallChar {
				return nil, fmt.Errorf("%w: cell (%d,%d) is a wall", ErrBadLayout, x, z)
			}
			c := &m.cells[m.index(x, z)]
			c.Walls[graph.East] = rows[row][col+1] == wallChar
			c.Walls[graph.West] = rows[row][col-1] == wallChar
			c.Walls[graph.North] = rows[row-1][col] == wallChar
			c.Walls[graph.South] = rows[row+1][col] == wallChar
		}
	}
	return m, nil
}

// String renders the maze in the layout format read by Parse.
func (m *Maze) String() string {
	rows := make([][]byte, 2*m.depth+1)
	for i := range rows {
		rows[i] = []byte(strings.Repeat(string(wallChar), 2*m.width+1))
	}
	for _, c := range m.cells {
		row, col := 2*(m.depth-1-c.Z)+1, 2*c.X+1
		rows[row][col] = ' '
		for _, d := range graph.Directions {
			if c.Walls[d] {
				continue
			}
			switch d {
			case graph.East:
				rows[row][col+1] = ' '
			case graph.West:
				rows[row][col-1] = ' '
			case graph.North:
				rows[row-1][col] = ' '
			case graph.South:
				rows[row+1][col] = ' '
			}
		}
	}
	var sb strings.Builder
	for _, r := range rows {
		sb.Write(r)
		sb.WriteByte('\n')
	}
	return sb.String()
}
