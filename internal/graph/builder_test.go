package graph

import (
	"bytes"
	"fmt"
	"testing"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(x, z float64) *common.Vector {
	return &common.Vector{X: x, Z: z}
}

// closedGrid returns w×d cell records with every wall closed.
func closedGrid(w, d int) []CellRecord {
	recs := make([]CellRecord, 0, w*d)
	for x := 0; x < w; x++ {
		for z := 0; z < d; z++ {
			recs = append(recs, CellRecord{
				Name:     fmt.Sprintf("%d,%d", x, z),
				Position: pos(float64(x), float64(z)),
				Open:     make([]bool, 4),
			})
		}
	}
	return recs
}

func record(t *testing.T, recs []CellRecord, name string) *CellRecord {
	t.Helper()
	for i := range recs {
		if recs[i].Name == name {
			return &recs[i]
		}
	}
	t.Fatalf("no record %q", name)
	return nil
}

func TestFromCells_SingleOpenWall(t *testing.T) {
	recs := closedGrid(2, 2)
	record(t, recs, "0,0").Open[East] = true
	record(t, recs, "1,0").Open[West] = true

	g := NewBuilder().FromCells(recs)
	require.Equal(t, 4, g.Len())
	assert.Equal(t, 2, g.EdgeCount(), "one edge pair")

	a, _ := g.NodeByName("0,0")
	b, _ := g.NodeByName("1,0")
	assert.True(t, g.HasEdge(a, b))
	assert.True(t, g.HasEdge(b, a))

	for _, n := range g.Nodes() {
		if n == a || n == b {
			assert.Len(t, g.Neighbors(n), 1, n.Name)
			continue
		}
		assert.Empty(t, g.Neighbors(n), n.Name)
	}

	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.InDelta(t, 1.0, edges[0].Cost, 1e-12)
}

func TestFromCells_OneSidedOpeningIsNotAnEdge(t *testing.T) {
	recs := closedGrid(2, 1)
	record(t, recs, "0,0").Open[East] = true

	g := NewBuilder().FromCells(recs)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestFromCells_NodeHeightAndSpacing(t *testing.T) {
	recs := []CellRecord{
		{Name: "a", Position: pos(0, 0), Open: []bool{false, false, true, false}},
		{Name: "b", Position: pos(0, 2), Open: []bool{false, false, false, true}},
	}
	g := NewBuilder(WithSpacing(2), WithNodeHeight(0.5)).FromCells(recs)

	a, ok := g.NodeByName("a")
	require.True(t, ok)
	assert.InDelta(t, 0.5, a.Position.Y, 1e-12)
	require.Len(t, a.ConnectsTo(), 1)
	assert.Equal(t, "b", a.ConnectsTo()[0].Name)
	assert.InDelta(t, 2.0, g.Neighbors(a)[0].Cost, 1e-12)
}

func TestFromCells_NeighborWithinEpsilon(t *testing.T) {
	recs := []CellRecord{
		{Name: "a", Position: pos(0, 0), Open: []bool{true, false, false, false}},
		{Name: "b", Position: pos(1.05, 0), Open: []bool{false, true, false, false}},
	}
	assert.Equal(t, 2, NewBuilder().FromCells(recs).EdgeCount())
	assert.Equal(t, 0, NewBuilder(WithEpsilon(0.01)).FromCells(recs).EdgeCount())
}

func TestFromCells_NeighborAcrossBucketBoundary(t *testing.T) {
	open := func() []bool { return []bool{true, true, true, true} }
	recs := []CellRecord{
		{Name: "a", Position: pos(0.5, 0.5), Open: open()},
		{Name: "b", Position: pos(1.45, 0.5), Open: open()},
		{Name: "c", Position: pos(0.5, 1.55), Open: open()},
		{Name: "d", Position: pos(1.5, 1.5), Open: open()},
	}
	g := NewBuilder().FromCells(recs)

	node := func(name string) *Node {
		n, ok := g.NodeByName(name)
		require.True(t, ok)
		return n
	}
	assert.True(t, g.HasEdge(node("a"), node("b")))
	assert.True(t, g.HasEdge(node("a"), node("c")))
	assert.True(t, g.HasEdge(node("b"), node("d")))
	assert.True(t, g.HasEdge(node("c"), node("d")))
	assert.False(t, g.HasEdge(node("a"), node("d")))
	assert.Equal(t, 8, g.EdgeCount())
}

func TestFromCells_MalformedRecordsAreSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogLogger(logging.LogLevelWarn, "text", &buf)

	recs := closedGrid(2, 1)
	record(t, recs, "0,0").Open[East] = true
	record(t, recs, "1,0").Open[West] = true
	recs = append(recs,
		CellRecord{Name: "nopos", Open: make([]bool, 4)},
		CellRecord{Name: "short", Position: pos(5, 5), Open: []bool{true}},
		CellRecord{Name: "0,0", Position: pos(7, 7), Open: make([]bool, 4)},
	)

	b := NewBuilder(WithLogger(logger))
	g := b.FromCells(recs)

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 2, g.EdgeCount())
	require.Len(t, b.Warnings(), 3)
	assert.Equal(t, "nopos", b.Warnings()[0].Cell)
	assert.Contains(t, b.Warnings()[1].Error(), "wall states")
	assert.Contains(t, b.Warnings()[2].Reason, "duplicate")
	assert.Contains(t, buf.String(), "construction warning")
}

func TestFromPoints_ConnectsWithinSpacing(t *testing.T) {
	pts := []common.Vector{{X: 0}, {X: 1}, {X: 2}, {X: 3.5}}
	g := NewBuilder().FromPoints(pts)

	require.Equal(t, 4, g.Len())
	assert.True(t, g.HasEdge(g.Node(0), g.Node(1)))
	assert.True(t, g.HasEdge(g.Node(1), g.Node(2)))
	assert.True(t, g.HasEdge(g.Node(2), g.Node(1)))
	assert.False(t, g.HasEdge(g.Node(0), g.Node(2)))
	assert.False(t, g.HasEdge(g.Node(2), g.Node(3)), "1.5 apart exceeds spacing")
	assert.Equal(t, 4, g.EdgeCount())
}

func TestGraph_NearestAndContains(t *testing.T) {
	g := NewBuilder().FromCells(closedGrid(3, 3))

	n, d := g.Nearest(common.Vector{X: 1.9, Z: 0.2})
	require.NotNil(t, n)
	assert.Equal(t, "2,0", n.Name)
	assert.InDelta(t, common.Distance(common.Vector{X: 1.9, Z: 0.2}, n.Position), d, 1e-12)

	other := NewBuilder().FromCells(closedGrid(3, 3))
	assert.NotEqual(t, g.ID(), other.ID())
	assert.True(t, g.Contains(n))
	assert.False(t, other.Contains(n), "node from another build")
	assert.Nil(t, g.Node(99))
	assert.Nil(t, g.Neighbors(other.Node(0)))
}

func TestGraph_NearestOnEmptyGraph(t *testing.T) {
	g := NewBuilder().FromCells(nil)
	n, _ := g.Nearest(common.Vector{})
	assert.Nil(t, n)
}

func TestDirectionOpposite(t *testing.T) {
	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite())
		off := d.Offset()
		back := d.Opposite().Offset()
		assert.Equal(t, common.Vector{}, common.Vector{X: off.X + back.X, Y: off.Y + back.Y, Z: off.Z + back.Z})
	}
}
