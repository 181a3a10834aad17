package pathsearch

import (
	"errors"
	"fmt"
	"testing"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(n int) *graph.Graph {
	pts := make([]common.Vector, n)
	for i := range pts {
		pts[i] = common.Vector{X: float64(i)}
	}
	return graph.NewBuilder().FromPoints(pts)
}

// openGrid builds a w×d grid of cells with every interior wall open.
func openGrid(w, d int) *graph.Graph {
	recs := make([]graph.CellRecord, 0, w*d)
	for x := 0; x < w; x++ {
		for z := 0; z < d; z++ {
			p := common.Vector{X: float64(x), Z: float64(z)}
			recs = append(recs, graph.CellRecord{
				Name:     fmt.Sprintf("%d,%d", x, z),
				Position: &p,
				Open:     []bool{x < w-1, x > 0, z < d-1, z > 0},
			})
		}
	}
	return graph.NewBuilder().FromCells(recs)
}

func names(r Route) []string {
	out := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		out[i] = n.Name
	}
	return out
}

func TestFindRoute_Chain(t *testing.T) {
	const n = 8
	g := chain(n)

	r, err := FindRoute(g, g.Node(0), g.Node(n-1))
	require.NoError(t, err)
	require.Equal(t, n, r.Len())
	for i, node := range r.Nodes {
		assert.Equal(t, i, node.ID)
	}
	assert.InDelta(t, float64(n-1), r.Cost, 1e-9)
	assert.InDelta(t, r.Cost, r.EdgeCost(), 1e-9)
	assert.Same(t, g.Node(0), r.Start())
	assert.Same(t, g.Node(n-1), r.Goal())
	assert.True(t, r.Valid(g))
}

func TestFindRoute_PicksCheapestOfSeveral(t *testing.T) {
	// S=0, A=1, B=2, G=3. S–G is out of reach; S–A–G costs ~3.61, S–B–G ~3.16.
	pts := []common.Vector{
		{X: 0},
		{X: 1.5, Z: 1.0},
		{X: 1.5, Z: -0.5},
		{X: 3},
	}
	g := graph.NewBuilder(graph.WithSpacing(2), graph.WithEpsilon(0)).FromPoints(pts)
	require.False(t, g.HasEdge(g.Node(0), g.Node(3)))

	r, err := FindRoute(g, g.Node(0), g.Node(3))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, []int{r.Nodes[0].ID, r.Nodes[1].ID, r.Nodes[2].ID})
	assert.InDelta(t, r.EdgeCost(), r.Cost, 1e-12)
	assert.Less(t, r.Cost, 3.2)
}

func TestFindRoute_StartEqualsGoal(t *testing.T) {
	g := chain(3)
	r, err := FindRoute(g, g.Node(1), g.Node(1))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 0.0, r.Cost)
}

func TestFindRoute_Unreachable(t *testing.T) {
	pts := []common.Vector{{X: 0}, {X: 1}, {X: 10}, {X: 11}}
	g := graph.NewBuilder().FromPoints(pts)

	r, err := FindRoute(g, g.Node(0), g.Node(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPathFound))
	assert.Nil(t, r.Nodes)
}

func TestFindRoute_InvalidEndpoints(t *testing.T) {
	g := chain(3)
	other := chain(3)

	cases := []struct {
		name        string
		start, goal *graph.Node
	}{
		{"NilStart", nil, g.Node(0)},
		{"NilGoal", g.Node(0), nil},
		{"ForeignStart", other.Node(0), g.Node(2)},
		{"ForeignGoal", g.Node(0), other.Node(2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FindRoute(g, tc.start, tc.goal)
			assert.ErrorIs(t, err, ErrInvalidEndpoint)
		})
	}

	_, err := FindRoute(nil, g.Node(0), g.Node(1))
	assert.ErrorIs(t, err, ErrNilGraph)
}

func TestFindRoute_TieBreakIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		g := openGrid(2, 2)
		start, _ := g.NodeByName("0,0")
		goal, _ := g.NodeByName("1,1")

		r, err := FindRoute(g, start, goal)
		require.NoError(t, err)
		assert.Equal(t, []string{"0,0", "0,1", "1,1"}, names(r), "lowest node ID wins ties")
	}
}

func TestFindRoute_GridWithCycles(t *testing.T) {
	g := openGrid(5, 5)
	start, _ := g.NodeByName("0,0")
	goal, _ := g.NodeByName("4,4")

	r, err := FindRoute(g, start, goal)
	require.NoError(t, err)
	assert.Equal(t, 9, r.Len())
	assert.InDelta(t, 8.0, r.Cost, 1e-9)
	for i := 1; i < r.Len(); i++ {
		assert.True(t, g.HasEdge(r.Nodes[i-1], r.Nodes[i]))
	}
}

func TestRoute_ValidAgainstRebuiltGraph(t *testing.T) {
	g := chain(3)
	r, err := FindRoute(g, g.Node(0), g.Node(2))
	require.NoError(t, err)

	rebuilt := chain(3)
	assert.False(t, r.Valid(rebuilt))
	assert.False(t, r.Valid(nil))
	assert.Len(t, r.Positions(), 3)
}
