package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pathfinding-sim/internal/steering"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.5, cfg.Steering.ArrivalRadius)
	assert.Equal(t, 0.3, cfg.Steering.AvoidWeight)
	assert.Equal(t, 0.05, cfg.Agent.SkinWidth)
	assert.Equal(t, 3, cfg.Agent.CollisionIterations)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
simulation:
  tick_duration: 50ms
  time_scale: 2
maze:
  width: 4
  seed: 99
routes:
  - start: "0,0"
    goal: "3,7"
  - start: "1,1"
steering:
  avoid_mode: normal
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickDuration)
	assert.Equal(t, 2.0, cfg.Simulation.TimeScale)
	assert.Equal(t, 3000, cfg.Simulation.Steps, "kept from defaults")
	assert.Equal(t, 4, cfg.Maze.Width)
	assert.Equal(t, 8, cfg.Maze.Depth, "kept from defaults")
	assert.Equal(t, int64(99), cfg.Maze.Seed)
	require.Len(t, cfg.Routes, 2)
	assert.Equal(t, Route{Start: "0,0", Goal: "3,7"}, cfg.Routes[0])

	mode, err := cfg.Steering.Mode()
	require.NoError(t, err)
	assert.Equal(t, steering.Normal, mode)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"NegativeScale":   "simulation: {time_scale: -1}",
		"ZeroSpeed":       "agent: {max_speed: 0}",
		"NoRoutes":        "routes: []",
		"UnknownMode":     "steering: {avoid_mode: sideways}",
		"UnknownLevel":    "logging: {level: loud}",
		"UnknownFormat":   "logging: {format: xml}",
		"ThickWalls":      "maze: {wall_thickness: 2}",
		"BraidingTooHigh": "maze: {braiding: 1.5}",
		"NegativeAvoid":   "steering: {avoid_distance: -4}",
		"ZeroAvoid":       "steering: {avoid_distance: 0}",
		"NegativeSpread":  "steering: {ray_spread: -60}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse([]byte("simulation: [not, a, map]"))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Agent.MaxSpeed = 0
	cfg.Steering.RayCount = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "agent.max_speed")
	assert.Contains(t, err.Error(), "steering.ray_count")
}

func TestValidate_LayoutSkipsSize(t *testing.T) {
	cfg := Default()
	cfg.Maze.Layout = "###\n# #\n###\n"
	cfg.Maze.Width = 0
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  steps: 10\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Simulation.Steps)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ExampleScenario(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Maze.Width)
	assert.Equal(t, int64(42), cfg.Maze.Seed)
	assert.Equal(t, 1.5, cfg.Simulation.TimeScale)
	assert.Equal(t, 20*time.Millisecond, cfg.Simulation.TickDuration)
	require.Len(t, cfg.Routes, 3)
	assert.Empty(t, cfg.Routes[0].Goal)
	assert.Equal(t, 0.2, cfg.Maze.NodeHeight, "unset keys keep their defaults")
}
