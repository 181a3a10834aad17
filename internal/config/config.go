// Package config loads the YAML scenario a simulation run is built from.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"pathfinding-sim/internal/logging"
	"pathfinding-sim/internal/steering"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is a complete scenario.
type Config struct {
	Simulation Simulation `yaml:"simulation"`
	Maze       Maze       `yaml:"maze"`
	Agent      Agent      `yaml:"agent"`
	Routes     []Route    `yaml:"routes"`
	Steering   Steering   `yaml:"steering"`
	Logging    Logging    `yaml:"logging"`
}

// Simulation controls the clock.
type Simulation struct {
	TickDuration time.Duration `yaml:"tick_duration"`
	Steps        int           `yaml:"steps"`
	TimeScale    float64       `yaml:"time_scale"`
	Concurrency  int           `yaml:"concurrency"`
	PrintEvery   int           `yaml:"print_every"`
}

// Maze selects the environment. Layout, when set, wins over generation.
type Maze struct {
	Layout        string  `yaml:"layout"`
	Width         int     `yaml:"width"`
	Depth         int     `yaml:"depth"`
	Seed          int64   `yaml:"seed"`
	Braiding      float64 `yaml:"braiding"`
	Spacing       float64 `yaml:"spacing"`
	NodeHeight    float64 `yaml:"node_height"`
	Epsilon       float64 `yaml:"epsilon"`
	WallThickness float64 `yaml:"wall_thickness"`
	WallHeight    float64 `yaml:"wall_height"`
}

// Agent holds the kinematic limits shared by every spawned agent.
type Agent struct {
	MaxSpeed            float64 `yaml:"max_speed"`
	MaxAngularSpeed     float64 `yaml:"max_angular_speed"`
	SkinWidth           float64 `yaml:"skin_width"`
	CollisionIterations int     `yaml:"collision_iterations"`
}

// Route is one agent to spawn, by cell name ("x,z"). An empty goal means the
// cell farthest from the start corner.
type Route struct {
	Start string `yaml:"start"`
	Goal  string `yaml:"goal"`
}

// Steering tunes the blended navigation.
type Steering struct {
	ArrivalRadius   float64 `yaml:"arrival_radius"`
	MaxAcceleration float64 `yaml:"max_acceleration"`
	PathWeight      float64 `yaml:"path_weight"`
	AvoidWeight     float64 `yaml:"avoid_weight"`
	AvoidMode       string  `yaml:"avoid_mode"` // slip or normal
	RayCount        int     `yaml:"ray_count"`
	RaySpread       float64 `yaml:"ray_spread"`
	LookAhead       float64 `yaml:"look_ahead"`
	AvoidDistance   float64 `yaml:"avoid_distance"`
	WaypointRadius  float64 `yaml:"waypoint_radius"`
}

// Logging selects the log output.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in scenario.
func Default() Config {
	return Config{
		Simulation: Simulation{
			TickDuration: 20 * time.Millisecond,
			Steps:        3000,
			TimeScale:    1,
			Concurrency:  4,
			PrintEvery:   250,
		},
		Maze: Maze{
			Width:         8,
			Depth:         8,
			Spacing:       1,
			NodeHeight:    0.2,
			Epsilon:       0.1,
			WallThickness: 0.1,
			WallHeight:    1,
		},
		Agent: Agent{
			MaxSpeed:            10,
			MaxAngularSpeed:     45,
			SkinWidth:           0.05,
			CollisionIterations: 3,
		},
		Routes: []Route{{Start: "0,0"}},
		Steering: Steering{
			ArrivalRadius:   1.5,
			MaxAcceleration: 5,
			PathWeight:      1,
			AvoidWeight:     0.3,
			AvoidMode:       "slip",
			RayCount:        20,
			RaySpread:       60,
			LookAhead:       4,
			AvoidDistance:   4,
			WaypointRadius:  0.4,
		},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load reads path and overlays its values on Default. The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Simulation.TickDuration > 0, "simulation.tick_duration must be positive")
	check(c.Simulation.Steps > 0, "simulation.steps must be positive")
	check(c.Simulation.TimeScale > 0, "simulation.time_scale must be positive")
	check(c.Simulation.Concurrency >= 0, "simulation.concurrency must not be negative")
	if c.Maze.Layout == "" {
		check(c.Maze.Width > 0 && c.Maze.Depth > 0, "maze size %dx%d must be positive", c.Maze.Width, c.Maze.Depth)
	}
	check(c.Maze.Braiding >= 0 && c.Maze.Braiding <= 1, "maze.braiding must be within [0, 1]")
	check(c.Maze.Spacing > 0, "maze.spacing must be positive")
	check(c.Maze.Epsilon > 0, "maze.epsilon must be positive")
	check(c.Maze.WallThickness > 0 && c.Maze.WallThickness < c.Maze.Spacing, "maze.wall_thickness must be positive and thinner than a cell")
	check(c.Maze.WallHeight > 0, "maze.wall_height must be positive")
	check(c.Agent.MaxSpeed > 0, "agent.max_speed must be positive")
	check(c.Agent.MaxAngularSpeed > 0, "agent.max_angular_speed must be positive")
	check(c.Agent.SkinWidth >= 0, "agent.skin_width must not be negative")
	check(c.Agent.CollisionIterations > 0, "agent.collision_iterations must be positive")
	check(len(c.Routes) > 0, "at least one route is required")
	for i, r := range c.Routes {
		check(r.Start != "", "routes[%d].start is required", i)
	}
	check(c.Steering.ArrivalRadius > 0, "steering.arrival_radius must be positive")
	check(c.Steering.MaxAcceleration > 0, "steering.max_acceleration must be positive")
	check(c.Steering.PathWeight >= 0 && c.Steering.AvoidWeight >= 0, "steering weights must not be negative")
	check(c.Steering.RayCount > 0, "steering.ray_count must be positive")
	check(c.Steering.LookAhead > 0, "steering.look_ahead must be positive")
	check(c.Steering.AvoidDistance > 0, "steering.avoid_distance must be positive")
	check(c.Steering.RaySpread >= 0, "steering.ray_spread must not be negative")
	check(c.Steering.WaypointRadius > 0, "steering.waypoint_radius must be positive")
	if _, err := c.Steering.Mode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: logging.level: %v", ErrInvalid, err))
	}
	check(c.Logging.Format == "text" || c.Logging.Format == "json", "logging.format %q must be text or json", c.Logging.Format)

	return errors.Join(errs...)
}

// Mode returns the configured avoidance mode.
func (s Steering) Mode() (steering.AvoidMode, error) {
	switch s.AvoidMode {
	case "", "slip":
		return steering.Slip, nil
	case "normal":
		return steering.Normal, nil
	default:
		return 0, fmt.Errorf("%w: steering.avoid_mode %q must be slip or normal", ErrInvalid, s.AvoidMode)
	}
}
