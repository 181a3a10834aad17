package main

import (
	"pathfinding-sim/internal/config"
	"pathfinding-sim/internal/kinematics"
	"pathfinding-sim/internal/maze"
	"pathfinding-sim/internal/navigation"
	"pathfinding-sim/internal/simulation"
	"pathfinding-sim/internal/steering"
	"pathfinding-sim/internal/world"
)

// buildMaze parses the configured layout or generates one.
func buildMaze(c config.Maze) (*maze.Maze, error) {
	if c.Layout != "" {
		return maze.Parse(c.Layout)
	}
	return maze.Generate(maze.Config{Width: c.Width, Depth: c.Depth, Braiding: c.Braiding, Seed: c.Seed})
}

// agentConfig turns the agent and steering sections into spawn options.
func agentConfig(cfg config.Config) (simulation.AgentConfig, error) {
	mode, err := cfg.Steering.Mode()
	if err != nil {
		return simulation.AgentConfig{}, err
	}
	s := cfg.Steering
	return simulation.AgentConfig{
		Body: []kinematics.Option{
			kinematics.WithMaxSpeed(cfg.Agent.MaxSpeed),
			kinematics.WithMaxAngularSpeed(cfg.Agent.MaxAngularSpeed),
			kinematics.WithSkinWidth(cfg.Agent.SkinWidth),
			kinematics.WithCollisionIterations(cfg.Agent.CollisionIterations),
			kinematics.WithCollisionMask(world.LayerWall),
		},
		Navigation: []navigation.Option{
			navigation.WithArrivalRadius(s.ArrivalRadius),
			navigation.WithMaxAcceleration(s.MaxAcceleration),
			navigation.WithWeights(s.PathWeight, s.AvoidWeight),
			navigation.WithAvoidMode(mode),
			navigation.WithObstacleMask(world.LayerWall),
			navigation.WithTuning(func(path *steering.FollowPath, avoid *steering.ObstacleAvoidance, _ *steering.LookWhereGoing, _ *steering.Arrive) {
				path.WaypointRadius = s.WaypointRadius
				avoid.RayCount = s.RayCount
				avoid.RaySpread = s.RaySpread
				avoid.LookAhead = s.LookAhead
				avoid.AvoidDistance = s.AvoidDistance
			}),
		},
	}, nil
}
