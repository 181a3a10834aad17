package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"pathfinding-sim/internal/config"
	"pathfinding-sim/internal/graph"
	"pathfinding-sim/internal/logging"
	"pathfinding-sim/internal/maze"
	"pathfinding-sim/internal/simulation"
	"pathfinding-sim/internal/world"
)

func main() {
	configPath := flag.String("config", "", "YAML scenario file (built-in defaults when empty)")
	steps := flag.Int("steps", 0, "override simulation.steps")
	seed := flag.Int64("seed", 0, "override maze.seed")
	timeScale := flag.Float64("time-scale", 0, "override simulation.time_scale (1, 1.5, 2, 3 or any positive value)")
	flag.Parse()

	// --- Configuration ---
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}
		cfg = loaded
	}
	if *steps > 0 {
		cfg.Simulation.Steps = *steps
	}
	if *seed != 0 {
		cfg.Maze.Seed = *seed
	}
	if *timeScale > 0 {
		cfg.Simulation.TimeScale = *timeScale
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	logger := logging.NewSlogLogger(level, cfg.Logging.Format, os.Stderr)

	// --- Environment ---
	m, err := buildMaze(cfg.Maze)
	if err != nil {
		log.Fatalf("Error building maze: %v", err)
	}
	fmt.Printf("Maze %dx%d:\n%s\n", m.Width(), m.Depth(), m)

	builder := graph.NewBuilder(
		graph.WithSpacing(cfg.Maze.Spacing),
		graph.WithEpsilon(cfg.Maze.Epsilon),
		graph.WithNodeHeight(cfg.Maze.NodeHeight),
		graph.WithLogger(logger),
	)
	g := builder.FromCells(m.Cells(cfg.Maze.Spacing))
	fmt.Printf("Graph %s: %d nodes, %d directed edges, %d construction warnings\n",
		g.ID(), g.Len(), g.EdgeCount(), len(builder.Warnings()))
	w := world.NewBoxWorld(m.Colliders(cfg.Maze.Spacing, cfg.Maze.WallThickness, cfg.Maze.WallHeight), logger)

	agentCfg, err := agentConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Create Simulation ---
	sim, err := simulation.NewSimulation(g, w, cfg.Simulation.TickDuration,
		simulation.WithTimeScale(cfg.Simulation.TimeScale),
		simulation.WithConcurrency(cfg.Simulation.Concurrency),
		simulation.WithPrintEvery(cfg.Simulation.PrintEvery),
		simulation.WithAgentConfig(agentCfg),
		simulation.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Error creating simulation: %v", err)
	}

	// --- Add Agents ---
	for i, r := range cfg.Routes {
		goal := r.Goal
		if goal == "" {
			goal = maze.CellName(m.Width()-1, m.Depth()-1)
		}
		if _, err := sim.AddAgentByName(r.Start, goal); err != nil {
			log.Printf("Warning: could not add agent %d (%s -> %s): %v", i, r.Start, goal, err)
		}
	}

	// --- Run Simulation ---
	stats := sim.Run(cfg.Simulation.Steps)
	fmt.Println()
	stats.Fprint(os.Stdout)

	fmt.Println("\nApplication finished.")
}
