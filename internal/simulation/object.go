package simulation

import (
	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/graph"
	"pathfinding-sim/internal/world"
)

// Environment is the shared, read-only world every object is updated against.
type Environment struct {
	Graph *graph.Graph
	World world.RayCaster
}

// Object defines the interface for any object within the simulation.
type Object interface {
	// ID returns the unique identifier of the object.
	ID() string
	// Position returns the current position of the object.
	Position() common.Vector
	// Update advances the object by deltaTime seconds. It is called concurrently
	// for different objects and must only touch the object's own state.
	Update(deltaTime float64, env Environment) error
}
