// Package steering implements the per-tick steering behaviors that turn an agent's
// kinematic state and a target into an acceleration command.
//
// Behaviors are pure functions of their inputs, FollowPath excepted: it owns the
// waypoint cursor. Angles are in degrees and angular deltas always take the
// shortest signed rotation.
package steering

import (
	"fmt"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/graph"
)

// Command is the acceleration requested for one tick.
type Command struct {
	Linear  common.Vector // units/s²
	Angular float64       // degrees/s²
}

// IsZero reports whether the command requests no acceleration at all.
func (c Command) IsZero() bool {
	return c.Linear == (common.Vector{}) && c.Angular == 0
}

func (c Command) String() string {
	return fmt.Sprintf("Command{Linear: %s, Angular: %.3f}", common.Format(c.Linear), c.Angular)
}

// Character is the read-only view of an agent that behaviors steer.
type Character interface {
	Position() common.Vector
	Orientation() float64 // yaw in degrees
	LinearVelocity() common.Vector
	AngularVelocity() float64 // degrees/s
}

// Behavior produces a steering command for a character.
type Behavior interface {
	Steering(c Character) Command
}

// Target is a fixed point and facing that a behavior steers toward.
type Target struct {
	Position    common.Vector
	Orientation float64
}

// NodeTarget returns a target placed on a graph node.
func NodeTarget(n *graph.Node) *Target {
	if n == nil {
		return nil
	}
	return &Target{Position: n.Position}
}
