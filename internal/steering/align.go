package steering

import (
	"math"

	"pathfinding-sim/internal/common"
)

// alignedEpsilon is the angular delta, in degrees, below which a character is
// considered to face its target.
const alignedEpsilon = 1e-6

// Align turns a character to match the target's orientation.
type Align struct {
	Target                 *Target
	MaxAngularAcceleration float64 // degrees/s²
	MaxRotation            float64 // degrees/s
	SlowRadius             float64 // degrees from the target where the turn starts slowing
	TimeToTarget           float64
}

// NewAlign returns an Align with the default tuning.
func NewAlign(target *Target) *Align {
	return &Align{
		Target:                 target,
		MaxAngularAcceleration: 10,
		MaxRotation:            720,
		SlowRadius:             45,
		TimeToTarget:           0.1,
	}
}

// Steering implements Behavior.
func (a *Align) Steering(c Character) Command {
	if a.Target == nil {
		return Command{}
	}
	return a.Face(c, a.Target.Orientation)
}

// Face returns the angular acceleration that turns c toward angle.
func (a *Align) Face(c Character, angle float64) Command {
	rotation := common.DeltaAngle(c.Orientation(), angle)
	size := math.Abs(rotation)

	targetRotation := 0.0
	if size >= alignedEpsilon {
		if size > a.SlowRadius || a.SlowRadius <= common.Epsilon {
			targetRotation = a.MaxRotation
		} else {
			targetRotation = a.MaxRotation * size / a.SlowRadius
		}
		targetRotation = math.Copysign(targetRotation, rotation)
	}

	current := c.AngularVelocity()
	if math.IsNaN(current) || math.IsInf(current, 0) {
		current = 0
	}
	angular := targetRotation - current
	if a.TimeToTarget > common.Epsilon {
		angular /= a.TimeToTarget
	}
	if math.Abs(angular) > a.MaxAngularAcceleration {
		angular = math.Copysign(a.MaxAngularAcceleration, angular)
	}
	return Command{Angular: angular}
}

// LookWhereGoing is an Align that faces the direction of travel.
type LookWhereGoing struct {
	Align
	MinSpeed float64 // below this horizontal speed the character keeps its facing
}

// NewLookWhereGoing returns a LookWhereGoing with the default Align tuning.
func NewLookWhereGoing() *LookWhereGoing {
	return &LookWhereGoing{Align: *NewAlign(nil), MinSpeed: 1e-3}
}

// Steering implements Behavior.
func (l *LookWhereGoing) Steering(c Character) Command {
	v := common.Horizontal(c.LinearVelocity())
	if v.X*v.X+v.Z*v.Z < l.MinSpeed*l.MinSpeed {
		return Command{}
	}
	heading, ok := common.Heading(v)
	if !ok {
		return Command{}
	}
	return l.Face(c, heading)
}
