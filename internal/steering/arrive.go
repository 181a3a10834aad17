package steering

import (
	"math"

	"pathfinding-sim/internal/common"

	"gonum.org/v1/gonum/spatial/r3"
)

// Arrive decelerates toward a stationary target and stops on it.
type Arrive struct {
	Target          *Target
	MaxAcceleration float64
	MaxSpeed        float64
	TargetRadius    float64 // speed scales with (distance-TargetRadius)/TargetRadius inside SlowRadius
	SlowRadius      float64
	TimeToTarget    float64
}

// NewArrive returns an Arrive with the default tuning.
func NewArrive(target *Target) *Arrive {
	return &Arrive{
		Target:          target,
		MaxAcceleration: 5,
		MaxSpeed:        2,
		TargetRadius:    0.2,
		SlowRadius:      1,
		TimeToTarget:    1,
	}
}

// TargetSpeed returns the desired speed at the given distance from the target,
// clamped to [0, MaxSpeed]. Close to the target the scaled speed would turn
// negative; that means stop, never reverse.
func (a *Arrive) TargetSpeed(distance float64) float64 {
	if distance > a.SlowRadius {
		return a.MaxSpeed
	}
	if a.TargetRadius <= common.Epsilon {
		return 0
	}
	speed := a.MaxSpeed * (distance - a.TargetRadius) / a.TargetRadius
	return math.Max(0, math.Min(speed, a.MaxSpeed))
}

// Steering implements Behavior.
func (a *Arrive) Steering(c Character) Command {
	if a.Target == nil {
		return Command{}
	}
	direction := r3.Sub(a.Target.Position, c.Position())
	speed := a.TargetSpeed(r3.Norm(direction))

	// A zero direction leaves the target velocity at rest.
	unit, _ := common.SafeUnit(direction)
	targetVelocity := r3.Scale(speed, unit)

	linear := r3.Sub(targetVelocity, c.LinearVelocity())
	if a.TimeToTarget > common.Epsilon {
		linear = r3.Scale(1/a.TimeToTarget, linear)
	}
	return Command{Linear: common.ClampMagnitude(linear, a.MaxAcceleration)}
}
