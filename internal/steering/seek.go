package steering

import (
	"pathfinding-sim/internal/common"

	"gonum.org/v1/gonum/spatial/r3"
)

// Seek accelerates at full strength toward its target.
type Seek struct {
	Target          *Target
	MaxAcceleration float64
}

// NewSeek creates a Seek toward target.
func NewSeek(target *Target, maxAcceleration float64) *Seek {
	return &Seek{Target: target, MaxAcceleration: maxAcceleration}
}

// TargetPosition returns the point the behavior currently seeks. It is false when
// no target is set.
func (s *Seek) TargetPosition(Character) (common.Vector, bool) {
	if s.Target == nil {
		return common.Vector{}, false
	}
	return s.Target.Position, true
}

// SteerToward returns the full-strength acceleration from c toward point.
func (s *Seek) SteerToward(c Character, point common.Vector) Command {
	dir, ok := common.SafeUnit(r3.Sub(point, c.Position()))
	if !ok {
		return Command{}
	}
	return Command{Linear: r3.Scale(s.MaxAcceleration, dir)}
}

// Steering implements Behavior.
func (s *Seek) Steering(c Character) Command {
	p, ok := s.TargetPosition(c)
	if !ok {
		return Command{}
	}
	return s.SteerToward(c, p)
}
