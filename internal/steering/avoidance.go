package steering

import (
	"math"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/world"

	"gonum.org/v1/gonum/spatial/r3"
)

// AvoidMode selects how an avoidance target is offset from a hit point.
type AvoidMode int

const (
	// Slip slides along the obstacle, to the side with more clearance.
	Slip AvoidMode = iota
	// Normal pushes straight out along the obstacle's horizontal normal.
	Normal
)

func (m AvoidMode) String() string {
	switch m {
	case Slip:
		return "slip"
	case Normal:
		return "normal"
	default:
		return "unknown"
	}
}

// ObstacleAvoidance wraps a Seek and replaces its target with a point away from
// the nearest obstacle ahead. With nothing ahead it behaves exactly like the
// wrapped Seek.
type ObstacleAvoidance struct {
	Seek  *Seek
	World world.RayCaster
	Mask  world.LayerMask

	RayCount        int
	RaySpread       float64 // degrees, whole fan
	LookAhead       float64 // ray length
	AvoidDistance   float64
	RayHeight       float64 // ray origin above the agent position
	GroundThreshold float64 // hits with dot(normal, up) above this are ground
	MinOffset       float64 // closer avoidance targets get extra forward push
	MinSpeed        float64 // below this the fan points at the seek target
	Mode            AvoidMode
}

// NewObstacleAvoidance wraps seek and probes rc with the default tuning.
func NewObstacleAvoidance(seek *Seek, rc world.RayCaster) *ObstacleAvoidance {
	if seek == nil {
		seek = &Seek{MaxAcceleration: 10}
	}
	return &ObstacleAvoidance{
		Seek:            seek,
		World:           rc,
		Mask:            world.LayerAll,
		RayCount:        20,
		RaySpread:       60,
		LookAhead:       4,
		AvoidDistance:   4,
		RayHeight:       0.4,
		GroundThreshold: 0.7,
		MinOffset:       0.5,
		MinSpeed:        0.1,
		Mode:            Slip,
	}
}

// Steering implements Behavior.
func (o *ObstacleAvoidance) Steering(c Character) Command {
	cmd, _ := o.Evade(c)
	return cmd
}

// Evade returns the steering command and whether an obstacle was detected.
func (o *ObstacleAvoidance) Evade(c Character) (Command, bool) {
	if p, ok := o.avoidTarget(c); ok {
		return o.Seek.SteerToward(c, p), true
	}
	return o.Seek.Steering(c), false
}

// TargetPosition returns the avoidance target when an obstacle is ahead, otherwise
// the wrapped Seek's own target.
func (o *ObstacleAvoidance) TargetPosition(c Character) (common.Vector, bool) {
	if p, ok := o.avoidTarget(c); ok {
		return p, true
	}
	return o.Seek.TargetPosition(c)
}

// Forward returns the horizontal probing direction: the direction of travel, or
// the direction to the seek target when nearly at rest, or the facing.
func (o *ObstacleAvoidance) Forward(c Character) common.Vector {
	v := c.LinearVelocity()
	if r3.Norm2(v) > o.MinSpeed*o.MinSpeed {
		if f, ok := common.SafeUnit(common.Horizontal(v)); ok {
			return f
		}
	}
	if p, ok := o.Seek.TargetPosition(c); ok {
		if f, ok := common.SafeUnit(common.Horizontal(r3.Sub(p, c.Position()))); ok {
			return f
		}
	}
	return common.Forward(c.Orientation())
}

// Probe casts the ray fan and returns the closest hit that is not ground.
func (o *ObstacleAvoidance) Probe(c Character) (world.Hit, bool) {
	if o.World == nil || o.RayCount <= 0 {
		return world.Hit{}, false
	}
	origin := r3.Add(c.Position(), r3.Scale(o.RayHeight, common.Up))
	forward := o.Forward(c)

	var best world.Hit
	found := false
	for i := 0; i < o.RayCount; i++ {
		angle := 0.0
		if o.RayCount > 1 {
			angle = -o.RaySpread/2 + o.RaySpread/float64(o.RayCount-1)*float64(i)
		}
		hit, ok := o.World.CastRay(origin, common.RotateYaw(forward, angle), o.LookAhead, o.Mask)
		if !ok || o.isGround(hit) {
			continue
		}
		if !found || hit.Distance < best.Distance {
			best, found = hit, true
		}
	}
	return best, found
}

func (o *ObstacleAvoidance) isGround(h world.Hit) bool {
	if r3.Dot(h.Normal, common.Up) > o.GroundThreshold {
		return true
	}
	_, ok := common.SafeUnit(common.Horizontal(h.Normal))
	return !ok
}

func (o *ObstacleAvoidance) avoidTarget(c Character) (common.Vector, bool) {
	hit, ok := o.Probe(c)
	if !ok {
		return common.Vector{}, false
	}
	pos := c.Position()
	forward := o.Forward(c)
	normal, _ := common.SafeUnit(common.Horizontal(hit.Normal))

	side := normal
	if o.Mode == Slip {
		side = o.slipSide(c, forward, normal)
	}

	target := r3.Add(hit.Point, r3.Scale(o.AvoidDistance, side))
	target.Y = pos.Y
	if common.Distance(target, pos) < o.MinOffset {
		target = r3.Add(pos, r3.Add(
			r3.Scale(o.AvoidDistance*0.7, side),
			r3.Scale(o.AvoidDistance*0.6, forward),
		))
	}
	return target, true
}

// slipSide picks the perpendicular to forward with more clearance. On a tie it
// slides to the side the surface normal faces, away from the obstacle.
func (o *ObstacleAvoidance) slipSide(c Character, forward, normal common.Vector) common.Vector {
	right, ok := common.SafeUnit(r3.Cross(common.Up, forward))
	if !ok {
		return normal
	}
	left := r3.Scale(-1, right)

	origin := r3.Add(c.Position(), r3.Scale(o.RayHeight, common.Up))
	clearRight := o.clearance(origin, right)
	clearLeft := o.clearance(origin, left)
	switch {
	case clearRight > clearLeft+common.Epsilon:
		return right
	case clearLeft > clearRight+common.Epsilon:
		return left
	case r3.Dot(normal, right) < 0:
		return left
	default:
		return right
	}
}

func (o *ObstacleAvoidance) clearance(origin, dir common.Vector) float64 {
	hit, ok := o.World.CastRay(origin, dir, o.AvoidDistance, o.Mask)
	if !ok || o.isGround(hit) {
		return o.AvoidDistance
	}
	return math.Min(hit.Distance, o.AvoidDistance)
}
