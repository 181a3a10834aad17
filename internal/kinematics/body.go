// Package kinematics integrates steering commands into an agent's pose and
// resolves collisions against the world with a swept segment test.
package kinematics

import (
	"fmt"
	"math"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/logging"
	"pathfinding-sim/internal/steering"
	"pathfinding-sim/internal/world"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	minDisplacementSq = 1e-6
	minAngularSpeed   = 0.01 // degrees/s below which orientation is left alone
)

// Pose is the externally visible placement of a body.
type Pose struct {
	Position    common.Vector
	Orientation float64 // yaw in degrees, [0, 360)
}

func (p Pose) String() string {
	return fmt.Sprintf("Pos: %s Yaw: %.1f", common.Format(p.Position), p.Orientation)
}

// Body is the kinematic state of one agent. Only Integrate mutates it.
type Body struct {
	position        common.Vector
	orientation     float64
	linearVelocity  common.Vector
	angularVelocity float64

	maxSpeed            float64
	maxAngularSpeed     float64
	skinWidth           float64
	collisionIterations int
	collisionMask       world.LayerMask

	anomalies int
	logger    logging.Logger
}

// Option configures a Body.
type Option func(*Body)

// WithMaxSpeed sets the linear speed limit.
func WithMaxSpeed(v float64) Option {
	return func(b *Body) { b.maxSpeed = v }
}

// WithMaxAngularSpeed sets the angular speed limit in degrees/s.
func WithMaxAngularSpeed(v float64) Option {
	return func(b *Body) { b.maxAngularSpeed = v }
}

// WithSkinWidth sets the clearance kept from a surface after a collision.
func WithSkinWidth(v float64) Option {
	return func(b *Body) { b.skinWidth = v }
}

// WithCollisionIterations bounds the slide iterations per tick.
func WithCollisionIterations(n int) Option {
	return func(b *Body) { b.collisionIterations = n }
}

// WithCollisionMask selects the layers the body collides with.
func WithCollisionMask(m world.LayerMask) Option {
	return func(b *Body) { b.collisionMask = m }
}

// WithLogger sets the logger used for anomaly reports.
func WithLogger(l logging.Logger) Option {
	return func(b *Body) { b.logger = l }
}

// NewBody places a body at rest.
func NewBody(position common.Vector, orientation float64, opts ...Option) *Body {
	b := &Body{
		position:            position,
		orientation:         common.NormalizeAngle(orientation),
		maxSpeed:            10,
		maxAngularSpeed:     45,
		skinWidth:           0.05,
		collisionIterations: 3,
		collisionMask:       world.LayerAll,
		logger:              logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.OrNoOp(b.logger)
	return b
}

// Position implements steering.Character.
func (b *Body) Position() common.Vector { return b.position }

// Orientation implements steering.Character.
func (b *Body) Orientation() float64 { return b.orientation }

// LinearVelocity implements steering.Character.
func (b *Body) LinearVelocity() common.Vector { return b.linearVelocity }

// AngularVelocity implements steering.Character.
func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

// Speed returns the magnitude of the linear velocity.
func (b *Body) Speed() float64 { return r3.Norm(b.linearVelocity) }

// MaxSpeed returns the linear speed limit.
func (b *Body) MaxSpeed() float64 { return b.maxSpeed }

// MaxAngularSpeed returns the angular speed limit.
func (b *Body) MaxAngularSpeed() float64 { return b.maxAngularSpeed }

// Pose returns the current position and orientation.
func (b *Body) Pose() Pose {
	return Pose{Position: b.position, Orientation: b.orientation}
}

// Anomalies returns how many non-finite values have been recovered so far.
func (b *Body) Anomalies() int { return b.anomalies }

// Integrate advances the body by dt seconds under cmd.
//
// Collision resolution runs on the velocity from the previous tick, before cmd is
// applied, so a command first affects motion one tick later.
func (b *Body) Integrate(cmd steering.Command, dt float64, rc world.RayCaster) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}
	if rc == nil {
		rc = world.Empty{}
	}

	b.guard()
	b.move(dt, rc)

	if math.Abs(b.angularVelocity) > minAngularSpeed {
		b.orientation = common.NormalizeAngle(b.orientation + b.angularVelocity*dt)
	}

	if common.IsFinite(cmd.Linear) {
		b.linearVelocity = r3.Add(b.linearVelocity, r3.Scale(dt, cmd.Linear))
	} else {
		b.anomaly("command linear acceleration")
	}
	if !math.IsNaN(cmd.Angular) && !math.IsInf(cmd.Angular, 0) {
		b.angularVelocity += cmd.Angular * dt
	} else {
		b.anomaly("command angular acceleration")
	}

	b.linearVelocity = common.ClampMagnitude(b.linearVelocity, b.maxSpeed)
	if math.Abs(b.angularVelocity) > b.maxAngularSpeed {
		b.angularVelocity = math.Copysign(b.maxAngularSpeed, b.angularVelocity)
	}
}

// guard resets state that has become non-finite.
func (b *Body) guard() {
	if math.IsNaN(b.angularVelocity) || math.IsInf(b.angularVelocity, 0) {
		b.angularVelocity = 0
		b.anomaly("angular velocity")
	}
	if !common.IsFinite(b.linearVelocity) {
		b.linearVelocity = common.Vector{}
		b.anomaly("linear velocity")
	}
}

// move sweeps the body along its velocity, sliding along every surface it hits.
func (b *Body) move(dt float64, rc world.RayCaster) {
	displacement := r3.Scale(dt, b.linearVelocity)
	for i := 0; i < b.collisionIterations; i++ {
		if r3.Norm2(displacement) < minDisplacementSq {
			break
		}
		end := r3.Add(b.position, displacement)
		hit, ok := world.CastSegment(rc, b.position, end, b.collisionMask)
		if !ok {
			b.position = end
			break
		}
		b.position = r3.Add(hit.Point, r3.Scale(b.skinWidth, hit.Normal))
		b.linearVelocity = common.Reject(b.linearVelocity, hit.Normal)
		displacement = r3.Scale(dt, b.linearVelocity)
	}
}

func (b *Body) anomaly(what string) {
	b.anomalies++
	b.logger.Debug("numeric anomaly recovered", "value", what, "count", b.anomalies)
}

func (b *Body) String() string {
	return fmt.Sprintf("%s Vel: %s Spin: %.2f", b.Pose(), common.Format(b.linearVelocity), b.angularVelocity)
}
