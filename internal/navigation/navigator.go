// Package navigation blends the steering behaviors that drive an agent along a
// route and decides when the agent has arrived.
package navigation

import (
	"errors"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/graph"
	"pathfinding-sim/internal/logging"
	"pathfinding-sim/internal/steering"
	"pathfinding-sim/internal/world"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEmptyRoute is returned when a navigator is created without waypoints.
var ErrEmptyRoute = errors.New("navigation: route has no waypoints")

// State is the navigator's phase.
type State int

const (
	Navigating State = iota
	Arrived
)

func (s State) String() string {
	switch s {
	case Navigating:
		return "navigating"
	case Arrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// Navigator combines path following, obstacle avoidance and facing into one
// command per tick. Near the final waypoint it hands over to Arrive.
type Navigator struct {
	path   *steering.FollowPath
	avoid  *steering.ObstacleAvoidance
	look   *steering.LookWhereGoing
	arrive *steering.Arrive
	goal   *graph.Node

	arrivalRadius   float64
	pathWeight      float64
	avoidWeight     float64
	avoidThreshold  float64 // squared magnitude an avoidance command must exceed to count
	maxAcceleration float64

	state         State
	onStateChange func(from, to State)
	logger        logging.Logger
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithArrivalRadius sets the distance to the final waypoint that counts as arrived.
func WithArrivalRadius(r float64) Option {
	return func(n *Navigator) { n.arrivalRadius = r }
}

// WithWeights sets the blend weights of path following and avoidance.
func WithWeights(path, avoid float64) Option {
	return func(n *Navigator) {
		n.pathWeight = path
		n.avoidWeight = avoid
	}
}

// WithMaxAcceleration caps the blended linear acceleration.
func WithMaxAcceleration(a float64) Option {
	return func(n *Navigator) { n.maxAcceleration = a }
}

// WithAvoidMode selects how avoidance targets are placed.
func WithAvoidMode(m steering.AvoidMode) Option {
	return func(n *Navigator) { n.avoid.Mode = m }
}

// WithObstacleMask selects the layers probed for obstacles.
func WithObstacleMask(m world.LayerMask) Option {
	return func(n *Navigator) { n.avoid.Mask = m }
}

// WithTuning gives direct access to the behaviors for fine tuning.
func WithTuning(fn func(path *steering.FollowPath, avoid *steering.ObstacleAvoidance, look *steering.LookWhereGoing, arrive *steering.Arrive)) Option {
	return func(n *Navigator) { fn(n.path, n.avoid, n.look, n.arrive) }
}

// OnStateChange registers a callback run on every state transition.
func OnStateChange(fn func(from, to State)) Option {
	return func(n *Navigator) { n.onStateChange = fn }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l logging.Logger) Option {
	return func(n *Navigator) { n.logger = l }
}

// New creates a Navigator over waypoints, probing rc for obstacles.
func New(waypoints []*graph.Node, rc world.RayCaster, opts ...Option) (*Navigator, error) {
	if len(waypoints) == 0 {
		return nil, ErrEmptyRoute
	}
	goal := waypoints[len(waypoints)-1]
	n := &Navigator{
		path:            steering.NewFollowPath(waypoints),
		avoid:           steering.NewObstacleAvoidance(steering.NewSeek(steering.NodeTarget(waypoints[0]), 10), rc),
		look:            steering.NewLookWhereGoing(),
		arrive:          steering.NewArrive(steering.NodeTarget(goal)),
		goal:            goal,
		arrivalRadius:   1.5,
		pathWeight:      1,
		avoidWeight:     0.3,
		avoidThreshold:  0.01,
		maxAcceleration: 5,
		state:           Navigating,
		logger:          logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = logging.OrNoOp(n.logger)
	return n, nil
}

// State returns the phase decided on the last tick.
func (n *Navigator) State() State { return n.state }

// CurrentWaypoint returns the waypoint being pursued.
func (n *Navigator) CurrentWaypoint() *graph.Node { return n.path.CurrentWaypoint() }

// Cursor returns the index of the waypoint being pursued.
func (n *Navigator) Cursor() int { return n.path.Cursor() }

// Goal returns the final waypoint.
func (n *Navigator) Goal() *graph.Node { return n.goal }

// Steering implements steering.Behavior.
func (n *Navigator) Steering(c steering.Character) steering.Command {
	n.transition(n.decide(c))

	if n.state == Arrived {
		return n.arrive.Steering(c)
	}

	follow := n.path.Steering(c)
	n.avoid.Seek.Target = steering.NodeTarget(n.path.CurrentWaypoint())
	avoid, detected := n.avoid.Evade(c)

	avoidWeight := 0.0
	if detected && r3.Norm2(avoid.Linear) > n.avoidThreshold {
		avoidWeight = n.avoidWeight
	}
	linear := r3.Add(r3.Scale(n.pathWeight, follow.Linear), r3.Scale(avoidWeight, avoid.Linear))

	return steering.Command{
		Linear:  common.ClampMagnitude(linear, n.maxAcceleration),
		Angular: n.look.Steering(c).Angular,
	}
}

func (n *Navigator) decide(c steering.Character) State {
	wp := n.path.CurrentWaypoint()
	if n.path.AtFinal() && common.Distance(c.Position(), wp.Position) < n.arrivalRadius {
		return Arrived
	}
	return Navigating
}

func (n *Navigator) transition(next State) {
	if next == n.state {
		return
	}
	prev := n.state
	n.state = next
	n.logger.Info("navigation state changed", "from", prev.String(), "to", next.String(), "waypoint", n.path.Cursor())
	if n.onStateChange != nil {
		n.onStateChange(prev, next)
	}
}
