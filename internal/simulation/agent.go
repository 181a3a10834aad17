package simulation

import (
	"errors"
	"fmt"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/graph"
	"pathfinding-sim/internal/kinematics"
	"pathfinding-sim/internal/navigation"
	"pathfinding-sim/internal/pathsearch"
	"pathfinding-sim/internal/world"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrStaleRoute is recorded on an agent whose route was computed on a graph that
// has since been replaced.
var ErrStaleRoute = errors.New("simulation: route belongs to a replaced graph")

// An arrived agent is settled once it has stayed within settleRadius of the goal
// below settleSpeed for settleTicks consecutive ticks. Arrive swings the agent
// around the goal, so a single slow tick is only a turning point.
const (
	settleSpeed  = 0.05
	settleRadius = 0.3
	settleTicks  = 10
)

// AgentConfig carries the options applied to every spawned agent.
type AgentConfig struct {
	Body       []kinematics.Option
	Navigation []navigation.Option
}

// Agent follows one route through the environment.
type Agent struct {
	id    string
	route pathsearch.Route
	body  *kinematics.Body
	nav   *navigation.Navigator
	err   error

	speeds   []float64 // one sample per tick
	traveled float64
	still    int // consecutive ticks at rest near the goal
}

// NewAgent places an agent on the first node of route, facing the second.
func NewAgent(route pathsearch.Route, rc world.RayCaster, cfg AgentConfig) (*Agent, error) {
	if route.Len() == 0 {
		return nil, navigation.ErrEmptyRoute
	}
	nav, err := navigation.New(route.Nodes, rc, cfg.Navigation...)
	if err != nil {
		return nil, err
	}
	yaw := 0.0
	if route.Len() > 1 {
		if h, ok := common.Heading(r3.Sub(route.Nodes[1].Position, route.Start().Position)); ok {
			yaw = h
		}
	}
	return &Agent{
		id:    fmt.Sprintf("agent-%s", uuid.NewString()[:8]), // Shorter unique ID
		route: route,
		body:  kinematics.NewBody(route.Start().Position, yaw, cfg.Body...),
		nav:   nav,
	}, nil
}

// ID returns the unique identifier of the agent.
func (a *Agent) ID() string { return a.id }

// Position returns the current position of the agent.
func (a *Agent) Position() common.Vector { return a.body.Position() }

// Pose returns the current position and orientation.
func (a *Agent) Pose() kinematics.Pose { return a.body.Pose() }

// Body exposes the kinematic state for inspection.
func (a *Agent) Body() *kinematics.Body { return a.body }

// Route returns the route the agent follows.
func (a *Agent) Route() pathsearch.Route { return a.route }

// CurrentWaypoint returns the route node currently pursued.
func (a *Agent) CurrentWaypoint() *graph.Node { return a.nav.CurrentWaypoint() }

// State returns the navigation phase.
func (a *Agent) State() navigation.State { return a.nav.State() }

// Err returns the error that halted the agent, if any.
func (a *Agent) Err() error { return a.err }

// Halted reports whether the agent stopped because of an error.
func (a *Agent) Halted() bool { return a.err != nil }

// Settled reports whether the agent has arrived and come to rest.
func (a *Agent) Settled() bool { return a.still >= settleTicks }

func (a *Agent) atRest() bool {
	if a.nav.State() != navigation.Arrived || a.body.Speed() >= settleSpeed {
		return false
	}
	offset := r3.Sub(a.body.Position(), a.route.Goal().Position)
	return r3.Norm(common.Horizontal(offset)) <= settleRadius
}

// Traveled returns the distance covered so far.
func (a *Agent) Traveled() float64 { return a.traveled }

// Update runs one tick: blend the steering behaviors, then integrate. A halted
// agent no longer moves.
func (a *Agent) Update(deltaTime float64, env Environment) error {
	if a.err != nil {
		return nil
	}
	if !a.route.Valid(env.Graph) {
		a.err = fmt.Errorf("%w: agent %s, route graph %s", ErrStaleRoute, a.id, a.route.GraphID)
		return a.err
	}

	before := a.body.Position()
	cmd := a.nav.Steering(a.body)
	a.body.Integrate(cmd, deltaTime, env.World)

	a.traveled += common.Distance(before, a.body.Position())
	a.speeds = append(a.speeds, a.body.Speed())
	if a.atRest() {
		a.still++
	} else {
		a.still = 0
	}
	return nil
}

// String representation for logging
func (a *Agent) String() string {
	status := a.nav.State().String()
	if a.err != nil {
		status = "halted"
	}
	wp := "none"
	if n := a.nav.CurrentWaypoint(); n != nil {
		wp = fmt.Sprintf("%d/%d (%s)", a.nav.Cursor()+1, a.route.Len(), n.Name)
	}
	return fmt.Sprintf("Agent[%s] %s | %s | waypoint %s", a.id, a.body, status, wp)
}
