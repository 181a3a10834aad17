package steering

import (
	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/graph"

	"gonum.org/v1/gonum/spatial/r3"
)

// FollowPath seeks along an ordered list of waypoints. The cursor only moves
// forward and saturates at the last waypoint.
type FollowPath struct {
	Seek              Seek
	WaypointRadius    float64 // distance at which a waypoint counts as reached
	LookAheadDistance float64 // overshoot past the waypoint, keeps the agent off corners

	waypoints []*graph.Node
	cursor    int
	done      bool
}

// NewFollowPath creates a FollowPath over waypoints with the default tuning.
func NewFollowPath(waypoints []*graph.Node) *FollowPath {
	return &FollowPath{
		Seek:              Seek{MaxAcceleration: 10},
		WaypointRadius:    0.4,
		LookAheadDistance: 0.7,
		waypoints:         waypoints,
	}
}

// Len returns the number of waypoints.
func (f *FollowPath) Len() int { return len(f.waypoints) }

// Cursor returns the index of the waypoint being pursued.
func (f *FollowPath) Cursor() int { return f.cursor }

// CurrentWaypoint returns the waypoint being pursued, or nil for an empty path.
func (f *FollowPath) CurrentWaypoint() *graph.Node {
	if len(f.waypoints) == 0 {
		return nil
	}
	return f.waypoints[f.cursor]
}

// AtFinal reports whether the cursor rests on the last waypoint.
func (f *FollowPath) AtFinal() bool {
	return len(f.waypoints) > 0 && f.cursor == len(f.waypoints)-1
}

// Done reports whether the last waypoint has been reached.
func (f *FollowPath) Done() bool { return f.done }

// Steering implements Behavior. It advances the cursor when the current waypoint
// is within WaypointRadius, then seeks a point LookAheadDistance beyond the
// waypoint now current. Reaching the last waypoint yields a zero command.
func (f *FollowPath) Steering(c Character) Command {
	if len(f.waypoints) == 0 {
		return Command{}
	}
	pos := c.Position()
	if common.Distance(pos, f.waypoints[f.cursor].Position) < f.WaypointRadius {
		if f.cursor == len(f.waypoints)-1 {
			f.done = true
			return Command{}
		}
		f.cursor++
	}

	wp := f.waypoints[f.cursor].Position
	f.Seek.Target = &Target{Position: wp}
	target := wp
	if dir, ok := common.SafeUnit(r3.Sub(wp, pos)); ok {
		target = r3.Add(wp, r3.Scale(f.LookAheadDistance, dir))
	}
	return f.Seek.SteerToward(c, target)
}
