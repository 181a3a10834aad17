// Package world provides the spatial query the navigation core consumes: a ray or
// segment cast against the environment that reports the nearest hit.
package world

import (
	"math"

	"pathfinding-sim/internal/common"
	"pathfinding-sim/internal/logging"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r3"
)

// LayerMask selects which colliders a query considers.
type LayerMask uint32

const (
	LayerDefault LayerMask = 1 << iota
	LayerWall
	LayerFloor

	LayerNone LayerMask = 0
	LayerAll  LayerMask = ^LayerMask(0)
)

// Hit describes the nearest intersection of a query.
type Hit struct {
	Point    common.Vector
	Normal   common.Vector // unit, pointing out of the surface
	Distance float64
	ID       string
}

// RayCaster casts a ray from origin along dir (normalized by the caller or not)
// up to maxDistance and returns the nearest hit on the layers in mask.
// Implementations must be safe for concurrent use.
type RayCaster interface {
	CastRay(origin, dir common.Vector, maxDistance float64, mask LayerMask) (Hit, bool)
}

// CastSegment casts from one point to another.
func CastSegment(rc RayCaster, from, to common.Vector, mask LayerMask) (Hit, bool) {
	d := r3.Sub(to, from)
	dir, ok := common.SafeUnit(d)
	if !ok {
		return Hit{}, false
	}
	return rc.CastRay(from, dir, r3.Norm(d), mask)
}

// Empty is a RayCaster with nothing in it.
type Empty struct{}

// CastRay implements RayCaster.
func (Empty) CastRay(common.Vector, common.Vector, float64, LayerMask) (Hit, bool) {
	return Hit{}, false
}

// Box is an axis-aligned collider.
type Box struct {
	ID     string
	Bounds r3.Box
	Layer  LayerMask
}

// FromFootprint extrudes a ground-plane footprint (X, Z) between minY and maxY.
func FromFootprint(id string, footprint orb.Bound, minY, maxY float64, layer LayerMask) Box {
	return Box{
		ID: id,
		Bounds: r3.Box{
			Min: r3.Vec{X: footprint.Min.X(), Y: minY, Z: footprint.Min.Y()},
			Max: r3.Vec{X: footprint.Max.X(), Y: maxY, Z: footprint.Max.Y()},
		},
		Layer: layer,
	}
}

// boxEntry wraps a box for R-tree storage.
type boxEntry struct {
	box  Box
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *boxEntry) Bounds() rtreego.Rect { return e.rect }

// BoxWorld is an immutable set of boxes indexed by an R-tree.
type BoxWorld struct {
	tree  *rtreego.Rtree
	count int
}

// NewBoxWorld indexes boxes. Degenerate boxes are logged and left out.
func NewBoxWorld(boxes []Box, logger logging.Logger) *BoxWorld {
	logger = logging.OrNoOp(logger)
	w := &BoxWorld{tree: rtreego.NewTree(3, 25, 50)}
	for _, b := range boxes {
		size := r3.Sub(b.Bounds.Max, b.Bounds.Min)
		rect, err := rtreego.NewRect(
			rtreego.Point{b.Bounds.Min.X, b.Bounds.Min.Y, b.Bounds.Min.Z},
			[]float64{size.X, size.Y, size.Z},
		)
		if err != nil {
			logger.Warn("collider skipped", "id", b.ID, "error", err)
			continue
		}
		w.tree.Insert(&boxEntry{box: b, rect: rect})
		w.count++
	}
	logger.Debug("world indexed", "colliders", w.count)
	return w
}

// Len returns the number of indexed colliders.
func (w *BoxWorld) Len() int { return w.count }

const queryPad = 1e-6

// CastRay implements RayCaster.
func (w *BoxWorld) CastRay(origin, dir common.Vector, maxDistance float64, mask LayerMask) (Hit, bool) {
	d, ok := common.SafeUnit(dir)
	if !ok || maxDistance <= 0 || mask == LayerNone {
		return Hit{}, false
	}
	end := r3.Add(origin, r3.Scale(maxDistance, d))
	lo := r3.Vec{X: math.Min(origin.X, end.X), Y: math.Min(origin.Y, end.Y), Z: math.Min(origin.Z, end.Z)}
	hi := r3.Vec{X: math.Max(origin.X, end.X), Y: math.Max(origin.Y, end.Y), Z: math.Max(origin.Z, end.Z)}
	query, err := rtreego.NewRect(
		rtreego.Point{lo.X - queryPad, lo.Y - queryPad, lo.Z - queryPad},
		[]float64{hi.X - lo.X + 2*queryPad, hi.Y - lo.Y + 2*queryPad, hi.Z - lo.Z + 2*queryPad},
	)
	if err != nil {
		return Hit{}, false
	}

	var best Hit
	found := false
	for _, item := range w.tree.SearchIntersect(query) {
		e := item.(*boxEntry)
		if e.box.Layer&mask == 0 {
			continue
		}
		t, normal, ok := intersect(origin, d, e.box.Bounds)
		if !ok || t > maxDistance {
			continue
		}
		if !found || t < best.Distance {
			best = Hit{
				Point:    r3.Add(origin, r3.Scale(t, d)),
				Normal:   normal,
				Distance: t,
				ID:       e.box.ID,
			}
			found = true
		}
	}
	return best, found
}

// intersect runs the slab test of a unit ray against b. Rays starting inside the
// box do not hit it.
func intersect(o, d common.Vector, b r3.Box) (float64, common.Vector, bool) {
	origin := [3]float64{o.X, o.Y, o.Z}
	dir := [3]float64{d.X, d.Y, d.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	tmin, tmax := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < common.Epsilon {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, common.Vector{}, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		s := -1.0 // entering through the min face, normal points to -axis
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin, axis, sign = t1, i, s
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, common.Vector{}, false
		}
	}
	if axis < 0 || tmin < 0 {
		return 0, common.Vector{}, false
	}
	var n [3]float64
	n[axis] = sign
	return tmin, common.Vector{X: n[0], Y: n[1], Z: n[2]}, true
}
