package common

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector is a point or direction in world space. Y is up, the ground is the XZ plane.
type Vector = r3.Vec

// Epsilon is the smallest magnitude treated as a usable divisor.
const Epsilon = 1e-9

// Up is the world vertical axis.
var Up = Vector{Y: 1}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vector) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Horizontal returns v with its vertical component removed.
func Horizontal(v Vector) Vector {
	return Vector{X: v.X, Z: v.Z}
}

// SafeUnit returns the unit vector colinear to v and true, or the zero vector and
// false when v is too short to normalize. r3.Unit yields NaN for a zero vector.
func SafeUnit(v Vector) (Vector, bool) {
	n := r3.Norm(v)
	if n < Epsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return Vector{}, false
	}
	return r3.Scale(1/n, v), true
}

// ClampMagnitude limits the length of v to maxMag.
func ClampMagnitude(v Vector, maxMag float64) Vector {
	if maxMag <= 0 {
		return Vector{}
	}
	n := r3.Norm(v)
	if n <= maxMag {
		return v
	}
	return r3.Scale(maxMag/n, v)
}

// Reject removes the component of v along normal (vector rejection).
// A degenerate normal leaves v unchanged.
func Reject(v, normal Vector) Vector {
	n2 := r3.Norm2(normal)
	if n2 < Epsilon {
		return v
	}
	return r3.Sub(v, r3.Scale(r3.Dot(v, normal)/n2, normal))
}

// IsFinite reports whether every component of v is a real number.
func IsFinite(v Vector) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Forward returns the horizontal unit direction faced at the given yaw in degrees.
// Yaw 0 faces +Z, yaw 90 faces +X.
func Forward(yaw float64) Vector {
	rad := yaw * math.Pi / 180
	return Vector{X: math.Sin(rad), Z: math.Cos(rad)}
}

// Heading returns the yaw in degrees of the horizontal part of v, in [0, 360).
// The second result is false when v has no horizontal extent.
func Heading(v Vector) (float64, bool) {
	h := Horizontal(v)
	if r3.Norm2(h) < Epsilon*Epsilon {
		return 0, false
	}
	return NormalizeAngle(math.Atan2(h.X, h.Z) * 180 / math.Pi), true
}

// RotateYaw rotates v about the vertical axis by deg degrees.
func RotateYaw(v Vector, deg float64) Vector {
	if deg == 0 {
		return v
	}
	return r3.NewRotation(deg*math.Pi/180, Up).Rotate(v)
}

// NormalizeAngle maps deg into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// DeltaAngle returns the shortest signed rotation from current to target in
// degrees, in the range (-180, 180].
func DeltaAngle(current, target float64) float64 {
	d := math.Mod(target-current, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// Format returns a compact representation of v for logging.
func Format(v Vector) string {
	return fmt.Sprintf("[%.3f, %.3f, %.3f]", v.X, v.Y, v.Z)
}
