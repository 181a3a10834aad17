package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDeltaAngle(t *testing.T) {
	cases := []struct {
		name            string
		current, target float64
		want            float64
	}{
		{"Zero", 10, 10, 0},
		{"SmallPositive", 10, 40, 30},
		{"SmallNegative", 40, 10, -30},
		{"WrapForward", 350, 10, 20},
		{"WrapBackward", 10, 350, -20},
		{"HalfTurnIsPositive", 0, 180, 180},
		{"NegativeHalfTurnIsPositive", 180, 0, 180},
		{"LargeInputs", 725, -725, -10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeltaAngle(tc.current, tc.target)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.Greater(t, got, -180.0)
			assert.LessOrEqual(t, got, 180.0)
		})
	}
}

func TestHeadingAndForwardAgree(t *testing.T) {
	for _, yaw := range []float64{0, 45, 90, 135, 180, 270, 359} {
		h, ok := Heading(Forward(yaw))
		require.True(t, ok)
		assert.InDelta(t, 0, DeltaAngle(yaw, h), 1e-9, "yaw %v", yaw)
	}

	_, ok := Heading(Vector{Y: 5})
	assert.False(t, ok, "vertical vector has no heading")
}

func TestRotateYaw(t *testing.T) {
	got := RotateYaw(Vector{Z: 1}, 90)
	assert.InDelta(t, 1, got.X, 1e-9)
	assert.InDelta(t, 0, got.Z, 1e-9)

	got = RotateYaw(Forward(30), -30)
	assert.InDelta(t, 0, got.X, 1e-9)
	assert.InDelta(t, 1, got.Z, 1e-9)
}

func TestSafeUnit(t *testing.T) {
	u, ok := SafeUnit(Vector{X: 3, Z: 4})
	require.True(t, ok)
	assert.InDelta(t, 1, r3.Norm(u), 1e-12)

	u, ok = SafeUnit(Vector{})
	assert.False(t, ok)
	assert.Equal(t, Vector{}, u)
	assert.True(t, IsFinite(u))

	_, ok = SafeUnit(Vector{X: math.NaN()})
	assert.False(t, ok)
}

func TestClampMagnitude(t *testing.T) {
	v := ClampMagnitude(Vector{X: 30, Y: 40}, 5)
	assert.InDelta(t, 5, r3.Norm(v), 1e-12)
	assert.InDelta(t, 3, v.X, 1e-12)

	short := Vector{X: 1}
	assert.Equal(t, short, ClampMagnitude(short, 5))
	assert.Equal(t, Vector{}, ClampMagnitude(short, 0))
}

func TestReject(t *testing.T) {
	v := Reject(Vector{X: 2, Z: 3}, Vector{X: -1})
	assert.InDelta(t, 0, v.X, 1e-12)
	assert.InDelta(t, 3, v.Z, 1e-12)

	unchanged := Vector{X: 1, Y: 2, Z: 3}
	assert.Equal(t, unchanged, Reject(unchanged, Vector{}))
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 350, NormalizeAngle(-10), 1e-12)
	assert.InDelta(t, 0, NormalizeAngle(720), 1e-12)
	assert.InDelta(t, 90, NormalizeAngle(450), 1e-12)
}
