// SPDX-License-Identifier: EPL-2.0

package geom

import "math"

// Vector is a point or direction in world units.
type Vector struct {
	X, Y, Z float32
}

var (
	Forward = Vector{0, 0, 1}
	Up      = Vector{0, 1, 0}
	Right   = Vector{1, 0, 0}
)

func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector) Scale(s float32) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector) Dot(o Vector) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vector) Cross(o Vector) Vector {
	return Vector{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// too short to have a direction.
func (v Vector) Normalize() Vector {
	l := v.Length()
	if l < 1e-9 {
		return Vector{}
	}
	return v.Scale(1 / l)
}

// ClampAxes limits every component to [-limit, limit].
func (v Vector) ClampAxes(limit float32) Vector {
	c := func(x float32) float32 { return max(-limit, min(limit, x)) }
	return Vector{c(v.X), c(v.Y), c(v.Z)}
}

// ApproxEqual compares component-wise within eps.
func (v Vector) ApproxEqual(o Vector, eps float32) bool {
	return abs(v.X-o.X) <= eps && abs(v.Y-o.Y) <= eps && abs(v.Z-o.Z) <= eps
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
