// SPDX-License-Identifier: EPL-2.0

package geom

import "math"

// Quat is a rotation quaternion.
type Quat struct {
	W, X, Y, Z float32
}

// Identity is the rotation that looks down +Z with +Y up.
var Identity = Quat{W: 1}

func axisAngle(axis Vector, rad float64) Quat {
	s := float32(math.Sin(rad / 2))
	return Quat{W: float32(math.Cos(rad / 2)), X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// FromEuler builds a rotation from yaw, pitch and roll in degrees. Roll is
// applied first, then pitch, then yaw.
func FromEuler(yaw, pitch, roll float32) Quat {
	const toRad = math.Pi / 180
	qy := axisAngle(Up, float64(yaw)*toRad)
	qx := axisAngle(Right, -float64(pitch)*toRad)
	qz := axisAngle(Forward, -float64(roll)*toRad)
	return qy.Mul(qx).Mul(qz).Normalize()
}

// FromVectors builds the rotation whose forward and up axes point along
// forward and up. up only needs to be roughly perpendicular to forward.
// Degenerate input yields Identity.
func FromVectors(forward, up Vector) Quat {
	f := forward.Normalize()
	r := up.Cross(f).Normalize()
	if f == (Vector{}) || r == (Vector{}) {
		return Identity
	}
	u := f.Cross(r)

	// columns of the rotation matrix are r, u, f
	m00, m01, m02 := r.X, u.X, f.X
	m10, m11, m12 := r.Y, u.Y, f.Y
	m20, m21, m22 := r.Z, u.Z, f.Z

	var q Quat
	switch trace := m00 + m11 + m22; {
	case trace > 0:
		s := 0.5 / sqrt(trace+1)
		q = Quat{W: 0.25 / s, X: (m21 - m12) * s, Y: (m02 - m20) * s, Z: (m10 - m01) * s}
	case m00 > m11 && m00 > m22:
		s := 2 * sqrt(1+m00-m11-m22)
		q = Quat{W: (m21 - m12) / s, X: 0.25 * s, Y: (m01 + m10) / s, Z: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * sqrt(1+m11-m00-m22)
		q = Quat{W: (m02 - m20) / s, X: (m01 + m10) / s, Y: 0.25 * s, Z: (m12 + m21) / s}
	default:
		s := 2 * sqrt(1+m22-m00-m11)
		q = Quat{W: (m10 - m01) / s, X: (m02 + m20) / s, Y: (m12 + m21) / s, Z: 0.25 * s}
	}
	return q.Normalize()
}

func sqrt(x float32) float32 { return float32(math.Sqrt(float64(x))) }

// Mul returns q*o, the rotation o followed by q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Conjugate is the inverse rotation for a unit quaternion.
func (q Quat) Conjugate() Quat { return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z} }

// Normalize returns q at unit length; the zero quaternion becomes Identity.
func (q Quat) Normalize() Quat {
	l := sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if l < 1e-9 {
		return Identity
	}
	return Quat{W: q.W / l, X: q.X / l, Y: q.Y / l, Z: q.Z / l}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vector) Vector {
	u := Vector{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Forward is the direction q points at.
func (q Quat) Forward() Vector { return q.Rotate(Forward) }

// Up is the up axis of q.
func (q Quat) Up() Vector { return q.Rotate(Up) }

// Right is the right-hand axis of q.
func (q Quat) Right() Vector { return q.Rotate(Right) }

// ApproxEqual reports whether q and o describe the same rotation within
// eps. q and -q are the same rotation.
func (q Quat) ApproxEqual(o Quat, eps float32) bool {
	d := abs(q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z)
	return 1-d <= eps
}
