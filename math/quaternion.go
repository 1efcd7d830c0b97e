package math

import "github.com/chewxy/math32"

// Quaternion is a rotation stored as (X, Y, Z, W) with W the scalar part.
type Quaternion struct {
	X, Y, Z, W float32
}

func QuaternionIdentity() Quaternion {
	return Quaternion{W: 1}
}

func NewQuaternion(x, y, z, w float32) Quaternion {
	return Quaternion{X: x, Y: y, Z: z, W: w}
}

// QuaternionFromAxisAngle builds a rotation of angle radians around axis.
func QuaternionFromAxisAngle(axis Vec3, angle float32) Quaternion {
	s, c := math32.Sin(angle/2), math32.Cos(angle/2)
	axis = axis.Normalize()
	return Quaternion{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: c}
}

// QuaternionFromMat3 extracts the rotation of an orthonormal basis.
func QuaternionFromMat3(m Mat3) Quaternion {
	// m is [col][row]; r(i,j) reads row i, column j.
	r := func(i, j int) float32 { return m[j][i] }

	var q Quaternion
	trace := r(0, 0) + r(1, 1) + r(2, 2)
	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		q.W = 0.25 / s
		q.X = (r(2, 1) - r(1, 2)) * s
		q.Y = (r(0, 2) - r(2, 0)) * s
		q.Z = (r(1, 0) - r(0, 1)) * s
	case r(0, 0) > r(1, 1) && r(0, 0) > r(2, 2):
		s := 2 * math32.Sqrt(1+r(0, 0)-r(1, 1)-r(2, 2))
		q.W = (r(2, 1) - r(1, 2)) / s
		q.X = 0.25 * s
		q.Y = (r(0, 1) + r(1, 0)) / s
		q.Z = (r(0, 2) + r(2, 0)) / s
	case r(1, 1) > r(2, 2):
		s := 2 * math32.Sqrt(1+r(1, 1)-r(0, 0)-r(2, 2))
		q.W = (r(0, 2) - r(2, 0)) / s
		q.X = (r(0, 1) + r(1, 0)) / s
		q.Y = 0.25 * s
		q.Z = (r(1, 2) + r(2, 1)) / s
	default:
		s := 2 * math32.Sqrt(1+r(2, 2)-r(0, 0)-r(1, 1))
		q.W = (r(1, 0) - r(0, 1)) / s
		q.X = (r(0, 2) + r(2, 0)) / s
		q.Y = (r(1, 2) + r(2, 1)) / s
		q.Z = 0.25 * s
	}
	return q.Normalize()
}

// Mul returns the Hamilton product q*o (apply o, then q).
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quaternion) Normalize() Quaternion {
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return q
	}
	inv := 1 / l
	return Quaternion{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

func (q Quaternion) RotateVector(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}

// ToMat3 returns the rotation matrix, column-major.
func (q Quaternion) ToMat3() Mat3 {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z

	return Mat3{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy)},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx)},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy)},
	}
}

func (q Quaternion) ToMat4() Mat4 {
	return q.ToMat3().ToMat4()
}

// Slerp interpolates along the shortest arc; nearly parallel inputs fall
// back to a normalized lerp.
func (q Quaternion) Slerp(o Quaternion, t float32) Quaternion {
	dot := q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
	if dot < 0 {
		dot = -dot
		o = Quaternion{-o.X, -o.Y, -o.Z, -o.W}
	}
	if dot > 0.9995 {
		return Quaternion{
			X: q.X + (o.X-q.X)*t,
			Y: q.Y + (o.Y-q.Y)*t,
			Z: q.Z + (o.Z-q.Z)*t,
			W: q.W + (o.W-q.W)*t,
		}.Normalize()
	}

	theta0 := math32.Acos(dot)
	theta := theta0 * t
	sinTheta := math32.Sin(theta)
	sinTheta0 := math32.Sin(theta0)

	s0 := math32.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0
	return Quaternion{
		X: q.X*s0 + o.X*s1,
		Y: q.Y*s0 + o.Y*s1,
		Z: q.Z*s0 + o.Z*s1,
		W: q.W*s0 + o.W*s1,
	}
}
