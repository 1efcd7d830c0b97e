package math

import "github.com/chewxy/math32"

// Mat4 is stored column-major, m[col][row], the layout OpenGL expects with
// transpose=false. Mul composes left to right: a.Mul(b) applies a, then b.
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns the transform that applies m first and other second
// (other * m in column-vector notation).
func (m Mat4) Mul(other Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				r[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return r
}

func (m Mat4) MulVec(v Vec4) Vec4 {
	return v.MulMat(m)
}

// MulVec3 transforms a point, including the perspective divide.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec(v.ToVec4(1)).ToVec3DivW()
}

func (m Mat4) Transpose() Mat4 {
	return Mat4{
		{m[0][0], m[1][0], m[2][0], m[3][0]},
		{m[0][1], m[1][1], m[2][1], m[3][1]},
		{m[0][2], m[1][2], m[2][2], m[3][2]},
		{m[0][3], m[1][3], m[2][3], m[3][3]},
	}
}

// Upper3x3 returns the linear part of an affine transform.
func (m Mat4) Upper3x3() Mat3 {
	return Mat3{
		{m[0][0], m[0][1], m[0][2]},
		{m[1][0], m[1][1], m[1][2]},
		{m[2][0], m[2][1], m[2][2]},
	}
}

// Translation returns the translation column of an affine transform.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3][0], m[3][1], m[3][2]}
}

// Inverse is computed in double precision. A singular matrix yields the zero
// matrix.
func (m Mat4) Inverse() Mat4 {
	return Mat4FromMgl64(m.ToMgl64().Inv())
}

func Mat4Translation(t Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0], m[3][1], m[3][2] = t.X, t.Y, t.Z
	return m
}

func Mat4Scale(s Vec3) Mat4 {
	return Mat3Diagonal(s).ToMat4()
}

// Mat4TRS composes scale, then rotation, then translation.
func Mat4TRS(t Vec3, r Quaternion, s Vec3) Mat4 {
	return Mat4Scale(s).Mul(r.ToMat4()).Mul(Mat4Translation(t))
}

// Mat4Perspective is the OpenGL-style projection mapping depth to [-1, 1].
func Mat4Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)

	var m Mat4
	m[0][0] = f / aspect
	m[1][1] = f
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m
}

func Mat4LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return Mat4{
		{x.X, y.X, z.X, 0},
		{x.Y, y.Y, z.Y, 0},
		{x.Z, y.Z, z.Z, 0},
		{-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1},
	}
}
