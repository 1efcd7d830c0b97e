package math

import "github.com/chewxy/math32"

// Mat3 is a 3x3 linear transform stored column-major like Mat4: m[col][row].
type Mat3 [3][3]float32

func Mat3Identity() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mat3Diagonal returns a scale matrix with d on the diagonal.
func Mat3Diagonal(d Vec3) Mat3 {
	return Mat3{
		{d.X, 0, 0},
		{0, d.Y, 0},
		{0, 0, d.Z},
	}
}

// Mat3FromColumns builds a matrix from its three basis vectors.
func Mat3FromColumns(c0, c1, c2 Vec3) Mat3 {
	return Mat3{
		{c0.X, c0.Y, c0.Z},
		{c1.X, c1.Y, c1.Z},
		{c2.X, c2.Y, c2.Z},
	}
}

func (m Mat3) Column(i int) Vec3 {
	return Vec3{m[i][0], m[i][1], m[i][2]}
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[1][0]*v.Y + m[2][0]*v.Z,
		Y: m[0][1]*v.X + m[1][1]*v.Y + m[2][1]*v.Z,
		Z: m[0][2]*v.X + m[1][2]*v.Y + m[2][2]*v.Z,
	}
}

// Mul returns m * o, i.e. o is applied first.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for c := 0; c < 3; c++ {
		col := m.MulVec3(o.Column(c))
		r[c] = [3]float32{col.X, col.Y, col.Z}
	}
	return r
}

// Abs returns the element-wise absolute value of m.
func (m Mat3) Abs() Mat3 {
	var r Mat3
	for c := 0; c < 3; c++ {
		for row := 0; row < 3; row++ {
			r[c][row] = math32.Abs(m[c][row])
		}
	}
	return r
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

func (m Mat3) Determinant() float32 {
	return m.Column(0).Dot(m.Column(1).Cross(m.Column(2)))
}

// ToMat4 embeds m in the upper-left of an identity Mat4.
func (m Mat3) ToMat4() Mat4 {
	r := Mat4Identity()
	for c := 0; c < 3; c++ {
		copy(r[c][:3], m[c][:])
	}
	return r
}
