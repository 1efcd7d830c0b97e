package math

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func assertVec3Near(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqual(got, eps), "want %v, got %v", want, got)
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	assert.Equal(t, NewVec3(5, 7, 9), v1.Add(v2))
	assert.Equal(t, NewVec3(3, 3, 3), v2.Sub(v1))
	assert.Equal(t, NewVec3(2, 4, 6), v1.Mul(2))
	assert.Equal(t, float32(32), v1.Dot(v2))
	assert.Equal(t, float32(6), v1.Sum())

	// Right x Up = Front in a right-handed system.
	assert.Equal(t, Vec3Front, Vec3Right.Cross(Vec3Up))
}

func TestVec3ComponentWise(t *testing.T) {
	a := NewVec3(1, -5, 3)
	b := NewVec3(-2, 4, 3)

	assert.Equal(t, NewVec3(-2, -5, 3), a.Min(b))
	assert.Equal(t, NewVec3(1, 4, 3), a.Max(b))
	assert.Equal(t, NewVec3(1, 5, 3), a.Abs())
	assert.Equal(t, float32(-5), a.Index(1))
	assert.Panics(t, func() { a.Index(3) })
	assert.True(t, a.Min(b).LessEq(a.Max(b)))
}

func TestVec3Normalize(t *testing.T) {
	n := NewVec3(3, 0, 0).Normalize()
	assert.Equal(t, NewVec3(1, 0, 0), n)
	assert.InDelta(t, 1, n.Length(), 1e-4)

	assert.Equal(t, Vec3Zero, Vec3Zero.Normalize())
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			assert.Equal(t, want, m[i][j], "[%d][%d]", i, j)
		}
	}
	assert.Equal(t, m, m.Mul(m))
}

func TestMat4Translation(t *testing.T) {
	tr := NewVec3(1, 2, 3)
	m := Mat4Translation(tr)

	assert.Equal(t, tr, m.Translation())
	assert.Equal(t, tr, NewVec4(0, 0, 0, 1).MulMat(m).ToVec3())
	assert.Equal(t, Mat3Identity(), m.Upper3x3())
}

func TestMat4MulOrder(t *testing.T) {
	// a.Mul(b) applies a first: scale, then move.
	m := Mat4Scale(Splat3(2)).Mul(Mat4Translation(NewVec3(1, 0, 0)))
	assertVec3Near(t, NewVec3(3, 2, 2), m.MulVec3(Vec3One))

	// Move, then scale.
	m = Mat4Translation(NewVec3(1, 0, 0)).Mul(Mat4Scale(Splat3(2)))
	assertVec3Near(t, NewVec3(4, 2, 2), m.MulVec3(Vec3One))
}

func TestMat4Inverse(t *testing.T) {
	m := Mat4TRS(NewVec3(1, -2, 3), QuaternionFromAxisAngle(Vec3Up, 0.5), NewVec3(2, 1, 4))
	p := NewVec3(0.3, 7, -1)

	assertVec3Near(t, p, m.Inverse().MulVec3(m.MulVec3(p)))
}

func TestQuaternionIdentity(t *testing.T) {
	q := QuaternionIdentity()
	assert.Equal(t, Quaternion{0, 0, 0, 1}, q)
	assert.Equal(t, Mat4Identity(), q.ToMat4())
}

func TestQuaternionRotation(t *testing.T) {
	// 90 degrees around Y takes +X to -Z.
	q := QuaternionFromAxisAngle(Vec3Up, math32.Pi/2)
	assertVec3Near(t, NewVec3(0, 0, -1), q.RotateVector(Vec3Right))

	// The matrix form agrees with RotateVector.
	assertVec3Near(t, q.RotateVector(NewVec3(1, 2, 3)), q.ToMat3().MulVec3(NewVec3(1, 2, 3)))
}

func TestQuaternionFromMat3RoundTrip(t *testing.T) {
	for _, angle := range []float32{0.1, 1.2, 2.8, -2.5} {
		q := QuaternionFromAxisAngle(NewVec3(1, 2, -0.5), angle)
		back := QuaternionFromMat3(q.ToMat3())
		v := NewVec3(0.2, -1, 3)
		assertVec3Near(t, q.RotateVector(v), back.RotateVector(v))
	}
}

func TestQuaternionSlerpEndpoints(t *testing.T) {
	a := QuaternionIdentity()
	b := QuaternionFromAxisAngle(Vec3Up, 1)
	v := Vec3Right

	assertVec3Near(t, a.RotateVector(v), a.Slerp(b, 0).RotateVector(v))
	assertVec3Near(t, b.RotateVector(v), a.Slerp(b, 1).RotateVector(v))
	assertVec3Near(t, QuaternionFromAxisAngle(Vec3Up, 0.5).RotateVector(v), a.Slerp(b, 0.5).RotateVector(v))
}

func TestMat4Perspective(t *testing.T) {
	m := Mat4Perspective(math32.Pi/4, 16.0/9.0, 0.1, 100)

	assert.NotZero(t, m[0][0])
	assert.NotZero(t, m[1][1])
	assert.Equal(t, float32(-1), m[2][3])

	// Points on the near and far planes map to -1 and 1.
	assert.InDelta(t, -1, m.MulVec3(NewVec3(0, 0, -0.1)).Z, 1e-4)
	assert.InDelta(t, 1, m.MulVec3(NewVec3(0, 0, -100)).Z, 1e-4)
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	m := Mat4LookAt(eye, Vec3Zero, Vec3Up)

	// The eye lands on the origin and the target straight ahead on -Z.
	assertVec3Near(t, Vec3Zero, m.MulVec(eye.ToVec4(1)).ToVec3())
	assertVec3Near(t, NewVec3(0, 0, -5), m.MulVec3(Vec3Zero))
}

func TestMat3(t *testing.T) {
	m := Mat3FromColumns(NewVec3(1, 2, 3), NewVec3(-4, 5, 6), NewVec3(7, -8, 9))

	assert.Equal(t, NewVec3(1, 2, 3), m.Column(0))
	assert.Equal(t, NewVec3(1, 2, 3), m.MulVec3(Vec3Right))
	assert.Equal(t, Mat3FromColumns(NewVec3(1, 2, 3), NewVec3(4, 5, 6), NewVec3(7, 8, 9)), m.Abs())
	assert.Equal(t, m, m.Transpose().Transpose())
	assert.Equal(t, m, m.Mul(Mat3Identity()))
	assert.Equal(t, m, Mat3Identity().Mul(m))
	assert.Equal(t, float32(24), Mat3Diagonal(NewVec3(2, 3, 4)).Determinant())

	// Mul applies the right-hand matrix first.
	s := Mat3Diagonal(NewVec3(2, 1, 1))
	v := NewVec3(1, 1, 0)
	assert.Equal(t, m.MulVec3(s.MulVec3(v)), m.Mul(s).MulVec3(v))
}

func TestMatrixPrecisionConversion(t *testing.T) {
	m := Mat4TRS(NewVec3(1.25, -3, 0.5), QuaternionFromAxisAngle(NewVec3(0, 1, 1), 0.3), NewVec3(1, 2, 3))

	assert.Equal(t, m, Mat4FromMgl64(m.ToMgl64()), "float -> double -> float is exact")
	assert.Equal(t, m, Mat4FromMgl32(m.ToMgl32()))

	// Both layouts are column-major: the translation sits in elements 12..14.
	d := m.ToMgl64()
	assert.Equal(t, mgl64.Vec3{1.25, -3, 0.5}, mgl64.Vec3{d[12], d[13], d[14]})
	assert.Equal(t, m.Translation(), Vec3FromMgl64(d.Col(3).Vec3()))

	m3 := m.Upper3x3()
	assert.Equal(t, m3, Mat3FromMgl64(m3.ToMgl64()))

	v := NewVec3(0.1, 0.2, 0.3)
	assert.Equal(t, v, Vec3FromMgl64(v.ToMgl64()))

	// mathgl's own product matches ours.
	p := NewVec3(2, -1, 4)
	want := m.MulVec3(p)
	got := Vec3FromMgl64(mgl64.TransformCoordinate(p.ToMgl64(), m.ToMgl64()))
	assertVec3Near(t, want, got)
}

func BenchmarkVec3Add(b *testing.B) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)
	for i := 0; i < b.N; i++ {
		_ = v1.Add(v2)
	}
}

func BenchmarkTransformBox(b *testing.B) {
	m := Mat4TRS(NewVec3(1, 2, 3), QuaternionFromAxisAngle(Vec3Up, 0.4), Vec3One)
	box := Box{HalfExtent: Vec3One}
	for i := 0; i < b.N; i++ {
		_ = box.TransformMat4(m)
	}
}
