package core

import (
	"gltf-viewer/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
}

// Transform is a TRS decomposition. The matrix applies scale, then rotation,
// then translation.
type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

func (t Transform) Matrix() math.Mat4 {
	return math.Mat4TRS(t.Position, t.Rotation, t.Scale)
}

// TransformFromMatrix decomposes an affine matrix without shear. A zero scale
// axis leaves the rotation at identity.
func TransformFromMatrix(m math.Mat4) Transform {
	l := m.Upper3x3()
	c0, c1, c2 := l.Column(0), l.Column(1), l.Column(2)
	s := math.NewVec3(c0.Length(), c1.Length(), c2.Length())
	if l.Determinant() < 0 {
		s.X = -s.X
	}

	t := Transform{Position: m.Translation(), Rotation: math.QuaternionIdentity(), Scale: s}
	if s.X == 0 || s.Y == 0 || s.Z == 0 {
		return t
	}
	t.Rotation = math.QuaternionFromMat3(math.Mat3FromColumns(c0.Div(s.X), c1.Div(s.Y), c2.Div(s.Z)))
	return t
}

func (t Transform) Forward() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Back)
}

func (t Transform) Right() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Right)
}

func (t Transform) Up() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Up)
}

// Viewport is a pixel rectangle with its origin at the bottom-left corner.
type Viewport struct {
	Left, Bottom  int32
	Width, Height uint32
}

// Aspect returns width / height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

func (v Viewport) IsEmpty() bool {
	return v.Width == 0 || v.Height == 0
}

// ClearOptions controls how the target is cleared before a view is drawn.
type ClearOptions struct {
	ClearColor Color
	Clear      bool
	Discard    bool
}
