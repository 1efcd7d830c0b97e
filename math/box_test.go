package math

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoxUnitCube(t *testing.T) {
	b := NewBox(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	assert.Equal(t, Vec3Zero, b.Center)
	assert.Equal(t, Vec3One, b.HalfExtent)

	s := b.BoundingSphere()
	assert.Equal(t, Vec3Zero, s.Center)
	assert.InDelta(t, math32.Sqrt(3), s.Radius, 1e-6)
}

func TestNewBoxMinMaxRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		min, max Vec3
	}{
		{"unit", NewVec3(0, 0, 0), NewVec3(1, 1, 1)},
		{"offset", NewVec3(-2, 0, 1), NewVec3(4, 3, 1.5)},
		{"flat", NewVec3(-1, 2, 0), NewVec3(1, 2, 0)},
		{"point", NewVec3(3, 3, 3), NewVec3(3, 3, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBox(tt.min, tt.max)
			assert.Equal(t, tt.min, b.Min())
			assert.Equal(t, tt.max, b.Max())
			assert.True(t, b.Min().LessEq(b.Max()))
			assert.True(t, b.IsValid())
		})
	}
}

func TestNewBoxInvertedCorners(t *testing.T) {
	// Callers own the min <= max precondition; the plain constructor only
	// does arithmetic.
	b := NewBox(NewVec3(1, 0, 0), NewVec3(0, 1, 1))
	assert.Equal(t, float32(-0.5), b.HalfExtent.X)
	assert.False(t, b.IsValid())

	_, err := NewBoxChecked(NewVec3(1, 0, 0), NewVec3(0, 1, 1))
	require.ErrorIs(t, err, ErrInvertedBox)

	ok, err := NewBoxChecked(NewVec3(0, 0, 0), NewVec3(2, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, Vec3One, ok.HalfExtent)
}

func TestBoxIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want bool
	}{
		{"zero value", Box{}, true},
		{"offset center", Box{Center: NewVec3(5, 5, 5)}, true},
		{"unit", Box{HalfExtent: Vec3One}, false},
		{"flat", Box{HalfExtent: NewVec3(1, 1, 0)}, false},
		// Sums to zero; a sum-based test would call this empty.
		{"cancelling extents", Box{HalfExtent: NewVec3(-1, 1, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.IsEmpty())
		})
	}
}

func TestBoxUnion(t *testing.T) {
	a := NewBox(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewBox(NewVec3(2, -1, 0), NewVec3(3, 0, 4))

	u := a.Union(b)
	assert.Equal(t, u, b.Union(a), "union must be commutative")
	assert.Equal(t, NewVec3(0, -1, 0), u.Min())
	assert.Equal(t, NewVec3(3, 1, 4), u.Max())
	assert.Equal(t, a.Min().Min(b.Min()), u.Min())
	assert.Equal(t, a.Max().Max(b.Max()), u.Max())

	c := NewBox(NewVec3(-5, 0, 0), NewVec3(-4, 1, 1))
	assert.Equal(t, a.Union(b).Union(c), a.Union(b.Union(c)), "union must be associative")
}

func TestBoxUnionWithEmptyBox(t *testing.T) {
	a := NewBox(NewVec3(0, 0, 0), NewVec3(1, 1, 1))

	// The empty box's center still counts, so it is not an identity...
	far := Box{Center: NewVec3(5, 0, 0)}
	u := a.Union(far)
	assert.Equal(t, NewVec3(0, 0, 0), u.Min())
	assert.Equal(t, NewVec3(5, 1, 1), u.Max())

	// ...unless the center already lies inside the other box.
	inside := Box{Center: NewVec3(0.5, 0.5, 0.5)}
	assert.Equal(t, a, a.Union(inside))
}

func TestBoxTranslateTo(t *testing.T) {
	b := NewBox(NewVec3(0, 0, 0), NewVec3(2, 4, 6))
	c := NewVec3(-3, 7, 0.5)

	moved := b.TranslateTo(c)
	assert.Equal(t, c, moved.Center)
	assert.Equal(t, b.HalfExtent, moved.HalfExtent)
	assert.Equal(t, NewVec3(1, 2, 3), b.Center, "receiver must not change")
}

func TestBoxBoundingSphereContainsCorners(t *testing.T) {
	b := Box{Center: NewVec3(1, 2, 3), HalfExtent: NewVec3(0.5, 2, 1)}
	s := b.BoundingSphere()

	assert.Equal(t, b.Center, s.Center)
	assert.Equal(t, b.HalfExtent.Length(), s.Radius)
	for _, c := range b.Corners() {
		assert.LessOrEqual(t, c.Distance(s.Center), s.Radius+1e-5)
	}
}

func TestTransformBox(t *testing.T) {
	box := Box{Center: NewVec3(1, 2, 3), HalfExtent: NewVec3(0.5, 2, 1)}

	t.Run("identity keeps the input box", func(t *testing.T) {
		// Regression: the result must come from the caller's box, not a
		// freshly constructed one.
		got := TransformBox(Mat3Identity(), Vec3Zero, box)
		assert.Equal(t, box, got)
	})

	t.Run("diagonal scale", func(t *testing.T) {
		unit := Box{HalfExtent: Vec3One}
		got := TransformBox(Mat3Diagonal(NewVec3(2, 1, 1)), Vec3Zero, unit)
		assert.Equal(t, Vec3Zero, got.Center)
		assert.Equal(t, NewVec3(2, 1, 1), got.HalfExtent)
	})

	t.Run("negative scale keeps extents positive", func(t *testing.T) {
		got := TransformBox(Mat3Diagonal(NewVec3(-3, 1, 1)), Vec3Zero, box)
		assert.Equal(t, NewVec3(-3, 2, 3), got.Center)
		assert.Equal(t, NewVec3(1.5, 2, 1), got.HalfExtent)
		assert.True(t, got.IsValid())
	})

	t.Run("translation", func(t *testing.T) {
		got := TransformBox(Mat3Identity(), NewVec3(1, 2, 3), Box{HalfExtent: Vec3One})
		assert.Equal(t, NewVec3(1, 2, 3), got.Center)
		assert.Equal(t, Vec3One, got.HalfExtent)
	})

	t.Run("quarter turn swaps axes", func(t *testing.T) {
		rot := Mat3FromColumns(NewVec3(0, 1, 0), NewVec3(-1, 0, 0), NewVec3(0, 0, 1))
		in := Box{Center: NewVec3(1, 0, 0), HalfExtent: NewVec3(2, 1, 0.5)}
		got := TransformBox(rot, Vec3Zero, in)
		assert.Equal(t, NewVec3(0, 1, 0), got.Center)
		assert.Equal(t, NewVec3(1, 2, 0.5), got.HalfExtent)
	})

	t.Run("result contains transformed corners", func(t *testing.T) {
		rot := QuaternionFromAxisAngle(NewVec3(1, 1, 0), 0.7).ToMat3().Mul(Mat3Diagonal(NewVec3(1, 2, 0.5)))
		tr := NewVec3(-4, 0, 9)
		got := TransformBox(rot, tr, box)
		grown := Box{Center: got.Center, HalfExtent: got.HalfExtent.Add(Splat3(1e-4))}
		for _, c := range box.Corners() {
			p := rot.MulVec3(c).Add(tr)
			assert.True(t, grown.Contains(p), "corner %v escapes %v", p, got)
		}
	})
}

func TestBoxTransformMat4(t *testing.T) {
	m := Mat4TRS(NewVec3(1, 2, 3), QuaternionIdentity(), Splat3(2))
	got := Box{HalfExtent: Vec3One}.TransformMat4(m)

	assert.Equal(t, NewVec3(1, 2, 3), got.Center)
	assert.Equal(t, Splat3(2), got.HalfExtent)
}

func TestBoxFromPoints(t *testing.T) {
	assert.Equal(t, Box{}, BoxFromPoints(nil))

	b := BoxFromPoints([]Vec3{
		NewVec3(1, 0, -2),
		NewVec3(-1, 3, 0),
		NewVec3(0, 1, 2),
	})
	assert.Equal(t, NewVec3(-1, 0, -2), b.Min())
	assert.Equal(t, NewVec3(1, 3, 2), b.Max())
}

func TestBoxCornersAndAabb(t *testing.T) {
	b := NewBox(NewVec3(0, 0, 0), NewVec3(1, 2, 3))
	corners := b.Corners()

	assert.Equal(t, b.Min(), corners[0])
	assert.Equal(t, b.Max(), corners[7])
	seen := map[Vec3]bool{}
	for _, c := range corners {
		assert.True(t, b.Contains(c))
		seen[c] = true
	}
	assert.Len(t, seen, 8)

	a := b.Aabb()
	assert.Equal(t, Aabb{Min: NewVec3(0, 0, 0), Max: NewVec3(1, 2, 3)}, a)
	assert.Equal(t, b, a.Box())
	assert.False(t, b.Contains(NewVec3(0, 0, 3.5)))
}
