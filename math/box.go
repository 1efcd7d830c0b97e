package math

import (
	"errors"
	"fmt"
)

// ErrInvertedBox is returned by NewBoxChecked when a min corner exceeds the
// max corner on some axis.
var ErrInvertedBox = errors.New("math: box min exceeds max")

// Box is an axis-aligned bounding box stored as a center and a non-negative
// half-extent. A zero half-extent marks an empty box regardless of its center.
//
// Box is a value type: every operation returns a new Box.
type Box struct {
	Center     Vec3
	HalfExtent Vec3
}

// Aabb is the min/max corner form of a Box.
type Aabb struct {
	Min, Max Vec3
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float32
}

// NewBox builds a box from its min and max corners. No ordering is enforced:
// if min exceeds max on an axis the half-extent on that axis is negative and
// the box is invalid (see IsValid). Use NewBoxChecked to reject such input.
func NewBox(min, max Vec3) Box {
	return Box{
		Center:     max.Add(min).Mul(0.5),
		HalfExtent: max.Sub(min).Mul(0.5),
	}
}

// NewBoxChecked is NewBox with the min <= max precondition enforced.
func NewBoxChecked(min, max Vec3) (Box, error) {
	if !min.LessEq(max) {
		return Box{}, fmt.Errorf("%w: min %v, max %v", ErrInvertedBox, min, max)
	}
	return NewBox(min, max), nil
}

// BoxFromPoints returns the tightest box around points. An empty slice yields
// the zero Box.
func BoxFromPoints(points []Vec3) Box {
	if len(points) == 0 {
		return Box{}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return NewBox(lo, hi)
}

// IsEmpty reports whether every half-extent component is exactly zero.
// Each axis is tested on its own: a half-extent of (-1, 1, 0) sums to zero
// but is not empty.
func (b Box) IsEmpty() bool {
	return b.HalfExtent.X == 0 && b.HalfExtent.Y == 0 && b.HalfExtent.Z == 0
}

// IsValid reports whether no half-extent component is negative.
func (b Box) IsValid() bool {
	return b.HalfExtent.X >= 0 && b.HalfExtent.Y >= 0 && b.HalfExtent.Z >= 0
}

// Min returns center - halfExtent.
func (b Box) Min() Vec3 {
	return b.Center.Sub(b.HalfExtent)
}

// Max returns center + halfExtent.
func (b Box) Max() Vec3 {
	return b.Center.Add(b.HalfExtent)
}

// Union returns the smallest box containing b and other.
//
// An empty box is not an identity for Union: its center still takes part in
// the min/max, so b.Union(empty) grows b to reach empty.Center unless that
// point is already inside b.
func (b Box) Union(other Box) Box {
	return NewBox(b.Min().Min(other.Min()), b.Max().Max(other.Max()))
}

// TranslateTo returns a box with the same half-extent centered at c.
func (b Box) TranslateTo(c Vec3) Box {
	return Box{Center: c, HalfExtent: b.HalfExtent}
}

// BoundingSphere returns the sphere through the box corners: same center,
// radius = |halfExtent|. It always contains the box.
func (b Box) BoundingSphere() Sphere {
	return Sphere{Center: b.Center, Radius: b.HalfExtent.Length()}
}

// TransformBox returns the bounding box of box under the affine map
// p -> m*p + t. The half-extent goes through |m| so the result still contains
// every transformed corner.
func TransformBox(m Mat3, t Vec3, box Box) Box {
	return Box{
		Center:     m.MulVec3(box.Center).Add(t),
		HalfExtent: m.Abs().MulVec3(box.HalfExtent),
	}
}

// TransformMat4 applies the affine part of m. Projective terms are ignored.
func (b Box) TransformMat4(m Mat4) Box {
	return TransformBox(m.Upper3x3(), m.Translation(), b)
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Vec3) bool {
	return b.Min().LessEq(p) && p.LessEq(b.Max())
}

// Corners returns the eight corners, X varying fastest.
func (b Box) Corners() [8]Vec3 {
	lo, hi := b.Min(), b.Max()
	var out [8]Vec3
	for i := range out {
		out[i] = lo
		if i&1 != 0 {
			out[i].X = hi.X
		}
		if i&2 != 0 {
			out[i].Y = hi.Y
		}
		if i&4 != 0 {
			out[i].Z = hi.Z
		}
	}
	return out
}

func (b Box) Aabb() Aabb {
	return Aabb{Min: b.Min(), Max: b.Max()}
}

func (a Aabb) Box() Box {
	return NewBox(a.Min, a.Max)
}

func (b Box) String() string {
	return fmt.Sprintf("Box{center: %v, halfExtent: %v}", b.Center, b.HalfExtent)
}
