package scene

import "gltf-viewer/math"

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a view-projection matrix
// (Gribb/Hartmann). The planes are normalized so DistanceTo returns a true
// distance in world units.
func FrustumFromVP(vp math.Mat4) Frustum {
	// vp is [col][row]; the method works on the rows of the clip transform.
	row := func(i int) math.Vec4 {
		return math.Vec4{X: vp[0][i], Y: vp[1][i], Z: vp[2][i], W: vp[3][i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[0] = normalizePlane(r3.Add(r0))         // left
	f.Planes[1] = normalizePlane(r3.Add(r0.Mul(-1))) // right
	f.Planes[2] = normalizePlane(r3.Add(r1))         // bottom
	f.Planes[3] = normalizePlane(r3.Add(r1.Mul(-1))) // top
	f.Planes[4] = normalizePlane(r3.Add(r2))         // near
	f.Planes[5] = normalizePlane(r3.Add(r2.Mul(-1))) // far
	return f
}

func normalizePlane(v math.Vec4) Plane {
	n := v.ToVec3()
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Div(l), D: v.W / l}
}

// IntersectsAabb returns false if the box is completely outside the frustum.
// For each plane only the corner furthest along the normal is tested.
func (f *Frustum) IntersectsAabb(a math.Aabb) bool {
	for _, p := range f.Planes {
		v := a.Max
		if p.Normal.X < 0 {
			v.X = a.Min.X
		}
		if p.Normal.Y < 0 {
			v.Y = a.Min.Y
		}
		if p.Normal.Z < 0 {
			v.Z = a.Min.Z
		}
		if p.DistanceTo(v) < 0 {
			return false
		}
	}
	return true
}

// IntersectsBox is the center/half-extent form of IntersectsAabb: the box
// projects onto each normal as a radius of |n|·halfExtent.
func (f *Frustum) IntersectsBox(b math.Box) bool {
	for _, p := range f.Planes {
		r := p.Normal.Abs().Dot(b.HalfExtent)
		if p.DistanceTo(b.Center) < -r {
			return false
		}
	}
	return true
}

// IntersectsSphere returns false if s lies entirely outside some plane.
func (f *Frustum) IntersectsSphere(s math.Sphere) bool {
	for _, p := range f.Planes {
		if p.DistanceTo(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}
