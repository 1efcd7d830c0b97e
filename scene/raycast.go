package scene

import (
	stdmath "math"

	"gltf-viewer/core"
	"gltf-viewer/math"
)

// Ray is a half-line in world space. Direction is unit length.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit is the closest intersection found by Pick.
type Hit struct {
	Node     *Node
	Distance float32
	Point    math.Vec3
	Normal   math.Vec3
	Face     int // triangle index, -1 when only the box was hit
}

// ScreenRay converts a cursor position, in pixels from the viewport's
// top-left corner, to a world-space ray from the near plane to the far plane.
func ScreenRay(cam *Camera, vp core.Viewport, x, y float32) Ray {
	ndcX := 2*x/float32(vp.Width) - 1
	ndcY := 1 - 2*y/float32(vp.Height)

	inv := cam.ViewProjectionMatrix().Inverse()
	near := inv.MulVec3(math.NewVec3(ndcX, ndcY, -1))
	far := inv.MulVec3(math.NewVec3(ndcX, ndcY, 1))

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// IntersectBox returns the entry distance of the ray into b using the slab
// test. A ray starting inside b hits at t = 0.
func (r Ray) IntersectBox(b math.Box) (float32, bool) {
	lo, hi := b.Min(), b.Max()
	tmin, tmax := float32(0), float32(stdmath.MaxFloat32)
	for i := 0; i < 3; i++ {
		o, d := r.Origin.Index(i), r.Direction.Index(i)
		if d == 0 {
			if o < lo.Index(i) || o > hi.Index(i) {
				return 0, false
			}
			continue
		}
		t1 := (lo.Index(i) - o) / d
		t2 := (hi.Index(i) - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// IntersectTriangle is the Möller–Trumbore test. Both windings hit.
func (r Ray) IntersectTriangle(v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}

// Pick returns the closest node hit by the ray. Boxes reject nodes first;
// triangle meshes are then tested per face, other draw modes count as hit
// wherever their box is.
func Pick(nodes []*Node, ray Ray) (Hit, bool) {
	best := Hit{Distance: stdmath.MaxFloat32, Face: -1}
	found := false
	for _, n := range nodes {
		box, ok := n.WorldBox()
		if !ok {
			continue
		}
		t, ok := ray.IntersectBox(box)
		if !ok || t > best.Distance {
			continue
		}
		if n.Mesh.DrawMode != DrawTriangles {
			best = Hit{Node: n, Distance: t, Point: ray.At(t), Face: -1}
			found = true
			continue
		}
		if h, ok := pickMesh(n, ray); ok && h.Distance < best.Distance {
			best, found = h, true
		}
	}
	return best, found
}

func pickMesh(n *Node, ray Ray) (Hit, bool) {
	mesh := n.Mesh
	world := n.WorldMatrix()
	index := func(i int) uint32 {
		if len(mesh.Indices) == 0 {
			return uint32(i)
		}
		return mesh.Indices[i]
	}
	count := len(mesh.Indices)
	if count == 0 {
		count = len(mesh.Vertices)
	}

	closest := Hit{Distance: stdmath.MaxFloat32, Face: -1}
	found := false
	for i := 0; i+2 < count; i += 3 {
		i0, i1, i2 := index(i), index(i+1), index(i+2)
		if int(max(i0, i1, i2)) >= len(mesh.Vertices) {
			continue
		}
		v0 := world.MulVec3(mesh.Vertices[i0].Position)
		v1 := world.MulVec3(mesh.Vertices[i1].Position)
		v2 := world.MulVec3(mesh.Vertices[i2].Position)

		t, hit := ray.IntersectTriangle(v0, v1, v2)
		if hit && t < closest.Distance {
			closest = Hit{
				Node:     n,
				Distance: t,
				Point:    ray.At(t),
				Normal:   v1.Sub(v0).Cross(v2.Sub(v0)).Normalize(),
				Face:     i / 3,
			}
			found = true
		}
	}
	return closest, found
}
