package scene

import (
	"github.com/chewxy/math32"

	"gltf-viewer/core"
	"gltf-viewer/math"
)

// CreateUnitSphereWireframe returns three great circles of the unit sphere,
// one per axis plane, each with segments line segments.
func CreateUnitSphereWireframe(segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}

	var vertices []core.Vertex
	var indices []uint32
	circle := func(point func(s, c float32) math.Vec3) {
		base := uint32(len(vertices))
		for seg := 0; seg < segments; seg++ {
			theta := float32(seg) * 2 * math32.Pi / float32(segments)
			s, c := math32.Sincos(theta)
			p := point(s, c)
			vertices = append(vertices, core.Vertex{Position: p, Normal: p, Color: core.ColorWhite})
			indices = append(indices, base+uint32(seg), base+uint32((seg+1)%segments))
		}
	}
	circle(func(s, c float32) math.Vec3 { return math.NewVec3(c, s, 0) })
	circle(func(s, c float32) math.Vec3 { return math.NewVec3(0, c, s) })
	circle(func(s, c float32) math.Vec3 { return math.NewVec3(s, 0, c) })

	m := CreateMeshFromData("UnitSphereWireframe", vertices, indices)
	m.DrawMode = DrawLines
	m.Material = unlitMaterial("SphereMaterial", core.Color{R: 0.95, G: 0.7, B: 0.1, A: 1})
	return m
}

// SphereOutlineMatrix maps the unit sphere wireframe onto s.
func SphereOutlineMatrix(s math.Sphere) math.Mat4 {
	return math.Mat4Scale(math.Splat3(s.Radius)).Mul(math.Mat4Translation(s.Center))
}
