package scene

import (
	stdmath "math"

	"gltf-viewer/core"
	"gltf-viewer/math"
)

// DrawMode controls the OpenGL primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // gl.TRIANGLES (default)
	DrawLines                     // gl.LINES: pairs of indices form segments
	DrawPoints                    // gl.POINTS
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode

	// Local-space bounds. Set by CreateMeshFromData from the vertices or by
	// SetLocalBox from authored data.
	LocalBox    math.Box
	HasLocalBox bool

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *MaterialInstance

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData any
}

// CreateMeshFromData builds a Mesh and computes its local box.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		m.SetLocalBox(computeLocalBox(vertices))
	}
	return m
}

func computeLocalBox(vertices []core.Vertex) math.Box {
	points := make([]math.Vec3, len(vertices))
	for i, v := range vertices {
		points[i] = v.Position
	}
	return math.BoxFromPoints(points)
}

// SetLocalBox overrides the computed bounds, e.g. with accessor min/max.
func (m *Mesh) SetLocalBox(b math.Box) {
	m.LocalBox = b
	m.HasLocalBox = true
}

// PackIndices16 narrows indices to 16 bits. ok is false, and the result nil,
// when any index does not fit.
func PackIndices16(indices []uint32) (packed []uint16, ok bool) {
	packed = make([]uint16, len(indices))
	for i, idx := range indices {
		if idx > stdmath.MaxUint16 {
			return nil, false
		}
		packed[i] = uint16(idx)
	}
	return packed, true
}

// CreateTriangle returns the small textured triangle shown before any asset
// is loaded.
func CreateTriangle() *Mesh {
	normal := math.Vec3Front
	vertices := []core.Vertex{
		{Position: math.NewVec3(-0.1, -0.1, 0), Normal: normal, UV: math.NewVec2(0, 1), Color: core.ColorRed},
		{Position: math.NewVec3(0.3, -0.1, 0), Normal: normal, UV: math.NewVec2(2, 1), Color: core.ColorGreen},
		{Position: math.NewVec3(-0.1, 0.3, 0), Normal: normal, UV: math.NewVec2(0, -1), Color: core.ColorBlue},
	}
	return CreateMeshFromData("Triangle", vertices, []uint32{0, 1, 2})
}

// CreateCube returns an axis-aligned cube of the given edge length with
// per-face normals.
func CreateCube(size float32) *Mesh {
	s := size / 2
	faces := []struct{ normal, u, v math.Vec3 }{
		{math.Vec3Front, math.Vec3Right, math.Vec3Up},
		{math.Vec3Back, math.Vec3Left, math.Vec3Up},
		{math.Vec3Up, math.Vec3Right, math.Vec3Back},
		{math.Vec3Down, math.Vec3Right, math.Vec3Front},
		{math.Vec3Right, math.Vec3Back, math.Vec3Up},
		{math.Vec3Left, math.Vec3Front, math.Vec3Up},
	}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	signs := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, sg := range signs {
			p := f.normal.Add(f.u.Mul(sg[0])).Add(f.v.Mul(sg[1])).Mul(s)
			vertices = append(vertices, core.Vertex{Position: p, Normal: f.normal, UV: uvs[i], Color: core.ColorWhite})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return CreateMeshFromData("Cube", vertices, indices)
}
