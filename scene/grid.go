package scene

import (
	"gltf-viewer/core"
	"gltf-viewer/math"
)

func unlitMaterial(name string, c core.Color) *MaterialInstance {
	mi := NewColorMaterial(name, c)
	mi.mustSet(ParamUnlit, true)
	return mi
}

// CreateGrid builds a flat XZ grid rendered as lines, spanning -size/2 to
// +size/2 with divisions cells per axis. The center lines are colored by
// axis: red along X, blue along Z.
func CreateGrid(size float32, divisions int) *Mesh {
	divisions = max(divisions, 1)
	half := size / 2
	step := size / float32(divisions)

	gray := core.Color{R: 0.35, G: 0.35, B: 0.35, A: 1}
	red := core.Color{R: 0.8, G: 0.15, B: 0.15, A: 1}
	blue := core.Color{R: 0.15, G: 0.35, B: 0.9, A: 1}

	var vertices []core.Vertex
	var indices []uint32
	addLine := func(a, b math.Vec3, c core.Color) {
		base := uint32(len(vertices))
		vertices = append(vertices,
			core.Vertex{Position: a, Normal: math.Vec3Up, Color: c},
			core.Vertex{Position: b, Normal: math.Vec3Up, Color: c},
		)
		indices = append(indices, base, base+1)
	}

	for i := 0; i <= divisions; i++ {
		o := -half + float32(i)*step
		cz, cx := gray, gray
		if i == divisions/2 {
			cz, cx = blue, red
		}
		addLine(math.NewVec3(o, 0, -half), math.NewVec3(o, 0, half), cz)
		addLine(math.NewVec3(-half, 0, o), math.NewVec3(half, 0, o), cx)
	}

	m := CreateMeshFromData("Grid", vertices, indices)
	m.DrawMode = DrawLines
	m.Material = unlitMaterial("GridMaterial", core.ColorWhite)
	return m
}

// boxEdges indexes Box.Corners (X varies fastest).
var boxEdges = [12][2]uint32{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along X
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along Z
}

// CreateUnitBoxWireframe returns the edges of the box with center 0 and
// half-extent 1. Drawn with a model matrix of scale(halfExtent) followed by
// translate(center) it outlines any math.Box.
func CreateUnitBoxWireframe() *Mesh {
	corners := math.Box{HalfExtent: math.Vec3One}.Corners()
	vertices := make([]core.Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = core.Vertex{Position: c, Normal: math.Vec3Up, Color: core.ColorWhite}
	}
	indices := make([]uint32, 0, 2*len(boxEdges))
	for _, e := range boxEdges {
		indices = append(indices, e[0], e[1])
	}

	m := CreateMeshFromData("UnitBoxWireframe", vertices, indices)
	m.DrawMode = DrawLines
	m.Material = unlitMaterial("BoxMaterial", core.Color{R: 0.1, G: 0.95, B: 0.1, A: 1})
	return m
}

// BoxOutlineMatrix maps the unit wireframe onto b.
func BoxOutlineMatrix(b math.Box) math.Mat4 {
	return math.Mat4Scale(b.HalfExtent).Mul(math.Mat4Translation(b.Center))
}
