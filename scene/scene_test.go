package scene

import (
	"testing"

	"gltf-viewer/math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeWorldMatrixAppliesParentLast(t *testing.T) {
	parent := NewNode("parent")
	parent.SetScale(math.Splat3(2))
	child := NewNode("child")
	child.SetPosition(math.NewVec3(1, 0, 0))
	parent.AddChild(child)

	// Child offset is scaled by the parent: (1,0,0) -> (2,0,0).
	got := child.WorldMatrix().MulVec3(math.Vec3Zero)
	near(t, math.NewVec3(2, 0, 0), got, 1e-6)

	parent.SetPosition(math.NewVec3(0, 3, 0))
	near(t, math.NewVec3(2, 3, 0), child.WorldMatrix().MulVec3(math.Vec3Zero), 1e-6)
}

func TestNodeWorldBox(t *testing.T) {
	n := NewMeshNode("cube", CreateCube(2))
	n.SetPosition(math.NewVec3(5, 0, 0))
	n.SetScale(math.NewVec3(1, 3, 1))

	box, ok := n.WorldBox()
	require.True(t, ok)
	near(t, math.NewVec3(5, 0, 0), box.Center, 1e-6)
	near(t, math.NewVec3(1, 3, 1), box.HalfExtent, 1e-6)

	_, ok = NewNode("empty").WorldBox()
	assert.False(t, ok)
}

func TestNodeSetTransformD(t *testing.T) {
	n := NewNode("n")
	m := mgl64.Translate3D(1, 2, 3).Mul4(mgl64.HomogRotate3DY(0.5)).Mul4(mgl64.Scale3D(2, 2, 2))
	n.SetTransformD(m)

	p := mgl64.Vec3{0.5, -1, 2}
	want := math.Vec3FromMgl64(mgl64.TransformCoordinate(p, m))
	near(t, want, n.WorldMatrix().MulVec3(math.Vec3FromMgl64(p)), 1e-5)
}

func TestSceneBoundsAndCounts(t *testing.T) {
	s := NewScene()
	_, ok := s.Bounds()
	assert.False(t, ok)

	a := NewMeshNode("a", CreateCube(2))
	b := NewMeshNode("b", CreateCube(2))
	b.SetPosition(math.NewVec3(4, 0, 0))
	hidden := NewMeshNode("hidden", CreateCube(2))
	hidden.SetPosition(math.NewVec3(-100, 0, 0))
	hidden.Visible = false

	s.AddNodes(a, b, hidden)
	s.AddLight(NewSunLight())

	assert.Equal(t, 2, s.RenderableCount())
	assert.Equal(t, 1, s.LightCount())

	bounds, ok := s.Bounds()
	require.True(t, ok)
	near(t, math.NewVec3(-1, -1, -1), bounds.Min(), 1e-6)
	near(t, math.NewVec3(5, 1, 1), bounds.Max(), 1e-6)

	s.RemoveNodes(a, b)
	assert.Equal(t, 0, s.RenderableCount())
	assert.Nil(t, a.Parent)
}

func TestMeshLocalBox(t *testing.T) {
	m := CreateTriangle()
	require.True(t, m.HasLocalBox)
	near(t, math.NewVec3(-0.1, -0.1, 0), m.LocalBox.Min(), 1e-6)
	near(t, math.NewVec3(0.3, 0.3, 0), m.LocalBox.Max(), 1e-6)

	m.SetLocalBox(math.Box{HalfExtent: math.Vec3One})
	assert.Equal(t, math.Vec3One, m.LocalBox.HalfExtent)
}

func TestPackIndices16(t *testing.T) {
	packed, ok := PackIndices16([]uint32{0, 1, 65535})
	require.True(t, ok)
	assert.Equal(t, []uint16{0, 1, 65535}, packed)

	packed, ok = PackIndices16([]uint32{0, 65536})
	assert.False(t, ok)
	assert.Nil(t, packed)
}

func TestCreateUnitBoxWireframe(t *testing.T) {
	m := CreateUnitBoxWireframe()
	assert.Equal(t, DrawLines, m.DrawMode)
	assert.Len(t, m.Indices, 24)
	assert.Equal(t, math.Vec3One, m.LocalBox.HalfExtent)

	// Each edge differs in exactly one coordinate.
	for i := 0; i < len(m.Indices); i += 2 {
		d := m.Vertices[m.Indices[i]].Position.Sub(m.Vertices[m.Indices[i+1]].Position).Abs()
		assert.Equal(t, float32(2), d.Sum())
	}

	target := math.NewBox(math.NewVec3(1, 2, 3), math.NewVec3(2, 6, 4))
	outlined := m.LocalBox.TransformMat4(BoxOutlineMatrix(target))
	near(t, target.Center, outlined.Center, 1e-6)
	near(t, target.HalfExtent, outlined.HalfExtent, 1e-6)
}

func TestCreateUnitSphereWireframe(t *testing.T) {
	assert.Len(t, CreateUnitSphereWireframe(2).Vertices, 9)

	m := CreateUnitSphereWireframe(16)
	assert.Equal(t, DrawLines, m.DrawMode)
	assert.Len(t, m.Vertices, 48)
	assert.Len(t, m.Indices, 96)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Position.Length(), 1e-6)
	}
	near(t, math.Vec3Zero, m.LocalBox.Center, 1e-6)
	near(t, math.Vec3One, m.LocalBox.HalfExtent, 1e-6)

	s := math.Sphere{Center: math.NewVec3(1, 2, 3), Radius: 4}
	near(t, math.NewVec3(5, 2, 3), SphereOutlineMatrix(s).MulVec3(math.Vec3Right), 1e-6)
}
