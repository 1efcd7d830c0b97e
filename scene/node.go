package scene

import (
	"fmt"
	"sync/atomic"

	"gltf-viewer/core"
	"gltf-viewer/math"

	"github.com/go-gl/mathgl/mgl64"
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	Visible   bool
	Id        uint32

	// Renderable flags. Culling=false keeps the node out of frustum culling.
	// The shadow flags are data only: the forward renderer has no shadow pass.
	CastShadows    bool
	ReceiveShadows bool
	Culling        bool

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

var nodeIdCounter atomic.Uint32

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Children:         make([]*Node, 0),
		Visible:          true,
		Id:               nodeIdCounter.Add(1),
		CastShadows:      true,
		ReceiveShadows:   true,
		Culling:          true,
		worldMatrixDirty: true,
	}
}

// NewMeshNode is NewNode with a mesh attached.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	return n
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// WorldMatrix returns local followed by every ancestor transform.
func (n *Node) WorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.Matrix()
		if n.Parent != nil {
			n.worldMatrix = localMatrix.Mul(n.Parent.WorldMatrix())
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

// WorldBox returns the mesh's local box in world space. ok is false for
// nodes without a mesh or whose mesh has no geometry.
func (n *Node) WorldBox() (box math.Box, ok bool) {
	if n.Mesh == nil || !n.Mesh.HasLocalBox {
		return math.Box{}, false
	}
	return n.Mesh.LocalBox.TransformMat4(n.WorldMatrix()), true
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

// SetTransformMatrix replaces the local transform with the decomposition of m.
func (n *Node) SetTransformMatrix(m math.Mat4) {
	n.Transform = core.TransformFromMatrix(m)
	n.MarkWorldMatrixDirty()
}

// SetTransformD accepts a double-precision local matrix and narrows it.
func (n *Node) SetTransformD(m mgl64.Mat4) {
	n.SetTransformMatrix(math.Mat4FromMgl64(m))
}

// Label is the node's name, or #id for unnamed nodes.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("#%d", n.Id)
}
