package scene

import (
	"gltf-viewer/core"
	"gltf-viewer/math"
)

// Scene is a node graph plus the lights that illuminate it. Cameras live on
// views so one scene can be drawn from several viewpoints.
type Scene struct {
	Root    *Node
	Lights  []*Light
	Ambient core.Color
}

func NewScene() *Scene {
	return &Scene{
		Root:    NewNode("Root"),
		Lights:  make([]*Light, 0),
		Ambient: core.Color{R: 0.2, G: 0.2, B: 0.2, A: 1.0},
	}
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

// AddNodes attaches every node to the root.
func (s *Scene) AddNodes(nodes ...*Node) {
	for _, n := range nodes {
		s.Root.AddChild(n)
	}
}

// RemoveNode detaches node wherever it sits in the graph.
func (s *Scene) RemoveNode(node *Node) {
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}

func (s *Scene) RemoveNodes(nodes ...*Node) {
	for _, n := range nodes {
		s.RemoveNode(n)
	}
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// Renderables returns all visible nodes with meshes. A hidden node hides its
// subtree.
func (s *Scene) Renderables() []*Node {
	return collectRenderables(s.Root)
}

func collectRenderables(roots ...*Node) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

func (s *Scene) RenderableCount() int {
	return len(s.Renderables())
}

func (s *Scene) LightCount() int {
	return len(s.Lights)
}

// Bounds is the union of every renderable's world box. ok is false when the
// scene has no geometry.
func (s *Scene) Bounds() (math.Box, bool) {
	return unionWorldBoxes(s.Renderables())
}

// BoundsOf is the union of the world boxes of the visible mesh nodes under
// roots.
func BoundsOf(roots ...*Node) (math.Box, bool) {
	return unionWorldBoxes(collectRenderables(roots...))
}

func unionWorldBoxes(nodes []*Node) (bounds math.Box, ok bool) {
	for _, n := range nodes {
		b, has := n.WorldBox()
		if !has {
			continue
		}
		if !ok {
			bounds, ok = b, true
			continue
		}
		bounds = bounds.Union(b)
	}
	return bounds, ok
}
