package renderer

import (
	"gltf-viewer/core"
	"gltf-viewer/math"
	"gltf-viewer/scene"
)

// View pairs a scene with the camera it is seen through and the viewport it
// is drawn into.
type View struct {
	Name     string
	Scene    *scene.Scene
	Camera   *scene.Camera
	Viewport core.Viewport

	// FrustumCulling skips nodes whose world box lies outside the camera
	// frustum. Nodes with Culling=false are always drawn.
	FrustumCulling bool

	// Selected is outlined even when box drawing is off.
	Selected *scene.Node

	// Subject holds the roots whose bounding sphere is outlined with the
	// boxes. Nil outlines the whole scene.
	Subject []*scene.Node
}

// SubjectBounds returns the box of Subject, or of the scene when Subject
// is nil.
func (v *View) SubjectBounds() (math.Box, bool) {
	if v.Subject != nil {
		return scene.BoundsOf(v.Subject...)
	}
	if v.Scene == nil {
		return math.Box{}, false
	}
	return v.Scene.Bounds()
}

func NewView(name string) *View {
	return &View{Name: name, FrustumCulling: true}
}

// VisibleNodes returns the renderables that survive culling, in scene order,
// and the number culled.
func (v *View) VisibleNodes() (visible []*scene.Node, culled int) {
	if v.Scene == nil {
		return nil, 0
	}
	nodes := v.Scene.Renderables()
	if !v.FrustumCulling || v.Camera == nil {
		return nodes, 0
	}

	frustum := scene.FrustumFromVP(v.Camera.ViewProjectionMatrix())
	visible = nodes[:0]
	for _, n := range nodes {
		if n.Culling {
			if box, ok := n.WorldBox(); ok && !frustum.IntersectsBox(box) {
				culled++
				continue
			}
		}
		visible = append(visible, n)
	}
	return visible, culled
}
