package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gltf-viewer/core"
	"gltf-viewer/internal/opengl"
	"gltf-viewer/math"
	"gltf-viewer/scene"
)

var (
	ErrNoScene         = errors.New("renderer: view has no scene")
	ErrNoCamera        = errors.New("renderer: view has no camera")
	ErrFrameNotStarted = errors.New("renderer: Render called outside BeginFrame/EndFrame")
)

// Backend is the drawing API the engine drives. *opengl.Renderer is the
// production implementation.
type Backend interface {
	SetViewport(vp core.Viewport)
	Clear(c core.Color)
	ClearDepth()
	BeginPass(lights []*scene.Light, ambient core.Color, camPos math.Vec3, exposure float32)
	DrawMesh(mesh *scene.Mesh, mvp, model math.Mat4)
	ReleaseMesh(mesh *scene.Mesh)
	UploadTexture(tex *scene.Texture) error
	DeleteTexture(tex *scene.Texture)
	SetWireframe(enabled bool)
	IsWireframe() bool
	Destroy()
}

// FrameStats describes the most recent frame.
type FrameStats struct {
	Views     int
	Objects   int
	Vertices  int
	Triangles int
	Culled    int
}

// RenderEngine drives a Backend: frames are bracketed by BeginFrame and
// EndFrame, and any number of views may be rendered in between.
type RenderEngine struct {
	backend Backend
	log     *zap.Logger

	clear core.ClearOptions

	// DrawBoxes outlines every drawn node's world box and the bounding
	// sphere of the whole scene.
	DrawBoxes  bool
	boxMesh    *scene.Mesh
	sphereMesh *scene.Mesh

	swapChain *SwapChain
	stats     FrameStats
	frame     FrameStats
}

// NewRenderEngine initialises the OpenGL backend. The window's GL context
// must be current.
func NewRenderEngine(log *zap.Logger) (*RenderEngine, error) {
	gl, err := opengl.NewRenderer(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	return NewRenderEngineWithBackend(gl, log), nil
}

func NewRenderEngineWithBackend(b Backend, log *zap.Logger) *RenderEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderEngine{
		backend: b,
		log:     log,
		clear:   core.ClearOptions{ClearColor: core.ColorBlack, Clear: true},
	}
}

// SetClearOptions controls how BeginFrame clears the surface.
func (re *RenderEngine) SetClearOptions(opts core.ClearOptions) {
	re.clear = opts
}

func (re *RenderEngine) ClearOptions() core.ClearOptions {
	return re.clear
}

// BeginFrame starts a frame on sc. It returns false, and the caller should
// skip the frame, when the surface has no area.
func (re *RenderEngine) BeginFrame(sc *SwapChain) bool {
	w, h := sc.Size()
	if w == 0 || h == 0 {
		return false
	}
	re.swapChain = sc
	re.frame = FrameStats{}

	re.backend.SetViewport(core.Viewport{Width: w, Height: h})
	if re.clear.Clear || re.clear.Discard {
		re.backend.Clear(re.clear.ClearColor)
	}
	return true
}

// Render draws view into its viewport. Views with an empty viewport draw
// nothing.
func (re *RenderEngine) Render(view *View) error {
	if re.swapChain == nil {
		return ErrFrameNotStarted
	}
	if view.Scene == nil {
		return fmt.Errorf("%w: %q", ErrNoScene, view.Name)
	}
	if view.Camera == nil {
		return fmt.Errorf("%w: %q", ErrNoCamera, view.Name)
	}
	if view.Viewport.IsEmpty() {
		return nil
	}

	re.backend.SetViewport(view.Viewport)
	re.backend.ClearDepth()

	cam := view.Camera
	sc := view.Scene
	re.backend.BeginPass(sc.Lights, sc.Ambient, cam.Position, cam.Exposure())

	vp := cam.ViewProjectionMatrix()
	nodes, culled := view.VisibleNodes()

	for _, node := range nodes {
		model := node.WorldMatrix()
		re.backend.DrawMesh(node.Mesh, model.Mul(vp), model)

		re.frame.Objects++
		re.frame.Vertices += len(node.Mesh.Vertices)
		if node.Mesh.DrawMode == scene.DrawTriangles {
			re.frame.Triangles += triangleCount(node.Mesh)
		}
	}
	re.frame.Culled += culled
	re.frame.Views++

	switch {
	case re.DrawBoxes:
		re.drawBoxes(nodes, vp)
		if bounds, ok := view.SubjectBounds(); ok {
			re.drawSphere(bounds.BoundingSphere(), vp)
		}
	case view.Selected != nil:
		re.drawBoxes([]*scene.Node{view.Selected}, vp)
	}
	return nil
}

// EndFrame presents the frame and publishes its stats.
func (re *RenderEngine) EndFrame() {
	if re.swapChain == nil {
		return
	}
	re.swapChain.present()
	re.swapChain = nil
	re.stats = re.frame
}

// Stats returns the counters of the last completed frame.
func (re *RenderEngine) Stats() FrameStats {
	return re.stats
}

// SetWireframe toggles wireframe rendering mode on/off.
func (re *RenderEngine) SetWireframe(enabled bool) {
	re.backend.SetWireframe(enabled)
}

// IsWireframe returns whether wireframe mode is currently active.
func (re *RenderEngine) IsWireframe() bool {
	return re.backend.IsWireframe()
}

// UploadTexture uploads a texture to the GPU. Must be called from the render goroutine.
func (re *RenderEngine) UploadTexture(tex *scene.Texture) error {
	return re.backend.UploadTexture(tex)
}

// DeleteTexture frees a previously uploaded GPU texture.
func (re *RenderEngine) DeleteTexture(tex *scene.Texture) {
	re.backend.DeleteTexture(tex)
}

// ReleaseMesh frees the GPU copy of mesh. The mesh is uploaded again if drawn.
func (re *RenderEngine) ReleaseMesh(mesh *scene.Mesh) {
	re.backend.ReleaseMesh(mesh)
}

func (re *RenderEngine) Destroy() {
	for _, m := range []*scene.Mesh{re.boxMesh, re.sphereMesh} {
		if m != nil {
			re.backend.ReleaseMesh(m)
		}
	}
	re.backend.Destroy()
}

// drawBoxes outlines each node's world box with the shared unit wireframe.
func (re *RenderEngine) drawBoxes(nodes []*scene.Node, vp math.Mat4) {
	if re.boxMesh == nil {
		re.boxMesh = scene.CreateUnitBoxWireframe()
	}
	identity := math.Mat4Identity()
	for _, node := range nodes {
		box, ok := node.WorldBox()
		if !ok {
			continue
		}
		mvp := scene.BoxOutlineMatrix(box).Mul(vp)
		re.backend.DrawMesh(re.boxMesh, mvp, identity)
	}
}

func (re *RenderEngine) drawSphere(s math.Sphere, vp math.Mat4) {
	if re.sphereMesh == nil {
		re.sphereMesh = scene.CreateUnitSphereWireframe(48)
	}
	re.backend.DrawMesh(re.sphereMesh, scene.SphereOutlineMatrix(s).Mul(vp), math.Mat4Identity())
}

func triangleCount(m *scene.Mesh) int {
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}
