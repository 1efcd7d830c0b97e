// Package viewer assembles a scene, a camera and a render engine into an
// interactive glTF viewer.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"gltf-viewer/core"
	"gltf-viewer/math"
	"gltf-viewer/renderer"
	"gltf-viewer/scene"
)

// Engine is the part of renderer.RenderEngine the controller drives.
type Engine interface {
	BeginFrame(sc *renderer.SwapChain) bool
	Render(view *renderer.View) error
	EndFrame()
	SetClearOptions(opts core.ClearOptions)
	UploadTexture(tex *scene.Texture) error
	DeleteTexture(tex *scene.Texture)
	ReleaseMesh(mesh *scene.Mesh)
}

// Window is the part of core.Window the controller drives.
type Window interface {
	renderer.Surface
	ShouldClose() bool
	PollEvents()
}

// LoadFunc loads an asset from disk. scene.LoadGLTF is the default.
type LoadFunc func(ctx context.Context, path string, opts scene.LoadOptions) (*scene.Asset, error)

// GridDivisions is the number of grid cells per axis.
const GridDivisions = 10

// DefaultEye is where the camera sits until an asset is framed.
var DefaultEye = math.NewVec3(0, 1, 1)

type loadResult struct {
	seq   uint64
	path  string
	asset *scene.Asset
	err   error
}

// Controller owns the scene, camera and view, and runs the frame loop.
// All methods except LoadAsync must be called on the render goroutine.
type Controller struct {
	cfg    Config
	log    *zap.Logger
	engine Engine
	window Window
	load   LoadFunc

	Scene    *scene.Scene
	Camera   *scene.Camera
	View     *renderer.View
	Sun      *scene.Light
	Triangle *scene.Node
	Grid     *scene.Node

	// BeforeFrame runs in Run after events are polled, before each frame.
	BeforeFrame func()

	orbit         *scene.OrbitCamera
	swapChain     *renderer.SwapChain
	width, height int

	asset      *scene.Asset
	appliedSeq uint64

	mu      sync.Mutex
	nextSeq uint64
	loads   chan loadResult
	done    chan struct{}
	wg      sync.WaitGroup
	watcher *FileWatcher
}

// NewController builds the scene and view and sizes them to the window.
func NewController(cfg Config, engine Engine, window Window, log *zap.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Controller{
		cfg:    cfg,
		log:    log,
		engine: engine,
		window: window,
		load:   scene.LoadGLTF,
		Scene:  scene.NewScene(),
		loads:  make(chan loadResult, 4),
		done:   make(chan struct{}),
	}

	c.Sun = scene.NewSunLight()
	c.Scene.AddLight(c.Sun)

	if cfg.ShowTriangle {
		c.Triangle = scene.NewMeshNode("Triangle", scene.CreateTriangle())
		c.Triangle.CastShadows = false
		c.Triangle.ReceiveShadows = false
		c.Triangle.Culling = false
		c.Scene.AddNode(c.Triangle)
	}
	if cfg.ShowGrid {
		c.Grid = scene.NewMeshNode("Grid", scene.CreateGrid(1, GridDivisions))
		c.Grid.CastShadows = false
		c.Grid.ReceiveShadows = false
		c.Scene.AddNode(c.Grid)
	}

	c.orbit = scene.NewOrbitCamera(math.Vec3Zero, 1, scene.FovFromFocalLength(cfg.Camera.FocalLength), 1)
	c.Camera = &c.orbit.Camera
	c.View = renderer.NewView("main")
	c.View.Scene = c.Scene
	c.View.Camera = c.Camera
	c.View.FrustumCulling = cfg.FrustumCulling
	c.View.Subject = []*scene.Node{}
	if c.Triangle != nil {
		c.View.Subject = []*scene.Node{c.Triangle}
	}

	c.swapChain = renderer.NewSwapChain(window)
	engine.SetClearOptions(core.ClearOptions{ClearColor: cfg.Theme.ClearColor(), Clear: true})

	c.Resize(window.FramebufferSize())
	return c, nil
}

// SetLoader replaces the asset loader.
func (c *Controller) SetLoader(fn LoadFunc) {
	c.load = fn
}

// Asset returns the asset currently in the scene, or nil.
func (c *Controller) Asset() *scene.Asset {
	return c.asset
}

// Resize matches the viewport and lens projection to a framebuffer of
// width x height pixels and re-aims the camera.
func (c *Controller) Resize(width, height int) {
	c.width, c.height = width, height
	w, h := uint32(max(width, 0)), uint32(max(height, 0))
	c.View.Viewport = core.Viewport{Width: w, Height: h}
	if c.View.Viewport.IsEmpty() {
		return
	}

	aspect := float64(w) / float64(h)
	c.Camera.SetLensProjection(c.cfg.Camera.FocalLength, aspect, c.cfg.Camera.Near, c.cfg.Camera.Far)
	c.aim()
}

// aim frames the loaded asset, or looks at the origin from DefaultEye.
func (c *Controller) aim() {
	if c.asset != nil {
		if box, ok := c.asset.BoundingBox(); ok {
			c.Camera.Frame(box)
			c.orbit.SetFromEye(c.Camera.Position, box.Center)
			c.placeGrid(box)
			return
		}
	}
	c.orbit.SetFromEye(DefaultEye, math.Vec3Zero)
	c.placeGrid(math.NewBox(math.Splat3(-0.5), math.Splat3(0.5)))
}

// placeGrid lays the grid under box, spanning its bounding sphere's diameter.
func (c *Controller) placeGrid(box math.Box) {
	if c.Grid == nil {
		return
	}
	c.Grid.SetScale(math.Splat3(2 * box.BoundingSphere().Radius))
	c.Grid.SetPosition(math.NewVec3(box.Center.X, box.Min().Y, box.Center.Z))
}

// FrameAsset points the camera at the loaded asset again.
func (c *Controller) FrameAsset() {
	if !c.View.Viewport.IsEmpty() {
		c.Camera.SetLensProjection(c.cfg.Camera.FocalLength, float64(c.View.Viewport.Aspect()), c.cfg.Camera.Near, c.cfg.Camera.Far)
	}
	c.aim()
}

// Orbit turns the camera around the framed target by yaw and pitch radians.
func (c *Controller) Orbit(yaw, pitch float32) {
	c.orbit.Orbit(yaw, pitch)
}

// Zoom scales the distance to the framed target by factor; below 1 moves
// closer. The clip range is refitted around the asset.
func (c *Controller) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.orbit.Zoom(c.orbit.Distance * (factor - 1))
	c.Camera.FocusDistance = c.orbit.Distance
	if c.asset != nil {
		if box, ok := c.asset.BoundingBox(); ok {
			c.Camera.FitClipRange(box.BoundingSphere())
		}
	}
}

// Pick selects the closest visible node under the cursor, given in pixels
// from the viewport's top-left corner. The grid is never picked; a miss
// clears the selection.
func (c *Controller) Pick(x, y float32) (scene.Hit, bool) {
	c.View.Selected = nil
	if c.View.Viewport.IsEmpty() {
		return scene.Hit{}, false
	}

	visible, _ := c.View.VisibleNodes()
	candidates := visible[:0:0]
	for _, n := range visible {
		if n != c.Grid {
			candidates = append(candidates, n)
		}
	}
	hit, ok := scene.Pick(candidates, scene.ScreenRay(c.Camera, c.View.Viewport, x, y))
	if ok {
		c.View.Selected = hit.Node
	}
	return hit, ok
}

// LoadAsync parses path on a new goroutine. The result is applied by the next
// Frame; a load started later always wins over one started earlier. Safe to
// call from any goroutine.
func (c *Controller) LoadAsync(ctx context.Context, path string) {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	opts := scene.LoadOptions{Concurrency: c.cfg.LoadConcurrency, Logger: c.log}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		asset, err := c.load(ctx, path, opts)
		select {
		case c.loads <- loadResult{seq: seq, path: path, asset: asset, err: err}:
		case <-ctx.Done():
		case <-c.done:
		}
	}()
}

// Watch reloads path whenever it changes on disk.
func (c *Controller) Watch(ctx context.Context, path string) error {
	fw, err := NewFileWatcher(c.cfg.Debounce, c.log)
	if err != nil {
		return err
	}
	if err := fw.Watch(path, func(p string) {
		c.log.Info("reloading", zap.String("path", p))
		c.LoadAsync(ctx, p)
	}); err != nil {
		fw.Close()
		return err
	}
	fw.Start()
	c.watcher = fw
	return nil
}

// pollLoads applies every finished load without blocking.
func (c *Controller) pollLoads() {
	for {
		select {
		case r := <-c.loads:
			c.applyLoad(r)
		default:
			return
		}
	}
}

func (c *Controller) applyLoad(r loadResult) {
	log := c.log.With(zap.String("path", r.path), zap.Uint64("seq", r.seq))
	if r.seq <= c.appliedSeq {
		log.Debug("dropping superseded load")
		return
	}
	if r.err != nil {
		// The failure still supersedes older loads; the current asset stays.
		c.appliedSeq = r.seq
		log.Error("load failed", zap.Error(r.err))
		return
	}

	for _, tex := range r.asset.Textures {
		if err := c.engine.UploadTexture(tex); err != nil {
			log.Warn("texture upload failed", zap.String("texture", tex.Name), zap.Error(err))
		}
	}

	c.releaseAsset()
	c.View.Selected = nil
	c.View.Subject = append([]*scene.Node{}, r.asset.Roots...)
	c.Scene.AddNodes(r.asset.Roots...)
	c.asset = r.asset
	c.appliedSeq = r.seq
	c.aim()

	log.Info("asset loaded",
		zap.Stringer("id", r.asset.ID),
		zap.Int("meshes", len(r.asset.Meshes)),
		zap.Int("textures", len(r.asset.Textures)))
}

// releaseAsset removes the current asset from the scene and frees its GPU
// resources.
func (c *Controller) releaseAsset() {
	if c.asset == nil {
		return
	}
	c.Scene.RemoveNodes(c.asset.Roots...)
	for _, m := range c.asset.Meshes {
		c.engine.ReleaseMesh(m)
	}
	for _, t := range c.asset.Textures {
		c.engine.DeleteTexture(t)
	}
	c.asset = nil
}

// Frame applies finished loads and draws one frame. A window with no area
// draws nothing.
func (c *Controller) Frame() error {
	c.pollLoads()

	if w, h := c.window.FramebufferSize(); w != c.width || h != c.height {
		c.Resize(w, h)
	}
	if !c.engine.BeginFrame(c.swapChain) {
		return nil
	}
	err := c.engine.Render(c.View)
	c.engine.EndFrame()
	if err != nil {
		return fmt.Errorf("render %q: %w", c.View.Name, err)
	}
	return nil
}

// Run draws frames until the window closes or ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for !c.window.ShouldClose() {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		c.window.PollEvents()
		if c.BeforeFrame != nil {
			c.BeforeFrame()
		}
		if err := c.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the watcher, waits for pending loads and releases the asset.
func (c *Controller) Close() error {
	var err error
	if c.watcher != nil {
		err = c.watcher.Close()
		c.watcher = nil
	}
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.wg.Wait()
	c.releaseAsset()
	return err
}
