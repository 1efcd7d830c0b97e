package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gltf-viewer/core"
	"gltf-viewer/math"
	"gltf-viewer/renderer"
	"gltf-viewer/scene"
)

type fakeEngine struct {
	clear     core.ClearOptions
	begun     int
	rendered  []*renderer.View
	ended     int
	uploaded  []*scene.Texture
	deleted   []*scene.Texture
	released  []*scene.Mesh
	renderErr error
}

func (e *fakeEngine) BeginFrame(sc *renderer.SwapChain) bool {
	w, h := sc.Size()
	if w == 0 || h == 0 {
		return false
	}
	e.begun++
	return true
}
func (e *fakeEngine) Render(v *renderer.View) error {
	e.rendered = append(e.rendered, v)
	return e.renderErr
}
func (e *fakeEngine) EndFrame()                           { e.ended++ }
func (e *fakeEngine) SetClearOptions(o core.ClearOptions) { e.clear = o }
func (e *fakeEngine) UploadTexture(t *scene.Texture) error {
	t.GLID = 1
	e.uploaded = append(e.uploaded, t)
	return nil
}
func (e *fakeEngine) DeleteTexture(t *scene.Texture) { e.deleted = append(e.deleted, t) }
func (e *fakeEngine) ReleaseMesh(m *scene.Mesh)      { e.released = append(e.released, m) }

type fakeWindow struct {
	w, h       int
	polls      int
	closeAfter int
}

func (w *fakeWindow) FramebufferSize() (int, int) { return w.w, w.h }
func (w *fakeWindow) SwapBuffers()                {}
func (w *fakeWindow) PollEvents()                 { w.polls++ }
func (w *fakeWindow) ShouldClose() bool {
	return w.closeAfter > 0 && w.polls >= w.closeAfter
}

func testAsset(name string, at math.Vec3) *scene.Asset {
	mesh := scene.CreateCube(2)
	root := scene.NewMeshNode(name, mesh)
	root.SetPosition(at)
	return &scene.Asset{
		ID:       uuid.New(),
		Path:     name + ".glb",
		Roots:    []*scene.Node{root},
		Meshes:   []*scene.Mesh{mesh},
		Textures: []*scene.Texture{scene.NewSolidTexture(name, 1, 2, 3, 255)},
	}
}

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeEngine, *fakeWindow) {
	t.Helper()
	engine := &fakeEngine{}
	window := &fakeWindow{w: 640, h: 480}
	c, err := NewController(cfg, engine, window, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, engine, window
}

// waitForAsset drives frames until the controller shows want.
func waitForAsset(t *testing.T, c *Controller, want *scene.Asset) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Frame() == nil && c.Asset() == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestNewControllerBuildsScene(t *testing.T) {
	c, engine, _ := newTestController(t, DefaultConfig())

	require.Equal(t, []*scene.Light{c.Sun}, c.Scene.Lights)
	assert.Equal(t, scene.LightTypeSun, c.Sun.Type)
	assert.Equal(t, math.Vec3Down, c.Sun.Direction)
	assert.True(t, c.Sun.CastShadows)

	require.NotNil(t, c.Triangle)
	assert.False(t, c.Triangle.CastShadows)
	assert.False(t, c.Triangle.ReceiveShadows)
	assert.False(t, c.Triangle.Culling)
	assert.Equal(t, 1, c.Scene.RenderableCount())
	assert.Equal(t, []*scene.Node{c.Triangle}, c.View.Subject)

	assert.Equal(t, core.ClearOptions{ClearColor: core.ColorWhite, Clear: true}, engine.clear)
	assert.Equal(t, core.Viewport{Width: 640, Height: 480}, c.View.Viewport)
	assert.True(t, DefaultEye.ApproxEqual(c.Camera.Position, 1e-5), "eye %v", c.Camera.Position)
	assert.InDelta(t, 50, c.Camera.FocalLength(), 1e-9)
	assert.InDelta(t, 640.0/480.0, c.Camera.Aspect(), 1e-9)
}

func TestNewControllerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theme = ThemeDark
	cfg.ShowTriangle = false
	cfg.FrustumCulling = false
	c, engine, _ := newTestController(t, cfg)

	assert.Nil(t, c.Triangle)
	assert.Zero(t, c.Scene.RenderableCount())
	assert.False(t, c.View.FrustumCulling)
	assert.Equal(t, core.ColorBlack, engine.clear.ClearColor)

	cfg.Camera.Near = 0
	_, err := NewController(cfg, &fakeEngine{}, &fakeWindow{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFrameFollowsWindowSize(t *testing.T) {
	c, engine, window := newTestController(t, DefaultConfig())

	require.NoError(t, c.Frame())
	assert.Equal(t, 1, engine.begun)
	assert.Equal(t, []*renderer.View{c.View}, engine.rendered)
	assert.Equal(t, 1, engine.ended)

	window.w, window.h = 300, 600
	require.NoError(t, c.Frame())
	assert.Equal(t, core.Viewport{Width: 300, Height: 600}, c.View.Viewport)
	assert.InDelta(t, 0.5, c.Camera.Aspect(), 1e-9)

	// A minimized window skips the frame entirely.
	window.w, window.h = 0, 0
	require.NoError(t, c.Frame())
	assert.Equal(t, 2, engine.begun)
	assert.Equal(t, 2, engine.ended)
	assert.True(t, c.View.Viewport.IsEmpty())
}

func TestFrameWrapsRenderError(t *testing.T) {
	c, engine, _ := newTestController(t, DefaultConfig())
	engine.renderErr = renderer.ErrNoCamera

	err := c.Frame()
	assert.ErrorIs(t, err, renderer.ErrNoCamera)
	assert.Equal(t, 1, engine.ended, "the frame is still ended")
}

func TestLoadAsyncAppliesAsset(t *testing.T) {
	c, engine, _ := newTestController(t, DefaultConfig())
	asset := testAsset("cube", math.NewVec3(3, 0, 0))
	c.SetLoader(func(ctx context.Context, path string, _ scene.LoadOptions) (*scene.Asset, error) {
		assert.Equal(t, "cube.glb", path)
		return asset, nil
	})

	c.LoadAsync(context.Background(), "cube.glb")
	waitForAsset(t, c, asset)

	assert.Equal(t, asset.Textures, engine.uploaded)
	assert.Same(t, c.Scene.Root, asset.Roots[0].Parent)
	assert.Equal(t, 2, c.Scene.RenderableCount())
	assert.Equal(t, asset.Roots, c.View.Subject)

	// The camera frames the asset's bounding sphere.
	center := math.NewVec3(3, 0, 0)
	assert.InDelta(t, c.Camera.FocusDistance, c.Camera.Position.Distance(center), 1e-3)
	toCenter := center.Sub(c.Camera.Position).Normalize()
	assert.True(t, toCenter.ApproxEqual(c.Camera.Forward(), 1e-4), "forward %v", c.Camera.Forward())

	// Resizing re-frames rather than resetting to the default eye.
	c.Resize(800, 800)
	assert.NotEqual(t, DefaultEye, c.Camera.Position)
}

func TestLoadAsyncReplacesPreviousAsset(t *testing.T) {
	c, engine, _ := newTestController(t, DefaultConfig())
	first := testAsset("first", math.Vec3Zero)
	second := testAsset("second", math.NewVec3(0, 2, 0))
	assets := map[string]*scene.Asset{"first": first, "second": second}
	c.SetLoader(func(_ context.Context, path string, _ scene.LoadOptions) (*scene.Asset, error) {
		return assets[path], nil
	})

	c.LoadAsync(context.Background(), "first")
	waitForAsset(t, c, first)
	c.LoadAsync(context.Background(), "second")
	waitForAsset(t, c, second)

	assert.Nil(t, first.Roots[0].Parent)
	assert.Equal(t, first.Meshes, engine.released)
	assert.Equal(t, first.Textures, engine.deleted)
	assert.Equal(t, 2, c.Scene.RenderableCount())

	require.NoError(t, c.Close())
	assert.Nil(t, c.Asset())
	assert.Equal(t, append(first.Meshes, second.Meshes...), engine.released)
}

func TestLoadFailureKeepsCurrentAsset(t *testing.T) {
	c, _, _ := newTestController(t, DefaultConfig())
	good := testAsset("good", math.Vec3Zero)
	var mu sync.Mutex
	fail := false
	c.SetLoader(func(context.Context, string, scene.LoadOptions) (*scene.Asset, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, errors.New("truncated file")
		}
		return good, nil
	})

	c.LoadAsync(context.Background(), "model.glb")
	waitForAsset(t, c, good)

	mu.Lock()
	fail = true
	mu.Unlock()
	c.LoadAsync(context.Background(), "model.glb")
	c.wg.Wait()
	require.NoError(t, c.Frame())
	assert.Same(t, good, c.Asset())
}

func TestSupersededLoadIsDropped(t *testing.T) {
	c, engine, _ := newTestController(t, DefaultConfig())
	newer := testAsset("newer", math.Vec3Zero)
	older := testAsset("older", math.Vec3Zero)

	c.applyLoad(loadResult{seq: 2, path: "newer", asset: newer})
	c.applyLoad(loadResult{seq: 1, path: "older", asset: older})

	assert.Same(t, newer, c.Asset())
	assert.Equal(t, newer.Textures, engine.uploaded)
}

func TestFailedLoadSupersedesOlderLoads(t *testing.T) {
	c, engine, _ := newTestController(t, DefaultConfig())
	current := testAsset("current", math.Vec3Zero)
	stale := testAsset("stale", math.Vec3Zero)

	c.applyLoad(loadResult{seq: 1, path: "current", asset: current})
	c.applyLoad(loadResult{seq: 3, path: "broken", err: errors.New("truncated file")})
	c.applyLoad(loadResult{seq: 2, path: "stale", asset: stale})

	assert.Same(t, current, c.Asset())
	assert.Equal(t, current.Textures, engine.uploaded)
	assert.Empty(t, engine.released)
}

func TestOrbitAndZoom(t *testing.T) {
	c, _, _ := newTestController(t, DefaultConfig())
	asset := testAsset("cube", math.NewVec3(3, 0, 0))
	c.SetLoader(func(context.Context, string, scene.LoadOptions) (*scene.Asset, error) {
		return asset, nil
	})
	c.LoadAsync(context.Background(), "cube.glb")
	waitForAsset(t, c, asset)

	center := math.NewVec3(3, 0, 0)
	start := c.Camera.Position
	dist := start.Distance(center)

	c.Orbit(1, 0)
	assert.False(t, start.ApproxEqual(c.Camera.Position, 1e-3))
	assert.InDelta(t, dist, c.Camera.Position.Distance(center), 1e-3)
	assert.True(t, center.Sub(c.Camera.Position).Normalize().ApproxEqual(c.Camera.Forward(), 1e-4))

	c.Zoom(0.5)
	assert.InDelta(t, dist/2, c.Camera.Position.Distance(center), 1e-3)
	assert.InDelta(t, dist/2, c.Camera.FocusDistance, 1e-3)
	// The cube's bounding sphere has radius sqrt(3).
	assert.InDelta(t, float64(dist/2-1.7320508), c.Camera.Near(), 1e-3)

	c.Zoom(0)
	assert.InDelta(t, dist/2, c.Camera.FocusDistance, 1e-3)
}

func TestPickSelectsNode(t *testing.T) {
	c, _, _ := newTestController(t, DefaultConfig())

	// The default eye looks at the origin, which lies inside the triangle.
	hit, ok := c.Pick(320, 240)
	require.True(t, ok)
	assert.Same(t, c.Triangle, hit.Node)
	assert.Same(t, c.Triangle, c.View.Selected)
	assert.True(t, hit.Point.ApproxEqual(math.Vec3Zero, 1e-3), "point %v", hit.Point)

	_, ok = c.Pick(0, 0)
	assert.False(t, ok)
	assert.Nil(t, c.View.Selected)
}

func TestGridFollowsAsset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowGrid = true
	c, _, _ := newTestController(t, cfg)

	require.NotNil(t, c.Grid)
	assert.Equal(t, 2, c.Scene.RenderableCount())
	assert.Equal(t, math.NewVec3(0, -0.5, 0), c.Grid.Transform.Position)

	asset := testAsset("cube", math.NewVec3(3, 0, 0))
	c.SetLoader(func(context.Context, string, scene.LoadOptions) (*scene.Asset, error) {
		return asset, nil
	})
	c.LoadAsync(context.Background(), "cube.glb")
	waitForAsset(t, c, asset)

	// The cube spans y in [-1, 1]; its bounding sphere has radius sqrt(3).
	assert.True(t, c.Grid.Transform.Position.ApproxEqual(math.NewVec3(3, -1, 0), 1e-5))
	assert.InDelta(t, 2*1.7320508, c.Grid.Transform.Scale.X, 1e-5)

	// The cube is picked, not the grid under it.
	hit, ok := c.Pick(320, 240)
	require.True(t, ok)
	assert.Same(t, asset.Roots[0], hit.Node)
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	c, engine, window := newTestController(t, DefaultConfig())
	window.closeAfter = 3
	hooks := 0
	c.BeforeFrame = func() { hooks++ }

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 3, window.polls)
	assert.Equal(t, 3, hooks)
	assert.Equal(t, 3, engine.ended)
}

func TestRunStopsOnCancel(t *testing.T) {
	c, engine, _ := newTestController(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.Run(ctx))
	assert.Zero(t, engine.ended)

	ctx, cancel = context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()
	assert.ErrorIs(t, c.Run(ctx), context.DeadlineExceeded)
}
