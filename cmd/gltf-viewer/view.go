package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gltf-viewer/core"
	"gltf-viewer/renderer"
	"gltf-viewer/viewer"
)

var (
	viewWatch   bool
	viewTheme   string
	viewCulling bool
	viewBoxes   bool
	viewGrid    bool
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Open a model in an interactive window",
	Long: `Open a glTF model in a window.

Mouse:
  left click   select the node under the cursor and print its box
  right drag   orbit around the model
  scroll       zoom

Keys:
  F      frame the model
  B      toggle bounding box outlines
  X      toggle wireframe
  R      reload the model from disk
  Esc    quit`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	flags := viewCmd.Flags()
	flags.BoolVarP(&viewWatch, "watch", "w", false, "reload the model when the file changes")
	flags.StringVar(&viewTheme, "theme", "", "clear color theme: light or dark")
	flags.BoolVar(&viewCulling, "culling", true, "frustum-cull nodes by their world boxes")
	flags.BoolVar(&viewBoxes, "boxes", false, "outline every node's world box")
	flags.BoolVar(&viewGrid, "grid", false, "draw a ground grid under the model")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("watch") {
		cfg.Watch = viewWatch
	}
	if flags.Changed("theme") {
		cfg.Theme = viewer.Theme(viewTheme)
	}
	if flags.Changed("culling") {
		cfg.FrustumCulling = viewCulling
	}
	if flags.Changed("boxes") {
		cfg.DrawBoxes = viewBoxes
	}
	if flags.Changed("grid") {
		cfg.ShowGrid = viewGrid
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine(log)
	if err != nil {
		return err
	}
	defer engine.Destroy()
	engine.DrawBoxes = cfg.DrawBoxes

	ctrl, err := viewer.NewController(cfg, engine, window, log)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl.LoadAsync(ctx, path)
	if cfg.Watch {
		if err := ctrl.Watch(ctx, path); err != nil {
			return err
		}
	}

	// Scroll events arrive during PollEvents on this goroutine.
	window.SetScrollCallback(func(_, yoff float64) {
		ctrl.Zoom(float32(math.Pow(zoomStep, yoff)))
	})
	drag := &dragTracker{window: window}

	keys := newKeyLatch(window)
	title := newTitleUpdater(window, cfg.Window.Title, path)
	ctrl.BeforeFrame = func() {
		if keys.pressed(core.KeyEscape) {
			window.SetShouldClose(true)
		}
		if keys.pressed(core.KeyF) {
			ctrl.FrameAsset()
		}
		if keys.pressed(core.KeyB) {
			engine.DrawBoxes = !engine.DrawBoxes
			log.Info("box outlines", zap.Bool("enabled", engine.DrawBoxes))
		}
		if keys.pressed(core.KeyX) {
			engine.SetWireframe(!engine.IsWireframe())
		}
		if keys.pressed(core.KeyR) {
			ctrl.LoadAsync(ctx, path)
		}
		if keys.clicked(core.MouseButtonLeft) {
			x, y := window.CursorPixel()
			if hit, ok := ctrl.Pick(float32(x), float32(y)); ok {
				box, _ := hit.Node.WorldBox()
				log.Info("selected",
					zap.String("node", hit.Node.Label()),
					zap.Stringer("box", box),
					zap.Float32("distance", hit.Distance))
			}
		}
		if dx, dy, ok := drag.delta(core.MouseButtonRight); ok {
			ctrl.Orbit(-float32(dx)*orbitSpeed, float32(dy)*orbitSpeed)
		}
		title.update(engine.Stats())
	}

	log.Info("viewer started", zap.String("path", path), zap.Bool("watch", cfg.Watch))
	return ctrl.Run(ctx)
}

const (
	orbitSpeed = 0.005 // radians per pixel
	zoomStep   = 0.9   // distance factor per scroll notch
)

// dragTracker reports cursor movement while a mouse button is held.
type dragTracker struct {
	window       *core.Window
	held         bool
	lastX, lastY float64
}

func (d *dragTracker) delta(button int) (dx, dy float64, ok bool) {
	if !d.window.IsMouseButtonPressed(button) {
		d.held = false
		return 0, 0, false
	}
	x, y := d.window.CursorPixel()
	if d.held {
		dx, dy, ok = x-d.lastX, y-d.lastY, true
	}
	d.held, d.lastX, d.lastY = true, x, y
	return dx, dy, ok
}

// keyLatch reports a key or mouse button once per press.
type keyLatch struct {
	window  *core.Window
	down    map[int]bool
	buttons map[int]bool
}

func newKeyLatch(w *core.Window) *keyLatch {
	return &keyLatch{window: w, down: make(map[int]bool), buttons: make(map[int]bool)}
}

func (k *keyLatch) pressed(key int) bool {
	return latch(k.down, key, k.window.IsKeyPressed(key))
}

func (k *keyLatch) clicked(button int) bool {
	return latch(k.buttons, button, k.window.IsMouseButtonPressed(button))
}

func latch(state map[int]bool, id int, down bool) bool {
	was := state[id]
	state[id] = down
	return down && !was
}

// titleUpdater shows frame rate and draw counts in the window title once a
// second.
type titleUpdater struct {
	window *core.Window
	base   string
	file   string
	frames int
	since  time.Time
}

func newTitleUpdater(w *core.Window, base, file string) *titleUpdater {
	return &titleUpdater{window: w, base: base, file: file, since: time.Now()}
}

func (t *titleUpdater) update(stats renderer.FrameStats) {
	t.frames++
	elapsed := time.Since(t.since)
	if elapsed < time.Second {
		return
	}
	fps := float64(t.frames) / elapsed.Seconds()
	t.window.SetTitle(fmt.Sprintf("%s | %s | FPS: %.0f | objects: %d culled: %d | triangles: %d",
		t.base, t.file, fps, stats.Objects, stats.Culled, stats.Triangles))
	t.frames = 0
	t.since = time.Now()
}
