package viewer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gltf-viewer/core"
)

var ErrInvalidConfig = errors.New("viewer: invalid config")

// Theme picks the clear color.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ClearColor is white for the light theme and black otherwise.
func (t Theme) ClearColor() core.Color {
	if t == ThemeLight {
		return core.ColorWhite
	}
	return core.ColorBlack
}

// CameraConfig describes the lens. Focal length is in millimeters on a 24 mm
// sensor; near and far are in world units.
type CameraConfig struct {
	FocalLength float64 `yaml:"focal_length"`
	Near        float64 `yaml:"near"`
	Far         float64 `yaml:"far"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
}

// Config is the viewer configuration file.
type Config struct {
	Window core.WindowConfig `yaml:"window"`
	Camera CameraConfig      `yaml:"camera"`
	Theme  Theme             `yaml:"theme"`
	Log    LogConfig         `yaml:"log"`

	FrustumCulling bool `yaml:"frustum_culling"`
	DrawBoxes      bool `yaml:"draw_boxes"`
	ShowTriangle   bool `yaml:"show_triangle"`
	ShowGrid       bool `yaml:"show_grid"`

	// Watch reloads the model when the file changes on disk.
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`

	// LoadConcurrency caps parallel image decodes; 0 means GOMAXPROCS.
	LoadConcurrency int `yaml:"load_concurrency"`
}

func DefaultConfig() Config {
	return Config{
		Window: core.DefaultWindowConfig(),
		Camera: CameraConfig{
			FocalLength: 50,
			Near:        0.01,
			Far:         10,
		},
		Theme:          ThemeLight,
		Log:            LogConfig{Level: "info"},
		FrustumCulling: true,
		ShowTriangle:   true,
		Debounce:       200 * time.Millisecond,
	}
}

// LoadConfig decodes YAML over the defaults. Unknown keys are an error; an
// empty document yields the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Camera.FocalLength <= 0:
		return fmt.Errorf("%w: focal length %v", ErrInvalidConfig, c.Camera.FocalLength)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: clip range [%v, %v]", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case c.Theme != ThemeLight && c.Theme != ThemeDark:
		return fmt.Errorf("%w: theme %q", ErrInvalidConfig, c.Theme)
	case c.Debounce < 0:
		return fmt.Errorf("%w: negative debounce", ErrInvalidConfig)
	case c.LoadConcurrency < 0:
		return fmt.Errorf("%w: negative load concurrency", ErrInvalidConfig)
	}
	return nil
}
