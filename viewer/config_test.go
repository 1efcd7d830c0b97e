package viewer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gltf-viewer/core"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50.0, cfg.Camera.FocalLength)
	assert.Equal(t, ThemeLight, cfg.Theme)
	assert.True(t, cfg.FrustumCulling)
}

func TestLoadConfig(t *testing.T) {
	doc := `
window:
  width: 800
  height: 600
camera:
  focal_length: 35
theme: dark
watch: true
show_grid: true
debounce: 50ms
log:
  level: debug
`
	cfg, err := LoadConfig(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, 35.0, cfg.Camera.FocalLength)
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.True(t, cfg.Watch)
	assert.True(t, cfg.ShowGrid)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Keys not in the document keep their defaults.
	assert.Equal(t, DefaultConfig().Camera.Near, cfg.Camera.Near)
	assert.Equal(t, DefaultConfig().Window.Title, cfg.Window.Title)
	assert.True(t, cfg.ShowTriangle)
}

func TestLoadConfigEmptyDocument(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown key", "zoom: 3\n", nil},
		{"bad theme", "theme: sepia\n", ErrInvalidConfig},
		{"inverted clip range", "camera:\n  near: 5\n  far: 1\n", ErrInvalidConfig},
		{"zero window", "window:\n  width: 0\n", ErrInvalidConfig},
		{"negative debounce", "debounce: -1s\n", ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("draw_boxes: true\n"), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.DrawBoxes)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestThemeClearColor(t *testing.T) {
	assert.Equal(t, core.ColorWhite, ThemeLight.ClearColor())
	assert.Equal(t, core.ColorBlack, ThemeDark.ClearColor())
}
