package cubefield

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/cubefield/rt/core"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Scene.Cubes, 3)
	assert.Equal(t, [3]float32{0, 0, 6}, cfg.Scene.Cubes[0].Position)
	assert.Equal(t, core.AxisX, cfg.Scene.Cubes[0].Axis)
	assert.Equal(t, [3]float32{-6, 2, 10}, cfg.Scene.Cubes[1].Position)
	assert.Equal(t, core.AxisY, cfg.Scene.Cubes[1].Axis)
	assert.Equal(t, [3]float32{6, 2, 10}, cfg.Scene.Cubes[2].Position)
	assert.Equal(t, core.AxisZ, cfg.Scene.Cubes[2].Axis)
	assert.Equal(t, float32(7), cfg.Camera.MoveSpeed)
	assert.Equal(t, [4]float64{0.8, 1, 1, 1}, cfg.Render.ClearColor)
}

func TestParseConfig_OverridesDefaults(t *testing.T) {
	src := `
window:
  width: 640
camera:
  move_speed: 3.5
  position: [1, 2, 3]
scene:
  cubes:
    - name: solo
      position: [0, 0, 4]
      axis: Y
      rate: 2
keys:
  forward: up
headless:
  tick_rate: 120
`
	cfg, err := ParseConfig(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep their defaults")
	assert.Equal(t, float32(3.5), cfg.Camera.MoveSpeed)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Position)
	require.Len(t, cfg.Scene.Cubes, 1)
	assert.Equal(t, CubeConfig{Name: "solo", Position: [3]float32{0, 0, 4}, Axis: core.AxisY, Rate: 2}, cfg.Scene.Cubes[0])
	assert.Equal(t, "up", cfg.Keys["forward"])
	assert.Equal(t, "s", cfg.Keys["back"], "other bindings are kept")
	assert.Equal(t, time.Second/120, cfg.Headless.TickInterval())

	bindings, err := ParseKeyBindings(cfg.Keys)
	require.NoError(t, err)
	assert.Equal(t, ActionForward, bindings[glfw.KeyUp])
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("window:\n  widht: 10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widht")
}

func TestParseConfig_RejectsBadAxis(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("scene:\n  cubes:\n    - axis: w\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown axis")
}

func TestConfig_ValidateCollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width = 0
	cfg.Camera.MaxPitchDeg = 90
	cfg.Camera.ZNear = 10
	cfg.Camera.ZFar = 1
	cfg.Render.MinShade = 2
	cfg.Keys["jump"] = "j"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"window size", "max_pitch_deg", "clip planes", "min_shade", "unknown action"} {
		assert.Contains(t, msg, want)
	}
}

func TestConfig_ValidateRejectsEmptyScene(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scene.Cubes = nil
	assert.ErrorContains(t, cfg.Validate(), "no cubes")

	cfg.Scene.Scatter.Count = 5
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without a path", func(t *testing.T) {
		t.Setenv(ConfigEnv, "")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("environment fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cubefield.yaml")
		require.NoError(t, os.WriteFile(path, []byte("window:\n  title: from-env\n"), 0o600))
		t.Setenv(ConfigEnv, path)

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Window.Title)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestHeadlessConfig_TickInterval(t *testing.T) {
	assert.Equal(t, time.Duration(0), HeadlessConfig{}.TickInterval())
	assert.Equal(t, 20*time.Millisecond, HeadlessConfig{TickRate: 50}.TickInterval())
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	cfg, err := LoadConfig("cubefield.example.yaml")
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Scene.Cubes, cfg.Scene.Cubes)
	assert.Equal(t, def.Keys, cfg.Keys)
	assert.Equal(t, def.Window, cfg.Window)
}
