package cubefield

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gekko3d/cubefield/rt/core"
)

// ConfigEnv names the environment variable consulted when no config path is given.
const ConfigEnv = "CUBEFIELD_CONFIG"

type Config struct {
	Window   WindowConfig      `yaml:"window"`
	Camera   CameraConfig      `yaml:"camera"`
	Render   RenderConfig      `yaml:"render"`
	Scene    SceneConfig       `yaml:"scene"`
	Keys     map[string]string `yaml:"keys"`
	Log      LogConfig         `yaml:"log"`
	Metrics  MetricsConfig     `yaml:"metrics"`
	Headless HeadlessConfig    `yaml:"headless"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type CameraConfig struct {
	Position     [3]float32 `yaml:"position"`
	Yaw          float32    `yaml:"yaw"`
	Pitch        float32    `yaml:"pitch"`
	SensitivityX float32    `yaml:"sensitivity_x"`
	SensitivityY float32    `yaml:"sensitivity_y"`
	MaxPitchDeg  float32    `yaml:"max_pitch_deg"`
	// MoveSpeed is in world units per second.
	MoveSpeed float32 `yaml:"move_speed"`
	FovYDeg   float32 `yaml:"fov_y_deg"`
	ZNear     float32 `yaml:"z_near"`
	ZFar      float32 `yaml:"z_far"`
}

type RenderConfig struct {
	ClearColor [4]float64 `yaml:"clear_color"`
	LightPos   [3]float32 `yaml:"light_pos"`
	MinShade   float32    `yaml:"min_shade"`
	Texture    string     `yaml:"texture"`
}

type SceneConfig struct {
	Cubes   []CubeConfig  `yaml:"cubes"`
	Scatter ScatterConfig `yaml:"scatter"`
}

type CubeConfig struct {
	Name     string     `yaml:"name"`
	Position [3]float32 `yaml:"position"`
	Axis     core.Axis  `yaml:"axis"`
	// Rate is the spin rate in radians per second.
	Rate float32 `yaml:"rate"`
}

// ScatterConfig places Count extra cubes on a perlin height field around the
// origin. Count 0 disables it.
type ScatterConfig struct {
	Count  int     `yaml:"count"`
	Seed   int64   `yaml:"seed"`
	Radius float32 `yaml:"radius"`
	Height float32 `yaml:"height"`
	Alpha  float64 `yaml:"alpha"`
	Beta   float64 `yaml:"beta"`
	N      int32   `yaml:"n"`
}

type LogConfig struct {
	Debug    bool   `yaml:"debug"`
	Encoding string `yaml:"encoding"`
}

type MetricsConfig struct {
	// Addr enables the /metrics endpoint when set, e.g. ":2112".
	Addr string `yaml:"addr"`
}

type HeadlessConfig struct {
	TickRate float64 `yaml:"tick_rate"`
}

// TickInterval converts TickRate (Hz) into the pace between headless ticks.
func (h HeadlessConfig) TickInterval() time.Duration {
	if h.TickRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / h.TickRate)
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "cubefield",
		},
		Camera: CameraConfig{
			SensitivityX: core.DefaultSensitivity,
			SensitivityY: core.DefaultSensitivity,
			MaxPitchDeg:  89.5,
			MoveSpeed:    7,
			FovYDeg:      core.DefaultFovY,
			ZNear:        core.DefaultZNear,
			ZFar:         core.DefaultZFar,
		},
		Render: RenderConfig{
			ClearColor: [4]float64{0.8, 1, 1, 1},
			LightPos:   [3]float32{0, 1, 8},
			MinShade:   0.175,
		},
		Scene: SceneConfig{
			Cubes: []CubeConfig{
				{Name: "x-spinner", Position: [3]float32{0, 0, 6}, Axis: core.AxisX, Rate: 1},
				{Name: "y-spinner", Position: [3]float32{-6, 2, 10}, Axis: core.AxisY, Rate: 1},
				{Name: "z-spinner", Position: [3]float32{6, 2, 10}, Axis: core.AxisZ, Rate: 1},
			},
			Scatter: ScatterConfig{
				Seed:   1,
				Radius: 20,
				Height: 4,
				Alpha:  2,
				Beta:   2,
				N:      3,
			},
		},
		Keys: map[string]string{
			"forward": "w",
			"back":    "s",
			"left":    "a",
			"right":   "d",
			"up":      "space",
			"down":    "shift",
		},
		Log: LogConfig{
			Encoding: "console",
		},
		Headless: HeadlessConfig{
			TickRate: 60,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. An empty path falls back to
// $CUBEFIELD_CONFIG and then to the defaults alone.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
		if path == "" {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML from r over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	cam := c.Camera
	if cam.MaxPitchDeg <= 0 || cam.MaxPitchDeg >= 90 {
		errs = append(errs, fmt.Errorf("camera.max_pitch_deg must be in (0, 90), got %v", cam.MaxPitchDeg))
	}
	if cam.MoveSpeed < 0 {
		errs = append(errs, fmt.Errorf("camera.move_speed must not be negative, got %v", cam.MoveSpeed))
	}
	if cam.FovYDeg <= 0 || cam.FovYDeg >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov_y_deg must be in (0, 180), got %v", cam.FovYDeg))
	}
	if cam.ZNear <= 0 || cam.ZFar <= cam.ZNear {
		errs = append(errs, fmt.Errorf("camera clip planes must satisfy 0 < z_near < z_far, got %v, %v", cam.ZNear, cam.ZFar))
	}
	if c.Render.MinShade < 0 || c.Render.MinShade > 1 {
		errs = append(errs, fmt.Errorf("render.min_shade must be in [0, 1], got %v", c.Render.MinShade))
	}
	if len(c.Scene.Cubes)+max(c.Scene.Scatter.Count, 0) == 0 {
		errs = append(errs, errors.New("scene has no cubes"))
	}
	if c.Scene.Scatter.Count < 0 {
		errs = append(errs, fmt.Errorf("scene.scatter.count must not be negative, got %d", c.Scene.Scatter.Count))
	}
	if _, err := ParseKeyBindings(c.Keys); err != nil {
		errs = append(errs, err)
	}
	if c.Headless.TickRate < 0 {
		errs = append(errs, fmt.Errorf("headless.tick_rate must not be negative, got %v", c.Headless.TickRate))
	}
	return errors.Join(errs...)
}
