package cubefield

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/cubefield/rt/core"
)

// SceneDef defines the initial state of a scene.
type SceneDef struct {
	Cubes   []CubeDef
	Scatter ScatterConfig
}

type CubeDef struct {
	Name     string
	Position mgl32.Vec3
	Axis     core.Axis
	Rate     float32
}

// Cube is one spinning instance. Model is owned by the cube and rotated in
// place every tick.
type Cube struct {
	Name  string
	Model mgl32.Mat4
	Axis  core.Axis
	Rate  float32
}

// Scene holds the cubes in instance order.
type Scene struct {
	Cubes []Cube

	models []mgl32.Mat4
}

func NewScene(defs []CubeDef) *Scene {
	s := &Scene{Cubes: make([]Cube, 0, len(defs))}
	for _, d := range defs {
		s.Add(d)
	}
	return s
}

func (s *Scene) Add(d CubeDef) {
	s.Cubes = append(s.Cubes, Cube{
		Name:  d.Name,
		Model: core.Translation(d.Position.X(), d.Position.Y(), d.Position.Z()),
		Axis:  d.Axis,
		Rate:  d.Rate,
	})
}

func (s *Scene) Len() int { return len(s.Cubes) }

// Models returns the model matrices in instance order. The slice is reused
// between calls.
func (s *Scene) Models() []mgl32.Mat4 {
	s.models = s.models[:0]
	for i := range s.Cubes {
		s.models = append(s.models, s.Cubes[i].Model)
	}
	return s.models
}

// SceneDefFromConfig converts the scene section of a Config.
func SceneDefFromConfig(cfg SceneConfig) SceneDef {
	def := SceneDef{Scatter: cfg.Scatter}
	for i, c := range cfg.Cubes {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("cube-%d", i)
		}
		def.Cubes = append(def.Cubes, CubeDef{
			Name:     name,
			Position: mgl32.Vec3(c.Position),
			Axis:     c.Axis,
			Rate:     c.Rate,
		})
	}
	return def
}

const scatterMinRadius = 3

// ScatterCubes lays count cubes on a golden-angle spiral between
// scatterMinRadius and radius. Heights and spin rates come from perlin noise,
// so the same seed always gives the same field.
func ScatterCubes(cfg ScatterConfig) []CubeDef {
	if cfg.Count <= 0 {
		return nil
	}
	noise := perlin.NewPerlin(cfg.Alpha, cfg.Beta, cfg.N, cfg.Seed)
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	radius := math.Max(float64(cfg.Radius), scatterMinRadius)

	defs := make([]CubeDef, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		t := math.Sqrt((float64(i) + 0.5) / float64(cfg.Count))
		r := scatterMinRadius + t*(radius-scatterMinRadius)
		theta := float64(i) * goldenAngle
		x, z := r*math.Cos(theta), r*math.Sin(theta)

		// Noise2D is in [-1, 1]; sample with an offset so the lattice points
		// (where perlin is always zero) are avoided.
		h := noise.Noise2D(x/8+0.31, z/8+0.17)
		spin := noise.Noise2D(z/8+0.73, x/8+0.59)

		defs = append(defs, CubeDef{
			Name:     fmt.Sprintf("scatter-%d", i),
			Position: mgl32.Vec3{float32(x), float32(h) * cfg.Height, float32(z)},
			Axis:     core.Axis(i % 3),
			Rate:     float32(1 + spin/2),
		})
	}
	return defs
}

type SceneModule struct {
	Def SceneDef
}

func (mod SceneModule) Install(app *App, cmd *Commands) error {
	scene := NewScene(mod.Def.Cubes)
	for _, d := range ScatterCubes(mod.Def.Scatter) {
		scene.Add(d)
	}
	if scene.Len() == 0 {
		return fmt.Errorf("scene has no cubes")
	}
	cmd.AddResources(scene)
	app.Logger().Infof("scene ready with %d cubes", scene.Len())
	return nil
}
