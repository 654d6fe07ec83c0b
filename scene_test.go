package cubefield

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/cubefield/rt/core"
)

func TestSceneDefFromConfig(t *testing.T) {
	def := SceneDefFromConfig(SceneConfig{Cubes: []CubeConfig{
		{Name: "a", Position: [3]float32{1, 2, 3}, Axis: core.AxisZ, Rate: 0.5},
		{Position: [3]float32{4, 5, 6}},
	}})
	require.Len(t, def.Cubes, 2)
	assert.Equal(t, CubeDef{Name: "a", Position: mgl32.Vec3{1, 2, 3}, Axis: core.AxisZ, Rate: 0.5}, def.Cubes[0])
	assert.Equal(t, "cube-1", def.Cubes[1].Name)
}

func TestScene_ModelsFollowCubeOrder(t *testing.T) {
	scene := NewScene([]CubeDef{
		{Name: "a", Position: mgl32.Vec3{1, 0, 0}},
		{Name: "b", Position: mgl32.Vec3{0, 2, 0}},
	})
	scene.Add(CubeDef{Name: "c", Position: mgl32.Vec3{0, 0, 3}})

	models := scene.Models()
	require.Len(t, models, 3)
	assert.Equal(t, core.Translation(1, 0, 0), models[0])
	assert.Equal(t, core.Translation(0, 2, 0), models[1])
	assert.Equal(t, core.Translation(0, 0, 3), models[2])

	again := scene.Models()
	assert.Same(t, &models[0], &again[0], "the models slice is reused")
}

func TestScatterCubes(t *testing.T) {
	cfg := DefaultConfig().Scene.Scatter
	cfg.Count = 50

	defs := ScatterCubes(cfg)
	require.Len(t, defs, 50)
	assert.Equal(t, defs, ScatterCubes(cfg), "same seed, same field")

	for i, d := range defs {
		r := math.Hypot(float64(d.Position.X()), float64(d.Position.Z()))
		assert.GreaterOrEqual(t, r, scatterMinRadius-1e-3, "cube %d", i)
		assert.LessOrEqual(t, r, float64(cfg.Radius)+1e-3, "cube %d", i)
		assert.LessOrEqual(t, math.Abs(float64(d.Position.Y())), 2*float64(cfg.Height))
		assert.Equal(t, core.Axis(i%3), d.Axis)
		assert.Greater(t, d.Rate, float32(0))
		assert.Less(t, d.Rate, float32(2))
	}

	cfg.Seed++
	assert.NotEqual(t, defs, ScatterCubes(cfg))

	cfg.Count = 0
	assert.Empty(t, ScatterCubes(cfg))
}

func TestSceneModule_AddsScatter(t *testing.T) {
	def := SceneDefFromConfig(DefaultConfig().Scene)
	def.Scatter.Count = 7
	app, err := NewAppBuilder().UseModule(SceneModule{Def: def}).Build()
	require.NoError(t, err)
	scene := Resource[Scene](app)
	require.NotNil(t, scene)
	assert.Equal(t, 10, scene.Len())
	assert.Equal(t, "x-spinner", scene.Cubes[0].Name)
	assert.Equal(t, "scatter-0", scene.Cubes[3].Name)
}

func TestSceneModule_EmptySceneFails(t *testing.T) {
	_, err := NewAppBuilder().UseModule(SceneModule{}).Build()
	assert.ErrorContains(t, err, "no cubes")
}
