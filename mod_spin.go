package cubefield

import (
	"github.com/gekko3d/cubefield/rt/core"
)

type SpinModule struct{}

func (SpinModule) Install(app *App, cmd *Commands) error {
	app.UseSystem(
		System(spinSystem).
			InStage(Update),
	)
	return nil
}

// spinSystem rotates every cube about its own axis by Rate*Dt.
func spinSystem(t *Time, scene *Scene) {
	dt := t.DtSeconds()
	if dt <= 0 {
		return
	}
	for i := range scene.Cubes {
		cube := &scene.Cubes[i]
		core.RotateLocal(&cube.Model, cube.Rate*dt, cube.Axis)
	}
}
