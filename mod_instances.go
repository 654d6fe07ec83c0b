package cubefield

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/cubefield/rt/core"
)

// Frame is what one tick hands to the renderer.
type Frame struct {
	Tick uint64
	Dt   time.Duration
	// Instances holds one column-major model matrix per cube, in scene order.
	Instances []float32
	Basis     core.Basis
	View      mgl32.Mat4
}

// InstanceCount is the number of packed model matrices.
func (f *Frame) InstanceCount() uint32 {
	return uint32(len(f.Instances) / core.FloatsPerInstance)
}

type InstancesModule struct{}

func (InstancesModule) Install(app *App, cmd *Commands) error {
	cmd.AddResources(&Frame{View: mgl32.Ident4()})
	app.UseSystem(
		System(packInstancesSystem).
			InStage(PostUpdate),
	)
	return nil
}

// packInstancesSystem runs after the Update stage so the buffer carries this
// tick's rotations.
func packInstancesSystem(t *Time, scene *Scene, frame *Frame) {
	frame.Tick++
	frame.Dt = t.Dt
	frame.Instances = core.PackInstances(frame.Instances, scene.Models())
}
