package cubefield

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/cubefield/rt/core"
)

type FlyingCameraModule struct {
	Position     mgl32.Vec3
	Yaw, Pitch   float32
	MaxPitch     float32
	SensitivityX float32
	SensitivityY float32
	// MoveSpeed is in units per second.
	MoveSpeed float32
}

// FlyingCamera holds movement tuning for the camera resource.
type FlyingCamera struct {
	MoveSpeed float32
}

const DefaultMoveSpeed = float32(7)

func (m FlyingCameraModule) Install(app *App, cmd *Commands) error {
	camera := core.NewCamera()
	camera.SetPosition(m.Position)
	if m.MaxPitch > 0 {
		camera.MaxPitch = m.MaxPitch
	}
	if m.SensitivityX != 0 {
		camera.SensitivityX = m.SensitivityX
	}
	if m.SensitivityY != 0 {
		camera.SensitivityY = m.SensitivityY
	}
	camera.Yaw = core.WrapYaw(m.Yaw)
	camera.Pitch = core.ClampPitch(m.Pitch, camera.MaxPitch)

	speed := m.MoveSpeed
	if speed == 0 {
		speed = DefaultMoveSpeed
	}

	cmd.AddResources(camera, &FlyingCamera{MoveSpeed: speed})
	app.UseSystem(
		System(cameraViewSystem).
			InStage(Update),
	)
	app.UseSystem(
		System(cameraMoveSystem).
			InStage(Update),
	)
	return nil
}

// cameraViewSystem builds this tick's view from one snapshot of the camera.
func cameraViewSystem(camera *core.Camera, frame *Frame) {
	snap := camera.Snapshot()
	frame.Basis = core.ComputeBasis(snap.Yaw, snap.Pitch)
	frame.View = frame.Basis.ViewMatrix(snap.InvPos)
}

// cameraMoveSystem moves along the basis used for this tick's view, so the
// new position shows up in the next tick's view matrix.
func cameraMoveSystem(t *Time, camera *core.Camera, fly *FlyingCamera, input *Input, frame *Frame) {
	dist := t.DtSeconds() * fly.MoveSpeed
	camera.Move(frame.Basis, dist, input.Movement())
}
