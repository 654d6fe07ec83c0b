package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(DefaultFovY, 9.0/16.0, DefaultZNear, DefaultZFar)

	near := proj.Mul4x1(mgl32.Vec4{0, 0, DefaultZNear, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, DefaultZFar, 1})

	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)
	assert.InDelta(t, DefaultZNear, near.W(), 1e-6, "w carries view depth")
}

func TestPerspectiveFieldOfView(t *testing.T) {
	proj := Perspective(90, 0.5, 1, 10)

	// A 90° vertical fov puts y == z on the top clip edge.
	top := proj.Mul4x1(mgl32.Vec4{0, 3, 3, 1})
	assert.InDelta(t, 1, top.Y()/top.W(), 1e-5)

	// x is squeezed by the inverse aspect ratio.
	side := proj.Mul4x1(mgl32.Vec4{3, 0, 3, 1})
	assert.InDelta(t, 0.5, side.X()/side.W(), 1e-5)
}

func TestInvAspect(t *testing.T) {
	assert.Equal(t, float32(0.5), InvAspect(200, 100))
	assert.Equal(t, float32(1), InvAspect(0, 100))
}
