package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFovY  = float32(65)
	DefaultZNear = float32(0.1)
	DefaultZFar  = float32(50)
)

// Perspective returns a left-handed perspective projection (camera looks down
// +Z) with vertical field of view fovYDeg in degrees. invAspect is
// height/width. Depth maps to [0, 1] as WebGPU expects: zNear -> 0, zFar -> 1.
func Perspective(fovYDeg, invAspect, zNear, zFar float32) mgl32.Mat4 {
	f := float32(1 / math.Tan(float64(fovYDeg)*math.Pi/360))
	depth := zFar - zNear

	return mgl32.Mat4{
		invAspect * f, 0, 0, 0,
		0, f, 0, 0,
		0, 0, zFar / depth, 1,
		0, 0, -zFar * zNear / depth, 0,
	}
}

// InvAspect returns height/width, falling back to 1 for a degenerate
// (minimised) framebuffer.
func InvAspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(height) / float32(width)
}
