package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Add stores a + b in a.
func Add(a *mgl32.Vec3, b mgl32.Vec3) {
	a[0] += b[0]
	a[1] += b[1]
	a[2] += b[2]
}

// Subtract stores a - b in a.
func Subtract(a *mgl32.Vec3, b mgl32.Vec3) {
	a[0] -= b[0]
	a[1] -= b[1]
	a[2] -= b[2]
}

func Dot(a, b mgl32.Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Scale returns a new vector; v is left untouched.
func Scale(v mgl32.Vec3, s float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0] * s, v[1] * s, v[2] * s}
}
