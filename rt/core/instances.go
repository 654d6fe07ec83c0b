package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// FloatsPerInstance is the size of one column-major model matrix in the
// packed instance buffer.
const FloatsPerInstance = 16

// PackInstances writes the matrices into dst in order, column-major, and
// returns the (possibly grown) slice of length 16*len(models). The whole
// buffer is rewritten; there are no partial updates.
func PackInstances(dst []float32, models []mgl32.Mat4) []float32 {
	n := len(models) * FloatsPerInstance
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range models {
		copy(dst[i*FloatsPerInstance:(i+1)*FloatsPerInstance], models[i][:])
	}
	return dst
}
