package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackInstances(t *testing.T) {
	models := []mgl32.Mat4{
		Translation(0, 0, 6),
		Translation(-6, 2, 10),
		Translation(6, 2, 10),
	}
	RotateX(&models[0], 0.5)
	RotateY(&models[1], 0.5)
	RotateZ(&models[2], 0.5)

	buf := PackInstances(nil, models)
	require.Len(t, buf, 16*len(models))

	for i, m := range models {
		for j := 0; j < 16; j++ {
			assert.Equal(t, m[j], buf[i*16+j], "instance %d element %d", i, j)
		}
	}
}

func TestPackInstancesReusesAndShrinks(t *testing.T) {
	buf := make([]float32, 64)
	for i := range buf {
		buf[i] = -1
	}

	out := PackInstances(buf, []mgl32.Mat4{mgl32.Ident4()})
	require.Len(t, out, 16)
	assert.Equal(t, &buf[0], &out[0], "backing array should be reused")
	ident := mgl32.Ident4()
	assert.Equal(t, ident[:], out)

	assert.Empty(t, PackInstances(out, nil))
}
